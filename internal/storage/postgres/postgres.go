// Package postgres persists pipeline runs and their trades in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"congress-trade-lab/internal/storage"
)

// applicationName tags sessions in pg_stat_activity.
const applicationName = "congress-trades"

// Pool is a pgx connection pool shared by the run and trade stores.
type Pool struct {
	*pgxpool.Pool
}

// NewPool parses dsn, connects and pings. A batch run needs few connections,
// so MaxConns is capped unless the DSN sets pool_max_conns itself.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.ConnConfig.RuntimeParams["application_name"] == "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = applicationName
	}
	if cfg.MaxConns > 4 && !strings.Contains(dsn, "pool_max_conns") {
		cfg.MaxConns = 4
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

// Stores returns the run and trade stores backed by this pool.
func (p *Pool) Stores() storage.Stores {
	return storage.Stores{
		Runs:   NewRunStore(p),
		Trades: NewTradeStore(p),
	}
}

// PostgreSQL error codes.
const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapWriteError translates constraint violations to storage sentinels.
// Trades referencing an unknown run are invalid input.
func mapWriteError(err error, op string) error {
	switch pgErrorCode(err) {
	case pgErrUniqueViolation:
		return storage.ErrDuplicateKey
	case pgErrForeignKeyViolation:
		return fmt.Errorf("%s: %w: run does not exist", op, storage.ErrInvalidInput)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
