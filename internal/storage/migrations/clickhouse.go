package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	chstore "congress-trade-lab/internal/storage/clickhouse"
)

// ErrUnterminatedLiteral is returned for a script that ends inside a quoted string.
var ErrUnterminatedLiteral = errors.New("unterminated string literal")

// RunClickhouseMigrations creates the DSN's database when missing, applies
// every embedded script, and returns a connection to that database.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	db, err := chstore.Database(dsn)
	if err != nil {
		return nil, err
	}
	if err := createDatabase(ctx, dsn, db); err != nil {
		return nil, err
	}

	conn, err := chstore.NewConn(ctx, dsn, chstore.WithDatabase(db))
	if err != nil {
		return nil, err
	}
	if err := applyClickhouse(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func createDatabase(ctx context.Context, dsn, db string) error {
	admin, err := chstore.NewConn(ctx, dsn, chstore.WithDatabase(""))
	if err != nil {
		return err
	}
	defer admin.Close()

	if err := admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdent(db)); err != nil {
		return fmt.Errorf("create database %s: %w", db, err)
	}
	return nil
}

// applyClickhouse runs scripts one statement at a time; the native
// protocol rejects multi-statement Exec.
func applyClickhouse(ctx context.Context, conn *chstore.Conn) error {
	scripts, err := readScripts(ClickhouseFS, "clickhouse")
	if err != nil {
		return err
	}
	for _, s := range scripts {
		stmts, err := statements(s.body)
		if err != nil {
			return fmt.Errorf("parse migration %s: %w", s.name, err)
		}
		for _, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("apply migration %s: %w", s.name, err)
			}
		}
	}
	return nil
}

// statements splits a script on top-level semicolons. Semicolons inside
// single-quoted literals ('' escapes a quote) and -- line comments are
// not separators; comments are dropped from the output.
func statements(script string) ([]string, error) {
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
	)
	flush := func() {
		if stmt := strings.TrimSpace(cur.String()); stmt != "" {
			out = append(out, stmt)
		}
		cur.Reset()
	}

	for i := 0; i < len(script); i++ {
		ch := script[i]
		switch {
		case inQuote:
			cur.WriteByte(ch)
			if ch == '\'' {
				if i+1 < len(script) && script[i+1] == '\'' {
					cur.WriteByte('\'')
					i++
				} else {
					inQuote = false
				}
			}
		case ch == '\'':
			inQuote = true
			cur.WriteByte(ch)
		case ch == '-' && i+1 < len(script) && script[i+1] == '-':
			for i < len(script) && script[i] != '\n' {
				i++
			}
			cur.WriteByte('\n')
		case ch == ';':
			flush()
		default:
			cur.WriteByte(ch)
		}
	}
	if inQuote {
		return nil, ErrUnterminatedLiteral
	}
	flush()
	return out, nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
