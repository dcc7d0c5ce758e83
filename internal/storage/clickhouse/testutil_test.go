package clickhouse

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a single-node ClickHouse with the run_trades table.
func setupTestDB(t *testing.T) (*Conn, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := testcontainers.Run(ctx, "clickhouse/clickhouse-server:24.8-alpine",
		testcontainers.WithExposedPorts(nativePort+"/tcp"),
		testcontainers.WithEnv(map[string]string{
			"CLICKHOUSE_DB":       "congress",
			"CLICKHOUSE_USER":     "default",
			"CLICKHOUSE_PASSWORD": "",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort(nativePort+"/tcp").WithStartupTimeout(90*time.Second),
		),
	)
	require.NoError(t, err, "failed to start clickhouse container")

	endpoint, err := container.PortEndpoint(ctx, nativePort+"/tcp", "clickhouse")
	require.NoError(t, err)
	dsn := endpoint + "/congress"

	conn, err := NewConn(ctx, dsn)
	require.NoError(t, err)

	runMigrations(t, conn)

	return conn, func() {
		_ = conn.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate clickhouse: %v", err)
		}
	}
}

// runMigrations replays the schema files from disk. The migrations package
// imports this one, so its embedded copy is out of reach here.
func runMigrations(t *testing.T, conn *Conn) {
	t.Helper()

	paths, err := filepath.Glob(filepath.Join("..", "migrations", "clickhouse", "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, paths, "no clickhouse migrations found")

	for _, path := range paths {
		body, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NoError(t, conn.Exec(context.Background(), string(body)), "apply %s", filepath.Base(path))
	}
}
