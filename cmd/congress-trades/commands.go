package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"congress-trade-lab/internal/config"
	"congress-trade-lab/internal/fetch"
	"congress-trade-lab/internal/logging"
	"congress-trade-lab/internal/observability"
	"congress-trade-lab/internal/orchestrator"
	"congress-trade-lab/internal/publish"
	"congress-trade-lab/internal/reference"
	chstore "congress-trade-lab/internal/storage/clickhouse"
	"congress-trade-lab/internal/storage/migrations"
	"congress-trade-lab/internal/storage/postgres"
)

// loadConfig reads the env file and the config named by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}
	path, _ := cmd.Flags().GetString("config")
	return config.LoadAndValidate(path)
}

func loadReference(cfg *config.Config) (*reference.Store, error) {
	ref := reference.Default()
	if cfg.Reference.File == "" {
		return ref, nil
	}
	return reference.LoadFile(cfg.Reference.File, ref)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.Output.Dir = dir
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Log.Level = level
	}
	noStore, _ := cmd.Flags().GetBool("no-store")

	logger, err := logging.Setup(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ref, err := loadReference(cfg)
	if err != nil {
		return err
	}

	cache, closeCache, err := openCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	tiers, err := orchestrator.BuildTiers(cfg, ref, orchestrator.SourceOptions{Cache: cache, Logger: logger})
	if err != nil {
		return err
	}

	publisher, err := openPublisher(ctx, cfg)
	if err != nil {
		return err
	}

	opts := orchestrator.Options{
		Config:    cfg,
		Tiers:     tiers,
		Reference: ref,
		Publisher: publisher,
		Metrics:   observability.NewMetrics(cfg.Metrics.Namespace),
		Logger:    logger,
	}
	if !noStore {
		closeStores, err := openStores(ctx, cfg, &opts)
		if err != nil {
			return err
		}
		defer closeStores()
	}

	orch, err := orchestrator.New(opts)
	if err != nil {
		return err
	}
	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d trades (%d conflicts) from tier %s -> %s\n",
		result.RunID, result.Result.Totals.Trades, result.Result.Totals.Conflicts,
		result.Result.Tier, result.Locations[orchestrator.ObjectArtifact])
	return nil
}

// openCache returns a Redis cache when configured, otherwise an in-process one.
func openCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (fetch.Cache, func(), error) {
	if cfg.Cache.RedisAddr == "" {
		return fetch.NewMemoryCache(), func() {}, nil
	}
	rc, err := fetch.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("addr", cfg.Cache.RedisAddr).Msg("redis page cache enabled")
	return rc, func() { _ = rc.Close() }, nil
}

func openPublisher(ctx context.Context, cfg *config.Config) (publish.Publisher, error) {
	file := publish.NewFilePublisher(cfg.Output.Dir)
	if cfg.Output.S3.Bucket == "" {
		return file, nil
	}
	s3p, err := publish.NewS3Publisher(ctx, publish.S3Config{
		Bucket:       cfg.Output.S3.Bucket,
		Region:       cfg.Output.S3.Region,
		Endpoint:     cfg.Output.S3.Endpoint,
		Prefix:       cfg.Output.S3.Prefix,
		CacheControl: cfg.Output.S3.CacheControl,
	})
	if err != nil {
		return nil, err
	}
	return publish.Multi{file, s3p}, nil
}

// openStores connects the configured databases, applies migrations and
// fills opts. The returned func closes every opened connection.
func openStores(ctx context.Context, cfg *config.Config, opts *orchestrator.Options) (func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err := postgres.NewPool(ctx, dsn)
		if err != nil {
			return nil, err
		}
		closers = append(closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			closeAll()
			return nil, err
		}
		opts.Stores = pool.Stores()
	}

	if dsn := cfg.Storage.ClickhouseDSN; dsn != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, dsn)
		if err != nil {
			closeAll()
			return nil, err
		}
		closers = append(closers, func() { _ = conn.Close() })
		opts.Analytics = chstore.NewTradeStore(conn)
	}

	return closeAll, nil
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "config OK (timezone %s, window %d days, matching %s)\n",
		cfg.Run.Timezone, cfg.Run.WindowDays, cfg.Run.Matching)

	usable, skipped, err := cfg.UsableTiers(os.LookupEnv)
	printTiers(out, usable)
	for _, s := range skipped {
		fmt.Fprintf(out, "  disabled %s/%s: %s not set\n", s.Tier, s.Source, s.Env)
	}
	if err != nil {
		return err
	}
	if _, err := loadReference(cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "storage: %s\n", describeStorage(cfg.Storage))
	return nil
}

func printTiers(w io.Writer, tiers []config.TierConfig) {
	for i, t := range tiers {
		fmt.Fprintf(w, "tier %d %s:", i+1, t.Name)
		for _, s := range t.Sources {
			fmt.Fprintf(w, " %s(%s)", s.Name, s.Kind)
		}
		fmt.Fprintln(w)
	}
}

func describeStorage(s config.StorageConfig) string {
	switch {
	case s.PostgresDSN != "" && s.ClickhouseDSN != "":
		return "postgres + clickhouse"
	case s.PostgresDSN != "":
		return "postgres"
	case s.ClickhouseDSN != "":
		return "clickhouse"
	default:
		return "none"
	}
}

func runReference(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ref, err := loadReference(cfg)
	if err != nil {
		return err
	}
	if err := ref.WriteYAML(cmd.OutOrStdout()); err != nil {
		log.Error().Err(err).Msg("write reference")
		return err
	}
	return nil
}
