package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/storage"
	"congress-trade-lab/internal/storage/migrations"
	"congress-trade-lab/internal/storage/postgres"
)

var errNoRunStore = errors.New("storage.postgres_dsn is not set; runs are only recorded in postgres")

func newRunsCmd() *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded pipeline runs",
	}
	runsCmd.PersistentFlags().Bool("trades", false, "List the run's trades")
	runsCmd.PersistentFlags().Bool("artifact", false, "Print the stored artifact JSON instead of a summary")

	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "Show the most recent successful run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowRun(cmd, "")
		},
	}
	showCmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show a run by ID, including failed runs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShowRun(cmd, args[0])
		},
	}

	runsCmd.AddCommand(latestCmd, showCmd)
	return runsCmd
}

func runShowRun(cmd *cobra.Command, runID string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Storage.PostgresDSN == "" {
		return errNoRunStore
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		return err
	}

	withTrades, _ := cmd.Flags().GetBool("trades")
	artifact, _ := cmd.Flags().GetBool("artifact")
	return showRun(ctx, cmd.OutOrStdout(), pool.Stores(), runID, showOptions{trades: withTrades, artifact: artifact})
}

type showOptions struct {
	trades   bool
	artifact bool
}

// showRun prints runID, or the latest successful run when runID is empty.
func showRun(ctx context.Context, w io.Writer, stores storage.Stores, runID string, opts showOptions) error {
	var (
		run *domain.Run
		err error
	)
	if runID == "" {
		run, err = stores.Runs.Latest(ctx)
	} else {
		run, err = stores.Runs.GetByID(ctx, runID)
	}
	if errors.Is(err, storage.ErrNotFound) {
		if runID == "" {
			return errors.New("no successful run recorded")
		}
		return fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return err
	}

	if opts.artifact {
		if len(run.Artifact) == 0 {
			return fmt.Errorf("run %s has no artifact (status %s)", run.RunID, run.Status)
		}
		_, err := fmt.Fprintf(w, "%s\n", run.Artifact)
		return err
	}

	fmt.Fprintf(w, "run %s %s\n", run.RunID, run.Status)
	fmt.Fprintf(w, "  finished %s (%s)\n", run.FinishedAt.UTC().Format(time.RFC3339), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	if run.Status == domain.RunStatusFailed {
		fmt.Fprintf(w, "  error: %s\n", run.Error)
		return nil
	}
	fmt.Fprintf(w, "  tier %s, cutoff %s\n", run.Tier, run.Cutoff)
	fmt.Fprintf(w, "  trades %d (buy %d, sell %d, conflicts %d), duplicates %d, outside window %d\n",
		run.TotalTrades, run.TotalBuy, run.TotalSell, run.TotalConflicts, run.Duplicates, run.WindowedOut)

	if !opts.trades {
		return nil
	}
	trades, err := stores.Trades.GetByRunID(ctx, run.RunID)
	if err != nil {
		return err
	}
	for _, rt := range trades {
		tr := rt.Trade
		flag := ""
		if tr.Conflict {
			flag = " conflict"
		}
		fmt.Fprintf(w, "  %3d %s %-4s %-6s %s %s%s\n",
			rt.Position, tr.TransactionDate, tr.Direction, tr.Ticker, tr.Legislator, tr.AmountRange, flag)
	}
	return nil
}
