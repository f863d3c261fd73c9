package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"txdash/internal/backend"
	"txdash/internal/config"
	"txdash/internal/core"
	"txdash/internal/log"
	"txdash/internal/services"
	"txdash/internal/storage"
	"txdash/internal/worker"
)

type rootOptions struct {
	source  string
	url     string
	file    string
	db      string
	timeout time.Duration
	verbose bool
}

type queryOptions struct {
	month   string
	page    int
	perPage int
	search  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "txctl",
		Short:         "Query and snapshot the transaction dataset",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.source, "source", "", "dataset source: "+strings.Join(backend.GetBackendTypeStrings(), ", ")+" (default from DATASET_SOURCE)")
	cmd.PersistentFlags().StringVar(&opts.url, "url", "", "dataset URL for the remote source")
	cmd.PersistentFlags().StringVar(&opts.file, "file", "", "JSON file for the memory source")
	cmd.PersistentFlags().StringVar(&opts.db, "db", "", "SQLite database path")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "dataset fetch timeout")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(newQueryCmd(opts), newSnapshotCmd(opts), newMonthsCmd())
	return cmd
}

// appConfig reads the environment and applies flag overrides.
func (o *rootOptions) appConfig() (*config.Config, error) {
	cfg := config.Load()
	if o.source != "" {
		cfg.DatasetSource = o.source
	}
	if o.url != "" {
		cfg.DatasetURL = o.url
	}
	if o.file != "" {
		cfg.DatasetFile = o.file
	}
	if o.db != "" {
		cfg.SQLiteDBPath = o.db
	}
	if o.timeout > 0 {
		cfg.DatasetTimeout = o.timeout
	}
	if o.verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (o *rootOptions) openSource(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger.Logger, nil).CreateBackend(ctx, bcfg)
}

func newLogger(cfg *config.Config, w io.Writer) *log.Logger {
	level, _ := log.ParseLevel(cfg.LogLevel)
	return log.New(log.Config{Level: level, Format: cfg.LogFormat, Component: log.ComponentCLI, Output: w})
}

func newQueryCmd(root *rootOptions) *cobra.Command {
	q := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a dashboard query against the configured source and print JSON",
	}
	cmd.PersistentFlags().StringVarP(&q.month, "month", "m", "", "month name, e.g. March (required)")

	run := func(fn func(ctx context.Context, svc *services.QueryService, month time.Month) (any, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			month, err := core.ParseMonth(q.month)
			if err != nil {
				return fmt.Errorf("--month: %w", err)
			}
			cfg, err := root.appConfig()
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			res, err := root.openSource(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer res.Close()

			out, err := fn(cmd.Context(), services.NewQueryService(res.Source, logger), month)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		}
	}

	list := func(month time.Month) (services.ListParams, error) {
		if q.page < 1 || q.perPage < 1 {
			return services.ListParams{}, fmt.Errorf("--page and --per-page must be at least 1")
		}
		return services.ListParams{Month: month, Page: q.page, PerPage: q.perPage, Search: q.search}, nil
	}

	transactions := &cobra.Command{
		Use:   "transactions",
		Short: "List one page of the month's transactions",
		RunE: run(func(ctx context.Context, svc *services.QueryService, month time.Month) (any, error) {
			p, err := list(month)
			if err != nil {
				return nil, err
			}
			page, err := svc.ListTransactions(ctx, p)
			if err != nil {
				return nil, err
			}
			return map[string]any{
				"transactions": page.Items,
				"total":        page.Total,
				"page":         page.Page,
				"perPage":      page.PerPage,
				"totalPages":   core.TotalPages(page.Total, page.PerPage),
			}, nil
		}),
	}
	combined := &cobra.Command{
		Use:   "combined",
		Short: "Print every dashboard view for the month",
		RunE: run(func(ctx context.Context, svc *services.QueryService, month time.Month) (any, error) {
			p, err := list(month)
			if err != nil {
				return nil, err
			}
			return svc.GetCombined(ctx, p)
		}),
	}
	for _, c := range []*cobra.Command{transactions, combined} {
		c.Flags().IntVar(&q.page, "page", core.DefaultPage, "page number")
		c.Flags().IntVar(&q.perPage, "per-page", core.DefaultPerPage, "page size")
		c.Flags().StringVarP(&q.search, "search", "s", "", "search title, description or price")
	}

	statistics := &cobra.Command{
		Use:   "statistics",
		Short: "Print total sales and sold/unsold counts",
		RunE: run(func(ctx context.Context, svc *services.QueryService, month time.Month) (any, error) {
			return svc.GetStatistics(ctx, month)
		}),
	}
	barChart := &cobra.Command{
		Use:   "bar-chart",
		Short: "Print the price histogram",
		RunE: run(func(ctx context.Context, svc *services.QueryService, month time.Month) (any, error) {
			return svc.GetBarChart(ctx, month)
		}),
	}
	pieChart := &cobra.Command{
		Use:   "pie-chart",
		Short: "Print the category distribution",
		RunE: run(func(ctx context.Context, svc *services.QueryService, month time.Month) (any, error) {
			return svc.GetPieChart(ctx, month)
		}),
	}

	cmd.AddCommand(transactions, statistics, barChart, pieChart, combined)
	return cmd
}

func newSnapshotCmd(root *rootOptions) *cobra.Command {
	var (
		from  string
		every time.Duration
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy the dataset from a source into the SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.appConfig()
			if err != nil {
				return err
			}
			if from != "" {
				cfg.DatasetSource = from
			}
			if cfg.DatasetSource == config.SourceSQLite {
				return fmt.Errorf("snapshot source cannot be %s", config.SourceSQLite)
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			res, err := root.openSource(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer res.Close()

			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			w := worker.NewSnapshotWorker(res.Source, cfg.DatasetSource, repo, logger.Logger)
			report := func(snap storage.Snapshot) {
				fmt.Fprintf(cmd.OutOrStdout(), "snapshot %d: %d records from %s into %s\n",
					snap.ID, snap.Records, snap.Source, cfg.SQLiteDBPath)
			}

			if every <= 0 {
				snap, err := w.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				report(snap)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx, every, report)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source to copy from (default: --source)")
	cmd.Flags().DurationVar(&every, "every", 0, "repeat on this interval until interrupted")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the most recent snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.appConfig()
			if err != nil {
				return err
			}
			repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			defer repo.Close()

			snap, err := repo.LatestSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"id":      snap.ID,
				"source":  snap.Source,
				"takenAt": snap.TakenAt,
				"records": snap.Records,
			})
		},
	}
	cmd.AddCommand(status)
	return cmd
}

func newMonthsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "months",
		Short: "List the accepted month names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, name := range core.MonthNames() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
