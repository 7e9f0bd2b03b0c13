package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/taxsahaj/taxsahaj/internal/aggregate"
	"github.com/taxsahaj/taxsahaj/internal/batch"
	"github.com/taxsahaj/taxsahaj/internal/common"
	"github.com/taxsahaj/taxsahaj/internal/entity"
	"github.com/taxsahaj/taxsahaj/internal/export"
	"github.com/taxsahaj/taxsahaj/internal/ingest"
	"github.com/taxsahaj/taxsahaj/internal/llm"
	"github.com/taxsahaj/taxsahaj/internal/llm/ollama"
	"github.com/taxsahaj/taxsahaj/internal/pipeline"
	"github.com/taxsahaj/taxsahaj/internal/repository"
	"github.com/taxsahaj/taxsahaj/internal/tax"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:           "taxsahaj",
		Short:         "Analyze Indian income-tax documents and compare tax regimes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline details")

	app := &app{verbose: &verbose}
	root.AddCommand(app.analyzeCmd(), app.recommendCmd(), app.watchCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	verbose *bool
}

func (a *app) setup() (*common.Config, *slog.Logger) {
	level := slog.LevelWarn
	if *a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return common.LoadConfig(), logger
}

func (a *app) completer(cfg *common.Config, logger *slog.Logger, offline bool) llm.Completer {
	if offline {
		return nil
	}
	return batch.NewRetryCompleter(
		ollama.NewClient(ollama.Config{
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger),
		uint(cfg.LLM.MaxRetries)+1,
		logger,
	)
}

func (a *app) analyzeCmd() *cobra.Command {
	var offline bool
	var year string
	var xlsxOut string

	cmd := &cobra.Command{
		Use:   "analyze <dir>",
		Short: "Process a directory of documents and print the yearly position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := a.setup()
			if year == "" {
				year = cfg.Tax.DefaultYear
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := repository.NewFromConfig(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			analyzer := pipeline.NewAnalyzer(a.completer(cfg, logger, offline), logger)
			analyzer.CompletionTimeout = cfg.LLM.Timeout
			proc := batch.NewProcessor(analyzer, store, logger)
			proc.Parallelism = cfg.Ingest.Parallelism

			records, err := proc.ProcessDir(ctx, args[0])
			if err != nil {
				return err
			}

			res := aggregate.NewAggregator(logger).Fold(records, year)
			return a.report(logger, res, records, year, xlsxOut)
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the completion service, patterns only")
	cmd.Flags().StringVar(&year, "year", "", "default tax year for documents without one")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "also write an XLSX report to this path")
	return cmd
}

func (a *app) recommendCmd() *cobra.Command {
	var year string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Compare regimes over previously analyzed documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := a.setup()
			if year == "" {
				year = cfg.Tax.DefaultYear
			}

			ctx := cmd.Context()
			store, err := repository.NewFromConfig(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(ctx)
			if err != nil {
				return err
			}
			res := aggregate.NewAggregator(logger).Fold(records, year)
			led, ok := res.Ledgers[year]
			if !ok {
				return fmt.Errorf("no records for tax year %s; run analyze first", year)
			}

			rec, err := tax.NewCalculator(logger).Recommend(led)
			if err != nil {
				return err
			}
			if err := store.SaveRecommendation(ctx, rec); err != nil {
				logger.Warn("recommendation not persisted", "tax_year", year, "error", err)
			}
			return printJSON(rec)
		},
	}
	cmd.Flags().StringVar(&year, "year", "", "tax year to recommend for")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory and analyze documents as they appear",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := a.setup()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, err := repository.NewFromConfig(ctx, cfg.Store, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			analyzer := pipeline.NewAnalyzer(a.completer(cfg, logger, offline), logger)
			analyzer.CompletionTimeout = cfg.LLM.Timeout
			proc := batch.NewProcessor(analyzer, store, logger)

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args[:1],
				InitialScan: true,
			}, logger)
			if err != nil {
				return err
			}

			for {
				select {
				case <-ctx.Done():
					return nil
				case err, ok := <-errs:
					if ok && err != nil {
						logger.Error("watch error", "error", err)
					}
				case path, ok := <-events:
					if !ok {
						return nil
					}
					recs, err := proc.ProcessFiles(ctx, []string{path})
					if err != nil {
						return err
					}
					if len(recs) == 1 {
						_ = printJSON(recs[0])
					}
				}
			}
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "skip the completion service, patterns only")
	return cmd
}

func (a *app) report(logger *slog.Logger, res aggregate.Result, records []entity.ReconciledRecord, year, xlsxOut string) error {
	out := struct {
		Ledgers         map[string]*aggregate.YearLedger `json:"ledgers"`
		Folded          int                              `json:"folded"`
		Skipped         int                              `json:"skipped"`
		Recommendations map[string]tax.Recommendation    `json:"recommendations"`
	}{
		Ledgers:         res.Ledgers,
		Folded:          res.Folded,
		Skipped:         res.Skipped,
		Recommendations: map[string]tax.Recommendation{},
	}

	calc := tax.NewCalculator(logger)
	for _, y := range res.Years() {
		rec, err := calc.Recommend(res.Ledgers[y])
		if err != nil {
			logger.Warn("recommendation unavailable", "tax_year", y, "error", err)
			continue
		}
		out.Recommendations[y] = rec
	}

	if xlsxOut != "" {
		led, ok := res.Ledgers[year]
		if !ok {
			return fmt.Errorf("no ledger for tax year %s", year)
		}
		rec, ok := out.Recommendations[year]
		if !ok {
			return fmt.Errorf("no recommendation for tax year %s", year)
		}
		b, err := export.NewService(logger).ReportXLSX(led, rec, records)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxOut, b, 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}
	return printJSON(out)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
