package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/liac-group/recruit-cli/internal/domain"
	"github.com/liac-group/recruit-cli/internal/emails"
	"github.com/liac-group/recruit-cli/internal/events"
	"github.com/liac-group/recruit-cli/internal/ledger"
	"github.com/liac-group/recruit-cli/internal/model"
	"github.com/liac-group/recruit-cli/internal/pipeline"
	"github.com/liac-group/recruit-cli/internal/qualify"
	"github.com/liac-group/recruit-cli/internal/queryparse"
	"github.com/liac-group/recruit-cli/internal/ratelimit"
	"github.com/liac-group/recruit-cli/internal/resilience"
	"github.com/liac-group/recruit-cli/internal/runs"
	anthropicpkg "github.com/liac-group/recruit-cli/pkg/anthropic"
	"github.com/liac-group/recruit-cli/pkg/clearout"
	"github.com/liac-group/recruit-cli/pkg/hunter"
	"github.com/liac-group/recruit-cli/pkg/instantly"
	"github.com/liac-group/recruit-cli/pkg/jsearch"
	"github.com/liac-group/recruit-cli/pkg/linkedin"
	"github.com/liac-group/recruit-cli/pkg/supabase"
)

var (
	huntCities      []string
	huntAgeHours    int
	huntDryRun      bool
	huntConcurrency int
)

var huntCmd = &cobra.Command{
	Use:   "hunt \"query\" [\"query\"...]",
	Short: "Run the lead pipeline for one or more hiring queries",
	Long:  "Each query runs as an independent pipeline: job search per city, company qualification, email discovery, campaign handoff. Queries share the vendor rate budget and the dedup ledger.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("hunt"); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		registry := runs.NewRegistry()
		var draining atomic.Bool

		// First signal asks runs to stop at their next company
		// boundary so leads and summaries still land; a second
		// signal aborts outright.
		sigs := make(chan os.Signal, 2)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigs)
		go func() {
			<-sigs
			draining.Store(true)
			n := registry.CancelAll()
			zap.L().Warn("interrupt received, stopping runs at the next boundary",
				zap.Int("active_runs", n))
			<-sigs
			zap.L().Warn("second interrupt, aborting")
			cancel()
		}()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var led ledger.Ledger
		if huntDryRun {
			led = ledger.NewMemory()
		} else {
			led, err = openLedger(ctx, st)
			if err != nil {
				return err
			}
			defer led.Close() //nolint:errcheck
		}

		// One people-data quota shared by every concurrent run.
		peopleLimiter := ratelimit.New(cfg.LinkedIn.RatePerMinute, time.Minute)
		emailLimiter := ratelimit.New(30, time.Minute)

		dir := linkedin.NewClient(cfg.LinkedIn.Key, linkedin.WithBaseURL(cfg.LinkedIn.BaseURL))
		searchClient := jsearch.NewClient(cfg.JSearch.Key, jsearch.WithBaseURL(cfg.JSearch.BaseURL))
		resolver := domain.NewResolver(clearout.NewClient(clearout.WithBaseURL(cfg.Clearout.BaseURL)))
		hunterClient := hunter.NewClient(cfg.Hunter.Key, hunter.WithBaseURL(cfg.Hunter.BaseURL))

		var sink events.Sink = events.NewLogSink()
		if cfg.Supabase.URL != "" && cfg.Supabase.Key != "" {
			sink = events.NewSupabaseSink(
				supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key),
				cfg.Supabase.EventsTable)
		}

		var modelClient anthropicpkg.Client
		if cfg.Anthropic.Key != "" {
			modelClient = anthropicpkg.NewClient(cfg.Anthropic.Key)
		}
		parser := queryparse.NewParser(modelClient).WithModel(cfg.Anthropic.Model)

		var outreach instantly.Client
		if cfg.Pipeline.CampaignHandoff && !huntDryRun {
			outreach = instantly.NewClient(cfg.Instantly.Key, instantly.WithBaseURL(cfg.Instantly.BaseURL))
		}

		opts := pipeline.Options{
			MaxJobsPerCity:  cfg.Pipeline.MaxJobsPerCity,
			MaxLeadsPerRun:  cfg.Pipeline.MaxLeadsPerRun,
			CompanyDelay:    time.Duration(cfg.Pipeline.CompanyDelaySecs) * time.Second,
			CityDelay:       time.Duration(cfg.Pipeline.CityDelaySecs) * time.Second,
			CampaignHandoff: cfg.Pipeline.CampaignHandoff && !huntDryRun,
			Retry: resilience.FromRetryConfig(
				cfg.Resilience.RetryMaxAttempts,
				cfg.Resilience.RetryInitialBackoffMs,
				cfg.Resilience.RetryMaxBackoffMs,
				cfg.Resilience.RetryMultiplier,
				cfg.Resilience.RetryJitter,
			),
			Breaker: resilience.FromCircuitConfig(
				cfg.Resilience.BreakerThreshold,
				cfg.Resilience.BreakerResetSecs,
			),
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(huntConcurrency)

		summaries := make([]*model.RunSummary, len(args))
		for i, query := range args {
			g.Go(func() error {
				if draining.Load() {
					return nil
				}
				runID := uuid.New().String()
				log := zap.L().With(zap.String("run_id", runID), zap.String("query", query))

				params := parser.Parse(gctx, query)
				if len(huntCities) > 0 {
					params.Locations = huntCities
				}
				if params.MaxAgeHours == 0 {
					params.MaxAgeHours = cfg.Pipeline.DefaultAgeHours
				}
				if huntAgeHours > 0 {
					params.MaxAgeHours = huntAgeHours
				}

				orch := pipeline.New(
					searchClient,
					qualify.NewPipeline(dir, peopleLimiter),
					emails.NewStage(resolver, hunterClient, emailLimiter).WithLimit(cfg.Hunter.Limit),
					led,
					registry,
					sink,
					opts,
				).WithBlacklist(st)
				if !huntDryRun {
					orch = orch.WithLeadSaver(st)
				}
				if outreach != nil {
					orch = orch.WithOutreach(outreach)
				}

				summary, err := orch.Run(gctx, runID, params)
				if err != nil {
					log.Error("run failed", zap.Error(err))
					return nil // other queries keep going
				}
				summaries[i] = summary
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "hunt")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, s := range summaries {
			if s == nil {
				continue
			}
			if err := enc.Encode(s); err != nil {
				return eris.Wrap(err, "encode summary")
			}
		}
		return nil
	},
}

func init() {
	huntCmd.Flags().StringSliceVar(&huntCities, "cities", nil, "override the cities parsed from the query")
	huntCmd.Flags().IntVar(&huntAgeHours, "age-hours", 0, "only consider postings newer than this")
	huntCmd.Flags().BoolVar(&huntDryRun, "dry-run", false, "in-memory dedup, no lead storage or campaign handoff")
	huntCmd.Flags().IntVar(&huntConcurrency, "concurrency", 2, "queries processed in parallel")
	rootCmd.AddCommand(huntCmd)
}
