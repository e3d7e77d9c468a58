package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bizverify/internal/dataset"
	cachestore "bizverify/internal/dataset/store"
	"bizverify/internal/platform/config"
	"bizverify/internal/platform/httpserver"
	"bizverify/internal/platform/logger"
	"bizverify/internal/platform/metrics"
	"bizverify/internal/platform/postgres"
	"bizverify/internal/platform/redis"
	"bizverify/internal/report"
	reporthandler "bizverify/internal/report/handler"
	reportmetrics "bizverify/internal/report/metrics"
	"bizverify/internal/runs/publisher"
	runstore "bizverify/internal/runs/store"
	httptransport "bizverify/internal/transport/http"
)

// inMemoryRunHistory bounds run history when no database is configured.
const inMemoryRunHistory = 500

func serveCmd() *cobra.Command {
	var (
		addr   string
		src    string
		policy policyFlags
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the deduplication report over HTTP",
		Long: `Serve summary, record, map, export and run history endpoints. Redis,
Postgres and Kafka are used when REDIS_URL, DATABASE_URL and KAFKA_BROKERS
are set; otherwise the cache and run history stay in memory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if src != "" {
				cfg.Source.URL = src
			}
			policy.apply(cmd, &cfg.Policy)
			return serve(commandContext(cmd), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to BIZVERIFY_ADDR)")
	cmd.Flags().StringVar(&src, "source", "", "export URL (defaults to BIZVERIFY_SOURCE_URL)")
	policy.bind(cmd)
	return cmd
}

// serve wires dependencies and runs the HTTP server until SIGINT or SIGTERM.
func serve(ctx context.Context, cfg config.Config) error {
	log := logger.New(cfg.Log)
	if cfg.Source.URL == "" {
		return errors.New("BIZVERIFY_SOURCE_URL or --source is required")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checks := map[string]httptransport.HealthCheck{}

	var cache dataset.Cache = cachestore.NewInMemoryCache(cfg.Source.CacheTTL)
	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		cache = cachestore.NewRedisCache(rdb.Client, cfg.Source.CacheTTL)
		checks["redis"] = rdb.Health
		log.Info("using redis export cache")
	}

	var runs report.RunStore = runstore.NewInMemoryStore(inMemoryRunHistory)
	db, err := postgres.New(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		pgRuns := runstore.NewPostgres(db)
		if err := pgRuns.EnsureSchema(ctx); err != nil {
			return err
		}
		runs = pgRuns
		checks["postgres"] = db.PingContext
		log.Info("using postgres run history")
	}

	var pub report.RunPublisher = publisher.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := publisher.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kp.Close()
		if err := kp.EnsureTopic(ctx); err != nil {
			log.Warn("kafka topic not ensured", "topic", cfg.Kafka.Topic, "error", err)
		}
		pub = kp
		log.Info("publishing run events", "topic", cfg.Kafka.Topic)
	}

	normalizer, err := newNormalizer(cfg.Policy)
	if err != nil {
		return err
	}
	loader := dataset.NewLoader(
		dataset.NewHTTPSource(cfg.Source.URL, cfg.Source.Timeout),
		cache,
		dataset.WithLoaderLogger(log),
		dataset.WithFetchTimeout(cfg.Source.Timeout),
	)
	svc := report.New(loader,
		report.WithLogger(log),
		report.WithMetrics(reportmetrics.New(reg)),
		report.WithRunStore(runs),
		report.WithPublisher(pub),
		report.WithNormalizer(normalizer),
		report.WithRequireIdentity(cfg.Policy.RequireIdentity),
		report.WithStaleAfter(cfg.Source.CacheTTL),
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Checks:   checks,
		Modules:  []httptransport.Registrar{reporthandler.New(svc, log)},
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting bizverify", "addr", cfg.Server.Addr, "source", cfg.Source.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		warmUp(gctx, svc, log)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// warmUp loads the first snapshot so the first request does not pay for the
// fetch. A failure is only logged; requests retry the load.
func warmUp(ctx context.Context, svc *report.Service, log *slog.Logger) {
	if _, err := svc.Refresh(ctx); err != nil && ctx.Err() == nil {
		log.WarnContext(ctx, "initial refresh failed", "error", err)
	}
}
