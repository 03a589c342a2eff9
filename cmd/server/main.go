package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	claimhandler "claimd/internal/claim/handler"
	claimservice "claimd/internal/claim/service"
	"claimd/internal/claim/store"
	leveldbstore "claimd/internal/claim/store/leveldb"
	memorystore "claimd/internal/claim/store/memory"
	postgresstore "claimd/internal/claim/store/postgres"
	redisstore "claimd/internal/claim/store/redis"
	"claimd/internal/events"
	"claimd/internal/jwttoken"
	"claimd/internal/platform/clock"
	"claimd/internal/platform/config"
	"claimd/internal/platform/httpserver"
	"claimd/internal/platform/logger"
	"claimd/internal/platform/metrics"
	platformredis "claimd/internal/platform/redis"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal/claim.
func main() {
	if err := run(); err != nil {
		slog.Error("claimd exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	claims, cleanup, err := buildStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build claim store: %w", err)
	}
	defer cleanup()

	sink, sinkClose, err := buildSink(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("build event sink: %w", err)
	}

	m := metrics.New()
	clk := clock.NewInterval(time.Unix(0, 0).UTC(), cfg.ClockInterval)

	svc, err := claimservice.New(claims, clk, cfg.ProofLimit,
		claimservice.WithLogger(log),
		claimservice.WithMetrics(m),
		claimservice.WithEventSink(sink),
	)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, "claimd")

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())
	claimhandler.New(svc, log, tokens).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting claimd",
		"addr", cfg.Addr,
		"store", string(cfg.Store),
		"proof_limit", cfg.ProofLimit,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		if sinkClose != nil {
			return sinkClose(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

// buildStore selects the ClaimStore backend from configuration.
func buildStore(ctx context.Context, cfg config.Server) (store.ClaimStore, func(), error) {
	noop := func() {}
	switch cfg.Store {
	case config.StoreMemory:
		return memorystore.New(), noop, nil

	case config.StoreLevelDB:
		s, ds, err := leveldbstore.Open(cfg.LevelDBPath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = ds.Close() }, nil

	case config.StorePostgres:
		s, err := postgresstore.Open(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, nil, err
		}
		if err := s.EnsureSchema(ctx); err != nil {
			_ = s.Close()
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.StoreRedis:
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		if client == nil {
			return nil, nil, fmt.Errorf("CLAIMD_REDIS_URL is required for the redis store")
		}
		return redisstore.New(client.Client), func() { _ = client.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

// buildSink selects the event sink: Kafka when brokers are configured,
// structured logs otherwise.
func buildSink(ctx context.Context, cfg config.Server, log *slog.Logger) (events.Sink, func(context.Context) error, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NewLogSink(log), nil, nil
	}
	sink, err := events.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, log)
	if err != nil {
		return nil, nil, err
	}
	return sink, sink.Close, nil
}
