// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dispatch-workers/internal/allocation"
	"dispatch-workers/internal/audit"
	"dispatch-workers/internal/common/aws"
	"dispatch-workers/internal/common/camunda"
	"dispatch-workers/internal/common/config"
	"dispatch-workers/internal/common/database"
	apperrors "dispatch-workers/internal/common/errors"
	"dispatch-workers/internal/common/logger"
	"dispatch-workers/internal/common/observability"
	"dispatch-workers/internal/store"
	"dispatch-workers/internal/workers/jobutil"
	"dispatch-workers/pkg/registry"
)

const shutdownTimeout = 30 * time.Second

var connectRetry = &camunda.RetryConfig{
	MaxRetries: 15,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// backends holds the connections opened at startup. Any of them may be nil
// when the configuration does not need it.
type backends struct {
	postgres *database.PostgresClient
	redis    *database.RedisClient
	es       *database.ElasticsearchClient
}

func (b *backends) Close() {
	if b.postgres != nil {
		_ = b.postgres.Close()
	}
	if b.redis != nil {
		_ = b.redis.Close()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting worker manager", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"store":       cfg.Allocation.Store,
	})

	obs := observability.New(observability.Options{
		ServiceName:    cfg.Observability.ServiceName,
		JaegerEndpoint: cfg.Observability.JaegerEndpoint,
	}, log)
	defer obs.Shutdown()

	ctx := context.Background()

	reg, err := registry.LoadOrDefault(cfg.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	if errs := reg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			log.Error("activity registry invalid", map[string]interface{}{"error": e.Error()})
		}
		zapLog.Fatal("activity registry failed validation", zap.Int("errors", len(errs)))
	}

	zeebe, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
		GatewayAddress:         cfg.Camunda.BrokerAddress,
		UsePlaintextConnection: true,
		ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
	}, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer zeebe.Close()

	conns, err := connect(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("backend connection failed", zap.Error(err))
	}
	defer conns.Close()

	recordStore, err := buildStore(ctx, cfg, conns, log)
	if err != nil {
		zapLog.Fatal("record store setup failed", zap.Error(err))
	}

	sink, err := buildAuditSink(ctx, cfg, conns, log)
	if err != nil {
		zapLog.Fatal("audit sink setup failed", zap.Error(err))
	}

	service := allocation.NewService(recordStore, audit.NewRecorder(sink, log, audit.WithWriteTimeout(cfg.Audit.WriteTimeout)), log, allocation.Options{
		HistoryLimit: cfg.Allocation.HistoryLimit,
	})

	deps := jobutil.Deps{
		Logger:        log,
		Observability: obs,
		Errors:        apperrors.NewErrorHandler(log),
	}

	pool := camunda.NewWorkerPool(zeebe.GetClient(), log)
	if err := registerWorkers(pool, cfg, reg, service, deps); err != nil {
		zapLog.Fatal("worker registration failed", zap.Error(err))
	}
	log.Info("workers registered", map[string]interface{}{"taskTypes": pool.TaskTypes()})

	server := healthServer(cfg.App.HealthAddr, zeebe, conns)
	go func() {
		log.Info("health/metrics server listening", map[string]interface{}{"addr": cfg.App.HealthAddr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health/metrics server failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, stopping workers", nil)
	pool.Close(shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	log.Info("worker manager stopped", nil)
}

// connect opens the backends the configuration asks for, retrying each
// until it answers a ping.
func connect(ctx context.Context, cfg *config.Config, log logger.Logger) (*backends, error) {
	b := &backends{}

	if cfg.Allocation.Store == config.StorePostgres || cfg.Audit.PostgresEnabled {
		err := camunda.RetryWithBackoff(ctx, connectRetry, log, "postgres connection", func(ctx context.Context) error {
			pg, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := pg.Ping(ctx); err != nil {
				_ = pg.Close()
				return err
			}
			b.postgres = pg
			return nil
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		log.Info("postgres connected", nil)
	}

	if cfg.Database.Redis.Address != "" {
		err := camunda.RetryWithBackoff(ctx, connectRetry, log, "redis connection", func(ctx context.Context) error {
			rdb, err := database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := rdb.Ping(ctx); err != nil {
				_ = rdb.Close()
				return err
			}
			b.redis = rdb
			return nil
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		log.Info("redis connected", nil)
	}

	if cfg.Audit.ElasticsearchEnabled {
		err := camunda.RetryWithBackoff(ctx, connectRetry, log, "elasticsearch connection", func(ctx context.Context) error {
			es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := es.Ping(ctx); err != nil {
				return err
			}
			b.es = es
			return nil
		})
		if err != nil {
			b.Close()
			return nil, err
		}
		log.Info("elasticsearch connected", nil)
	}

	return b, nil
}

func buildStore(ctx context.Context, cfg *config.Config, conns *backends, log logger.Logger) (store.HistoryStore, error) {
	opts := store.TxOptions{
		MaxRetries: cfg.Allocation.TransactMaxRetries,
		BaseDelay:  cfg.Allocation.TransactBaseDelay,
	}

	var records store.HistoryStore
	switch cfg.Allocation.Store {
	case config.StoreMemory:
		log.Warn("using in-process record store; data is lost on restart", nil)
		records = store.NewMemoryStore(opts)
	default:
		if err := conns.postgres.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		records = store.NewPostgresStore(conns.postgres.DB, opts, log)
	}

	if conns.redis == nil {
		return records, nil
	}
	return store.NewCachedStore(records, conns.redis.Client, cfg.Allocation.HistoryCacheTTL, log), nil
}

// buildAuditSink fans allocation events out to every enabled sink. It
// returns nil when none is enabled.
func buildAuditSink(ctx context.Context, cfg *config.Config, conns *backends, log logger.Logger) (audit.Sink, error) {
	var sinks audit.MultiSink

	if cfg.Audit.PostgresEnabled {
		if cfg.Allocation.Store != config.StorePostgres {
			if err := conns.postgres.EnsureSchema(ctx); err != nil {
				return nil, err
			}
		}
		sinks = append(sinks, audit.NewPostgresSink(conns.postgres.DB))
	}

	if cfg.Audit.ElasticsearchEnabled {
		if err := conns.es.EnsureIndex(ctx, cfg.Audit.ElasticsearchIndex, audit.IndexMapping); err != nil {
			return nil, err
		}
		sinks = append(sinks, audit.NewElasticsearchSink(conns.es.Client, cfg.Audit.ElasticsearchIndex))
	}

	if cfg.Audit.SNSEnabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Audit.AWSRegion)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, audit.NewSNSSink(snsClient, cfg.Audit.SNSTopicARN))
	}

	names := make([]string, len(sinks))
	for i, s := range sinks {
		names[i] = s.Name()
	}
	log.Info("audit sinks configured", map[string]interface{}{"sinks": names})

	if len(sinks) == 0 {
		return nil, nil
	}
	return sinks, nil
}

func healthServer(addr string, zeebe *camunda.Client, conns *backends) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		ready := true
		check := func(name string, err error) {
			if err != nil {
				checks[name] = err.Error()
				ready = false
				return
			}
			checks[name] = "ok"
		}
		check("zeebe", zeebe.HealthCheck(ctx))
		if conns.postgres != nil {
			check("postgres", conns.postgres.Ping(ctx))
		}
		if conns.redis != nil {
			check("redis", conns.redis.Ping(ctx))
		}

		status := http.StatusOK
		checks["status"] = "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			checks["status"] = "not ready"
		}
		writeStatus(w, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
