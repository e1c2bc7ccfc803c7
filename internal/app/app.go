package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/partstore/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/partstore/internal/health"
	"github.com/vladislavdragonenkov/partstore/internal/httpapi"
	"github.com/vladislavdragonenkov/partstore/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/partstore/internal/metrics"
	"github.com/vladislavdragonenkov/partstore/internal/storage/memory"
	"github.com/vladislavdragonenkov/partstore/internal/storage/postgres"
	"github.com/vladislavdragonenkov/partstore/internal/version"
)

// Run собирает зависимости и держит оба HTTP-сервера до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	intakeMetrics := metrics.NewIntakeMetrics()
	healthHandler := healthcheck.NewHandler(version.String())

	orderRepo, productRepo, store, err := initStorage(ctx, cfg, logger, healthHandler)
	if err != nil {
		return err
	}
	if store != nil {
		defer func() {
			if err := store.Close(); err != nil {
				logger.WithError(err).Warn("failed to close postgres store")
			}
		}()
	}

	// Kafka опционален: без брокеров сервис работает, просто не публикует события.
	var events httpapi.EventPublisher
	var producer *kafka.Producer
	if cfg.KafkaBrokers != "" {
		brokers := strings.Split(cfg.KafkaBrokers, ",")
		p, err := kafka.NewProducer(brokers)
		if err != nil {
			logger.WithError(err).Warn("failed to create kafka producer, continuing without kafka")
		} else {
			producer = p
			events = p
			logger.WithField("brokers", brokers).Info("kafka producer initialized")
		}
	}
	defer func() {
		if producer == nil {
			return
		}
		if err := producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		}
	}()

	ordersHandler := httpapi.NewOrdersHandler(orderRepo, events, intakeMetrics, logger.WithField("layer", "httpapi"))
	productsHandler := httpapi.NewProductsHandler(productRepo, events, intakeMetrics, logger.WithField("layer", "httpapi"))

	mux := http.NewServeMux()
	mux.Handle("/orders", httpapi.Instrument("orders", intakeMetrics, logger, ordersHandler))
	mux.Handle("/products", httpapi.Instrument("products", intakeMetrics, logger, productsHandler))
	mux.Handle("/products/sync", httpapi.Instrument("products", intakeMetrics, logger, productsHandler))

	apiSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: mux}
	opsSrv := startOpsServer(ctx, cfg.OpsAddr, logger, healthHandler)

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("HTTP API слушает %s", cfg.HTTPAddr)
		errCh <- apiSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(opsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(opsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// initStorage выбирает реализацию хранилища: PostgreSQL при заданном DSN,
// иначе in-memory для локальной разработки.
func initStorage(
	ctx context.Context,
	cfg Config,
	logger *log.Entry,
	healthHandler *healthcheck.Handler,
) (domain.OrderRepository, domain.ProductRepository, *postgres.Store, error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("postgres DSN is empty, using in-memory storage")
		return memory.NewOrderRepository(),
			memory.NewProductRepository(memory.SampleCatalog()),
			nil, nil
	}

	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.AutoMigrate {
		if err := store.MigrateUp(ctx, 0); err != nil {
			_ = store.Close()
			return nil, nil, nil, err
		}
	}

	healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return store.Ping(pingCtx)
	}))

	logger.Info("postgres storage initialized")
	return postgres.NewOrderRepository(store), postgres.NewProductRepository(store), store, nil
}

// startOpsServer запускает служебный HTTP-сервер: метрики и health-чеки.
func startOpsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("ops server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
