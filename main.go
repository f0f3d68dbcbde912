package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	appcart "github.com/mercato/shopcore/internal/application/cart"
	appcatalog "github.com/mercato/shopcore/internal/application/catalog"
	appcheckout "github.com/mercato/shopcore/internal/application/checkout"
	appcustomer "github.com/mercato/shopcore/internal/application/customer"
	appinv "github.com/mercato/shopcore/internal/application/inventory"
	apporder "github.com/mercato/shopcore/internal/application/order"
	apppayment "github.com/mercato/shopcore/internal/application/payment"
	"github.com/mercato/shopcore/internal/config"
	domcart "github.com/mercato/shopcore/internal/domain/cart"
	domcatalog "github.com/mercato/shopcore/internal/domain/catalog"
	domcustomer "github.com/mercato/shopcore/internal/domain/customer"
	dominv "github.com/mercato/shopcore/internal/domain/inventory"
	domorder "github.com/mercato/shopcore/internal/domain/order"
	domoutbox "github.com/mercato/shopcore/internal/domain/outbox"
	dompayment "github.com/mercato/shopcore/internal/domain/payment"
	"github.com/mercato/shopcore/internal/infrastructure/kafka"
	"github.com/mercato/shopcore/internal/infrastructure/memory"
	"github.com/mercato/shopcore/internal/infrastructure/outbox"
	"github.com/mercato/shopcore/internal/infrastructure/postgres"
	redisstore "github.com/mercato/shopcore/internal/infrastructure/redis"
	"github.com/mercato/shopcore/internal/observability"
	"github.com/mercato/shopcore/internal/pkg/logging"
	httpapi "github.com/mercato/shopcore/internal/presentation/http"
	"github.com/mercato/shopcore/internal/uow"
)

type stores struct {
	runner    uow.Runner
	orders    domorder.Repository
	payments  dompayment.Repository
	products  domcatalog.Repository
	customers domcustomer.Repository
	inventory dominv.Repository
}

func main() {
	cfg := config.Load()

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cleanup, err := buildStores(ctx, cfg)
	if err != nil {
		logger.Fatal("store init failed",
			zap.String("backend", cfg.StoreBackend),
			zap.Error(err))
	}
	defer cleanup()

	var carts domcart.Store
	if cfg.RedisAddr != "" {
		client, err := redisstore.Connect(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Fatal("redis init failed", zap.Error(err))
		}
		defer func() { _ = client.Close() }()
		carts = redisstore.NewCartStore(client)
		logger.Info("cart store backed by redis", zap.String("addr", cfg.RedisAddr))
	} else {
		carts = memory.NewCartStore()
	}

	var publisher domoutbox.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer func() { _ = kp.Close() }()
		publisher = kp
		logger.Info("events published to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
	} else {
		bus := outbox.NewBus(logger)
		bus.Start(ctx)
		defer bus.Stop()
		publisher = bus
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	ledger := appinv.NewService(st.inventory, st.runner, metrics)
	catalogSvc := appcatalog.NewService(st.products, ledger, st.runner)
	customerSvc := appcustomer.NewService(st.customers)
	orderSvc := apporder.NewService(st.orders, st.customers, st.products, st.payments, ledger, st.runner, publisher, metrics)
	paymentSvc := apppayment.NewService(st.orders, st.payments, ledger, apppayment.NewRandomDecider(cfg.ApproveRate), st.runner, publisher, metrics)
	cartSvc := appcart.NewService(carts, st.products, ledger)
	checkoutSvc := appcheckout.NewService(cartSvc, orderSvc, paymentSvc, st.runner, metrics)

	handler := httpapi.NewHandler(cartSvc, catalogSvc, checkoutSvc, customerSvc, ledger, orderSvc, paymentSvc, logger, metrics)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server start", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
		return
	}
	logger.Info("http server stopped")
}

func buildStores(ctx context.Context, cfg config.Config) (stores, func(), error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return stores{}, nil, err
		}
		return stores{
			runner:    postgres.NewRunner(db),
			orders:    postgres.NewOrderRepository(db),
			payments:  postgres.NewPaymentRepository(db),
			products:  postgres.NewProductRepository(db),
			customers: postgres.NewCustomerRepository(db),
			inventory: postgres.NewInventoryRepository(db),
		}, db.Close, nil
	default:
		return stores{
			runner:    memory.NewRunner(),
			orders:    memory.NewOrderRepository(),
			payments:  memory.NewPaymentRepository(),
			products:  memory.NewProductRepository(),
			customers: memory.NewCustomerRepository(),
			inventory: memory.NewInventoryRepository(),
		}, func() {}, nil
	}
}
