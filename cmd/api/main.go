package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/piyol1998/stokcer-sub001/internal/cart"
	"github.com/piyol1998/stokcer-sub001/internal/cartstore"
	"github.com/piyol1998/stokcer-sub001/internal/client"
	"github.com/piyol1998/stokcer-sub001/internal/config"
	"github.com/piyol1998/stokcer-sub001/internal/handler"
	"github.com/piyol1998/stokcer-sub001/internal/logger"
	"github.com/piyol1998/stokcer-sub001/internal/metrics"
	"github.com/piyol1998/stokcer-sub001/internal/notify"
	"github.com/piyol1998/stokcer-sub001/internal/repository"
	"github.com/piyol1998/stokcer-sub001/internal/server"
	"github.com/piyol1998/stokcer-sub001/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := client.NewDBClient(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatal("database init failed", zap.Error(err))
	}

	catalogRepo := repository.NewCatalogRepository(db)
	planRepo := repository.NewPlanRepository(db)
	sessionRepo := repository.NewCheckoutSessionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	if err := catalogRepo.Seed(ctx); err != nil {
		log.Fatal("seed catalog failed", zap.Error(err))
	}
	if err := planRepo.Seed(ctx); err != nil {
		log.Fatal("seed plans failed", zap.Error(err))
	}

	backend, err := newCartBackend(ctx, cfg)
	if err != nil {
		log.Fatal("cart store init failed", zap.Error(err))
	}

	paymentClient, err := newPaymentClient(cfg, log)
	if err != nil {
		log.Fatal("payment client init failed", zap.Error(err))
	}

	publisher := newPublisher(cfg, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	formatter, err := cart.NewFormatter(cfg.Store.Currency, cfg.Store.Locale)
	if err != nil {
		log.Fatal("currency formatter init failed", zap.Error(err))
	}

	reconcileService := service.NewReconcileService(
		sessionRepo,
		webhookEventRepo,
		paymentClient,
		publisher,
		service.ReconcileSettings{
			Interval: cfg.Reconcile.Interval,
			MinAge:   cfg.Reconcile.MinAge,
		},
		m,
		log,
	)

	cartService := service.NewCartService(
		cartstore.NewCartStore(backend, log),
		catalogRepo,
		m,
		log,
		func(_ context.Context, sessionID string) {
			log.Debug("cart opened", zap.String("session_id", sessionID))
		},
	)

	checkoutService := service.NewCheckoutService(
		paymentClient,
		planRepo,
		sessionRepo,
		cartService,
		reconcileService,
		publisher,
		service.NewOrderIDGenerator(time.Now),
		cfg.Store.Currency,
		m,
		log,
	)

	if cfg.Reconcile.Enabled {
		go reconcileService.Run(ctx)
	}

	srv := server.NewServer(server.Handlers{
		Cart:     handler.NewCartHandler(cartService, formatter),
		Catalog:  handler.NewCatalogHandler(catalogRepo, planRepo, formatter),
		Checkout: handler.NewCheckoutHandler(checkoutService, cfg.HTTP.CheckoutTimeout),
		Webhook:  handler.NewWebhookHandler(reconcileService, log),
	}, server.Options{
		Logger:       log,
		Gatherer:     reg,
		SessionTTL:   cfg.CartStore.TTL,
		SecureCookie: cfg.Environment.Name == "production",
	})

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Info("starting HTTP server",
		zap.String("addr", serverAddr),
		zap.String("provider", paymentClient.Name()),
		zap.String("cart_store", cfg.CartStore.Driver))
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		log.Warn("close publisher", zap.Error(err))
	}
	if err := backend.Close(); err != nil {
		log.Warn("close cart store", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func newCartBackend(ctx context.Context, cfg *config.Config) (cartstore.Backend, error) {
	switch cfg.CartStore.Driver {
	case "redis":
		rdb, err := client.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		return cartstore.NewRedisBackend(rdb, cfg.CartStore.TTL), nil
	case "bolt":
		return cartstore.NewBoltBackend(cfg.CartStore.BoltPath)
	default:
		return nil, fmt.Errorf("unsupported cart store driver %q", cfg.CartStore.Driver)
	}
}

func newPaymentClient(cfg *config.Config, log *zap.Logger) (client.PaymentClient, error) {
	if cfg.Payment.Mode == "fake" {
		log.Warn("payment provider running in fake mode", zap.String("provider", cfg.Payment.Provider))
		return client.NewFakeClient(cfg.Payment.Provider, cfg.BaseURL), nil
	}

	var inner client.PaymentClient
	switch cfg.Payment.Provider {
	case client.MidtransProvider:
		inner = client.NewMidtransClient(&cfg.Midtrans)
	case client.StripeProvider:
		inner = client.NewStripeClient(&cfg.Stripe, cfg.BaseURL)
	case client.BraintreeProvider:
		inner = client.NewBraintreeClient(&cfg.BrainTree)
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Payment.Provider)
	}

	return client.WithBreaker(inner, client.DefaultBreakerSettings, log), nil
}

func newPublisher(cfg *config.Config, log *zap.Logger) notify.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		return notify.NewLogPublisher(log)
	}
	return notify.NewKafkaPublisher(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
}
