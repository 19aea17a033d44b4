package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"salonpos-backend/config"
	"salonpos-backend/routes"
	"salonpos-backend/services"
	"salonpos-backend/utils"

	"cloud.google.com/go/pubsub"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := config.NewLogger(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.ConnectDB(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}

	calendar, err := utils.LoadCalendar(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}
	tokens := utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)

	users := services.NewUserService(db, logger)
	if err := users.SeedAdmin(ctx, cfg.Seed); err != nil {
		return err
	}

	var push services.PushSender
	if cfg.Firebase.Enabled() {
		fcm, err := services.NewFCMPushSender(ctx, cfg.Firebase)
		if err != nil {
			return err
		}
		push = fcm
	} else {
		logger.Warn("push notifications disabled: firebase not configured")
	}

	var sms services.SMSSender
	if cfg.Twilio.Enabled() {
		sms = services.NewTwilioSMSSender(cfg.Twilio, logger)
	} else {
		logger.Warn("sms notifications disabled: twilio not configured")
	}

	var registry services.RegistryLookup
	if cfg.Registry.URL != "" {
		registry = services.NewRegistryClient(cfg.Registry.URL, cfg.Registry.Token)
	} else {
		logger.Warn("dni registry lookup disabled: REGISTRY_API_URL not set")
	}

	var revoker services.TokenRevoker
	if cfg.RedisURL != "" {
		redisRevoker, err := services.NewRedisTokenRevoker(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer redisRevoker.Close()
		revoker = redisRevoker
	} else {
		logger.Warn("refresh token revocation disabled: REDIS_URL not set")
	}

	receipts, closeReceipts, err := buildReceiptDelivery(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeReceipts()

	hub := services.NewRealtimeHub()
	outbox := services.NewOutboxDispatcher(db, push, sms, cfg.Outbox.MaxAttempts, logger)
	scheduler, err := outbox.StartScheduler(cfg.Outbox.Schedule)
	if err != nil {
		return err
	}
	defer scheduler.Stop()

	notifier := services.NewOrderNotifier(hub, outbox, logger)
	clients := services.NewClientService(db, registry, calendar, logger)
	treatments := services.NewTreatmentService(db)

	r := routes.SetupRouter(routes.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Tokens:     tokens,
		Auth:       services.NewAuthService(db, tokens, revoker, logger),
		Users:      users,
		Shops:      services.NewShopService(db),
		Clients:    clients,
		Treatments: treatments,
		Orders:     services.NewOrderService(db, clients, treatments, notifier, receipts, calendar, logger),
		Dashboard:  services.NewDashboardService(db, calendar),
		Hub:        hub,
	})
	if !cfg.IsProduction() {
		printRoutes(r)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildReceiptDelivery returns the configured receipt channel, or nil when none is usable.
func buildReceiptDelivery(ctx context.Context, cfg *config.Config, logger *zap.Logger) (services.ReceiptDelivery, func(), error) {
	noop := func() {}

	switch cfg.Receipts.Delivery {
	case config.ReceiptDeliveryDeferred:
		client, err := pubsub.NewClient(ctx, cfg.Receipts.PubSubProject)
		if err != nil {
			return nil, noop, fmt.Errorf("pubsub client: %w", err)
		}
		topic := client.Topic(cfg.Receipts.PubSubTopic)
		publisher, err := services.NewPubSubReceiptPublisher(topic, logger)
		if err != nil {
			_ = client.Close()
			return nil, noop, err
		}
		return publisher, func() {
			topic.Stop()
			_ = client.Close()
		}, nil
	default:
		if !cfg.SMTP.Enabled() {
			logger.Warn("receipt email disabled: SMTP credentials not configured")
			return nil, noop, nil
		}
		renderer := services.NewReceiptRenderer(cfg.Receipts.LogoPath)
		return services.NewEmailReceiptDelivery(renderer, services.NewSMTPMailer(cfg.SMTP)), noop, nil
	}
}

func printRoutes(r *gin.Engine) {
	for _, route := range r.Routes() {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
