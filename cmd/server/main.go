package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	api "github.com/gametopup/storefront/api/echo"
	"github.com/gametopup/storefront/config"
	"github.com/gametopup/storefront/internal/auth"
	"github.com/gametopup/storefront/internal/cart"
	"github.com/gametopup/storefront/internal/notify"
	"github.com/gametopup/storefront/internal/payment"
	"github.com/gametopup/storefront/log"
	"github.com/gametopup/storefront/middleware"
	"github.com/gametopup/storefront/mongodb"
	"github.com/gametopup/storefront/services"
	"github.com/gametopup/storefront/tracing"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	logLevel, parseErr := zerolog.ParseLevel(cfg.LogLevel)
	if parseErr != nil {
		logLevel = zerolog.InfoLevel
	}
	appLogger := log.NewZerologAdapter(logLevel, cfg.LogPretty)

	ctx := context.Background()
	appLogger.Info(ctx, "starting topup-store server", map[string]any{
		"http_port":     cfg.HTTPPort,
		"env":           cfg.Env,
		"mongo_db_name": cfg.MongoDBName,
		"log_level":     logLevel.String(),
	})

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize tracer provider", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			appLogger.Error(shutdownCtx, "tracer provider shutdown failed", err)
		}
	}()

	mongoClient, db, err := mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to mongodb", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			appLogger.Error(ctx, "mongodb disconnect failed", err)
		}
	}()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		appLogger.Fatal(ctx, "failed to connect to redis", err)
	}
	defer rdb.Close()

	userRepo, err := mongodb.NewUserRepository(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize user repository", err)
	}
	productRepo := mongodb.NewProductRepository(db)
	orderRepo, err := mongodb.NewOrderRepository(ctx, db)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize order repository", err)
	}

	tokens, err := services.NewTokenService(cfg.JWTSecretKey)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize token service", err)
	}

	var sender services.OTPSender
	if cfg.WAGatewayURL != "" {
		sender = notify.NewWhatsAppSender(cfg.WAGatewayURL, cfg.WAGatewayToken)
	} else {
		appLogger.Warn(ctx, "no WhatsApp gateway configured, OTP delivery disabled")
		sender = notify.NopSender{}
	}

	authService := services.NewAuthService(userRepo, auth.NewArgon2Hasher(), tokens, sender,
		services.WithOTPTTL(time.Duration(cfg.OTPTTLMinutes)*time.Minute),
		services.WithSessionTTL(time.Duration(cfg.SessionTTLHours)*time.Hour),
	)
	catalogService := services.NewCatalogService(productRepo)
	defer catalogService.Stop()

	cartStore := cart.NewStore(rdb)
	invoiceClient := payment.NewClient(cfg.PaymentAPIURL, cfg.PaymentAPIKey)
	orderService := services.NewOrderService(orderRepo, productRepo, cartStore, invoiceClient)

	cookies := middleware.NewCookieWriter(cfg.IsProduction())

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	if cfg.PaymentCallbackToken == "" {
		appLogger.Warn(ctx, "no payment callback token configured, invoice webhooks will be rejected")
	}
	storefrontAPI := api.NewAPI(
		authService, catalogService, orderService, cartStore, cookies,
		cfg.PaymentCallbackToken,
	)
	storefrontAPI.RegisterRoutes(e)

	go func() {
		if err := e.Start(":" + cfg.HTTPPort); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal(ctx, "http server failed", err)
		}
	}()
	appLogger.Info(ctx, "http server listening", map[string]any{"port": cfg.HTTPPort})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "http server shutdown failed", err)
	}
}
