package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gigadev/qr-order-backend/api/routes"
	authsvc "github.com/gigadev/qr-order-backend/internal/auth"
	"github.com/gigadev/qr-order-backend/internal/orders"
	"github.com/gigadev/qr-order-backend/internal/products"
	"github.com/gigadev/qr-order-backend/internal/stores"
	"github.com/gigadev/qr-order-backend/internal/users"
	"github.com/gigadev/qr-order-backend/pkg/auth/session"
	"github.com/gigadev/qr-order-backend/pkg/config"
	"github.com/gigadev/qr-order-backend/pkg/db"
	"github.com/gigadev/qr-order-backend/pkg/logger"
	"github.com/gigadev/qr-order-backend/pkg/migrate"
	"github.com/gigadev/qr-order-backend/pkg/redis"
	"github.com/gigadev/qr-order-backend/pkg/toss"
	"github.com/joho/godotenv"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	tossClient, err := toss.NewClient(context.Background(), cfg.Toss, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create toss client", err)
		os.Exit(1)
	}

	productsRepo := products.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(users.NewRepository(dbClient.DB()), sessionManager, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(stores.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create store service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(productsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	orderService, err := orders.NewService(orders.NewRepository(dbClient.DB()), productsRepo, dbClient, tossClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			storeService,
			productService,
			orderService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
