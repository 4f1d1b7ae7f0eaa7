package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/wishboardapp/wishboard-backend/api/routes"
	authsvc "github.com/wishboardapp/wishboard-backend/internal/auth"
	"github.com/wishboardapp/wishboard-backend/internal/cache"
	productsvc "github.com/wishboardapp/wishboard-backend/internal/products"
	userssvc "github.com/wishboardapp/wishboard-backend/internal/users"
	wishlistsvc "github.com/wishboardapp/wishboard-backend/internal/wishlists"
	"github.com/wishboardapp/wishboard-backend/pkg/auth/session"
	"github.com/wishboardapp/wishboard-backend/pkg/config"
	"github.com/wishboardapp/wishboard-backend/pkg/db"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
	"github.com/wishboardapp/wishboard-backend/pkg/migrate"
	"github.com/wishboardapp/wishboard-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
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

	store, err := cache.New(redisClient, redisClient.CacheKey)
	if err != nil {
		logg.Error(context.Background(), "failed to create cache store", err)
		os.Exit(1)
	}

	usersRepo := userssvc.NewRepository(dbClient.DB())
	wishlistRepo := wishlistsvc.NewRepository(dbClient.DB())
	productRepo := productsvc.NewRepository(dbClient.DB())

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		DBPinger:    dbClient,
		RedisPinger: redisClient,
		AuthService: authsvc.NewService(dbClient, usersRepo, sessionManager, cfg, logg),
		UsersRepo:   usersRepo,
		Wishlists:   wishlistsvc.NewService(dbClient, wishlistRepo, usersRepo, store, logg),
		Products: productsvc.NewService(dbClient, productRepo, wishlistRepo, usersRepo,
			store, logg, cfg.Images.PublicBaseURL),
	})

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
		Addr:    addr,
		Handler: router,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
