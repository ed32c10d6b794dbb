package main

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/zap"

	"academic-portal/core"
)

func main() {
	cfg, err := core.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	ctx := context.Background()

	logger, logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()
	defer logger.Sync()

	db, err := core.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := core.ApplySchema(ctx, db); err != nil {
			logger.Fatal("failed to apply schema", zap.Error(err))
		}
	}

	// Login throttling is optional; without Redis every attempt is checked.
	var limiter *core.LoginLimiter
	if cfg.RedisURL != "" {
		redisClient, err := core.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
		limiter = core.NewLoginLimiter(redisClient, cfg.LoginMaxFailures, cfg.LoginLockout)
	}

	codec, err := core.NewSessionCodec([]byte(cfg.SessionKey))
	if err != nil {
		logger.Fatal("invalid session key", zap.Error(err))
	}

	userRepo := core.NewPgUserRepository(db)
	authService := core.NewCredentialVerifier(userRepo, cfg.PasswordScheme)
	reports := core.NewReportService(core.NewPgReportRepository(db))

	if err := core.BootstrapAdmin(ctx, userRepo, cfg, logger); err != nil {
		logger.Fatal("bootstrap admin failed", zap.Error(err))
	}

	router := core.NewRouter(cfg, codec, authService, reports, limiter, logger)

	addr := fmt.Sprintf(":%s", cfg.Port)
	logger.Info("starting api server", zap.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
