package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/minhnq/go-auth-service/internal/api"
	"github.com/minhnq/go-auth-service/internal/controller"
	"github.com/minhnq/go-auth-service/internal/migrations"
	"github.com/minhnq/go-auth-service/internal/service"
	"github.com/minhnq/go-auth-service/internal/storage/postgres"
	redisstore "github.com/minhnq/go-auth-service/internal/storage/redis"
	"github.com/minhnq/go-auth-service/internal/util"

	_ "github.com/lib/pq"
)

func main() {
	ctx := context.Background()
	logger := util.NewZapLogger()

	db, dbCleanup, err := util.NewDBConnection(logger)
	if err != nil {
		logger.Fatal(zap.Error(err))
	}
	if err := migrations.RunMigrations(db, logger, "./internal/migrations"); err != nil {
		logger.Fatal(zap.Error(err))
	}

	redisClient, redisCleanup, err := util.NewRedisClient(logger, util.NewRedisConfig())
	if err != nil {
		logger.Fatal(zap.Error(err))
	}

	apiKeyService := service.NewAPIKeyService(redisClient, logger)
	if err := apiKeyService.SyncTenantKeys(ctx); err != nil {
		logger.Fatal(zap.Error(err))
	}

	users := postgres.NewStorage(db)
	cleanupFuncs := []func(){dbCleanup, redisCleanup}

	sessionStore := redisstore.NewSessionStore(redisClient, util.NewStoreConfig().OpTimeout)
	tokenService := service.NewTokenService(util.NewTokenConfig())
	credentialService := service.NewUserCredentialService(users, logger)
	webhookService := service.NewWebhookService(logger, util.GetWebhookURL())
	authService := service.NewAuthService(tokenService, sessionStore, credentialService, credentialService, webhookService, logger)

	ctrl := controller.NewController(logger, authService, credentialService)

	apiServer := api.NewAPI(ctrl, authService, apiKeyService, util.NewServerConfig(), logger, cleanupFuncs)
	apiServer.Run(ctx)
}
