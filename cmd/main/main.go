package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/echobridge/relay-backend/config"
	"github.com/echobridge/relay-backend/pkg/backend"
	"github.com/echobridge/relay-backend/pkg/handler"
	"github.com/echobridge/relay-backend/pkg/logger"
	"github.com/echobridge/relay-backend/pkg/middleware"
	"github.com/echobridge/relay-backend/pkg/repository"
	"github.com/echobridge/relay-backend/pkg/telegram"
	"github.com/echobridge/relay-backend/pkg/transcoder"

	database "github.com/echobridge/relay-backend/pkg/db"
	miniox "github.com/echobridge/relay-backend/pkg/minio"
	servicePkg "github.com/echobridge/relay-backend/pkg/service"
)

func main() {
	// gorm's autoUpdate will use local timezone by default, so we need to set it to UTC
	time.Local = time.UTC

	// Initialize config
	if err := config.Init(config.ParseConfigFlag()); err != nil {
		log.Fatal(err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	zapLogger, err := logger.GetZapLogger(ctx)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer func() {
		_ = zapLogger.Sync()
	}()

	db := database.GetConnection(&config.Config.Database)
	defer database.Close(db)

	redisClient := redis.NewClient(&config.Config.Cache.Redis.RedisOptions)
	defer redisClient.Close()

	minioClient, err := miniox.NewMinioClientAndInitBucket(ctx)
	if err != nil {
		zapLogger.Fatal("failed to initialize minio client", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	profileCache := repository.NewProfileCacheRepository(redisClient)
	telegramClient := telegram.NewClient(config.Config.Telegram)
	backendClient := backend.NewClient(config.Config.Backend)
	ffmpeg := transcoder.NewFFmpeg(config.Config.Transcoder)

	svc := servicePkg.NewService(
		repo,
		profileCache,
		telegramClient,
		backendClient,
		ffmpeg,
		minioClient,
		servicePkg.Options{
			LinkExpiration: config.Config.Minio.LinkExpiration,
			ProfileTTL:     config.Config.Cache.ProfileTTL,
			OAuth:          config.Config.OAuth,
		},
	)

	h := handler.NewHandler(svc, config.Config.Server.PipelineTimeout)

	router := mux.NewRouter()
	router.Use(middleware.AccessLog(zapLogger))
	router.HandleFunc("/webhook", h.Webhook).Methods(http.MethodPost)
	router.HandleFunc("/register", h.Register).Methods(http.MethodPost)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.Config.Server.Port),
		Handler: router,
	}

	go func() {
		zapLogger.Info("relay backend listening", zap.Int("port", config.Config.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
