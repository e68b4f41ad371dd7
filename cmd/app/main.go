package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	dbadapter "contentstaging/internal/adapters/database"
	"contentstaging/internal/adapters/httpapi"
	redisadapter "contentstaging/internal/adapters/redis"
	"contentstaging/internal/config"
	postapp "contentstaging/internal/core/post/service"
	"contentstaging/internal/workers"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := config.InitLogger(cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	logger := config.Logger
	defer logger.Sync() // flush buffer
	if !cfg.EnvFileLoaded {
		logger.Info("No .env file found, using system environment variables")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	db, err := config.InitDB(cfg.DBDSN, logger)
	if err != nil {
		logger.Fatal("Error connecting to the database", zap.Error(err))
	}
	redisClient, err := config.InitRedis(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Error connecting to Redis", zap.Error(err))
	}

	// بستن منابع بعد از اتمام کار سرور
	defer closeResources(logger, db, redisClient)

	postRepo := dbadapter.NewPostRepositoryDatabase(db, cfg.PostsTable(), dbadapter.WithLogger(logger)) // آداپتر خروجی
	selectionRepo := redisadapter.NewSelectionRepositoryRedis(redisClient, logger)                       // آداپتر خروجی
	changeFeed := redisadapter.NewChangeFeedRedis(redisClient, logger)                                   // آداپتر خروجی
	postSvc := postapp.NewPostService(postRepo, selectionRepo, changeFeed, logger)                       // یوزکیس/سرویس
	r := httpapi.SetupRoutes(postSvc, postSvc, []byte(cfg.JWTSecret), cfg.SiteLocation, logger)          // تزریق یوزکیس به آداپتر ورودی

	changeFeedWorker := workers.NewChangeFeedWorker(postRepo, changeFeed, cfg.BatchSize, cfg.ChangeFeedInterval, logger)
	go changeFeedWorker.Run(ctx)

	srv := &http.Server{Addr: ":" + cfg.AppPort, Handler: r}
	go func() {
		logger.Info("App is running...", zap.String("table", cfg.PostsTable()), zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", zap.Error(err))
			cancel()
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error shutting down server", zap.Error(err))
	}
}

// closeResources بستن اتصالات به Redis و دیتابیس
func closeResources(logger *zap.Logger, db *gorm.DB, redisClient *redis.Client) {
	if err := redisClient.Close(); err != nil {
		logger.Error("Error closing Redis connection", zap.Error(err))
	}

	sqlDB, err := db.DB() // گرفتن *sql.DB از *gorm.DB
	if err != nil {
		logger.Error("Error getting raw DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Error("Error closing database connection", zap.Error(err))
	}
}
