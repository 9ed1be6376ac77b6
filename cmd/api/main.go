// Package main はWebサーバーのエントリーポイントです。
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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/user-portal/internal/auth"
	"github.com/yourusername/user-portal/internal/config"
	"github.com/yourusername/user-portal/internal/database"
	"github.com/yourusername/user-portal/internal/logging"
	"github.com/yourusername/user-portal/internal/users"
	"github.com/yourusername/user-portal/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Printf("server stopped: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	if cfg.SessionSecretGenerated {
		logger.Warn("SESSION_SECRET is not set; using a random key (sessions will not survive restarts)")
	}

	// Ginのモードを設定
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// DB接続とスキーマ作成
	db, err := database.Open(database.Options{
		Driver: cfg.DatabaseDriver,
		URL:    cfg.DatabaseURL,
		Debug:  cfg.Debug,
		Logger: logger,
	})
	if err != nil {
		return err
	}
	defer database.Close(db)

	limiter, closeLimiter, err := setupLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	store := users.NewStore(db)
	sessionManager := auth.NewSessionManager(store, auth.SessionOptions{
		MaxLifetime: cfg.SessionMaxAge,
		IdleTimeout: cfg.SessionIdleTimeout,
	})

	router, err := web.NewRouter(cfg, web.Dependencies{
		Auth:     auth.NewService(store, auth.NewBcryptHasher(cfg.BcryptCost), limiter),
		Sessions: sessionManager,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.Bool("debug", cfg.Debug))
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

// setupLimiter はログイン試行制限を構築します。Redis URL が設定されていれば Redis を使います。
func setupLimiter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (auth.Limiter, func(), error) {
	opts := auth.DefaultLimiterOptions()
	opts.MaxAttempts = cfg.LoginMaxAttempts

	if cfg.LoginLimiterRedisURL == "" {
		return auth.NewMemoryLimiter(opts), func() {}, nil
	}

	client, err := auth.NewRedisClient(ctx, cfg.LoginLimiterRedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using redis login limiter")
	return auth.NewRedisLimiter(client, opts), func() { _ = client.Close() }, nil
}
