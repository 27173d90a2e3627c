package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dramabox_webapp/internal/bot"
	"dramabox_webapp/internal/config"
	"dramabox_webapp/internal/db"
	httpServer "dramabox_webapp/internal/http"
	"dramabox_webapp/internal/http/middleware"
	"dramabox_webapp/internal/keepalive"
	"dramabox_webapp/internal/logger"
	"dramabox_webapp/internal/repository"
	"dramabox_webapp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")

	cfg := config.Load()
	service.InitJWT(cfg.JWTSecret)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Бот строится явно и передаётся дальше: админ-команды, уведомления и
	// supervisor живут на одном экземпляре, без глобального состояния.
	// Подключение к Telegram происходит уже внутри supervisor'а.
	var notifier service.Notifier
	var botSup *bot.Supervisor
	if cfg.BotEnabled {
		b := bot.New(cfg,
			repository.NewUserRepository(dbPool),
			repository.NewSubscriptionRepository(dbPool),
			repository.NewReportRepository(dbPool),
		)
		notifier = b

		botSup = bot.NewSupervisor("telegram-bot", b.Run)
		botSup.Start(ctx)
	} else {
		logger.Warn("bot disabled, notifications will be skipped")
	}

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Saweria-Callback-Signature")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthHandler := httpServer.RegisterRoutes(r, dbPool, cfg, notifier, version)
	if botSup != nil {
		healthHandler.SetBotStatus(botSup.Status)
	}

	if cfg.KeepAliveEnabled {
		keepalive.Start(ctx, cfg.WebAppURL)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}
	if botSup != nil {
		botSup.Wait(10 * time.Second)
	}

	logger.Info("server exited")
}
