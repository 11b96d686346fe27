package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"easy_admin/internal/config"
	"easy_admin/internal/entities"
	"easy_admin/internal/infrastructure"
	"easy_admin/internal/interfaces"
	api "easy_admin/internal/interfaces/http"
	"easy_admin/internal/logger"
	"easy_admin/internal/repository"
	"easy_admin/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("invalid configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "easy-admin")
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg.Store, log)
	if err != nil {
		log.Fatal("failed to open store", zap.String("driver", string(cfg.Store.Driver)), zap.Error(err))
	}
	defer closer.Close()
	log.Info("store ready", zap.String("driver", string(cfg.Store.Driver)))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := infrastructure.NewMetrics(registry)

	authUsecase := usecases.NewAuthUsecase(store, store, cfg.JWTSecret, log)
	if cfg.Admin.Password != "" {
		if err := authUsecase.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Warn("failed to ensure admin account", zap.Error(err))
		}
	} else {
		log.Warn("ADMIN_PASSWORD not set, skipping admin bootstrap")
	}

	limiter := infrastructure.NewMessageRateLimiter(cfg.Limits.MessageRate, cfg.Limits.MessageBurst)
	defer limiter.Stop()

	accessUsecase := usecases.NewAccessUsecase(store, limiter, metrics, log)

	var notifier *infrastructure.TelegramNotifier
	if cfg.Telegram.BotToken != "" {
		notifier = infrastructure.NewTelegramNotifier(cfg.Telegram.BotToken, log)
	}
	telegramGate := usecases.NewTelegramGate(accessUsecase, notifier, infrastructure.NewContactPrompts(cfg.Telegram.PromptInterval), log)
	if cfg.Telegram.Mode == config.TelegramPolling {
		poller, err := infrastructure.NewTelegramPoller(notifier, telegramGate.Poll, log)
		if err != nil {
			log.Warn("Telegram polling disabled", zap.Error(err))
		} else {
			go poller.Run(ctx)
		}
	}

	deps := api.Deps{
		Companies:    usecases.NewCompanyUsecase(store, metrics, log),
		Auth:         authUsecase,
		Access:       accessUsecase,
		Telegram:     telegramGate,
		Metrics:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:       log,
		MaxBodyBytes: cfg.Limits.MaxBodyBytes,
	}

	if cfg.WhatsAppDeviceDB != "" {
		whatsapp, err := infrastructure.NewWhatsAppGateway(ctx, cfg.WhatsAppDeviceDB, func(ctx context.Context, from, content string) string {
			return accessUsecase.WhatsAppReply(ctx, entities.Message{From: from, Content: content, Platform: usecases.PlatformWhatsApp})
		}, log)
		if err != nil {
			log.Fatal("failed to open WhatsApp device", zap.Error(err))
		}
		if err := whatsapp.Connect(ctx); err != nil {
			log.Error("WhatsApp connect failed", zap.Error(err))
		}
		defer whatsapp.Disconnect()
		deps.WhatsApp = whatsapp
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	api.SetupRoutes(r, deps, api.NewMiddleware(cfg.JWTSecret, log))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

var nopCloser = closerFunc(func() error { return nil })

// openStore builds the persistence backend named by cfg.Driver
func openStore(ctx context.Context, cfg config.StoreConfig, log *zap.Logger) (interfaces.Store, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		pg, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(pg.Pool), closerFunc(func() error { pg.Close(); return nil }), nil

	case config.DriverSQLite:
		db, err := repository.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		kv, err := repository.NewSQLiteKV(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		store, err := repository.NewLocalStore(ctx, kv)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return store, db, nil

	case config.DriverRemote:
		return infrastructure.NewRemoteStore(cfg.RemoteAPIURL, cfg.RemoteAPIToken, log), nopCloser, nil

	default:
		log.Warn("using in-memory store, data is lost on restart")
		return repository.NewMemoryStore(), nopCloser, nil
	}
}
