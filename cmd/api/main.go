package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"miniapp-tma-backend/internal/app/submission"
	"miniapp-tma-backend/internal/config"
	"miniapp-tma-backend/internal/logger"
	"miniapp-tma-backend/internal/metrics"
	"miniapp-tma-backend/internal/notify"
	"miniapp-tma-backend/internal/telegram"
	httptransport "miniapp-tma-backend/internal/transport/http"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = lg.Sync() }()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, lg *zap.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	verifier, err := telegram.NewVerifier(cfg.Telegram.BotToken, telegram.WithMaxAge(cfg.Telegram.InitDataMaxAge))
	if err != nil {
		return err
	}
	if verifier.MaxAge() == 0 {
		lg.Warn("init data freshness check disabled; captured init data never expires")
	} else {
		lg.Info("init data verifier ready", zap.Duration("max_age", verifier.MaxAge()))
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.APIEndpoint, cfg.Telegram.SendTimeout)
	if err != nil {
		return err
	}
	lg.Info("bot api connected", zap.String("bot", notifier.BotUsername()))

	handler := httptransport.NewRouter(httptransport.Dependencies{
		Verifier:       verifier,
		Submissions:    submission.NewService(notifier, m, lg),
		Metrics:        m,
		Gatherer:       reg,
		Log:            lg,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		lg.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
