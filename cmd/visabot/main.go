package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nexabloom/visabot/internal/advisor"
	"github.com/nexabloom/visabot/internal/bot"
	"github.com/nexabloom/visabot/internal/catalog"
	"github.com/nexabloom/visabot/internal/config"
	"github.com/nexabloom/visabot/internal/dialog"
	"github.com/nexabloom/visabot/internal/session"
	"github.com/nexabloom/visabot/internal/whatsapp"
	"github.com/nexabloom/visabot/internal/widget"
)

const (
	reapInterval   = 30 * time.Minute
	sessionMaxIdle = 24 * time.Hour
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	cat, err := catalog.Load()
	if err != nil {
		logger.Fatal("catalog", zap.Error(err))
	}

	var store session.Store
	if cfg.DataDir != "" {
		store, err = session.NewBoltStore(cfg.DataDir + "/visabot.db")
		if err != nil {
			logger.Fatal("store", zap.Error(err))
		}
	} else {
		store = session.NewMemoryStore()
	}
	defer store.Close()

	// Periodic sweep of long-idle sessions to keep memory bounded
	go func() {
		ticker := time.NewTicker(reapInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n := store.Reap(sessionMaxIdle); n > 0 {
				logger.Info("reaped idle sessions", zap.Int("count", n))
			}
		}
	}()

	waClient := whatsapp.NewClient(cfg.WAPhoneNumberID, cfg.WAAccessToken)
	sender := bot.NewSender(waClient)
	renderer := widget.NewRenderer(sender, logger)
	adv := advisor.NewClient(cfg.OpenRouterBaseURL, cfg.OpenRouterKey, cfg.OpenRouterModel, logger)

	engine := dialog.NewEngine(cat, renderer, sender, adv, logger)
	botHandler := bot.NewHandler(store, engine, logger)
	webhookHandler := whatsapp.NewWebhookHandler(cfg.WAVerifyToken, botHandler.HandleEvent, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/webhook", webhookHandler.HandleVerify)
	r.Post("/webhook", webhookHandler.HandleIncoming)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("visabot: listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("visabot: shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("shutdown", zap.Error(err))
	}
	logger.Info("visabot: stopped")
}
