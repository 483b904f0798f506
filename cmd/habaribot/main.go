package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkamau/habaribot/internal/bot"
	"github.com/mkamau/habaribot/internal/config"
	"github.com/mkamau/habaribot/internal/httpapi"
	"github.com/mkamau/habaribot/internal/observability"
	"github.com/mkamau/habaribot/internal/recognize"
	"github.com/mkamau/habaribot/internal/state"
	"github.com/mkamau/habaribot/internal/upstream"
)

func main() {
	config.LoadDotenv(".env")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	store, err := state.NewStore(ctx, cfg.RedisAddr, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("state store init failed: %v", err)
	}
	defer store.Close()

	var recognizer recognize.Recognizer
	if client := recognize.NewLUISClient(recognize.Config{
		AppID:    cfg.LuisAppID,
		APIKey:   cfg.LuisAPIKey,
		Hostname: cfg.LuisAPIHostName,
		Timeout:  cfg.RequestTimeout,
	}); client != nil {
		recognizer = client
		log.Printf("intent recognizer: luis (%s)", cfg.LuisAPIHostName)
	} else {
		log.Printf("intent recognizer: not configured, weather-only fallback active")
	}

	weather := upstream.NewWeatherClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, cfg.RequestTimeout)
	covid := upstream.NewCovidClient(cfg.CovidBaseURL, cfg.RequestTimeout)

	chatbot, err := bot.New(bot.Config{
		Recognizer:      recognizer,
		Weather:         weather,
		Covid:           covid,
		Store:           store,
		Metrics:         metrics,
		CovidWorldBrief: cfg.CovidWorldBrief,
	})
	if err != nil {
		log.Fatalf("bot init failed: %v", err)
	}

	api := httpapi.New(cfg, chatbot, metrics)
	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
