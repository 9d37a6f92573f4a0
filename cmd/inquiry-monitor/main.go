package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creeeasy/online-store-sub000/internal/config"
	"github.com/creeeasy/online-store-sub000/internal/events"
	"github.com/creeeasy/online-store-sub000/internal/webhook"
	"github.com/sirupsen/logrus"
)

// inquiry-monitor consumes inquiry lifecycle events and forwards them to the
// admin notification webhook, with a small HTTP endpoint exposing consumer
// and delivery metrics.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if cfg.Kafka.Brokers == "" {
		logger.Fatal("KAFKA_BROKERS is required for the inquiry monitor")
	}
	if cfg.Webhook.URL == "" {
		logger.Fatal("WEBHOOK_URL is required for the inquiry monitor")
	}

	dispatcher := webhook.NewDispatcher(cfg.Webhook.URL, cfg.Webhook.Timeout, logger)

	consumer, err := events.NewKafkaConsumer(cfg.Kafka.Brokers, cfg.Kafka.ConsumerGroup, dispatcher, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create consumer")
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := consumer.Start(ctx); err != nil && ctx.Err() == nil {
			logger.WithError(err).Fatal("Consumer stopped")
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "inquiry-monitor",
		})
	})
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"consumer": consumer.Metrics(),
			"webhook":  dispatcher.BreakerMetrics(),
			"time":     time.Now().Format(time.RFC3339),
		})
	})

	port := os.Getenv("MONITOR_PORT")
	if port == "" {
		port = "8082"
	}
	srv := &http.Server{Addr: ":" + port, Handler: mux}

	go func() {
		logger.WithField("port", port).Info("Starting inquiry monitor")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start metrics server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down inquiry monitor...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Metrics server forced to shutdown")
	}
}
