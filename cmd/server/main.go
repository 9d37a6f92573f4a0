package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creeeasy/online-store-sub000/internal/config"
	"github.com/creeeasy/online-store-sub000/internal/database"
	"github.com/creeeasy/online-store-sub000/internal/events"
	"github.com/creeeasy/online-store-sub000/internal/server"
	"github.com/creeeasy/online-store-sub000/internal/store"
	"github.com/creeeasy/online-store-sub000/internal/ws"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	logger.Info("Database connection established")

	st := store.New(db, logger)

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := st.Migrate(migrateCtx); err != nil {
		cancelMigrate()
		logger.WithError(err).Fatal("Failed to run migrations")
	}
	cancelMigrate()

	handler := server.NewHandler(st, st, st, logger, cfg.Auth.TokenTTL)

	// Kafka is optional. With no brokers configured the storefront still works,
	// inquiry events just stay local.
	var producer *events.KafkaProducer
	if cfg.Kafka.Brokers != "" {
		producer, err = events.NewKafkaProducer(cfg.Kafka.Brokers, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to create Kafka producer")
		}
		defer producer.Close()
		handler.SetEventPublisher(producer)
		logger.WithField("brokers", cfg.Kafka.Brokers).Info("Inquiry event publishing enabled")
	} else {
		logger.Info("KAFKA_BROKERS not set, inquiry event publishing disabled")
	}

	hub := ws.NewHub(func(ctx context.Context, token string) error {
		_, err := st.UserByToken(ctx, token)
		return err
	}, logger)
	go hub.Run()
	handler.SetBroadcaster(hub)

	router := handler.Router(logger)
	router.HandleFunc("/ws", hub.HandleWebSocket)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting store server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server gracefully stopped")
}
