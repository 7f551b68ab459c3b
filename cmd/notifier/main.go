package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/gamestore-fulfillment/internal/config"
	"github.com/example/gamestore-fulfillment/internal/email"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/kafka"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/example/gamestore-fulfillment/internal/notification"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadNotifier()
	if err != nil {
		log.Fatalf("[Notifier] Failed to load configuration: %v", err)
	}

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Game Store Fulfillment - Notifier")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Notifier] Topic: %s", cfg.KafkaTopic)
	log.Printf("[Notifier] Group: %s", cfg.ConsumerGroup)
	log.Printf("[Notifier] SMTP: %s:%s", cfg.SMTPHost, cfg.SMTPPort)
	log.Printf("[Notifier] From: %s", cfg.EmailFrom)

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Notifier] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Notifier] Connected to PostgreSQL (Read DB)")

	readStore := store.NewPostgresReadStore(db)
	emailSvc := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom)
	handler := notification.NewHandler(emailSvc, readStore)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ConsumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Notifier] Starting event consumer...")
		log.Printf("[Notifier] Listening to topic: %s", cfg.KafkaTopic)
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil {
			log.Printf("[Notifier] Consumer error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}
