package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/gamestore-fulfillment/internal/config"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/kafka"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/example/gamestore-fulfillment/internal/projection"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadProjector()
	if err != nil {
		log.Fatalf("[Projector] Failed to load configuration: %v", err)
	}

	log.Println("[Projector] ========================================")
	log.Println("[Projector] Game Store Fulfillment - Projector")
	log.Println("[Projector] ========================================")
	log.Printf("[Projector] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Projector] Topic: %s", cfg.KafkaTopic)
	log.Printf("[Projector] Group: %s", cfg.ConsumerGroup)

	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Projector] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[Projector] Connected to PostgreSQL (Read DB)")

	readStore := store.NewPostgresReadStore(db)
	projector := projection.NewProjector(readStore)

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ConsumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Projector] Starting event consumer...")
		log.Printf("[Projector] Listening to topic: %s", cfg.KafkaTopic)
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil {
			log.Printf("[Projector] Consumer error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Projector] Shutting down...")
	cancel()
}
