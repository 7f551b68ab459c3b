package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/gamestore-fulfillment/internal/api"
	"github.com/example/gamestore-fulfillment/internal/config"
	"github.com/example/gamestore-fulfillment/internal/domain/game"
	"github.com/example/gamestore-fulfillment/internal/domain/inventory"
	"github.com/example/gamestore-fulfillment/internal/domain/order"
	"github.com/example/gamestore-fulfillment/internal/domain/payment"
	"github.com/example/gamestore-fulfillment/internal/engine"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/kafka"
	"github.com/example/gamestore-fulfillment/internal/infrastructure/store"
	"github.com/example/gamestore-fulfillment/internal/projection"
	"github.com/example/gamestore-fulfillment/internal/query"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Fatalf("[API] Failed to load configuration: %v", err)
	}

	log.Println("[API] ========================================")
	log.Println("[API] Game Store Fulfillment - API")
	log.Println("[API] ========================================")
	log.Printf("[API] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[API] Topic: %s", cfg.KafkaTopic)
	log.Printf("[API] Event store: %s", cfg.EventStore)

	// Initialize Kafka producer
	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	// Initialize PostgreSQL connection
	db, err := store.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[API] Failed to connect to PostgreSQL: %v", err)
	}
	defer db.Close()
	log.Println("[API] Connected to PostgreSQL")

	var readStore store.ReadStoreInterface
	switch cfg.ReadStore {
	case "memory":
		// Read models are rebuilt from the event store on startup, so the
		// in-memory store works for single-instance and dev setups.
		readStore = store.NewReadStore()
		log.Println("[API] Read DB: in-memory (rebuilt on startup)")
	default:
		readStore = store.NewPostgresReadStore(db)
		log.Println("[API] Read DB: PostgreSQL (read_* tables)")
	}

	var eventStore store.EventStoreInterface
	switch cfg.EventStore {
	case "dynamo":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatalf("[API] Failed to load AWS configuration: %v", err)
		}
		client := dynamodb.NewFromConfig(awsCfg)
		eventStore = store.NewDynamoEventStore(client, cfg.DynamoEventTable, cfg.DynamoSnapshotTbl)
		log.Println("[API] Write DB: DynamoDB (projection via stream)")
	default:
		eventStore = store.NewPostgresEventStore(db, producer)
		log.Println("[API] Write DB: PostgreSQL (events table)")
	}

	// Initialize domain services
	gameSvc := game.NewService(eventStore)
	inventorySvc := inventory.NewService(eventStore)
	orderSvc := order.NewService(eventStore)
	paymentSvc := payment.NewService(eventStore)

	policy := engine.RejectInsufficient
	if cfg.AllowNegativeStock {
		policy = engine.AllowNegative
	}
	eng := engine.NewHandler(gameSvc, inventorySvc, orderSvc, paymentSvc, engine.Config{
		StockPolicy: policy,
	})
	queryHandler := query.NewHandler(readStore)

	// Initialize projector and rebuild read models from the event store
	projector := projection.NewProjector(readStore)
	log.Println("[API] Replaying events...")
	replayEvents(eventStore, projector)

	// Start Kafka consumer for new events (async projection)
	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.ConsumerGroup)
	defer consumer.Close()

	var wg sync.WaitGroup
	consumerReady := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("[API] Starting Kafka consumer (async projection)...")
		close(consumerReady)
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil {
			if ctx.Err() == nil {
				log.Printf("[API] Projector error: %v", err)
			}
		}
	}()

	<-consumerReady
	// Give Kafka consumer a moment to establish connection
	time.Sleep(500 * time.Millisecond)
	log.Println("[API] Kafka consumer ready")

	handlers := api.NewHandlers(eng, queryHandler)
	router := api.NewRouter(handlers)

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	wg.Wait()
}

// replayEvents folds every stored event into the read models
func replayEvents(eventStore store.EventStoreInterface, projector *projection.Projector) {
	events := eventStore.GetAllEvents()
	log.Printf("[API] Replaying %d events from event store...", len(events))

	ctx := context.Background()
	for _, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("[API] Error marshaling event %s: %v", event.ID, err)
			continue
		}
		if err := projector.HandleEvent(ctx, []byte(event.AggregateID), data); err != nil {
			log.Printf("[API] Error replaying event %s: %v", event.ID, err)
		}
	}
	log.Println("[API] Event replay completed - read models rebuilt")
}
