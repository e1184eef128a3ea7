package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"storefront-catalog-api/internal/ingest"
	"storefront-catalog-api/pkg/cache"
	"storefront-catalog-api/pkg/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "catalog.raw-products"
	}
	groupID := os.Getenv("KAFKA_GROUP_ID")
	if groupID == "" {
		groupID = "catalog-ingest"
	}
	metricsAddr := os.Getenv("METRICS_ADDR")
	if metricsAddr == "" {
		metricsAddr = ":9091"
	}

	registry := metrics.NewRegistry()
	go func() {
		http.Handle("/metrics", registry.Handler())
		if err := http.ListenAndServe(metricsAddr, nil); err != nil {
			log.Printf("Metrics listener failed: %v", err)
		}
	}()

	redisCache := cache.NewRedisCache()
	if !redisCache.IsAvailable() {
		log.Fatal("Ingest requires Redis; no connection available")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := ingest.NewConsumer(brokers, topic, groupID, redisCache, registry)
	log.Printf("Ingest started brokers=%s topic=%s group=%s", brokers, topic, groupID)

	if err := consumer.Run(ctx); err != nil {
		log.Fatalf("Ingest stopped: %v", err)
	}
	log.Println("Ingest shut down cleanly")
}
