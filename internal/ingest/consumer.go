package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"storefront-catalog-api/internal/engine"
	"storefront-catalog-api/internal/sources"
	"storefront-catalog-api/pkg/cache"
	"storefront-catalog-api/pkg/metrics"
)

// messageReader abstracts kafka.Reader for testability.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads raw product payload batches off a Kafka topic, groups
// them and primes the Redis entry cache so detail lookups skip the
// backend round trip.
type Consumer struct {
	reader  messageReader
	cache   *cache.RedisCache
	metrics *metrics.Registry
}

// NewConsumer creates a Kafka-backed consumer. bootstrap can be a
// comma-separated list of host:port.
func NewConsumer(bootstrap, topic, groupID string, c *cache.RedisCache, reg *metrics.Registry) *Consumer {
	var brokers []string
	for _, a := range strings.Split(bootstrap, ",") {
		if a = strings.TrimSpace(a); a != "" {
			brokers = append(brokers, a)
		}
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		GroupID:  groupID,
		Topic:    topic,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, cache: c, metrics: reg}
}

// NewConsumerWith is only for tests to inject a fake reader.
func NewConsumerWith(r messageReader, c *cache.RedisCache, reg *metrics.Registry) *Consumer {
	return &Consumer{reader: r, cache: c, metrics: reg}
}

// Run consumes until ctx is cancelled. Malformed messages are counted and
// skipped; only the reader failing ends the loop.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read kafka: %w", err)
		}

		entries, skipped, err := c.Apply(msg.Value)
		if err != nil {
			log.Printf("Ingest: dropping message at offset %d: %v", msg.Offset, err)
			if c.metrics != nil {
				c.metrics.IngestErrors.Inc()
			}
			continue
		}
		log.Printf("Ingest: cached %d entries (%d records skipped) from offset %d",
			entries, skipped, msg.Offset)
	}
}

// Apply decodes one message payload, groups it and writes the canonical
// entries into the cache. Returns the cached entry count and the skipped
// record count.
func (c *Consumer) Apply(payload []byte) (int, int, error) {
	var decoded interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return 0, 0, fmt.Errorf("unmarshal payload: %w", err)
	}

	records := sources.DecodeRecords(decoded)
	if len(records) == 0 {
		return 0, 0, fmt.Errorf("payload contains no product records")
	}

	start := time.Now()
	result := engine.Group(records)

	cached := 0
	for _, entry := range result.Entries {
		if err := c.cache.SetEntry(entry); err != nil {
			log.Printf("Ingest: failed to cache entry %s: %v", entry.BaseID, err)
			continue
		}
		cached++
	}

	if c.metrics != nil {
		c.metrics.IngestBatches.Inc()
		c.metrics.RecordsSkipped.Add(float64(result.Skipped))
		c.metrics.BadAttributes.Add(float64(result.BadAttributes))
		c.metrics.EntriesGrouped.Add(float64(len(result.Entries)))
		c.metrics.GroupSeconds.Observe(time.Since(start).Seconds())
	}
	return cached, result.Skipped, nil
}
