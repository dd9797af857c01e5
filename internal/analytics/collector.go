// Package analytics publishes query events to Kafka for offline analysis.
// Events are buffered in memory and flushed as batches, so the query path
// never blocks on the broker.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/factive/claimsearch/pkg/kafka"
)

// Event types published to the query-events topic.
const (
	EventResolve       = "resolve"
	EventWordLookup    = "word_lookup"
	EventDocumentFetch = "document_fetch"
)

// QueryEvent is one recorded query.
type QueryEvent struct {
	Type        string    `json:"type"`
	Query       string    `json:"query"`
	ResultCount int       `json:"resultCount"`
	DurationMs  int64     `json:"durationMs"`
	CacheHit    bool      `json:"cacheHit,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Collector buffers query events and flushes them to Kafka in batches.
type Collector struct {
	producer  *kafka.Producer
	batchSize int
	interval  time.Duration
	log       *slog.Logger

	mu      sync.Mutex
	pending []kafka.Event

	stop chan struct{}
	done chan struct{}
}

// NewCollector creates a Collector flushing every interval or once batchSize
// events are pending, whichever comes first.
func NewCollector(producer *kafka.Producer, batchSize int, interval time.Duration, log *slog.Logger) *Collector {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Collector{
		producer:  producer,
		batchSize: batchSize,
		interval:  interval,
		log:       log.With(slog.String("component", "analytics")),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the background flush loop.
func (c *Collector) Start() {
	go c.loop()
}

// Record buffers one event. It never blocks on Kafka.
func (c *Collector) Record(ev QueryEvent) {
	ev.Timestamp = time.Now().UTC()
	c.mu.Lock()
	c.pending = append(c.pending, kafka.Event{Key: ev.Type, Value: ev})
	full := len(c.pending) >= c.batchSize
	c.mu.Unlock()
	if full {
		c.flush()
	}
}

// Close flushes remaining events and stops the loop.
func (c *Collector) Close() {
	close(c.stop)
	<-c.done
	c.flush()
}

func (c *Collector) loop() {
	defer close(c.done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.flush()
		case <-c.stop:
			return
		}
	}
}

func (c *Collector) flush() {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.producer.PublishBatch(ctx, batch); err != nil {
		c.log.Warn("query event batch dropped",
			slog.Int("count", len(batch)),
			slog.Any("error", err),
		)
		return
	}
	c.log.Debug("query events flushed", slog.Int("count", len(batch)))
}
