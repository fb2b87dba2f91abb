package logger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type capturePublisher struct {
	mu      sync.Mutex
	batches [][]AggregatedLogEntry
	topic   string
}

func (p *capturePublisher) PublishMessage(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topic = topic
	p.batches = append(p.batches, payload.([]AggregatedLogEntry))
	return nil
}

func TestCollectorAggregatesDuplicates(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 10, Topic: "logs", Publisher: pub})

	for i := 0; i < 5; i++ {
		c.AddLog("error", "fetch failed", map[string]interface{}{"symbol": "AAPL"}, "x.go:1")
	}
	c.AddLog("error", "fetch failed", map[string]interface{}{"symbol": "TSLA"}, "x.go:1")
	if got := c.Pending(); got != 2 {
		t.Fatalf("expected 2 distinct entries, got %d", got)
	}

	c.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 || pub.topic != "logs" {
		t.Fatalf("expected one batch on logs, got %d on %q", len(pub.batches), pub.topic)
	}
	total := 0
	for _, e := range pub.batches[0] {
		total += e.Count
	}
	if total != 6 {
		t.Fatalf("expected 6 occurrences, got %d", total)
	}
}

func TestCollectorFlushesAtThreshold(t *testing.T) {
	pub := &capturePublisher{}
	c := NewLogCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 2, Topic: "logs", Publisher: pub})
	c.AddLog("error", "a", nil, "x.go:1")
	c.AddLog("error", "b", nil, "x.go:2")
	if got := c.Pending(); got != 0 {
		t.Fatalf("expected threshold flush, %d pending", got)
	}
	c.Close()
	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 || len(pub.batches[0]) != 2 {
		t.Fatalf("unexpected batches %+v", pub.batches)
	}
}

func TestLoggerErrorFeedsCollector(t *testing.T) {
	pub := &capturePublisher{}
	l := NewNop()
	l.AddCollector(&CollectionConfig{TimeInterval: time.Hour, CountThreshold: 100, Topic: "logs", Publisher: pub})
	l.Error("provider failed", String("symbol", "AAPL"), Error(errors.New("timeout")))
	l.Warn("not collected")
	l.Close()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.batches) != 1 || len(pub.batches[0]) != 1 {
		t.Fatalf("expected a single collected entry, got %+v", pub.batches)
	}
	e := pub.batches[0][0]
	if e.Message != "provider failed" || e.Fields["symbol"] != "AAPL" || e.Fields["error"] != "timeout" {
		t.Fatalf("unexpected entry %+v", e)
	}
}
