package redis

import (
	"testing"
	"time"
)

func TestNewConsumerRequiresKey(t *testing.T) {
	if _, err := NewConsumer(Config{Addr: "127.0.0.1:6379", Key: "  "}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}

func TestNewConsumerDefaults(t *testing.T) {
	c, err := NewConsumer(Config{Key: "auth_logs"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Close()

	if c.Key() != "auth_logs" {
		t.Fatalf("expected key auth_logs, got %q", c.Key())
	}
	if c.blockTimeout != 5*time.Second {
		t.Fatalf("expected 5s block timeout, got %s", c.blockTimeout)
	}
	if got := c.client.Options().Addr; got != "127.0.0.1:6379" {
		t.Fatalf("expected default addr, got %q", got)
	}
}
