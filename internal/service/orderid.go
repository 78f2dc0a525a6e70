package service

import (
	"fmt"
	"sync"
	"time"
)

const (
	PlanOrderPrefix = "SUB"
	CartOrderPrefix = "ORD"
)

// OrderIDGenerator builds {prefix}-{first 8 chars of user id}-{epoch millis}.
// Two ids issued in the same millisecond get consecutive millis.
type OrderIDGenerator struct {
	now func() time.Time

	mu   sync.Mutex
	last int64
}

func NewOrderIDGenerator(now func() time.Time) *OrderIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &OrderIDGenerator{now: now}
}

func (g *OrderIDGenerator) Next(prefix, userID string) string {
	g.mu.Lock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	g.mu.Unlock()

	short := userID
	if r := []rune(short); len(r) > 8 {
		short = string(r[:8])
	}
	return fmt.Sprintf("%s-%s-%d", prefix, short, ms)
}
