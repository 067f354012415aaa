// Package correlation bridges the gap between order creation and the
// processor callback: it maps a generated order identifier to the slug
// SMEPay issued for it. Records are consumed on first read, which is
// what makes a replayed callback fail instead of crediting twice.
package correlation

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("correlation not found")

type Store interface {
	// Put persists one in-flight payment attempt.
	Put(ctx context.Context, orderID, slug string) error
	// TakeOnce atomically reads and removes the record. A missing,
	// already-consumed or expired record yields ErrNotFound; at most
	// one concurrent caller ever observes the slug.
	TakeOnce(ctx context.Context, orderID string) (string, error)
}

type memoryRecord struct {
	slug      string
	expiresAt time.Time
}

// Memory is a mutex-guarded in-process store. Suitable for a
// single-node deployment and for tests.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]memoryRecord
	now     func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		records: make(map[string]memoryRecord),
		now:     time.Now,
	}
}

func (m *Memory) Put(ctx context.Context, orderID, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[orderID] = memoryRecord{slug: slug, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) TakeOnce(ctx context.Context, orderID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[orderID]
	if !ok {
		return "", ErrNotFound
	}
	delete(m.records, orderID)
	if m.now().After(rec.expiresAt) {
		return "", ErrNotFound
	}
	return rec.slug, nil
}

func (m *Memory) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, rec := range m.records {
		if now.After(rec.expiresAt) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}
