package correlation

import (
	"context"
	"log"
	"time"
)

// expiring is implemented by backends that need an external sweep;
// Redis expires keys on its own and is not one of them.
type expiring interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Sweeper removes correlation records whose callback never arrived
// (abandoned checkouts), so the store does not grow without bound.
type Sweeper struct {
	Store    Store
	Interval time.Duration
}

func (s *Sweeper) Run(ctx context.Context) {
	exp, ok := s.Store.(expiring)
	if !ok {
		return
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		n, err := exp.DeleteExpired(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("correlation sweep failed: %v", err)
		} else if n > 0 {
			log.Printf("correlation sweep removed %d expired records", n)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
