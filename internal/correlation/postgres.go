package correlation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps correlations in the payment_correlations table.
// DELETE ... RETURNING makes TakeOnce a single atomic statement: of two
// racing callbacks one gets the row, the other gets ErrNotFound.
type Postgres struct {
	Pool *pgxpool.Pool
	TTL  time.Duration
}

func NewPostgres(pool *pgxpool.Pool, ttl time.Duration) *Postgres {
	return &Postgres{Pool: pool, TTL: ttl}
}

func (p *Postgres) Put(ctx context.Context, orderID, slug string) error {
	_, err := p.Pool.Exec(ctx, `
		INSERT INTO payment_correlations (order_id, slug, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO UPDATE SET slug=EXCLUDED.slug, expires_at=EXCLUDED.expires_at
	`, orderID, slug, time.Now().UTC().Add(p.TTL))
	return err
}

func (p *Postgres) TakeOnce(ctx context.Context, orderID string) (string, error) {
	row := p.Pool.QueryRow(ctx, `
		DELETE FROM payment_correlations
		WHERE order_id=$1 AND expires_at > now()
		RETURNING slug
	`, orderID)

	var slug string
	if err := row.Scan(&slug); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return slug, nil
}

func (p *Postgres) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := p.Pool.Exec(ctx, `DELETE FROM payment_correlations WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
