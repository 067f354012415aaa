package correlation

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores correlations as plain keys with a TTL; GETDEL gives the
// atomic consume-once read. Expiry is handled by Redis itself.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedis(client redis.UniversalClient, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = "smepay:order"
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(orderID string) string {
	return r.prefix + ":" + orderID
}

func (r *Redis) Put(ctx context.Context, orderID, slug string) error {
	return r.client.Set(ctx, r.key(orderID), slug, r.ttl).Err()
}

func (r *Redis) TakeOnce(ctx context.Context, orderID string) (string, error) {
	slug, err := r.client.GetDel(ctx, r.key(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return slug, nil
}
