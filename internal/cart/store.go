// Package cart keeps per-user shopping carts in Redis so they survive
// server restarts but expire on their own when abandoned.
package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an untouched cart survives.
const DefaultTTL = 24 * time.Hour

// Store holds carts as Redis hashes keyed by user ID, field per product.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore creates a Store.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, ttl: DefaultTTL}
}

func cartKey(userID string) string {
	return "cart:" + userID
}

// Add increments the quantity of a product in the user's cart and
// refreshes the cart's expiry.
func (s *Store) Add(ctx context.Context, userID, productID string, qty int64) error {
	if qty <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", qty)
	}
	key := cartKey(userID)
	pipe := s.rdb.TxPipeline()
	pipe.HIncrBy(ctx, key, productID, qty)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("adding cart item: %w", err)
	}
	return nil
}

// Remove drops a product from the cart entirely.
func (s *Store) Remove(ctx context.Context, userID, productID string) error {
	if err := s.rdb.HDel(ctx, cartKey(userID), productID).Err(); err != nil {
		return fmt.Errorf("removing cart item: %w", err)
	}
	return nil
}

// Items returns the cart contents as productID -> quantity.
func (s *Store) Items(ctx context.Context, userID string) (map[string]int64, error) {
	raw, err := s.rdb.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("reading cart: %w", err)
	}

	items := make(map[string]int64, len(raw))
	for productID, qtyStr := range raw {
		qty, err := strconv.ParseInt(qtyStr, 10, 64)
		if err != nil || qty <= 0 {
			continue
		}
		items[productID] = qty
	}
	return items, nil
}

// Clear removes the whole cart.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
