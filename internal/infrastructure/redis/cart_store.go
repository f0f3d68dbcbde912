// Package redis backs the cart store with Redis so staged carts survive
// process restarts. Each customer's cart is one key holding the lines as
// a JSON array.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	domain "github.com/mercato/shopcore/internal/domain/cart"
)

type cartLine struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type CartStore struct {
	client *redis.Client
}

func NewCartStore(client *redis.Client) *CartStore {
	return &CartStore{client: client}
}

// Connect dials Redis and verifies the connection with a ping.
func Connect(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return client, nil
}

func cartKey(customerID int64) string {
	return fmt.Sprintf("cart:%d", customerID)
}

func (s *CartStore) Get(ctx context.Context, customerID int64) (*domain.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(customerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Restore(customerID, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart store: get: %w", err)
	}

	var lines []cartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("cart store: decode: %w", err)
	}
	restored := make([]domain.Line, len(lines))
	for i, l := range lines {
		restored[i] = domain.Line{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	return domain.Restore(customerID, restored), nil
}

func (s *CartStore) Save(ctx context.Context, c *domain.Cart) error {
	key := cartKey(c.CustomerID)
	if c.IsEmpty() {
		// An empty cart and an absent key are equivalent.
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("cart store: clear: %w", err)
		}
		return nil
	}

	src := c.Lines()
	lines := make([]cartLine, len(src))
	for i, l := range src {
		lines[i] = cartLine{ProductID: l.ProductID, Quantity: l.Quantity}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("cart store: encode: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("cart store: save: %w", err)
	}
	return nil
}
