package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"warranty_shop/internal/domain/cart/model"
)

var ErrCartNotFound = errors.New("cart not found")

// cartTTL: quotes are kept for 30 days so abandoned-cart emails have
// something to link back to.
const cartTTL = 30 * 24 * time.Hour

// CartStore persists carts in Redis.
type CartStore interface {
	Get(ctx context.Context, id string) (*model.Cart, error)
	Save(ctx context.Context, cart *model.Cart) error
	Delete(ctx context.Context, id string) error
}

type cartStore struct {
	rdb *redis.Client
}

func NewCartStore(rdb *redis.Client) CartStore {
	return &cartStore{rdb: rdb}
}

func cartKey(id string) string {
	return fmt.Sprintf("cart:%s", id)
}

func (s *cartStore) Get(ctx context.Context, id string) (*model.Cart, error) {
	raw, err := s.rdb.Get(ctx, cartKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}

	var cart model.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (s *cartStore) Save(ctx context.Context, cart *model.Cart) error {
	cart.UpdatedAt = time.Now()

	raw, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, cartKey(cart.ID), raw, cartTTL).Err()
}

func (s *cartStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, cartKey(id)).Err()
}
