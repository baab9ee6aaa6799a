package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fawazzo/lezzet-kapim/cart"
	"github.com/fawazzo/lezzet-kapim/models"
)

// CartRepository persists each shopper's cart as a JSON blob under a
// single fixed key, separate from any session or identity data.
// Concurrent tabs writing the same slot is last-writer-wins.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CartRepository) cartKey(shopperID string) string {
	return fmt.Sprintf("cart:shopper:%s", shopperID)
}

func (r *CartRepository) GetCart(ctx context.Context, shopperID string) (*models.Cart, error) {
	data, err := r.client.Get(ctx, r.cartKey(shopperID)).Result()
	if err == redis.Nil {
		// no cart saved yet
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var c models.Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CartRepository) SaveCart(ctx context.Context, shopperID string, c *models.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.cartKey(shopperID), data, r.ttl).Err()
}

func (r *CartRepository) DeleteCart(ctx context.Context, shopperID string) error {
	return r.client.Del(ctx, r.cartKey(shopperID)).Err()
}

// ForShopper binds the repository to one shopper's slot as a cart.Store.
func (r *CartRepository) ForShopper(shopperID string) cart.Store {
	return &shopperStore{repo: r, shopperID: shopperID}
}

type shopperStore struct {
	repo      *CartRepository
	shopperID string
}

func (s *shopperStore) Load(ctx context.Context) (*models.Cart, error) {
	return s.repo.GetCart(ctx, s.shopperID)
}

func (s *shopperStore) Save(ctx context.Context, c *models.Cart) error {
	return s.repo.SaveCart(ctx, s.shopperID, c)
}

func (s *shopperStore) Clear(ctx context.Context) error {
	return s.repo.DeleteCart(ctx, s.shopperID)
}

// Idempotency helpers, used to de-duplicate order submissions.

func (r *CartRepository) idemKey(key string) string {
	return "idem:order:" + key
}

func (r *CartRepository) GetIdempotency(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, r.idemKey(key)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *CartRepository) SetIdempotency(ctx context.Context, key, orderID string, ttl time.Duration) error {
	return r.client.Set(ctx, r.idemKey(key), orderID, ttl).Err()
}
