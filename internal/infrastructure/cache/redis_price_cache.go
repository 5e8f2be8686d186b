// Package cache guarda en Redis las ventanas de precio por (tienda, variante).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-ledger-api/internal/application/ports"
	"github.com/jhoicas/retail-ledger-api/internal/domain/entity"
)

var _ ports.PriceCache = (*RedisPriceCache)(nil)

// RedisPriceCache implementa ports.PriceCache sobre go-redis.
type RedisPriceCache struct {
	client *redis.Client
}

// NewRedisPriceCache crea el cliente Redis.
func NewRedisPriceCache(addr, password string, db int) *RedisPriceCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisPriceCache{client: client}
}

// NewRedisPriceCacheWithClient usa un cliente ya construido (tests con miniredis o redis real).
func NewRedisPriceCacheWithClient(client *redis.Client) *RedisPriceCache {
	return &RedisPriceCache{client: client}
}

// Ping verifica la conexión.
func (c *RedisPriceCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *RedisPriceCache) Close() error {
	return c.client.Close()
}

type cachedWindow struct {
	ID        string          `json:"id"`
	StoreID   string          `json:"store_id"`
	VariantID string          `json:"variant_id"`
	Price     decimal.Decimal `json:"price"`
	StartAt   time.Time       `json:"start_at"`
	EndAt     *time.Time      `json:"end_at,omitempty"`
	CreatedBy string          `json:"created_by,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Key arma la llave de caché de una posición.
func Key(storeID, variantID string) string {
	return "prices:" + storeID + ":" + variantID
}

// Get devuelve las ventanas cacheadas. found=false si la llave no existe.
func (c *RedisPriceCache) Get(ctx context.Context, storeID, variantID string) ([]*entity.VariantPrice, bool, error) {
	val, err := c.client.Get(ctx, Key(storeID, variantID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get prices: %w", err)
	}
	return decodeWindows([]byte(val))
}

// Set guarda las ventanas con TTL. Una lista vacía también se guarda para no golpear la BD en cada venta.
func (c *RedisPriceCache) Set(ctx context.Context, storeID, variantID string, windows []*entity.VariantPrice, ttl time.Duration) error {
	payload, err := encodeWindows(windows)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, Key(storeID, variantID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set prices: %w", err)
	}
	return nil
}

// Invalidate borra la llave de la posición.
func (c *RedisPriceCache) Invalidate(ctx context.Context, storeID, variantID string) error {
	if err := c.client.Del(ctx, Key(storeID, variantID)).Err(); err != nil {
		return fmt.Errorf("redis del prices: %w", err)
	}
	return nil
}

func encodeWindows(windows []*entity.VariantPrice) ([]byte, error) {
	out := make([]cachedWindow, 0, len(windows))
	for _, w := range windows {
		out = append(out, cachedWindow{
			ID:        w.ID,
			StoreID:   w.StoreID,
			VariantID: w.VariantID,
			Price:     w.Price,
			StartAt:   w.StartAt,
			EndAt:     w.EndAt,
			CreatedBy: w.CreatedBy,
			CreatedAt: w.CreatedAt,
		})
	}
	return json.Marshal(out)
}

func decodeWindows(data []byte) ([]*entity.VariantPrice, bool, error) {
	var in []cachedWindow
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, false, fmt.Errorf("decode cached prices: %w", err)
	}
	out := make([]*entity.VariantPrice, 0, len(in))
	for _, w := range in {
		out = append(out, &entity.VariantPrice{
			ID:        w.ID,
			StoreID:   w.StoreID,
			VariantID: w.VariantID,
			Price:     w.Price,
			StartAt:   w.StartAt,
			EndAt:     w.EndAt,
			CreatedBy: w.CreatedBy,
			CreatedAt: w.CreatedAt,
		})
	}
	return out, true, nil
}
