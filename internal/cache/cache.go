// Package cache is a read-through cache for search responses keyed by
// the full request. Award availability is too volatile to cache; only
// cash offers go through here.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkramer/flightdeck/internal/models"
)

type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) ([]models.Offer, bool)
	Set(ctx context.Context, req models.SearchRequest, offers []models.Offer) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      5 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) ([]models.Offer, bool) {
	key := generateKey(req)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var offers []models.Offer
	if err := json.Unmarshal(data, &offers); err != nil {
		return nil, false
	}

	return offers, true
}

func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, offers []models.Offer) error {
	key := generateKey(req)

	data, err := json.Marshal(offers)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, req models.SearchRequest) ([]models.Offer, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, req models.SearchRequest, offers []models.Offer) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// generateKey hashes every request field that changes the result set.
// Filter fields are included so a direct-only search never serves a
// cached unfiltered pool.
func generateKey(req models.SearchRequest) string {
	keyData := struct {
		Origin          string
		Destination     string
		DepartureDate   string
		ReturnDate      string
		Adults          int
		Cabin           string
		DirectOnly      bool
		IncludeAirlines []string
		ExcludeAirlines []string
		MaxResults      int
		Currency        string
	}{
		Origin:          req.Origin,
		Destination:     req.Destination,
		DepartureDate:   req.DepartureDate,
		Adults:          req.Adults,
		Cabin:           req.Cabin,
		DirectOnly:      req.DirectOnly,
		IncludeAirlines: req.IncludeAirlines,
		ExcludeAirlines: req.ExcludeAirlines,
		MaxResults:      req.MaxResults,
		Currency:        req.Currency,
	}

	if req.ReturnDate != nil {
		keyData.ReturnDate = *req.ReturnDate
	}

	data, _ := json.Marshal(keyData)
	hash := sha256.Sum256(data)
	return "offers:" + hex.EncodeToString(hash[:])
}
