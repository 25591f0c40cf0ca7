package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"shopcatalog/internal/models"

	"github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix           = "shopcatalog:"
	categorySnapshotKey = keyPrefix + "categories:snapshot"
	productViewPattern  = keyPrefix + "product:*"
)

// CategorySnapshot is everything the category tree is built from.
type CategorySnapshot struct {
	Categories   []*models.Category `json:"categories"`
	ActiveCounts map[int64]int      `json:"active_counts"`
}

type CacheService interface {
	// Category tree snapshot
	GetCategorySnapshot(ctx context.Context) (*CategorySnapshot, error)
	SetCategorySnapshot(ctx context.Context, snapshot *CategorySnapshot, ttl time.Duration) error
	InvalidateCategorySnapshot(ctx context.Context) error

	// Serialized products
	GetProductView(ctx context.Context, productID int64) (*models.ProductView, error)
	SetProductView(ctx context.Context, view *models.ProductView, ttl time.Duration) error
	DeleteProductView(ctx context.Context, productID int64) error
	InvalidateProductViews(ctx context.Context) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// accept redis://host:port as well as host:port
	parsedAddr := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://")

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warnf("redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	} else {
		log.Debugf("redis connection established: %s", parsedAddr)
	}

	return &redisCacheService{client: client}
}

func productViewKey(productID int64) string {
	return fmt.Sprintf("%sproduct:%d", keyPrefix, productID)
}

func (r *redisCacheService) getJSON(ctx context.Context, key string, dest any) (bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil // cache miss
		}
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *redisCacheService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) GetCategorySnapshot(ctx context.Context) (*CategorySnapshot, error) {
	var snapshot CategorySnapshot
	found, err := r.getJSON(ctx, categorySnapshotKey, &snapshot)
	if err != nil || !found {
		return nil, err
	}
	return &snapshot, nil
}

func (r *redisCacheService) SetCategorySnapshot(ctx context.Context, snapshot *CategorySnapshot, ttl time.Duration) error {
	return r.setJSON(ctx, categorySnapshotKey, snapshot, ttl)
}

func (r *redisCacheService) InvalidateCategorySnapshot(ctx context.Context) error {
	return r.client.Del(ctx, categorySnapshotKey).Err()
}

func (r *redisCacheService) GetProductView(ctx context.Context, productID int64) (*models.ProductView, error) {
	var view models.ProductView
	found, err := r.getJSON(ctx, productViewKey(productID), &view)
	if err != nil || !found {
		return nil, err
	}
	return &view, nil
}

func (r *redisCacheService) SetProductView(ctx context.Context, view *models.ProductView, ttl time.Duration) error {
	return r.setJSON(ctx, productViewKey(view.ID), view, ttl)
}

func (r *redisCacheService) DeleteProductView(ctx context.Context, productID int64) error {
	return r.client.Del(ctx, productViewKey(productID)).Err()
}

// InvalidateProductViews drops every cached product, used when category labels
// or attribute schemas change.
func (r *redisCacheService) InvalidateProductViews(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, productViewPattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type noopCacheService struct{}

// NewNoopCacheService is used when no redis address is configured; every read misses.
func NewNoopCacheService() CacheService {
	return noopCacheService{}
}

func (noopCacheService) GetCategorySnapshot(context.Context) (*CategorySnapshot, error) { return nil, nil }
func (noopCacheService) SetCategorySnapshot(context.Context, *CategorySnapshot, time.Duration) error {
	return nil
}
func (noopCacheService) InvalidateCategorySnapshot(context.Context) error { return nil }
func (noopCacheService) GetProductView(context.Context, int64) (*models.ProductView, error) {
	return nil, nil
}
func (noopCacheService) SetProductView(context.Context, *models.ProductView, time.Duration) error {
	return nil
}
func (noopCacheService) DeleteProductView(context.Context, int64) error { return nil }
func (noopCacheService) InvalidateProductViews(context.Context) error   { return nil }
func (noopCacheService) Ping(context.Context) error                     { return nil }
