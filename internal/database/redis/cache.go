package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/toolsinn/shortlinks/internal/entity"

	"github.com/redis/go-redis/v9"
)

type CacheRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheRepository(client *redis.Client, ttl time.Duration) *CacheRepository {
	return &CacheRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CacheRepository) SetLink(ctx context.Context, code string, link *entity.ShortLink) error {
	data, err := json.Marshal(link)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, "link:"+code, data, r.ttl).Err()
}

func (r *CacheRepository) GetLink(ctx context.Context, code string) (*entity.ShortLink, error) {
	data, err := r.client.Get(ctx, "link:"+code).Result()
	if err != nil {
		return nil, err
	}

	var link entity.ShortLink
	err = json.Unmarshal([]byte(data), &link)
	if err != nil {
		return nil, err
	}

	return &link, nil
}

func (r *CacheRepository) DeleteLink(ctx context.Context, code string) error {
	return r.client.Del(ctx, "link:"+code).Err()
}

func (r *CacheRepository) IncrementPopularity(ctx context.Context, code string) error {
	return r.client.ZIncrBy(ctx, "popular_links", 1, code).Err()
}

func (r *CacheRepository) GetPopularLinks(ctx context.Context, count int) ([]string, error) {
	result, err := r.client.ZRevRange(ctx, "popular_links", 0, int64(count-1)).Result()
	if err != nil {
		return nil, err
	}
	return result, nil
}
