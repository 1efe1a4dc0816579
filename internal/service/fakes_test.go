package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/toolsinn/shortlinks/internal/device"
	"github.com/toolsinn/shortlinks/internal/entity"
)

// In-memory stand-ins for the postgres and redis repositories.

type fakeLinkRepo struct {
	mu      sync.Mutex
	links   map[string]*entity.ShortLink
	creates int
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[string]*entity.ShortLink)}
}

func (r *fakeLinkRepo) Create(ctx context.Context, link *entity.ShortLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if _, ok := r.links[link.Code]; ok {
		return entity.ErrCodeExists
	}
	copied := *link
	r.links[link.Code] = &copied
	return nil
}

func (r *fakeLinkRepo) GetByCode(ctx context.Context, code string) (*entity.ShortLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[code]
	if !ok {
		return nil, entity.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (r *fakeLinkRepo) ListRecent(ctx context.Context, limit int) ([]entity.ShortLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var links []entity.ShortLink
	for _, link := range r.links {
		links = append(links, *link)
	}
	sort.Slice(links, func(i, j int) bool { return links[i].CreatedAt.After(links[j].CreatedAt) })
	if len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}

func (r *fakeLinkRepo) ListCodes(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var codes []string
	for code := range r.links {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

func (r *fakeLinkRepo) IncrementClicks(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[code]
	if !ok {
		return entity.ErrLinkNotFound
	}
	link.Clicks++
	return nil
}

func (r *fakeLinkRepo) SetClicks(ctx context.Context, code string, clicks int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link, ok := r.links[code]
	if !ok {
		return entity.ErrLinkNotFound
	}
	link.Clicks = clicks
	return nil
}

func (r *fakeLinkRepo) clicks(code string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if link, ok := r.links[code]; ok {
		return link.Clicks
	}
	return 0
}

// alwaysCollidingRepo reports every insert as a code collision.
type alwaysCollidingRepo struct {
	fakeLinkRepo
	attempts int
}

func (r *alwaysCollidingRepo) Create(ctx context.Context, link *entity.ShortLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	return entity.ErrCodeExists
}

type fakeClickRepo struct {
	mu     sync.Mutex
	clicks []entity.ClickEvent
}

func newFakeClickRepo() *fakeClickRepo {
	return &fakeClickRepo{}
}

func (r *fakeClickRepo) Record(ctx context.Context, click *entity.ClickEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clicks = append(r.clicks, *click)
	return nil
}

func (r *fakeClickRepo) ListRecent(ctx context.Context, code string, limit int) ([]entity.ClickEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ClickEvent
	for i := len(r.clicks) - 1; i >= 0 && len(out) < limit; i-- {
		if r.clicks[i].Code == code {
			out = append(out, r.clicks[i])
		}
	}
	return out, nil
}

func (r *fakeClickRepo) ListAll(ctx context.Context, code string) ([]entity.ClickEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.ClickEvent
	for i := len(r.clicks) - 1; i >= 0; i-- {
		if r.clicks[i].Code == code {
			out = append(out, r.clicks[i])
		}
	}
	return out, nil
}

func (r *fakeClickRepo) CountByCode(ctx context.Context, code string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, click := range r.clicks {
		if click.Code == code {
			count++
		}
	}
	return count, nil
}

func (r *fakeClickRepo) CountByDevice(ctx context.Context, code string) ([]entity.DeviceStat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byDevice := make(map[string]int)
	for _, click := range r.clicks {
		if click.Code == code {
			byDevice[click.DeviceType]++
		}
	}
	var stats []entity.DeviceStat
	for deviceType, clicks := range byDevice {
		stats = append(stats, entity.DeviceStat{DeviceType: deviceType, Clicks: clicks})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Clicks > stats[j].Clicks })
	return stats, nil
}

var errCacheMiss = errors.New("cache miss")

type fakeCache struct {
	mu         sync.Mutex
	links      map[string]*entity.ShortLink
	popularity map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		links:      make(map[string]*entity.ShortLink),
		popularity: make(map[string]int),
	}
}

func (c *fakeCache) SetLink(ctx context.Context, code string, link *entity.ShortLink) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *link
	c.links[code] = &copied
	return nil
}

func (c *fakeCache) GetLink(ctx context.Context, code string) (*entity.ShortLink, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	link, ok := c.links[code]
	if !ok {
		return nil, errCacheMiss
	}
	copied := *link
	return &copied, nil
}

func (c *fakeCache) DeleteLink(ctx context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.links, code)
	return nil
}

func (c *fakeCache) IncrementPopularity(ctx context.Context, code string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.popularity[code]++
	return nil
}

func (c *fakeCache) popCount(code string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.popularity[code]
}

func (c *fakeCache) GetPopularLinks(ctx context.Context, count int) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var codes []string
	for code := range c.popularity {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return c.popularity[codes[i]] > c.popularity[codes[j]] })
	if len(codes) > count {
		codes = codes[:count]
	}
	return codes, nil
}

// stubClassifier always answers with a fixed device type.
type stubClassifier struct {
	result device.DeviceType
}

func (s *stubClassifier) Classify(userAgent, platformHint string) device.DeviceType {
	return s.result
}
