package postgres

import (
	"context"

	"github.com/toolsinn/shortlinks/internal/entity"
)

type LinkRepositoryInterface interface {
	Create(ctx context.Context, link *entity.ShortLink) error
	GetByCode(ctx context.Context, code string) (*entity.ShortLink, error)
	ListRecent(ctx context.Context, limit int) ([]entity.ShortLink, error)
	ListCodes(ctx context.Context) ([]string, error)
	IncrementClicks(ctx context.Context, code string) error
	SetClicks(ctx context.Context, code string, clicks int) error
}

type ClickRepositoryInterface interface {
	Record(ctx context.Context, click *entity.ClickEvent) error
	ListRecent(ctx context.Context, code string, limit int) ([]entity.ClickEvent, error)
	ListAll(ctx context.Context, code string) ([]entity.ClickEvent, error)
	CountByCode(ctx context.Context, code string) (int, error)
	CountByDevice(ctx context.Context, code string) ([]entity.DeviceStat, error)
}

type CacheRepository interface {
	SetLink(ctx context.Context, code string, link *entity.ShortLink) error
	GetLink(ctx context.Context, code string) (*entity.ShortLink, error)
	DeleteLink(ctx context.Context, code string) error
	IncrementPopularity(ctx context.Context, code string) error
	GetPopularLinks(ctx context.Context, count int) ([]string, error)
}
