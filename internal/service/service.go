package service

import (
	"context"

	"github.com/toolsinn/shortlinks/internal/entity"
)

// ClickContext is the raw request metadata captured alongside a redirect.
type ClickContext struct {
	UserAgent    string
	IPAddress    string
	Referer      string
	PlatformHint string
	Country      string
}

type LinkService interface {
	Shorten(ctx context.Context, dest entity.Destinations) (*entity.ShortenResponse, error)
	Resolve(ctx context.Context, code string, click ClickContext) (string, error)
	ListRecent(ctx context.Context, limit int) ([]entity.ShortLink, error)
	ListPopular(ctx context.Context, count int) ([]entity.ShortLink, error)
}

type AnalyticsService interface {
	GetAnalytics(ctx context.Context, code string) (*entity.LinkAnalytics, error)
	ListClicks(ctx context.Context, code string) ([]entity.ClickEvent, error)
	RecalculateAll(ctx context.Context) (int, error)
}
