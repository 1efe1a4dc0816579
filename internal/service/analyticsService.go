package service

import (
	"context"
	"fmt"

	"github.com/toolsinn/shortlinks/internal/database/postgres"
	"github.com/toolsinn/shortlinks/internal/entity"

	"github.com/sirupsen/logrus"
)

const recentClicksLimit = 50

type AnalyticsServiceImpl struct {
	linkRepo  postgres.LinkRepositoryInterface
	clickRepo postgres.ClickRepositoryInterface
	cacheRepo postgres.CacheRepository
}

func NewAnalyticsService(
	linkRepo postgres.LinkRepositoryInterface,
	clickRepo postgres.ClickRepositoryInterface,
	cacheRepo postgres.CacheRepository,
) AnalyticsService {
	return &AnalyticsServiceImpl{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		cacheRepo: cacheRepo,
	}
}

func (s *AnalyticsServiceImpl) GetAnalytics(ctx context.Context, code string) (*entity.LinkAnalytics, error) {
	link, err := s.linkRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	deviceStats, err := s.clickRepo.CountByDevice(ctx, code)
	if err != nil {
		return nil, err
	}

	recent, err := s.clickRepo.ListRecent(ctx, code, recentClicksLimit)
	if err != nil {
		return nil, err
	}

	return &entity.LinkAnalytics{
		Code:         code,
		TotalClicks:  link.Clicks,
		DeviceStats:  deviceStats,
		RecentClicks: recent,
	}, nil
}

// ListClicks returns the full click ledger for a code, newest first.
func (s *AnalyticsServiceImpl) ListClicks(ctx context.Context, code string) ([]entity.ClickEvent, error) {
	if _, err := s.linkRepo.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.clickRepo.ListAll(ctx, code)
}

// RecalculateAll overwrites every link's aggregate with the true click-log
// cardinality. Running it twice with no new clicks is a no-op, and it is
// safe next to live traffic: a click landing mid-run stays undercounted
// only until the next run.
func (s *AnalyticsServiceImpl) RecalculateAll(ctx context.Context) (int, error) {
	codes, err := s.linkRepo.ListCodes(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	failed := 0
	for _, code := range codes {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		count, err := s.clickRepo.CountByCode(ctx, code)
		if err != nil {
			logrus.Errorf("recalculate: failed to count clicks for %s: %v", code, err)
			failed++
			continue
		}

		if err := s.linkRepo.SetClicks(ctx, code, count); err != nil {
			logrus.Errorf("recalculate: failed to set clicks for %s: %v", code, err)
			failed++
			continue
		}

		// Drop the cached copy so readers don't see the stale aggregate.
		if err := s.cacheRepo.DeleteLink(ctx, code); err != nil {
			logrus.Warnf("recalculate: failed to invalidate cache for %s: %v", code, err)
		}

		updated++
	}

	if failed > 0 {
		return updated, fmt.Errorf("recalculate: %d of %d links failed", failed, len(codes))
	}
	return updated, nil
}
