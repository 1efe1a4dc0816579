package service

import (
	"context"
	"testing"
	"time"

	"github.com/toolsinn/shortlinks/internal/device"
	"github.com/toolsinn/shortlinks/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedLink(t *testing.T, linkRepo *fakeLinkRepo, code string, clicks int) {
	t.Helper()
	err := linkRepo.Create(context.Background(), &entity.ShortLink{
		Code:         code,
		Destinations: entity.Destinations{Desktop: "https://a.com"},
		CreatedAt:    time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, linkRepo.SetClicks(context.Background(), code, clicks))
}

func seedClicks(t *testing.T, clickRepo *fakeClickRepo, code, deviceType string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := clickRepo.Record(context.Background(), &entity.ClickEvent{
			ID:         code + "-" + deviceType + "-" + string(rune('a'+i)),
			Code:       code,
			DeviceType: deviceType,
			Timestamp:  time.Now(),
		})
		require.NoError(t, err)
	}
}

func TestGetAnalytics(t *testing.T) {
	linkRepo := newFakeLinkRepo()
	clickRepo := newFakeClickRepo()
	svc := NewAnalyticsService(linkRepo, clickRepo, newFakeCache())

	seedLink(t, linkRepo, "abc1234", 5)
	seedClicks(t, clickRepo, "abc1234", string(device.Desktop), 3)
	seedClicks(t, clickRepo, "abc1234", string(device.Mobile), 2)

	analytics, err := svc.GetAnalytics(context.Background(), "abc1234")

	require.NoError(t, err)
	assert.Equal(t, "abc1234", analytics.Code)
	assert.Equal(t, 5, analytics.TotalClicks)
	require.Len(t, analytics.DeviceStats, 2)
	assert.Equal(t, string(device.Desktop), analytics.DeviceStats[0].DeviceType)
	assert.Equal(t, 3, analytics.DeviceStats[0].Clicks)
	assert.Len(t, analytics.RecentClicks, 5)
}

func TestGetAnalyticsUnknownCode(t *testing.T) {
	svc := NewAnalyticsService(newFakeLinkRepo(), newFakeClickRepo(), newFakeCache())

	_, err := svc.GetAnalytics(context.Background(), "missing")

	assert.ErrorIs(t, err, entity.ErrLinkNotFound)
}

func TestListClicks(t *testing.T) {
	linkRepo := newFakeLinkRepo()
	clickRepo := newFakeClickRepo()
	svc := NewAnalyticsService(linkRepo, clickRepo, newFakeCache())

	seedLink(t, linkRepo, "abc1234", 0)
	seedClicks(t, clickRepo, "abc1234", string(device.Tablet), 3)

	clicks, err := svc.ListClicks(context.Background(), "abc1234")
	require.NoError(t, err)
	assert.Len(t, clicks, 3)

	_, err = svc.ListClicks(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrLinkNotFound)
}

func TestRecalculateAllCorrectsDrift(t *testing.T) {
	linkRepo := newFakeLinkRepo()
	clickRepo := newFakeClickRepo()
	svc := NewAnalyticsService(linkRepo, clickRepo, newFakeCache())

	// aggregates drifted both directions from the click log
	seedLink(t, linkRepo, "under01", 1)
	seedClicks(t, clickRepo, "under01", string(device.Desktop), 4)

	seedLink(t, linkRepo, "over001", 9)
	seedClicks(t, clickRepo, "over001", string(device.Mobile), 2)

	seedLink(t, linkRepo, "clean01", 0)

	updated, err := svc.RecalculateAll(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, updated)
	assert.Equal(t, 4, linkRepo.clicks("under01"))
	assert.Equal(t, 2, linkRepo.clicks("over001"))
	assert.Equal(t, 0, linkRepo.clicks("clean01"))
}

func TestRecalculateAllIsIdempotent(t *testing.T) {
	linkRepo := newFakeLinkRepo()
	clickRepo := newFakeClickRepo()
	svc := NewAnalyticsService(linkRepo, clickRepo, newFakeCache())

	seedLink(t, linkRepo, "abc1234", 7)
	seedClicks(t, clickRepo, "abc1234", string(device.Desktop), 3)

	updated, err := svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 3, linkRepo.clicks("abc1234"))

	// second run with no new clicks changes nothing
	updated, err = svc.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)
	assert.Equal(t, 3, linkRepo.clicks("abc1234"))
}

func TestRecalculateAllInvalidatesCache(t *testing.T) {
	linkRepo := newFakeLinkRepo()
	clickRepo := newFakeClickRepo()
	cacheRepo := newFakeCache()
	svc := NewAnalyticsService(linkRepo, clickRepo, cacheRepo)

	seedLink(t, linkRepo, "abc1234", 7)
	link, err := linkRepo.GetByCode(context.Background(), "abc1234")
	require.NoError(t, err)
	require.NoError(t, cacheRepo.SetLink(context.Background(), "abc1234", link))

	_, err = svc.RecalculateAll(context.Background())
	require.NoError(t, err)

	_, err = cacheRepo.GetLink(context.Background(), "abc1234")
	assert.ErrorIs(t, err, errCacheMiss)
}

// End-to-end of the eventual-consistency contract: resolve N times, then
// reconcile and check the aggregate matches the persisted events exactly.
func TestResolveThenRecalculate(t *testing.T) {
	linkRepo := newFakeLinkRepo()
	clickRepo := newFakeClickRepo()
	cacheRepo := newFakeCache()
	linkSvc := NewLinkService(linkRepo, clickRepo, cacheRepo, &stubClassifier{result: device.Desktop}, nil, testConfig())
	analyticsSvc := NewAnalyticsService(linkRepo, clickRepo, cacheRepo)

	resp, err := linkSvc.Shorten(context.Background(), entity.Destinations{Desktop: "https://a.com"})
	require.NoError(t, err)

	const n = 10
	for i := 0; i < n; i++ {
		_, err := linkSvc.Resolve(context.Background(), resp.Code, ClickContext{UserAgent: "test"})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		count, _ := clickRepo.CountByCode(context.Background(), resp.Code)
		return count == n
	}, 2*time.Second, 10*time.Millisecond)

	// corrupt the aggregate, reconciliation must repair it
	require.NoError(t, linkRepo.SetClicks(context.Background(), resp.Code, 999))

	_, err = analyticsSvc.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, n, linkRepo.clicks(resp.Code))
}
