package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/toolsinn/shortlinks/internal/database/postgres"
	"github.com/toolsinn/shortlinks/internal/device"
	"github.com/toolsinn/shortlinks/internal/entity"
	"github.com/toolsinn/shortlinks/pkg/stream"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type LinkServiceImpl struct {
	linkRepo   postgres.LinkRepositoryInterface
	clickRepo  postgres.ClickRepositoryInterface
	cacheRepo  postgres.CacheRepository
	classifier device.Classifier
	producer   stream.Producer // may be nil
	config     *LinkServiceConfig
}

type LinkServiceConfig struct {
	CodeLength     int
	CodeAttempts   int
	BaseURL        string
	CacheTTL       time.Duration
	ClickLogWindow time.Duration
}

func NewLinkService(
	linkRepo postgres.LinkRepositoryInterface,
	clickRepo postgres.ClickRepositoryInterface,
	cacheRepo postgres.CacheRepository,
	classifier device.Classifier,
	producer stream.Producer,
	config *LinkServiceConfig,
) LinkService {
	return &LinkServiceImpl{
		linkRepo:   linkRepo,
		clickRepo:  clickRepo,
		cacheRepo:  cacheRepo,
		classifier: classifier,
		producer:   producer,
		config:     config,
	}
}

func (s *LinkServiceImpl) Shorten(ctx context.Context, dest entity.Destinations) (*entity.ShortenResponse, error) {
	if dest.Empty() {
		return nil, entity.ErrEmptyDestinations
	}
	for _, raw := range []string{dest.Desktop, dest.Android, dest.IOS} {
		if raw == "" {
			continue
		}
		if err := validateURL(raw); err != nil {
			return nil, entity.ErrInvalidURL
		}
	}

	// The conditional insert doubles as the uniqueness check: a collision
	// comes back as ErrCodeExists with no partial write, and we retry
	// with a fresh code up to the attempt budget.
	link := &entity.ShortLink{
		Destinations: dest,
		CreatedAt:    time.Now(),
	}
	created := false
	for attempt := 0; attempt < s.config.CodeAttempts; attempt++ {
		link.Code = generateCode(s.config.CodeLength)
		err := s.linkRepo.Create(ctx, link)
		if err == nil {
			created = true
			break
		}
		if errors.Is(err, entity.ErrCodeExists) {
			continue
		}
		return nil, err
	}
	if !created {
		return nil, entity.ErrCodeGenerationExhausted
	}

	if err := s.cacheRepo.SetLink(ctx, link.Code, link); err != nil {
		logrus.Warnf("failed to cache link %s: %v", link.Code, err)
	}

	return &entity.ShortenResponse{
		Code:         link.Code,
		ShortURL:     s.config.BaseURL + "/" + link.Code,
		Destinations: dest,
		CreatedAt:    link.CreatedAt,
	}, nil
}

// Resolve picks the destination for a code and dispatches click logging in
// the background. Only the lookup and the classifier sit on the redirect's
// critical path.
func (s *LinkServiceImpl) Resolve(ctx context.Context, code string, click ClickContext) (string, error) {
	var link *entity.ShortLink

	cached, err := s.cacheRepo.GetLink(ctx, code)
	if err == nil {
		link = cached
	} else {
		link, err = s.linkRepo.GetByCode(ctx, code)
		if err != nil {
			return "", entity.ErrLinkNotFound
		}
		if err := s.cacheRepo.SetLink(ctx, code, link); err != nil {
			logrus.Warnf("failed to cache link %s: %v", code, err)
		}
	}

	deviceType := s.classifier.Classify(click.UserAgent, click.PlatformHint)

	destination := selectDestination(link.Destinations, deviceType)
	if destination == "" {
		return "", entity.ErrEmptyDestinations
	}

	s.dispatchClick(code, deviceType, click)

	return destination, nil
}

// selectDestination applies the platform priority order, first match wins.
func selectDestination(dest entity.Destinations, deviceType device.DeviceType) string {
	if deviceType == device.Mobile && dest.Android != "" {
		return dest.Android
	}
	if deviceType == device.Tablet && dest.IOS != "" {
		return dest.IOS
	}
	if dest.Desktop != "" {
		return dest.Desktop
	}
	if dest.Android != "" {
		return dest.Android
	}
	return dest.IOS
}

// dispatchClick spawns the fire-and-forget logging task. It is never joined
// by the request path: the goroutine gets its own deadline-bound context and
// any failure goes to the operational log only. A click lost here is
// corrected by the reconciliation job.
func (s *LinkServiceImpl) dispatchClick(code string, deviceType device.DeviceType, click ClickContext) {
	event := &entity.ClickEvent{
		ID:           uuid.New().String(),
		Code:         code,
		DeviceType:   string(deviceType),
		UserAgent:    click.UserAgent,
		IPAddress:    click.IPAddress,
		Referer:      click.Referer,
		PlatformHint: click.PlatformHint,
		Country:      click.Country,
		Timestamp:    time.Now(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.config.ClickLogWindow)
		defer cancel()

		if err := s.clickRepo.Record(ctx, event); err != nil {
			logrus.Errorf("failed to record click for %s: %v", code, err)
			return
		}

		if err := s.linkRepo.IncrementClicks(ctx, code); err != nil {
			logrus.Errorf("failed to increment clicks for %s: %v", code, err)
		}

		if err := s.cacheRepo.IncrementPopularity(ctx, code); err != nil {
			logrus.Warnf("failed to bump popularity for %s: %v", code, err)
		}

		if s.producer != nil {
			if err := s.producer.SendClick(event); err != nil {
				logrus.Errorf("failed to publish click event for %s: %v", code, err)
			}
		}
	}()
}

func (s *LinkServiceImpl) ListRecent(ctx context.Context, limit int) ([]entity.ShortLink, error) {
	return s.linkRepo.ListRecent(ctx, limit)
}

// ListPopular ranks links by the redis popularity counter bumped on every
// click. A code that fell out of the store since its last click is skipped.
func (s *LinkServiceImpl) ListPopular(ctx context.Context, count int) ([]entity.ShortLink, error) {
	codes, err := s.cacheRepo.GetPopularLinks(ctx, count)
	if err != nil {
		return nil, err
	}

	links := make([]entity.ShortLink, 0, len(codes))
	for _, code := range codes {
		link, err := s.cacheRepo.GetLink(ctx, code)
		if err != nil {
			link, err = s.linkRepo.GetByCode(ctx, code)
			if err != nil {
				continue
			}
		}
		links = append(links, *link)
	}

	return links, nil
}

func validateURL(raw string) error {
	parsed, err := url.ParseRequestURI(raw)
	if err != nil {
		return err
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return entity.ErrInvalidURL
	}
	if parsed.Host == "" {
		return entity.ErrInvalidURL
	}
	return nil
}
