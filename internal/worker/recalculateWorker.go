package worker

import (
	"context"
	"time"

	"github.com/toolsinn/shortlinks/internal/service"

	"github.com/sirupsen/logrus"
)

// RecalculateWorker periodically reruns count reconciliation so aggregate
// click counts converge on the click log even when fire-and-forget writes
// were lost or duplicated.
type RecalculateWorker struct {
	analyticsService service.AnalyticsService
	interval         time.Duration
}

func NewRecalculateWorker(analyticsService service.AnalyticsService, interval time.Duration) *RecalculateWorker {
	return &RecalculateWorker{
		analyticsService: analyticsService,
		interval:         interval,
	}
}

func (w *RecalculateWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logrus.Info("Click count recalculation worker started")

	for {
		select {
		case <-ctx.Done():
			logrus.Info("Click count recalculation worker stopped")
			return
		case <-ticker.C:
			w.recalculate(ctx)
		}
	}
}

func (w *RecalculateWorker) recalculate(ctx context.Context) {
	logrus.Info("Starting click count recalculation")

	updated, err := w.analyticsService.RecalculateAll(ctx)
	if err != nil {
		logrus.Errorf("Click count recalculation finished with errors: %v", err)
	}

	logrus.Infof("Click count recalculation completed: %d links updated", updated)
}
