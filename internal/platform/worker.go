// AngelaMos | 2026
// worker.go

package platform

import (
	"context"
	"log/slog"
	"time"
)

// Worker runs the activity sync on a fixed interval until its context
// is canceled. The first pass runs shortly after startup so a fresh
// deploy does not wait a full interval for usage data.
type Worker struct {
	service  *Service
	interval time.Duration
	logger   *slog.Logger
}

func NewWorker(service *Service, interval time.Duration, logger *slog.Logger) *Worker {
	return &Worker{
		service:  service,
		interval: interval,
		logger:   logger,
	}
}

func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("platform sync worker started",
		slog.Duration("interval", w.interval),
	)

	initial := time.NewTimer(30 * time.Second)
	defer initial.Stop()

	select {
	case <-ctx.Done():
		return
	case <-initial.C:
		w.runOnce(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("platform sync worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	if _, err := w.service.Sync(ctx); err != nil && ctx.Err() == nil {
		w.logger.Error("platform sync failed",
			slog.String("error", err.Error()),
		)
	}
}
