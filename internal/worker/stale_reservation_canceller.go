package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/emirhangull/Train-DB-APP/internal/pkg/logger"
)

// StaleCanceller cancels reservations left unpaid past a cutoff.
type StaleCanceller interface {
	CancelStale(ctx context.Context, maxAge time.Duration) (int, error)
}

// StaleReservationCanceller periodically cancels reservations that
// stayed in created status too long, releasing their seats.
type StaleReservationCanceller struct {
	bookingService StaleCanceller
	interval       time.Duration
	maxAge         time.Duration
	stopCh         chan struct{}
	doneCh         chan struct{}
}

func NewStaleReservationCanceller(
	bs StaleCanceller,
	interval time.Duration,
	maxAge time.Duration,
) *StaleReservationCanceller {
	return &StaleReservationCanceller{
		bookingService: bs,
		interval:       interval,
		maxAge:         maxAge,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start runs the canceller until the context is cancelled or Stop is
// called.
func (w *StaleReservationCanceller) Start(ctx context.Context) {
	logger.Info("stale reservation canceller started",
		zap.Duration("interval", w.interval),
		zap.Duration("max_age", w.maxAge),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("stale reservation canceller stopped (context cancelled)")
			return
		case <-w.stopCh:
			logger.Info("stale reservation canceller stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

// Stop signals the canceller and waits for the loop to exit.
func (w *StaleReservationCanceller) Stop() {
	close(w.stopCh)
	<-w.doneCh
}

func (w *StaleReservationCanceller) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("stale reservation sweep started")

	count, err := w.bookingService.CancelStale(ctx, w.maxAge)
	if err != nil {
		log.Error("stale reservation sweep failed", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("stale reservations cancelled", zap.Int("count", count))
	} else {
		log.Debug("no stale reservations")
	}
}
