package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/supportbox/internal/observability"
	"github.com/spec-kit/supportbox/internal/triage"
)

// SessionSweeper drops triage sessions nobody has touched for a while.
type SessionSweeper struct {
	store    *triage.Store
	idleTTL  time.Duration
	interval time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewSessionSweeper constructs sweeper.
func NewSessionSweeper(store *triage.Store, idleTTL, interval time.Duration, metrics *observability.Metrics, logger *zap.Logger) *SessionSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{
		store:    store,
		idleTTL:  idleTTL,
		interval: interval,
		metrics:  metrics,
		logger:   logger,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (w *SessionSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.SweepOnce()
		}
	}
}

// SweepOnce performs a single sweep and refreshes the session gauge.
func (w *SessionSweeper) SweepOnce() int {
	removed := w.store.Sweep(w.idleTTL)
	if removed > 0 {
		w.logger.Info("idle triage sessions swept", zap.Int("removed", removed))
	}
	w.metrics.SetActiveSessions(w.store.Len())
	return removed
}
