package auth

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/platewise/platewise/internal/metrics"
	"github.com/platewise/platewise/internal/session"
	"github.com/platewise/platewise/internal/telemetry"
)

// sweepInterval is how often expired sessions are purged. Expired
// sessions are already invisible to refresh; the sweep only bounds store
// growth.
const sweepInterval = 5 * time.Minute

// sweepTimeout bounds a single store round trip.
const sweepTimeout = 30 * time.Second

// Sweeper periodically deletes expired sessions. Sweep failures are
// logged and swallowed; the next tick retries.
type Sweeper struct {
	sessions session.Store
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewSweeper(sessionStore session.Store, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{sessions: sessionStore, logger: logger}
}

// Start begins the background sweep loop. It is safe to call Start once;
// Stop cancels the loop on shutdown.
func (s *Sweeper) Start() {
	if s.cron != nil {
		return
	}

	s.cron = cron.New()
	_, _ = s.cron.AddFunc("@every "+sweepInterval.String(), s.sweep)
	s.cron.Start()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	ctx, span := telemetry.StartSweepSpan(ctx)

	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		s.logger.Warn("session sweep failed", zap.Error(err))
		telemetry.EndAuthSpan(span, metrics.ResultError)
		return
	}

	if n > 0 {
		metrics.SessionsSweptTotal.Add(float64(n))
		s.logger.Info("expired sessions swept", zap.Int("count", n))
	}
	telemetry.EndAuthSpan(span, metrics.ResultSuccess)
}
