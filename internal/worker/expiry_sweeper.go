package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ExpiredPurger is implemented by stores that cannot expire keys on their own.
type ExpiredPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ExpirySweeper periodically removes expired shared records.
type ExpirySweeper struct {
	purger   ExpiredPurger
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewExpirySweeper(purger ExpiredPurger, interval time.Duration, log zerolog.Logger) *ExpirySweeper {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ExpirySweeper{
		purger:   purger,
		interval: interval,
		log:      log.With().Str("component", "expiry_sweeper").Logger(),
		now:      time.Now,
	}
}

func (s *ExpirySweeper) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	sweepCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				s.Sweep(sweepCtx)
			}
		}
	}()
}

// Sweep runs a single purge pass.
func (s *ExpirySweeper) Sweep(ctx context.Context) int64 {
	removed, err := s.purger.DeleteExpired(ctx, s.now())
	if err != nil {
		s.log.Error().Err(err).Msg("purge expired shared conversations failed")
		return 0
	}
	if removed > 0 {
		s.log.Info().Int64("removed", removed).Msg("purged expired shared conversations")
	}
	return removed
}

func (s *ExpirySweeper) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}
