package statuses

import (
	"context"
	"time"

	"github.com/adhocore/gronx"
	"go.uber.org/zap"
)

// Sweep deletes every status past its lifetime and returns how many were removed
func (s *Service) Sweep(ctx context.Context) (int64, error) {
	n, err := s.writer.PurgeExpiredStatuses(ctx, s.since())
	if err != nil {
		return 0, err
	}

	if s.metrics != nil && n > 0 {
		s.metrics.StatusesSwept(n)
	}

	return n, nil
}

// RunSweeper sweeps expired statuses on the given cron schedule until ctx is done.
// The returned channel is closed once the sweeper has stopped.
func (s *Service) RunSweeper(ctx context.Context, cronExpr string) (<-chan struct{}, error) {
	if !gronx.New().IsValid(cronExpr) {
		return nil, errInvalidCron(cronExpr)
	}

	done := make(chan struct{})

	go func() {
		defer close(done)

		for {
			next, err := gronx.NextTickAfter(cronExpr, time.Now().UTC(), false)
			if err != nil {
				zap.S().Errorw("status sweeper, failed to compute next tick",
					"cron", cronExpr,
					"error", err,
				)

				select {
				case <-time.After(time.Second * 30):
					continue
				case <-ctx.Done():
					return
				}
			}

			wait := time.Until(next)
			if wait > 0 {
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return
				}
			}

			s.sweepOnce(ctx)

			if wait <= 0 {
				time.Sleep(time.Second)
			}
		}
	}()

	return done, nil
}

func (s *Service) sweepOnce(ctx context.Context) {
	lCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	n, err := s.Sweep(lCtx)
	if err != nil {
		zap.S().Errorw("status sweeper",
			"error", err,
		)

		return
	}

	if n > 0 {
		zap.S().Infow("status sweeper, removed expired statuses",
			"count", n,
		)
	}
}
