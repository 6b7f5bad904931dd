// Package scheduler runs the background jobs that keep donation state
// honest: sweeping donations whose expiry date has passed and logging which
// ones are about to expire.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/foodbridge/foodbridge/internal/clock"
	"github.com/foodbridge/foodbridge/internal/config"
	donationdomain "github.com/foodbridge/foodbridge/internal/donation/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler missing required dependencies")

type Params struct {
	fx.In

	Log         *zap.Logger
	DonationSvc donationdomain.Service
	Policy      *config.PolicyHolder
	Clock       clock.Clock
	Config      Config `optional:"true"`
}

type Scheduler struct {
	log         *zap.Logger
	cfg         Config
	donationSvc donationdomain.Service
	policy      *config.PolicyHolder
	clock       clock.Clock
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.DonationSvc == nil || p.Policy == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		donationSvc: p.DonationSvc,
		policy:      p.Policy,
		clock:       p.Clock,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	start := s.clock.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	log := s.log.With(zap.String("job", name), zap.Duration("elapsed", elapsed))
	if err == nil {
		log.Debug("job finished")
		return nil
	}

	// a deadline here is a soft timeout, the next tick picks up the rest
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out", zap.Duration("timeout", timeout))
		return nil
	}

	log.Error("job failed", zap.Error(err))
	return err
}

func (s *Scheduler) ExpireDonationsJob(ctx context.Context) error {
	return s.runJob(ctx, "expire_donations", s.cfg.JobTimeout, func(ctx context.Context) error {
		n, err := s.donationSvc.ExpireSweep(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			s.log.Info("donations expired", zap.Int64("count", n))
		}
		return nil
	})
}

func (s *Scheduler) ExpiringSoonJob(ctx context.Context) error {
	return s.runJob(ctx, "expiring_soon", s.cfg.JobTimeout, func(ctx context.Context) error {
		window := time.Duration(s.policy.Get().ExpiringSoonDays) * 24 * time.Hour
		donations, err := s.donationSvc.ExpiringSoon(ctx, window)
		if err != nil {
			return err
		}
		for _, donation := range donations {
			s.log.Info("donation expiring soon",
				zap.String("donation_id", donation.ID.String()),
				zap.String("food_name", donation.FoodName),
				zap.Time("expiry_date", donation.ExpiryDate),
			)
		}
		return nil
	})
}

func (s *Scheduler) RunOnce(ctx context.Context) error {
	if err := s.ExpireDonationsJob(ctx); err != nil {
		return err
	}
	return s.ExpiringSoonJob(ctx)
}

func (s *Scheduler) RunForever(ctx context.Context) {
	interval := s.interval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		// the sweep interval is hot-reloadable
		if next := s.interval(); next != interval {
			interval = next
			ticker.Reset(interval)
			s.log.Info("sweep interval updated", zap.Duration("interval", interval))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) interval() time.Duration {
	if d := s.policy.Get().ExpirySweepInterval; d > 0 {
		return d
	}
	return s.cfg.RunInterval
}
