package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amanuel-asmare/meserte-hotel-booking/internal/repository"
)

// RunExpirySweeper cancels pending bookings whose payment grace period has
// elapsed, releasing their rooms back to the pool.  It blocks until ctx is
// cancelled; run it in its own goroutine.  Each sweep is best effort: a
// booking that fails to cancel is logged and retried next tick.
func (r *Reconciler) RunExpirySweeper(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()
	r.log.WithFields(logrus.Fields{
		"grace":    r.cfg.GracePeriod,
		"interval": r.cfg.SweepInterval,
	}).Info("expiry sweeper started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			r.sweepExpired(ctx)
		}
	}
}

func (r *Reconciler) sweepExpired(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.cfg.GracePeriod)
	expired, err := r.store.ListExpiredPending(ctx, cutoff)
	if err != nil {
		r.log.WithError(err).Error("expiry sweep query failed")
		return
	}
	for i := range expired {
		b := &expired[i]
		// Unpaid, so nothing to refund.  A booking confirmed between the
		// listing and the cancel is no longer pending and is left alone.
		if err := r.store.ExpireBooking(ctx, b.ID); err != nil {
			if errors.Is(err, repository.ErrInvalidTransition) {
				continue
			}
			r.log.WithError(err).WithField("booking_id", b.ID).Error("expiry cancel failed")
			continue
		}
		r.log.WithFields(logrus.Fields{
			"booking_id": b.ID,
			"room_id":    b.RoomID,
		}).Info("pending booking expired")
	}
}
