package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"carrental/internal/domain"
	"carrental/internal/pkg/apperror"
)

// Reservations is the slice of the booking engine the sweeper drives.
type Reservations interface {
	OverdueReservations(ctx context.Context, cutoff time.Time) ([]int64, error)
	MarkNoShow(ctx context.Context, id int64) (*domain.Reservation, error)
}

// Runner holds the scheduled jobs and their dependencies.
type Runner struct {
	reservations Reservations
	noShowGrace  time.Duration
	log          *slog.Logger
	now          func() time.Time
}

func NewRunner(reservations Reservations, noShowGrace time.Duration, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		reservations: reservations,
		noShowGrace:  noShowGrace,
		log:          log,
		now:          time.Now,
	}
}

func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// SweepNoShows marks confirmed reservations whose pickup passed more than the
// grace period ago as no_show. Each reservation is its own transaction; one
// that changed state since the listing is skipped.
func (r *Runner) SweepNoShows(ctx context.Context) (int, error) {
	cutoff := r.now().UTC().Add(-r.noShowGrace)
	ids, err := r.reservations.OverdueReservations(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("list overdue reservations: %w", err)
	}

	marked := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			return marked, ctx.Err()
		}
		if _, err := r.reservations.MarkNoShow(ctx, id); err != nil {
			if apperror.IsBusiness(err) {
				r.log.Warn("no-show skipped", "reservation_id", id, "reason", err.Error())
				continue
			}
			r.log.Error("no-show failed", "reservation_id", id, "error", err)
			continue
		}
		marked++
	}
	return marked, nil
}

// NoShowJob is the cron entry point for SweepNoShows.
func (r *Runner) NoShowJob() {
	r.runWithRecovery("no_show_sweeper", func() {
		n, err := r.SweepNoShows(context.Background())
		if err != nil {
			r.log.Error("no-show sweep failed", "error", err)
			return
		}
		if n > 0 {
			r.log.Info("reservations marked no-show", "count", n)
		}
	})
}

func (r *Runner) runWithRecovery(name string, fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("job panicked", "job", name, "panic", rec)
		}
	}()

	start := time.Now()
	fn()
	r.log.Debug("job completed", "job", name, "took", time.Since(start))
}
