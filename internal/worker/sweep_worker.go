package worker

import (
	"context"

	"github.com/imtihan/imtihan-backend/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SweepWorker periodically abandons sessions whose clock ran out long ago
// with no further client contact. The schedule comes from configuration in
// cron syntax, "@every 1m" by default.
type SweepWorker struct {
	sessionSvc *service.SessionService
	schedule   string
	cron       *cron.Cron
	log        zerolog.Logger
}

func NewSweepWorker(sessionSvc *service.SessionService, schedule string, log zerolog.Logger) *SweepWorker {
	return &SweepWorker{
		sessionSvc: sessionSvc,
		schedule:   schedule,
		log:        log.With().Str("component", "sweep_worker").Logger(),
	}
}

// Start registers the sweep job and runs the scheduler until ctx is done.
func (w *SweepWorker) Start(ctx context.Context) error {
	w.cron = cron.New()
	if _, err := w.cron.AddFunc(w.schedule, func() { w.sweep(ctx) }); err != nil {
		return err
	}

	w.log.Info().Str("schedule", w.schedule).Msg("SweepWorker started")
	w.cron.Start()

	<-ctx.Done()
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	return nil
}

func (w *SweepWorker) sweep(ctx context.Context) {
	n, err := w.sessionSvc.AbandonStale(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("Sweep failed")
		return
	}
	if n > 0 {
		w.log.Info().Int("abandoned", n).Msg("Stale sessions abandoned")
	}
}
