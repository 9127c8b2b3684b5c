package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
)

// startScheduler runs an idempotent Sync on the given cron expression, so
// writes that reached the editor outside a gesture still land in the
// document.
func (a *App) startScheduler(ctx context.Context, expr string) error {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		if _, err := a.Sync.Sync(ctx); err != nil {
			a.log.Error().Err(err).Msg("scheduled sync failed")
			return
		}
		a.log.Debug().Msg("scheduled sync done")
	})
	if err != nil {
		return fmt.Errorf("sync schedule %q: %w", expr, err)
	}
	c.Start()
	a.scheduler = c
	a.log.Info().Str("schedule", expr).Msg("scheduled sync enabled")
	return nil
}
