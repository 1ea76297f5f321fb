package daemon

import (
	"time"

	"github.com/robfig/cron/v3"
)

// startSweeper schedules the idle-session sweep when configured. In the
// default "off" mode sessions live for the whole process lifetime and
// this returns a no-op stopper.
func (d *Daemon) startSweeper() (func(), error) {
	sweep := d.cfg.Session.Sweep
	if sweep.Mode != "idle" {
		return func() {}, nil
	}

	maxIdle := time.Duration(sweep.IdleMinutes) * time.Minute
	schedule := sweep.Schedule
	if schedule == "" {
		schedule = "@every 30m"
	}

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		// Removal counters are fed by registry hooks.
		if removed := d.registry.SweepIdle(maxIdle); removed > 0 {
			d.metrics.SessionsActive.Set(float64(d.registry.Len()))
		}
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	d.logger.Info().Str("schedule", schedule).Dur("max_idle", maxIdle).Msg("idle session sweep enabled")
	return func() { c.Stop() }, nil
}
