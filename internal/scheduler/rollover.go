// Package scheduler re-finalizes derived views after local day boundaries pass.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"hydrolog/internal/domain"
)

// RolloverChecker fires on an interval and invokes the rollover callback
// once per local calendar-day change, so a streak earned yesterday shows up
// without waiting for the next user action.
type RolloverChecker struct {
	log        *zap.Logger
	cron       *cron.Cron
	interval   time.Duration
	loc        *time.Location
	onRollover func()

	mu      sync.Mutex
	lastDay domain.Day
}

// New creates a rollover checker with the given check interval. onRollover
// runs at most once per day change, on the cron goroutine.
func New(interval time.Duration, loc *time.Location, onRollover func(), log *zap.Logger) *RolloverChecker {
	return &RolloverChecker{
		log:        log,
		cron:       cron.New(),
		interval:   interval,
		loc:        loc,
		onRollover: onRollover,
		lastDay:    domain.DayOf(time.Now(), loc),
	}
}

// Start begins periodic day-boundary checks.
func (c *RolloverChecker) Start() error {
	spec := fmt.Sprintf("@every %s", c.interval)
	if _, err := c.cron.AddFunc(spec, c.check); err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}
	c.cron.Start()
	c.log.Info("rollover checker started", zap.Duration("interval", c.interval))
	return nil
}

// Stop stops the checker and waits for a running check to finish.
func (c *RolloverChecker) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
	c.log.Info("rollover checker stopped")
}

func (c *RolloverChecker) check() {
	today := domain.DayOf(time.Now(), c.loc)

	c.mu.Lock()
	rolled := c.lastDay.Before(today)
	if rolled {
		c.lastDay = today
	}
	c.mu.Unlock()

	if !rolled {
		return
	}
	c.log.Info("local day rolled over", zap.Stringer("day", today))
	c.onRollover()
}
