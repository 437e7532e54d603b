// Package rewarder injects the team's rewards into the pool on a schedule.
package rewarder

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/ethpool/foundation/ether"
	"github.com/ardanlabs/ethpool/foundation/pool"
	"github.com/holiman/uint256"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Injector is the behavior required to deposit rewards into the pool.
type Injector interface {
	InjectRewards(amount *uint256.Int) error
}

// Config represents the settings the rewarder needs. The schedule is a cron
// expression with a leading seconds field.
type Config struct {
	Log      *zap.SugaredLogger
	Injector Injector
	Schedule string
	Amount   *uint256.Int
}

// Rewarder runs the scheduled reward injections.
type Rewarder struct {
	log      *zap.SugaredLogger
	injector Injector
	amount   *uint256.Int
	cron     *cron.Cron
}

// New constructs a rewarder and registers the schedule. Nothing runs until
// Start is called.
func New(cfg Config) (*Rewarder, error) {
	if cfg.Amount == nil || cfg.Amount.IsZero() {
		return nil, fmt.Errorf("reward amount must be greater than zero: %w", pool.ErrInvalidAmount)
	}

	r := Rewarder{
		log:      cfg.Log,
		injector: cfg.Injector,
		amount:   cfg.Amount.Clone(),
		cron:     cron.New(cron.WithSeconds()),
	}

	if _, err := r.cron.AddFunc(cfg.Schedule, r.tick); err != nil {
		return nil, fmt.Errorf("register schedule %q: %w", cfg.Schedule, err)
	}

	return &r, nil
}

// Start begins running the schedule in its own goroutine.
func (r *Rewarder) Start() {
	r.cron.Start()
	r.log.Infow("rewarder", "status", "started", "amount", ether.Format(r.amount))
}

// Stop stops the schedule. The returned context is done once a running
// injection has finished.
func (r *Rewarder) Stop() context.Context {
	ctx := r.cron.Stop()
	r.log.Infow("rewarder", "status", "stopped")
	return ctx
}

// RunNow performs an injection immediately.
func (r *Rewarder) RunNow() error {
	return r.injector.InjectRewards(r.amount)
}

// tick performs the scheduled injection. Rewards are not held for later
// when nobody is in the pool.
func (r *Rewarder) tick() {
	err := r.RunNow()
	switch {
	case errors.Is(err, pool.ErrNoDepositors):
		r.log.Infow("rewarder", "status", "skipped", "reason", err)

	case err != nil:
		r.log.Errorw("rewarder", "status", "failed", "ERROR", err)

	default:
		r.log.Infow("rewarder", "status", "injected", "amount", ether.Format(r.amount))
	}
}
