// Package config holds the scheduler's tuning constants as a single
// validated struct, grounded on the way
// internal/scheduler/configuration.Configuration validates itself with
// go-playground/validator.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds the tunables fixed for a run. Defaults match the reference
// values: a pool never shrinks below Floor, the controller keeps the
// ignoring-boot idle fraction within [MinIdleFraction, MaxIdleFraction], a
// VM cannot accept work until BootDelay after launch, a job may wait up to
// PlacementSlack past its arrival for a VM to free up, placement failures
// are tolerated for WarmupGrace after the first job, and only VMs with
// fewer than RetireDeadline minutes left in their billing hour are
// retirement candidates.
type Config struct {
	Floor           int           `validate:"gte=0"`
	MinIdleFraction float64       `validate:"gt=0,ltfield=MaxIdleFraction"`
	MaxIdleFraction float64       `validate:"lt=1"`
	BootDelay       time.Duration `validate:"gte=0"`
	PlacementSlack  time.Duration `validate:"gte=0"`
	WarmupGrace     time.Duration `validate:"gte=0"`
	RetireDeadline  time.Duration `validate:"gte=0"`
}

// Default returns the spec's reference tunables.
func Default() Config {
	return Config{
		Floor:           40,
		MinIdleFraction: 0.4,
		MaxIdleFraction: 0.7,
		BootDelay:       120 * time.Second,
		PlacementSlack:  5 * time.Second,
		WarmupGrace:     24 * time.Hour,
		RetireDeadline:  10 * time.Minute,
	}
}

// Validate checks the struct tags above and returns an error describing the
// first violation, if any.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}
