package srs

import "fmt"

// Params holds the scheduler's tunable constants.
// A zero field takes the value from DefaultParams.
type Params struct {
	InitialEase     float64 `koanf:"initial_ease"`
	MinimumEase     float64 `koanf:"minimum_ease"`
	HardFactor      float64 `koanf:"hard_factor"`
	EasyBonus       float64 `koanf:"easy_bonus"`
	GraduationDays  int     `koanf:"graduation_days"`
	MaximumInterval int     `koanf:"maximum_interval"`
}

// DefaultParams returns the SM-2 family constants used when nothing is configured.
func DefaultParams() Params {
	return Params{
		InitialEase:     2.5,
		MinimumEase:     1.3,
		HardFactor:      1.2,
		EasyBonus:       1.3,
		GraduationDays:  21,
		MaximumInterval: 36500,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.InitialEase == 0 {
		p.InitialEase = d.InitialEase
	}
	if p.MinimumEase == 0 {
		p.MinimumEase = d.MinimumEase
	}
	if p.HardFactor == 0 {
		p.HardFactor = d.HardFactor
	}
	if p.EasyBonus == 0 {
		p.EasyBonus = d.EasyBonus
	}
	if p.GraduationDays == 0 {
		p.GraduationDays = d.GraduationDays
	}
	if p.MaximumInterval == 0 {
		p.MaximumInterval = d.MaximumInterval
	}
	return p
}

// Validate checks that the parameters describe a usable schedule.
func (p Params) Validate() error {
	switch {
	case p.MinimumEase < 1:
		return fmt.Errorf("%w: minimum ease %.2f below 1", ErrInvalidParams, p.MinimumEase)
	case p.InitialEase < p.MinimumEase:
		return fmt.Errorf("%w: initial ease %.2f below minimum %.2f", ErrInvalidParams, p.InitialEase, p.MinimumEase)
	case p.HardFactor < 1:
		return fmt.Errorf("%w: hard factor %.2f below 1", ErrInvalidParams, p.HardFactor)
	case p.EasyBonus < 1:
		return fmt.Errorf("%w: easy bonus %.2f below 1", ErrInvalidParams, p.EasyBonus)
	case p.GraduationDays < 1:
		return fmt.Errorf("%w: graduation threshold %d must be positive", ErrInvalidParams, p.GraduationDays)
	case p.MaximumInterval < 1:
		return fmt.Errorf("%w: maximum interval %d must be positive", ErrInvalidParams, p.MaximumInterval)
	}
	return nil
}
