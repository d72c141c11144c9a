package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/kioku/internal/domain"
)

// ErrInvalidParams is returned when scheduling parameters are inconsistent.
var ErrInvalidParams = errors.New("invalid scheduler parameters")

// Params defines the tunable constants of the scheduler. Ease factors are
// fixed-point integers scaled by 100.
type Params struct {
	// DefaultEaseFactor is the ease assumed for an item never reviewed.
	DefaultEaseFactor int
	// MinEaseFactor is the floor no review can push the ease below.
	MinEaseFactor int
	// FailEasePenalty is subtracted from the ease on a failed review.
	FailEasePenalty int
	// PassingQuality is the lowest quality counted as a successful recall.
	PassingQuality int
	// EaseDivisor is the fixed-point scale of ease factors; the next interval
	// is prior interval * ease / EaseDivisor.
	EaseDivisor int
	// ReviewingInterval promotes learning items once reached.
	ReviewingInterval int
	// BurnedInterval promotes reviewing items once reached.
	BurnedInterval int
	// MaxInterval caps interval growth so due dates stay representable.
	MaxInterval int
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		DefaultEaseFactor: domain.DefaultEaseFactor,
		MinEaseFactor:     domain.MinEaseFactor,
		FailEasePenalty:   20,
		PassingQuality:    domain.PassingQuality,
		EaseDivisor:       100,
		ReviewingInterval: 21,
		BurnedInterval:    365,
		MaxInterval:       36500,
	}
}

// Validate checks that the parameters describe a usable scheduler.
func (p *Params) Validate() error {
	switch {
	case p == nil:
		return fmt.Errorf("%w: params cannot be nil", ErrInvalidParams)
	case p.MinEaseFactor <= 0:
		return fmt.Errorf("%w: min ease factor must be positive", ErrInvalidParams)
	case p.DefaultEaseFactor < p.MinEaseFactor:
		return fmt.Errorf("%w: default ease factor below minimum", ErrInvalidParams)
	case p.FailEasePenalty < 0:
		return fmt.Errorf("%w: fail ease penalty must not be negative", ErrInvalidParams)
	case p.PassingQuality <= domain.MinQuality || p.PassingQuality > domain.MaxQuality:
		return fmt.Errorf("%w: passing quality must be in 1..5", ErrInvalidParams)
	case p.EaseDivisor <= 0:
		return fmt.Errorf("%w: ease divisor must be positive", ErrInvalidParams)
	case p.ReviewingInterval < 1 || p.BurnedInterval < p.ReviewingInterval:
		return fmt.Errorf("%w: promotion thresholds must be increasing", ErrInvalidParams)
	case p.MaxInterval < p.BurnedInterval:
		return fmt.Errorf("%w: max interval below burned threshold", ErrInvalidParams)
	}
	return nil
}
