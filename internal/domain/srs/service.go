package srs

import (
	"errors"
	"fmt"

	"github.com/phrazzld/kioku/internal/domain"
)

// Common errors
var (
	ErrInvalidQuality = domain.ErrInvalidQuality
	ErrInvalidState   = errors.New("invalid prior progress state")
)

// Service defines the interface for scheduling operations
type Service interface {
	// Schedule computes the state that follows a review of the given quality.
	// A nil prior means the item has never been reviewed.
	Schedule(quality int, prior *domain.ProgressState) (domain.ProgressState, error)

	// InitialState returns the state assumed for an unreviewed item.
	InitialState() domain.ProgressState
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduler with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduler with custom parameters
func NewServiceWithParams(params *Params) (Service, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	p := *params
	return &defaultService{params: &p}, nil
}

// InitialState implements Service.
func (s *defaultService) InitialState() domain.ProgressState {
	return domain.ProgressState{
		Interval:   0,
		EaseFactor: s.params.DefaultEaseFactor,
		Status:     domain.StatusNew,
	}
}

// Schedule implements Service.
func (s *defaultService) Schedule(quality int, prior *domain.ProgressState) (domain.ProgressState, error) {
	if !domain.ValidQuality(quality) {
		return domain.ProgressState{}, fmt.Errorf("%w: got %d", ErrInvalidQuality, quality)
	}

	state := s.InitialState()
	if prior != nil {
		state = *prior
	}
	if state.Interval < 0 || state.EaseFactor <= 0 || !state.Status.Valid() {
		return domain.ProgressState{}, fmt.Errorf("%w: %+v", ErrInvalidState, state)
	}

	return schedule(quality, state, s.params), nil
}
