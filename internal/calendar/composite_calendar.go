package calendar

import (
	"fmt"

	"go.uber.org/zap"
)

// CompositeSource implements Source by layering file overrides on top of a
// computed source
type CompositeSource struct {
	primary   Source
	overrides *FileOverrides
	logger    *zap.Logger
}

// NewCompositeSource creates a new CompositeSource. overrides may be nil.
func NewCompositeSource(primary Source, overrides *FileOverrides, logger *zap.Logger) *CompositeSource {
	return &CompositeSource{
		primary:   primary,
		overrides: overrides,
		logger:    logger,
	}
}

// HolidaysOfYear returns the computed holidays with overrides applied
func (cs *CompositeSource) HolidaysOfYear(year int) (Holidays, error) {
	holidays, err := cs.primary.HolidaysOfYear(year)
	if err != nil {
		return nil, err
	}

	if cs.overrides == nil {
		return holidays, nil
	}
	return cs.overrides.Apply(year, holidays), nil
}

// SolarTermsOfYear returns the primary source's solar terms
func (cs *CompositeSource) SolarTermsOfYear(year int) (SolarTerms, error) {
	return cs.primary.SolarTermsOfYear(year)
}

// LoadOverrides loads the overrides file, if one is configured
func (cs *CompositeSource) LoadOverrides() error {
	if cs.overrides == nil {
		return nil
	}
	if err := cs.overrides.Load(); err != nil {
		return fmt.Errorf("failed to load holiday overrides: %w", err)
	}
	return nil
}
