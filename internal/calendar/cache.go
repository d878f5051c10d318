package calendar

import (
	"sync"

	"go.uber.org/zap"
)

// cachedYear is an immutable snapshot of one year's tables
type cachedYear struct {
	holidays Holidays
	terms    SolarTerms
}

// YearCache implements Source by memoizing another Source per year.
// Returned maps are shared snapshots and must not be modified.
type YearCache struct {
	source  Source
	logger  *zap.Logger
	cache   map[int]*cachedYear
	cacheMu sync.RWMutex
}

// NewYearCache creates a new YearCache in front of source
func NewYearCache(source Source, logger *zap.Logger) *YearCache {
	return &YearCache{
		source: source,
		logger: logger,
		cache:  make(map[int]*cachedYear),
	}
}

// HolidaysOfYear returns the cached holidays of year, building them on first use
func (yc *YearCache) HolidaysOfYear(year int) (Holidays, error) {
	entry, err := yc.year(year)
	if err != nil {
		return nil, err
	}
	return entry.holidays, nil
}

// SolarTermsOfYear returns the cached solar terms of year, building them on first use
func (yc *YearCache) SolarTermsOfYear(year int) (SolarTerms, error) {
	entry, err := yc.year(year)
	if err != nil {
		return nil, err
	}
	return entry.terms, nil
}

func (yc *YearCache) year(year int) (*cachedYear, error) {
	yc.cacheMu.RLock()
	if cached, ok := yc.cache[year]; ok {
		yc.cacheMu.RUnlock()
		yc.logger.Debug("Using cached year", zap.Int("year", year))
		return cached, nil
	}
	yc.cacheMu.RUnlock()

	// Build outside the lock; a concurrent builder of the same year produces an equal snapshot.
	holidays, err := yc.source.HolidaysOfYear(year)
	if err != nil {
		return nil, err
	}
	terms, err := yc.source.SolarTermsOfYear(year)
	if err != nil {
		return nil, err
	}
	entry := &cachedYear{holidays: holidays, terms: terms}

	yc.cacheMu.Lock()
	if cached, ok := yc.cache[year]; ok {
		entry = cached
	} else {
		yc.cache[year] = entry
	}
	yc.cacheMu.Unlock()

	yc.logger.Info("Year tables built and cached",
		zap.Int("year", year),
		zap.Int("holidays", len(holidays)),
		zap.Int("solar_terms", len(terms)))

	return entry, nil
}

// Invalidate drops the snapshot of a single year
func (yc *YearCache) Invalidate(year int) {
	yc.cacheMu.Lock()
	defer yc.cacheMu.Unlock()

	delete(yc.cache, year)
}

// ClearCache clears the cache
func (yc *YearCache) ClearCache() {
	yc.cacheMu.Lock()
	defer yc.cacheMu.Unlock()

	yc.cache = make(map[int]*cachedYear)
	yc.logger.Info("Calendar cache cleared")
}
