package calendar

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/username/daily-harmony/pkg/dateutil"
)

// overridesFile is the on-disk layout of the holiday overrides file.
//
//	holidays:
//	  - date: 2024-04-10
//	    name: 국회의원 선거일
//	removals:
//	  - 2022-12-26
type overridesFile struct {
	Holidays []overrideEntry `yaml:"holidays"`
	Removals []string        `yaml:"removals"`
}

type overrideEntry struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// FileOverrides holds extra holidays (elections, one-off public holidays) and
// removals of computed ones, loaded from a YAML file
type FileOverrides struct {
	filePath string
	logger   *zap.Logger
	extra    map[int]Holidays        // key: year
	removals map[int]map[string]bool // key: year
}

// NewFileOverrides creates a new FileOverrides instance
func NewFileOverrides(filePath string, logger *zap.Logger) *FileOverrides {
	return &FileOverrides{
		filePath: filePath,
		logger:   logger,
		extra:    make(map[int]Holidays),
		removals: make(map[int]map[string]bool),
	}
}

// Load loads the overrides from file
func (fo *FileOverrides) Load() error {
	data, err := os.ReadFile(fo.filePath)
	if err != nil {
		return fmt.Errorf("failed to read overrides file: %w", err)
	}

	var raw overridesFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse overrides file: %w", err)
	}

	extra := make(map[int]Holidays)
	for _, entry := range raw.Holidays {
		date, err := dateutil.ParseISODate(entry.Date)
		if err != nil {
			fo.logger.Warn("Failed to parse override date", zap.String("date", entry.Date), zap.Error(err))
			continue
		}
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			fo.logger.Warn("Override without a name", zap.String("date", entry.Date))
			continue
		}

		if extra[date.Year()] == nil {
			extra[date.Year()] = make(Holidays)
		}
		key := dateutil.ISODate(date)
		extra[date.Year()][key] = Holiday{
			Date:   key,
			Name:   name,
			Label:  name,
			Origin: OriginOverride,
		}
	}

	removals := make(map[int]map[string]bool)
	for _, s := range raw.Removals {
		date, err := dateutil.ParseISODate(s)
		if err != nil {
			fo.logger.Warn("Failed to parse removal date", zap.String("date", s), zap.Error(err))
			continue
		}
		if removals[date.Year()] == nil {
			removals[date.Year()] = make(map[string]bool)
		}
		removals[date.Year()][dateutil.ISODate(date)] = true
	}

	fo.extra = extra
	fo.removals = removals

	fo.logger.Info("Holiday overrides loaded",
		zap.String("file", fo.filePath),
		zap.Int("holidays", len(raw.Holidays)),
		zap.Int("removals", len(raw.Removals)))

	return nil
}

// Apply returns a copy of computed with the year's overrides merged in.
// Removals are applied first, then override entries replace whatever is on their date.
func (fo *FileOverrides) Apply(year int, computed Holidays) Holidays {
	out := make(Holidays, len(computed)+len(fo.extra[year]))
	for key, h := range computed {
		if fo.removals[year][key] {
			continue
		}
		out[key] = h
	}
	for key, h := range fo.extra[year] {
		out[key] = h
	}
	return out
}
