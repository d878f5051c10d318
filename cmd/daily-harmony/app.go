package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/calendar"
	"github.com/username/daily-harmony/internal/config"
	"github.com/username/daily-harmony/internal/export"
	"github.com/username/daily-harmony/internal/fortune"
	"github.com/username/daily-harmony/internal/lunar"
	"github.com/username/daily-harmony/internal/memo"
	"github.com/username/daily-harmony/internal/profile"
	"github.com/username/daily-harmony/internal/store"
)

// app holds the wired components shared by every command
type app struct {
	loc       *time.Location
	store     store.Store
	converter *lunar.Converter
	source    *calendar.YearCache
	matcher   *memo.Matcher
	annotator *calendar.Annotator
	memos     *memo.Service
	profiles  *profile.Service
	exporter  *export.Exporter
	fortune   *fortune.Client
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	st, err := store.Open(cfg.Storage.Type, cfg.Storage.Dir, cfg.Storage.GetSQLitePath(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	converter := lunar.NewConverter()

	var overrides *calendar.FileOverrides
	if cfg.Calendar.OverridesFile != "" {
		overrides = calendar.NewFileOverrides(cfg.Calendar.OverridesFile, logger)
	}
	composite := calendar.NewCompositeSource(calendar.NewComputedSource(converter, logger), overrides, logger)
	if err := composite.LoadOverrides(); err != nil {
		logger.Warn("Failed to load holiday overrides, using computed holidays only", zap.Error(err))
	}
	source := calendar.NewYearCache(composite, logger)

	matcher := memo.NewMatcher(converter, logger)

	return &app{
		loc:       cfg.Calendar.GetLocation(),
		store:     st,
		converter: converter,
		source:    source,
		matcher:   matcher,
		annotator: calendar.NewAnnotator(converter, matcher, source, cfg.Calendar.GetWeekStart(), logger),
		memos:     memo.NewService(st, logger),
		profiles:  profile.NewService(st, logger),
		exporter:  export.NewExporter(source, matcher, logger),
		fortune:   fortune.NewClient(cfg.Fortune.APIKey, cfg.Fortune.BaseURL, cfg.Fortune.Model, cfg.Fortune.GetTimeout(), logger),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func (a *app) today() time.Time {
	return time.Now().In(a.loc)
}
