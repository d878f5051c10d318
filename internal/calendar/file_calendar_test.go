package calendar

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

const overridesYAML = `
holidays:
  - date: "2024-04-10"
    name: 국회의원 선거일
  - date: "2024-10-01"
    name: 국군의 날
  - date: "not-a-date"
    name: broken
  - date: "2024-11-11"
    name: ""
removals:
  - "2022-12-26"
`

func writeOverrides(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "holidays.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write overrides: %v", err)
	}
	return path
}

func TestFileOverrides_LoadAndApply(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	fo := NewFileOverrides(writeOverrides(t, overridesYAML), logger)

	if err := fo.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	computed := Holidays{
		"2024-01-01": {Date: "2024-01-01", Name: "신정", Label: "신정", Origin: OriginFixed},
	}
	got := fo.Apply(2024, computed)

	if len(got) != 3 {
		t.Errorf("Apply() = %v, want 3 holidays", got.Labels())
	}
	if h := got["2024-04-10"]; h.Label != "국회의원 선거일" || h.Origin != OriginOverride {
		t.Errorf("2024-04-10 = %+v", h)
	}
	if _, ok := got["2024-11-11"]; ok {
		t.Error("override without a name should be skipped")
	}
	if len(computed) != 1 {
		t.Error("Apply() must not modify its input")
	}

	removed := fo.Apply(2022, Holidays{
		"2022-12-25": {Date: "2022-12-25", Label: "성탄절"},
		"2022-12-26": {Date: "2022-12-26", Label: "대체공휴일(성탄절)", Substitute: true},
	})
	if _, ok := removed["2022-12-26"]; ok {
		t.Error("2022-12-26 should be removed")
	}
	if _, ok := removed["2022-12-25"]; !ok {
		t.Error("2022-12-25 should be kept")
	}
}

func TestFileOverrides_LoadErrors(t *testing.T) {
	logger := zap.NewNop()

	if err := NewFileOverrides(filepath.Join(t.TempDir(), "missing.yaml"), logger).Load(); err == nil {
		t.Error("Load() of a missing file expected error, got nil")
	}
	if err := NewFileOverrides(writeOverrides(t, "holidays: [unclosed"), logger).Load(); err == nil {
		t.Error("Load() of malformed YAML expected error, got nil")
	}
}

type stubSource struct {
	holidays Holidays
	terms    SolarTerms
	err      error
	calls    int
}

func (s *stubSource) HolidaysOfYear(year int) (Holidays, error) {
	s.calls++
	return s.holidays, s.err
}

func (s *stubSource) SolarTermsOfYear(year int) (SolarTerms, error) {
	return s.terms, s.err
}

func TestCompositeSource(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	primary := &stubSource{
		holidays: Holidays{"2024-10-03": {Date: "2024-10-03", Label: "개천절"}},
		terms:    SolarTerms{"2024-02-04": "입춘"},
	}

	overrides := NewFileOverrides(writeOverrides(t, overridesYAML), logger)
	cs := NewCompositeSource(primary, overrides, logger)
	if err := cs.LoadOverrides(); err != nil {
		t.Fatalf("LoadOverrides() error = %v", err)
	}

	holidays, err := cs.HolidaysOfYear(2024)
	if err != nil {
		t.Fatalf("HolidaysOfYear() error = %v", err)
	}
	if holidays["2024-10-01"].Label != "국군의 날" || holidays["2024-10-03"].Label != "개천절" {
		t.Errorf("HolidaysOfYear() = %v", holidays.Labels())
	}

	terms, err := cs.SolarTermsOfYear(2024)
	if err != nil || terms["2024-02-04"] != "입춘" {
		t.Errorf("SolarTermsOfYear() = %v, %v", terms, err)
	}

	primary.err = errors.New("boom")
	if _, err := cs.HolidaysOfYear(2024); err == nil {
		t.Error("HolidaysOfYear() expected primary error, got nil")
	}
}

func TestCompositeSource_NoOverrides(t *testing.T) {
	primary := &stubSource{holidays: Holidays{"2024-01-01": {Label: "신정"}}}
	cs := NewCompositeSource(primary, nil, zap.NewNop())

	if err := cs.LoadOverrides(); err != nil {
		t.Errorf("LoadOverrides() error = %v", err)
	}
	holidays, err := cs.HolidaysOfYear(2024)
	if err != nil || len(holidays) != 1 {
		t.Errorf("HolidaysOfYear() = %v, %v", holidays, err)
	}
}
