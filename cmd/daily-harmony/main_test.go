package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/username/daily-harmony/internal/fortune"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "storage:\n  dir: " + filepath.Join(dir, "data") + "\ncalendar:\n  timezone: Asia/Seoul\nlog:\n  level: error\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func run(t *testing.T, configFile string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configFile}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestHolidaysCommand(t *testing.T) {
	cfgFile := writeTestConfig(t)

	out, err := run(t, cfgFile, "holidays", "2024")
	if err != nil {
		t.Fatalf("holidays error = %v", err)
	}
	if got := strings.Count(out, "\n"); got != 17 {
		t.Errorf("holidays printed %d lines, want 17:\n%s", got, out)
	}
	if !strings.Contains(out, "2024-02-12 (월)  대체공휴일(설날)") {
		t.Errorf("missing Seollal substitute:\n%s", out)
	}
}

func TestDayAndMemoCommands(t *testing.T) {
	cfgFile := writeTestConfig(t)

	if _, err := run(t, cfgFile, "memo", "add", "--date", "2024-02-10", "--at", "09:00", "세배"); err != nil {
		t.Fatalf("memo add error = %v", err)
	}
	if _, err := run(t, cfgFile, "memo", "add", "--date", "2024-02-10", "--repeat", "sometimes", "x"); err == nil {
		t.Error("memo add should reject an unknown repeat rule")
	}

	out, err := run(t, cfgFile, "day", "2024-02-10")
	if err != nil {
		t.Fatalf("day error = %v", err)
	}
	for _, want := range []string{"2024-02-10 (토)", "음력 2024년 1.1", "설날 연휴", "세배"} {
		if !strings.Contains(out, want) {
			t.Errorf("day output missing %q:\n%s", want, out)
		}
	}

	out, err = run(t, cfgFile, "memo", "list", "--date", "2024-02-11")
	if err != nil {
		t.Fatalf("memo list error = %v", err)
	}
	if !strings.Contains(out, "No memos") {
		t.Errorf("memo list on another day = %q", out)
	}
}

func TestMonthCommand(t *testing.T) {
	cfgFile := writeTestConfig(t)

	out, err := run(t, cfgFile, "month", "2024", "9")
	if err != nil {
		t.Fatalf("month error = %v", err)
	}
	for _, want := range []string{"2024년 9월", "2024-09-17  추석 연휴", "2024-09-22  추분"} {
		if !strings.Contains(out, want) {
			t.Errorf("month output missing %q:\n%s", want, out)
		}
	}

	if _, err := run(t, cfgFile, "month", "2024"); err == nil {
		t.Error("month with only a year should fail")
	}
}

func TestProfileBiorhythmFortuneCommands(t *testing.T) {
	cfgFile := writeTestConfig(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DAILY_HARMONY_FORTUNE_API_KEY", "")

	if _, err := run(t, cfgFile, "biorhythm"); err == nil {
		t.Error("biorhythm without a profile should fail")
	}

	if _, err := run(t, cfgFile, "profile", "set", "--name", "tester", "--birth-date", "2024-03-01"); err != nil {
		t.Fatalf("profile set error = %v", err)
	}

	out, err := run(t, cfgFile, "biorhythm", "2024-03-08")
	if err != nil {
		t.Fatalf("biorhythm error = %v", err)
	}
	if !strings.Contains(out, "2024-03-08    94   100    97") {
		t.Errorf("biorhythm output:\n%s", out)
	}

	if _, err := run(t, cfgFile, "fortune", "2024-03-08"); !errors.Is(err, fortune.ErrMissingCredential) {
		t.Errorf("fortune error = %v, want ErrMissingCredential", err)
	}
}

func TestExportCommand(t *testing.T) {
	cfgFile := writeTestConfig(t)
	outFile := filepath.Join(t.TempDir(), "out", "2024.ics")

	if _, err := run(t, cfgFile, "export", "--from", "2024-01-01", "--to", "2024-12-31", "--no-terms", "--no-memos", "-o", outFile); err != nil {
		t.Fatalf("export error = %v", err)
	}
	data, err := os.ReadFile(outFile)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if n := strings.Count(string(data), "BEGIN:VEVENT"); n != 17 {
		t.Errorf("exported %d events, want 17", n)
	}
}
