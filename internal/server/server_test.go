package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/biorhythm"
	"github.com/username/daily-harmony/internal/calendar"
	"github.com/username/daily-harmony/internal/export"
	"github.com/username/daily-harmony/internal/fortune"
	"github.com/username/daily-harmony/internal/lunar"
	"github.com/username/daily-harmony/internal/memo"
	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/internal/profile"
	"github.com/username/daily-harmony/internal/store"
)

type stubFortune struct {
	text string
	err  error
	got  []string
}

func (f *stubFortune) DailyFortune(_ context.Context, birthDate, birthTime, targetDate string) (string, error) {
	f.got = []string{birthDate, birthTime, targetDate}
	return f.text, f.err
}

func setupTestServer(t *testing.T) (*gin.Engine, *stubFortune) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := zap.NewDevelopment()

	st, err := store.NewFileStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	converter := lunar.NewConverter()
	matcher := memo.NewMatcher(converter, logger)
	source := calendar.NewYearCache(calendar.NewComputedSource(converter, logger), logger)
	teller := &stubFortune{text: "[총운] 좋은 하루"}

	srv := New(Deps{
		Annotator: calendar.NewAnnotator(converter, matcher, source, time.Sunday, logger),
		Source:    source,
		Memos:     memo.NewService(st, logger),
		Profiles:  profile.NewService(st, logger),
		Exporter:  export.NewExporter(source, matcher, logger),
		Fortune:   teller,
		Location:  time.UTC,
	}, logger)
	return srv.Router(), teller
}

func doRequest(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("failed to decode %q: %v", w.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	r, _ := setupTestServer(t)
	w := doRequest(t, r, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestGetHolidaysAndTerms(t *testing.T) {
	r, _ := setupTestServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/holidays/2024", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var holidays struct {
		Year     int                `json:"year"`
		Holidays []calendar.Holiday `json:"holidays"`
	}
	decode(t, w, &holidays)
	if len(holidays.Holidays) != 17 || holidays.Holidays[0].Date != "2024-01-01" {
		t.Errorf("holidays = %+v, want 17 starting with 신정", holidays.Holidays)
	}

	w = doRequest(t, r, http.MethodGet, "/api/terms/2024", nil)
	var terms struct {
		Terms map[string]string `json:"terms"`
	}
	decode(t, w, &terms)
	if len(terms.Terms) != 24 || terms.Terms["2024-02-04"] != "입춘" {
		t.Errorf("terms = %v", terms.Terms)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/api/holidays/abc", http.StatusBadRequest},
		{"/api/holidays/1850", http.StatusUnprocessableEntity},
		{"/api/terms/0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if w := doRequest(t, r, http.MethodGet, tt.path, nil); w.Code != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestMemoLifecycle(t *testing.T) {
	r, _ := setupTestServer(t)

	w := doRequest(t, r, http.MethodPost, "/api/memos", memo.NewMemo{
		Date:       "2023-09-29",
		Content:    "성묘",
		RepeatType: model.RepeatYearlyLunar,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created model.Memo
	decode(t, w, &created)

	// Lunar 8/15 of 2024 is 2024-09-17
	w = doRequest(t, r, http.MethodGet, "/api/days/2024-09-17", nil)
	var day calendar.DayAnnotation
	decode(t, w, &day)
	if len(day.Memos) != 1 || day.Memos[0].ID != created.ID {
		t.Errorf("day memos = %+v, want the lunar-yearly memo", day.Memos)
	}
	if day.Holiday == nil || day.Holiday.Name != "추석" {
		t.Errorf("day holiday = %+v, want 추석", day.Holiday)
	}

	w = doRequest(t, r, http.MethodPatch, "/api/memos/"+created.ID+"/toggle", nil)
	var toggled model.Memo
	decode(t, w, &toggled)
	if !toggled.Completed {
		t.Error("toggle should complete the memo")
	}

	content := "성묘 가기"
	w = doRequest(t, r, http.MethodPut, "/api/memos/"+created.ID, memo.Patch{Content: &content})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/memos", nil)
	var list struct {
		Memos []model.Memo `json:"memos"`
	}
	decode(t, w, &list)
	if len(list.Memos) != 1 || list.Memos[0].Content != content {
		t.Errorf("memos = %+v", list.Memos)
	}

	if w := doRequest(t, r, http.MethodDelete, "/api/memos/"+created.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("DELETE = %d, want 204", w.Code)
	}
	if w := doRequest(t, r, http.MethodDelete, "/api/memos/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("second DELETE = %d, want 404", w.Code)
	}
}

func TestCreateMemoInvalid(t *testing.T) {
	r, _ := setupTestServer(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"Empty content", memo.NewMemo{Date: "2024-03-10"}},
		{"Unknown repeat", memo.NewMemo{Date: "2024-03-10", Content: "x", RepeatType: "daily"}},
		{"Not JSON object", []int{1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doRequest(t, r, http.MethodPost, "/api/memos", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("POST = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestGetMonth(t *testing.T) {
	r, _ := setupTestServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/months/2024/2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var view calendar.MonthView
	decode(t, w, &view)
	if len(view.Days) != calendar.GridCells || view.Days[0].ISO != "2024-01-28" {
		t.Errorf("month grid starts at %s with %d cells", view.Days[0].ISO, len(view.Days))
	}
	if view.Holidays != 4 || view.SolarTerms != 2 {
		t.Errorf("holidays/terms = %d/%d, want 4/2", view.Holidays, view.SolarTerms)
	}

	if w := doRequest(t, r, http.MethodGet, "/api/months/2024/13", nil); w.Code != http.StatusBadRequest {
		t.Errorf("month 13 = %d, want 400", w.Code)
	}
}

func TestProfileBiorhythmFortune(t *testing.T) {
	r, teller := setupTestServer(t)

	if w := doRequest(t, r, http.MethodGet, "/api/profile", nil); w.Code != http.StatusNotFound {
		t.Errorf("GET profile before save = %d, want 404", w.Code)
	}
	if w := doRequest(t, r, http.MethodGet, "/api/biorhythm/2024-03-08", nil); w.Code != http.StatusNotFound {
		t.Errorf("biorhythm without profile = %d, want 404", w.Code)
	}

	w := doRequest(t, r, http.MethodPut, "/api/profile", model.Profile{Name: "tester", BirthDate: "2024-03-01"})
	if w.Code != http.StatusOK {
		t.Fatalf("PUT profile = %d: %s", w.Code, w.Body.String())
	}
	var saved model.Profile
	decode(t, w, &saved)
	if saved.ID == "" {
		t.Error("saved profile should get an id")
	}

	if w := doRequest(t, r, http.MethodPut, "/api/profile", model.Profile{Name: "x", BirthDate: "bad"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid profile = %d, want 400", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/biorhythm/2024-03-08", nil)
	var idx biorhythm.Index
	decode(t, w, &idx)
	if idx.Days != 7 || idx.Physical != 94 || idx.Emotional != 100 || idx.Intellectual != 97 {
		t.Errorf("biorhythm = %+v, want 94/100/97 on day 7", idx)
	}
	if w := doRequest(t, r, http.MethodGet, "/api/biorhythm/2024-02-01", nil); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("biorhythm before birth = %d, want 422", w.Code)
	}

	w = doRequest(t, r, http.MethodGet, "/api/fortune/2024-03-08", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "좋은 하루") {
		t.Errorf("fortune = %d %s", w.Code, w.Body.String())
	}
	if teller.got[0] != "2024-03-01" || teller.got[2] != "2024-03-08" {
		t.Errorf("fortune called with %v", teller.got)
	}

	fortuneErrors := []struct {
		err  error
		want int
	}{
		{fortune.ErrMissingCredential, http.StatusServiceUnavailable},
		{fortune.ErrQuotaExceeded, http.StatusTooManyRequests},
		{fortune.ErrEmptyResponse, http.StatusOK},
	}
	for _, tt := range fortuneErrors {
		t.Run(tt.err.Error(), func(t *testing.T) {
			teller.err = tt.err
			if w := doRequest(t, r, http.MethodGet, "/api/fortune/2024-03-08", nil); w.Code != tt.want {
				t.Errorf("fortune with %v = %d, want %d", tt.err, w.Code, tt.want)
			}
		})
	}
}

func TestExportCalendar(t *testing.T) {
	r, _ := setupTestServer(t)

	w := doRequest(t, r, http.MethodGet, "/api/export.ics?from=2024-01-01&to=2024-12-31&include=holidays", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/calendar") {
		t.Errorf("Content-Type = %q", ct)
	}
	if n := strings.Count(w.Body.String(), "BEGIN:VEVENT"); n != 17 {
		t.Errorf("exported %d events, want 17 holidays", n)
	}

	bad := []string{
		"/api/export.ics?from=2024-13-01",
		"/api/export.ics?include=birthdays",
		"/api/export.ics?from=2024-12-31&to=2024-01-01",
	}
	for _, path := range bad {
		if w := doRequest(t, r, http.MethodGet, path, nil); w.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, w.Code)
		}
	}
}
