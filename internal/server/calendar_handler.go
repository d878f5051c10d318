package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/export"
	"github.com/username/daily-harmony/pkg/dateutil"
)

// GetDay returns the annotation of a single date
func (s *Server) GetDay(c *gin.Context) {
	date, err := dateutil.ParseISODate(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	memos, err := s.deps.Memos.List()
	if err != nil {
		s.logger.Error("Failed to list memos", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load memos")
		return
	}

	c.JSON(http.StatusOK, s.deps.Annotator.Day(date, memos))
}

// GetMonth returns the calendar grid of a month
func (s *Server) GetMonth(c *gin.Context) {
	year, err := parseYear(c.Param("year"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		respondError(c, http.StatusBadRequest, "month must be 1-12")
		return
	}

	memos, err := s.deps.Memos.List()
	if err != nil {
		s.logger.Error("Failed to list memos", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load memos")
		return
	}

	view, err := s.deps.Annotator.Month(year, time.Month(month), memos)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, view)
}

// GetHolidays returns the holidays of a year, ordered by date
func (s *Server) GetHolidays(c *gin.Context) {
	year, err := parseYear(c.Param("year"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid year")
		return
	}

	holidays, err := s.deps.Source.HolidaysOfYear(year)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "holidays": holidays.Sorted()})
}

// GetSolarTerms returns the solar terms of a year keyed by date
func (s *Server) GetSolarTerms(c *gin.Context) {
	year, err := parseYear(c.Param("year"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid year")
		return
	}

	terms, err := s.deps.Source.SolarTermsOfYear(year)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "terms": terms})
}

// ExportCalendar streams an iCalendar feed.
// Query: from and to (YYYY-MM-DD, default the current year) and a repeatable include
// of holidays, terms or memos (everything when absent).
func (s *Server) ExportCalendar(c *gin.Context) {
	today := dateutil.Today(s.deps.Location)
	opts := export.Options{
		From: dateutil.Date(today.Year(), time.January, 1),
		To:   dateutil.Date(today.Year(), time.December, 31),
	}

	if raw := c.Query("from"); raw != "" {
		d, err := dateutil.ParseISODate(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "from must be YYYY-MM-DD")
			return
		}
		opts.From = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := dateutil.ParseISODate(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "to must be YYYY-MM-DD")
			return
		}
		opts.To = d
	}

	include := c.QueryArray("include")
	if len(include) == 0 {
		opts.Holidays, opts.SolarTerms, opts.Memos = true, true, true
	}
	for _, v := range include {
		switch v {
		case "holidays":
			opts.Holidays = true
		case "terms":
			opts.SolarTerms = true
		case "memos":
			opts.Memos = true
		default:
			respondError(c, http.StatusBadRequest, "include must be holidays, terms or memos")
			return
		}
	}

	memos, err := s.deps.Memos.List()
	if err != nil {
		s.logger.Error("Failed to list memos", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load memos")
		return
	}

	cal, err := s.deps.Exporter.Calendar(memos, opts)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.Header("Content-Disposition", `attachment; filename="daily-harmony.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(cal.Serialize()))
}

func parseYear(raw string) (int, error) {
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if year < 1 || year > 9999 {
		return 0, strconv.ErrRange
	}
	return year, nil
}
