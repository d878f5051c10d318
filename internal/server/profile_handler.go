package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/biorhythm"
	"github.com/username/daily-harmony/internal/fortune"
	"github.com/username/daily-harmony/internal/model"
	"github.com/username/daily-harmony/internal/profile"
	"github.com/username/daily-harmony/pkg/dateutil"
)

// GetProfile returns the saved profile
func (s *Server) GetProfile(c *gin.Context) {
	p, ok := s.loadProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, p)
}

// SaveProfile replaces the profile
func (s *Server) SaveProfile(c *gin.Context) {
	var in model.Profile
	if !bindJSON(c, &in, "invalid profile payload") {
		return
	}

	p, err := s.deps.Profiles.Save(in)
	if err != nil {
		if errors.Is(err, model.ErrInvalidProfile) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("Failed to save profile", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to save profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetBiorhythm returns the biorhythm of the profile owner on a date
func (s *Server) GetBiorhythm(c *gin.Context) {
	target, err := dateutil.ParseISODate(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	p, ok := s.loadProfile(c)
	if !ok {
		return
	}
	birth, err := dateutil.ParseISODate(p.BirthDate)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, "profile birth date is invalid")
		return
	}

	idx, err := biorhythm.Calculate(birth, target)
	if err != nil {
		respondError(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	c.JSON(http.StatusOK, idx)
}

// GetFortune returns the daily fortune text for a date
func (s *Server) GetFortune(c *gin.Context) {
	target, err := dateutil.ParseISODate(c.Param("date"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	p, ok := s.loadProfile(c)
	if !ok {
		return
	}
	if s.deps.Fortune == nil {
		respondError(c, http.StatusServiceUnavailable, "fortune is not configured")
		return
	}

	date := dateutil.ISODate(target)
	text, err := s.deps.Fortune.DailyFortune(c.Request.Context(), p.BirthDate, p.BirthTime, date)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"date": date, "text": text})
	case errors.Is(err, fortune.ErrMissingCredential), errors.Is(err, fortune.ErrInvalidCredential):
		respondError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, fortune.ErrQuotaExceeded):
		respondError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, fortune.ErrEmptyResponse):
		c.JSON(http.StatusOK, gin.H{"date": date, "text": fortune.FallbackText})
	default:
		s.logger.Warn("Fortune request failed", zap.String("date", date), zap.Error(err))
		respondError(c, http.StatusBadGateway, "fortune request failed")
	}
}

func (s *Server) loadProfile(c *gin.Context) (*model.Profile, bool) {
	p, err := s.deps.Profiles.Get()
	if err != nil {
		if errors.Is(err, profile.ErrNoProfile) {
			respondError(c, http.StatusNotFound, "profile not set")
			return nil, false
		}
		s.logger.Error("Failed to load profile", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load profile")
		return nil, false
	}
	return p, true
}
