package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/username/daily-harmony/internal/memo"
	"github.com/username/daily-harmony/internal/model"
)

// ListMemos returns every memo, newest first
func (s *Server) ListMemos(c *gin.Context) {
	memos, err := s.deps.Memos.List()
	if err != nil {
		s.logger.Error("Failed to list memos", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to load memos")
		return
	}
	if memos == nil {
		memos = []model.Memo{}
	}
	c.JSON(http.StatusOK, gin.H{"memos": memos})
}

// CreateMemo adds a memo
func (s *Server) CreateMemo(c *gin.Context) {
	var in memo.NewMemo
	if !bindJSON(c, &in, "invalid memo payload") {
		return
	}

	m, err := s.deps.Memos.Add(in)
	if err != nil {
		s.respondMemoError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// ToggleMemo flips the completion flag of a memo
func (s *Server) ToggleMemo(c *gin.Context) {
	m, err := s.deps.Memos.Toggle(c.Param("id"))
	if err != nil {
		s.respondMemoError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// UpdateMemo applies a partial update to a memo
func (s *Server) UpdateMemo(c *gin.Context) {
	var patch memo.Patch
	if !bindJSON(c, &patch, "invalid memo payload") {
		return
	}

	m, err := s.deps.Memos.Update(c.Param("id"), patch)
	if err != nil {
		s.respondMemoError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMemo removes a memo
func (s *Server) DeleteMemo(c *gin.Context) {
	if err := s.deps.Memos.Delete(c.Param("id")); err != nil {
		s.respondMemoError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) respondMemoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, memo.ErrMemoNotFound):
		respondError(c, http.StatusNotFound, "memo not found")
	case errors.Is(err, memo.ErrInvalidMemo):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("Memo operation failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to save memos")
	}
}
