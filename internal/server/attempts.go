package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kode4food/paybutton/internal/archive"
	"github.com/kode4food/paybutton/pkg/api"
)

var ErrJournalDisabled = errors.New("attempt journal not configured")

func (s *Server) listAttempts(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}

	sess := api.ButtonSessionID(c.Query("session"))
	recs, err := s.journal.List(c.Request.Context(), sess)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, api.AttemptsListResponse{
		Attempts: recs,
		Count:    len(recs),
	})
}

func (s *Server) getAttempt(c *gin.Context) {
	if !s.requireJournal(c) {
		return
	}

	sess := api.ButtonSessionID(c.Param("sessionID"))
	id := api.PaymentID(c.Param("paymentID"))

	rec, err := s.journal.Get(c.Request.Context(), sess, id)
	if errors.Is(err, archive.ErrAttemptNotFound) {
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusNotFound,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Error:  err.Error(),
			Status: http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}

func (s *Server) requireJournal(c *gin.Context) bool {
	if s.journal != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{
		Error:  ErrJournalDisabled.Error(),
		Status: http.StatusServiceUnavailable,
	})
	return false
}
