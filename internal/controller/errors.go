package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/questionnaire"
	"arc-backend/internal/service"
	"arc-backend/utilities"
)

// responder writes error bodies. Outside production a 500 carries the
// underlying error as detail.
type responder struct {
	production bool
}

func (r responder) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status < http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	utilities.Error("%s %s: %v", c.Request.Method, c.FullPath(), err)
	body := gin.H{"error": msg}
	if !r.production {
		body["detail"] = err.Error()
	}
	c.JSON(status, body)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, questionnaire.ErrUnknownLabel),
		errors.Is(err, questionnaire.ErrUnsupportedType):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, questionnaire.ErrUnknownPersona):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrConsentRequired):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, service.ErrAlreadyDone):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrNarrativeUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
