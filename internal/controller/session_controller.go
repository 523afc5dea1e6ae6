package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/service"
	"arc-backend/utilities"
)

type SessionController struct {
	SessionService service.SessionService
	responder
}

func NewSessionController(sessionService service.SessionService, resp responder) *SessionController {
	return &SessionController{SessionService: sessionService, responder: resp}
}

// StartSession - Issues the arc_session cookie for an email address
func (sc *SessionController) StartSession(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: a valid email is required"})
		return
	}
	user, token, err := sc.SessionService.StartSession(c.Request.Context(), req.Email)
	if err != nil {
		sc.fail(c, err)
		return
	}
	utilities.SetSessionCookie(c, token, sc.production)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (sc *SessionController) EndSession(c *gin.Context) {
	utilities.ClearSessionCookie(c, sc.production)
	c.Status(http.StatusNoContent)
}
