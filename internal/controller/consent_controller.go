package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/service"
	"arc-backend/utilities"
)

type ConsentController struct {
	ConsentService service.ConsentService
	responder
}

func NewConsentController(consentService service.ConsentService, resp responder) *ConsentController {
	return &ConsentController{ConsentService: consentService, responder: resp}
}

// Record - Accepts or withdraws one consent type for the session user
func (cc *ConsentController) Record(c *gin.Context) {
	var req struct {
		Type     string         `json:"consentType" binding:"required"`
		Version  string         `json:"version"`
		Accepted *bool          `json:"accepted" binding:"required"`
		Metadata map[string]any `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: consentType and accepted are required"})
		return
	}
	res, err := cc.ConsentService.Record(c.Request.Context(), utilities.SessionUserID(c), service.ConsentInput{
		Type:      req.Type,
		Version:   req.Version,
		Accepted:  *req.Accepted,
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Metadata:  req.Metadata,
	})
	if err != nil {
		cc.fail(c, err)
		return
	}
	status := http.StatusOK
	if res.Record != nil {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

func (cc *ConsentController) GetConsents(c *gin.Context) {
	records, err := cc.ConsentService.GetConsents(c.Request.Context(), utilities.SessionUserID(c))
	if err != nil {
		cc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consents": records})
}
