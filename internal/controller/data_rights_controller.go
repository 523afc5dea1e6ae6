package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/service"
	"arc-backend/utilities"
)

type DataRightsController struct {
	DataRightsService service.DataRightsService
	responder
}

func NewDataRightsController(dataRightsService service.DataRightsService, resp responder) *DataRightsController {
	return &DataRightsController{DataRightsService: dataRightsService, responder: resp}
}

func (dc *DataRightsController) RequestDeletion(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"max=500"`
	}
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}
	}
	dr, err := dc.DataRightsService.RequestDeletion(c.Request.Context(), utilities.SessionUserID(c), req.Reason)
	if err != nil {
		dc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"requestId":   dr.ID,
		"status":      dr.Status,
		"requestedAt": dr.RequestedAt,
	})
}

// ConfirmDeletion - Erases the user's data for a pending deletion request
func (dc *DataRightsController) ConfirmDeletion(c *gin.Context) {
	var req struct {
		RequestID string `json:"requestId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: requestId is required"})
		return
	}
	res, err := dc.DataRightsService.ConfirmDeletion(c.Request.Context(), utilities.SessionUserID(c), req.RequestID)
	if err != nil {
		dc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (dc *DataRightsController) Export(c *gin.Context) {
	export, err := dc.DataRightsService.Export(c.Request.Context(), utilities.SessionUserID(c))
	if err != nil {
		dc.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="arc-export-%s.json"`, export.ExportID))
	c.JSON(http.StatusOK, export)
}

func (dc *DataRightsController) Summary(c *gin.Context) {
	sum, err := dc.DataRightsService.Summary(c.Request.Context(), utilities.SessionUserID(c))
	if err != nil {
		dc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
