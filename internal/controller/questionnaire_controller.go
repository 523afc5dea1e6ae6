package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/questionnaire"
	"arc-backend/internal/service"
	"arc-backend/utilities"
)

type QuestionnaireController struct {
	QuestionnaireService service.QuestionnaireService
	responder
}

func NewQuestionnaireController(questionnaireService service.QuestionnaireService, resp responder) *QuestionnaireController {
	return &QuestionnaireController{QuestionnaireService: questionnaireService, responder: resp}
}

type answersRequest struct {
	Answers map[string]questionnaire.Answer `json:"answers" binding:"required"`
}

// Process - Scores answers for the persona in the path, without a narrative
func (qc *QuestionnaireController) Process(c *gin.Context) {
	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: answers are required"})
		return
	}
	strict, _ := strconv.ParseBool(c.Query("strict"))
	rep, err := qc.QuestionnaireService.Process(c.Request.Context(), c.Param("persona"), req.Answers, strict)
	if err != nil {
		qc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// ProcessWomenFull - Scores the women questionnaire and adds the LLM narrative
func (qc *QuestionnaireController) ProcessWomenFull(c *gin.Context) {
	var req answersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: answers are required"})
		return
	}
	rep, narrative, err := qc.QuestionnaireService.ProcessWithNarrative(c.Request.Context(), questionnaire.PersonaWomen, req.Answers)
	if err != nil {
		qc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rep, "narrative": narrative})
}

func (qc *QuestionnaireController) Save(c *gin.Context) {
	var req struct {
		Persona string                          `json:"persona" binding:"required"`
		Answers map[string]questionnaire.Answer `json:"answers" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: persona and answers are required"})
		return
	}
	sub, err := qc.QuestionnaireService.Save(c.Request.Context(), utilities.SessionUserID(c), req.Persona, req.Answers)
	if err != nil {
		qc.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        sub.ID,
		"persona":   sub.Persona,
		"scheme":    sub.Scheme,
		"createdAt": sub.CreatedAt,
	})
}

func (qc *QuestionnaireController) GetLatest(c *gin.Context) {
	saved, err := qc.QuestionnaireService.GetLatest(c.Request.Context(), utilities.SessionUserID(c))
	if err != nil {
		qc.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
