package controller

import (
	"errors"
	"flowlearn_backend/internal/service"
	"flowlearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AssessmentController struct {
	AssessmentService *service.AssessmentService
}

func NewAssessmentController(assessmentService *service.AssessmentService) *AssessmentController {
	return &AssessmentController{AssessmentService: assessmentService}
}

// GetQuestions godoc
// @Summary Level-assessment quiz questions
// @Tags assessment
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]service.QuizQuestion}
// @Failure 404 {object} util.Response
// @Router /api/assessment/questions [get]
func (c *AssessmentController) GetQuestions(ctx *gin.Context) {
	questions, err := c.AssessmentService.GetQuestions()
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNoQuestions) {
			util.NotFound(ctx)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, questions)
}

type submitAssessmentRequest struct {
	Answers []service.QuizAnswer `json:"answers" binding:"required,min=1,dive"`
}

// Submit godoc
// @Summary Grade the quiz and assign a skill level
// @Tags assessment
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body submitAssessmentRequest true "answers"
// @Success 200 {object} util.Response{data=service.QuizOutcome}
// @Failure 400 {object} util.Response
// @Router /api/assessment/submit [post]
func (c *AssessmentController) Submit(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitAssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "invalid request: "+err.Error())
		return
	}

	outcome, err := c.AssessmentService.Submit(claims.UserID, req.Answers)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNoQuestions) {
			util.BadRequest(ctx, "answers reference no known questions")
			return
		}
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, outcome)
}
