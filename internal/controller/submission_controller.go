package controller

import (
	"encoding/json"
	"errors"
	"flowlearn_backend/internal/service"
	"flowlearn_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type SubmissionController struct {
	SubmissionService *service.SubmissionService
	EvaluationService *service.EvaluationService
	AuthService       *service.AuthService
}

func NewSubmissionController(
	submissionService *service.SubmissionService,
	evaluationService *service.EvaluationService,
	authService *service.AuthService,
) *SubmissionController {
	return &SubmissionController{
		SubmissionService: submissionService,
		EvaluationService: evaluationService,
		AuthService:       authService,
	}
}

// swagger:model CreateSubmissionRequest
type CreateSubmissionRequest struct {
	ChallengeID uint            `json:"challengeId" binding:"required"`
	Workflow    json.RawMessage `json:"workflow" binding:"required"`
}

// Create godoc
// @Summary Open a pending submission for a challenge
// @Tags submissions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateSubmissionRequest true "submission payload"
// @Success 201 {object} util.Response{data=model.Submission}
// @Failure 402 {object} util.Response "weekly free limit reached"
// @Failure 404 {object} util.Response
// @Router /api/submissions [post]
func (c *SubmissionController) Create(ctx *gin.Context) {
	var req CreateSubmissionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	submission, err := c.SubmissionService.Create(user, req.ChallengeID, req.Workflow)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrChallengeNotFound), errors.Is(err, util.ErrChallengeInactive):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrChallengeLocked):
			util.Error(ctx, 402, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, submission)
}

// swagger:model EvaluateRequest
type EvaluateRequest struct {
	SubmissionID string          `json:"submissionId" binding:"required"`
	ChallengeID  uint            `json:"challengeId" binding:"required"`
	Workflow     json.RawMessage `json:"workflow" binding:"required"`
}

// Evaluate godoc
// @Summary Grade a pending submission with the AI evaluator
// @Tags submissions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body EvaluateRequest true "evaluation payload"
// @Success 200 {object} util.Response{data=service.EvaluateResult}
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response "already evaluated"
// @Failure 502 {object} util.Response "grader failure"
// @Router /api/evaluate-workflow [post]
func (c *SubmissionController) Evaluate(ctx *gin.Context) {
	var req EvaluateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	result, err := c.EvaluationService.EvaluateWorkflow(ctx.Request.Context(), claims.UserID, req.SubmissionID, req.ChallengeID, req.Workflow)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSubmissionNotFound), errors.Is(err, util.ErrChallengeNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSubmissionNotOwned):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrSubmissionEvaluated):
			util.Error(ctx, 409, err.Error())
		case errors.Is(err, util.ErrMalformedModelReply):
			util.BadGateway(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, result)
}

// Get godoc
// @Summary Fetch one of the caller's submissions
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "submission id"
// @Success 200 {object} util.Response{data=model.Submission}
// @Router /api/submissions/{id} [get]
func (c *SubmissionController) Get(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	submission, err := c.SubmissionService.Get(claims.UserID, ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSubmissionNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrSubmissionNotOwned):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, submission)
}

// ListMine godoc
// @Summary List the caller's submissions
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/submissions [get]
func (c *SubmissionController) ListMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	submissions, total, err := c.SubmissionService.ListMine(claims.UserID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  submissions,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}
