package controller

import (
	"errors"
	"flowlearn_backend/internal/service"
	"flowlearn_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ChallengeController struct {
	ChallengeService *service.ChallengeService
	AuthService      *service.AuthService
}

func NewChallengeController(challengeService *service.ChallengeService, authService *service.AuthService) *ChallengeController {
	return &ChallengeController{
		ChallengeService: challengeService,
		AuthService:      authService,
	}
}

// List godoc
// @Summary List active challenges
// @Tags challenges
// @Produce json
// @Security ApiKeyAuth
// @Param difficulty query string false "easy|medium|hard|expert"
// @Param page query int false "page"
// @Param limit query int false "page size"
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/challenges [get]
func (c *ChallengeController) List(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	challenges, total, err := c.ChallengeService.List(ctx.Query("difficulty"), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, util.PageResponse{
		List:  challenges,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// Get godoc
// @Summary Challenge detail with requirements and hints
// @Tags challenges
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "challenge id"
// @Success 200 {object} util.Response
// @Failure 402 {object} util.Response "weekly free limit reached"
// @Failure 404 {object} util.Response
// @Router /api/challenges/{id} [get]
func (c *ChallengeController) Get(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid challenge id")
		return
	}

	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	detail, err := c.ChallengeService.Get(user, uint(id))
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

	util.Success(ctx, detail)
}

// Admin catalog endpoints.

func (c *ChallengeController) Create(ctx *gin.Context) {
	var input service.ChallengeInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.Create(&input)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, challenge)
}

func (c *ChallengeController) Update(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid challenge id")
		return
	}

	var input service.ChallengeInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	challenge, err := c.ChallengeService.Update(uint(id), &input)
	if err != nil {
		if errors.Is(err, util.ErrChallengeNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, challenge)
}

func (c *ChallengeController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		util.BadRequest(ctx, "invalid challenge id")
		return
	}

	if err := c.ChallengeService.Delete(uint(id)); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"deleted": id})
}
