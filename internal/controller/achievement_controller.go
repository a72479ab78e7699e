package controller

import (
	"flowlearn_backend/internal/service"
	"flowlearn_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	AchievementService *service.AchievementService
	LeaderboardService *service.LeaderboardService
}

func NewAchievementController(achievementService *service.AchievementService, leaderboardService *service.LeaderboardService) *AchievementController {
	return &AchievementController{
		AchievementService: achievementService,
		LeaderboardService: leaderboardService,
	}
}

// GetMine godoc
// @Summary Caller's achievements, level and catalog progress
// @Tags achievements
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.UserAchievements}
// @Router /api/achievements [get]
func (c *AchievementController) GetMine(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementService.GetUserAchievements(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, achievements)
}

// Leaderboard godoc
// @Summary Top users by XP
// @Tags achievements
// @Produce json
// @Security ApiKeyAuth
// @Param limit query int false "entries to return (max 100)"
// @Success 200 {object} util.Response
// @Router /api/leaderboard [get]
func (c *AchievementController) Leaderboard(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	entries, err := c.LeaderboardService.Top(ctx.Request.Context(), limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	resp := gin.H{"entries": entries}
	if claims := util.GetUserFromContext(ctx); claims != nil {
		resp["myRank"] = c.LeaderboardService.Rank(ctx.Request.Context(), claims.UserID)
	}
	util.Success(ctx, resp)
}
