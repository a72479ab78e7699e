package controller

import (
	"flowlearn_backend/internal/service"
	"flowlearn_backend/internal/util"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct {
	AuthService    *service.AuthService
	UserService    *service.UserService
	StorageService *service.StorageService
}

func NewUserController(authService *service.AuthService, userService *service.UserService, storageService *service.StorageService) *UserController {
	return &UserController{
		AuthService:    authService,
		UserService:    userService,
		StorageService: storageService,
	}
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags user
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Failure 401 {object} util.Response
// @Router /api/profile [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"id":               user.ID,
		"name":             user.Name,
		"email":            user.Email,
		"avatar":           user.Avatar,
		"role":             user.Role,
		"xp":               user.XP,
		"currentStreak":    user.CurrentStreak,
		"longestStreak":    user.LongestStreak,
		"skillLevel":       user.SkillLevel,
		"language":         user.Language,
		"subscriptionTier": user.SubscriptionTier,
		"createdAt":        user.CreatedAt,
	})
}

// UpdateProfile godoc
// @Summary Update name, language or avatar
// @Tags user
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User}
// @Router /api/user/profile [put]
func (c *UserController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ProfileUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.UserService.UpdateProfile(claims.UserID, &req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, user)
}

// UploadAvatar godoc
// @Summary Upload an avatar image
// @Tags user
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response
// @Router /api/user/avatar/upload [post]
func (c *UserController) UploadAvatar(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	file, err := ctx.FormFile("avatar")
	if err != nil {
		util.BadRequest(ctx, "avatar file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".png" && ext != ".jpg" && ext != ".jpeg" && ext != ".webp" {
		util.BadRequest(ctx, "avatar must be png, jpg or webp")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := "avatars/" + time.Now().Format("20060102150405") + "_" + uuid.New().String()[:8] + ext
	url, err := c.StorageService.Upload(ctx, filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	if _, err := c.UserService.UpdateProfile(claims.UserID, &service.ProfileUpdate{Avatar: url}); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"avatar": url})
}
