package controller

import (
	"errors"
	"flowlearn_backend/internal/service"
	"flowlearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type TranslationController struct {
	TranslationService *service.TranslationService
}

func NewTranslationController(translationService *service.TranslationService) *TranslationController {
	return &TranslationController{TranslationService: translationService}
}

// swagger:model TranslateRequest
type TranslateRequest struct {
	Text           string `json:"text" binding:"required"`
	SourceLanguage string `json:"sourceLanguage" binding:"required"`
	TargetLanguage string `json:"targetLanguage" binding:"required"`
	ContentType    string `json:"contentType"`
	ContentID      string `json:"contentId"`
}

// Translate godoc
// @Summary Translate text with a cache-aside lookup
// @Tags translation
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body TranslateRequest true "translation payload"
// @Success 200 {object} util.Response{data=service.TranslateResult}
// @Failure 400 {object} util.Response "missing parameters"
// @Failure 502 {object} util.Response "provider failure"
// @Router /api/translate [post]
func (c *TranslationController) Translate(ctx *gin.Context) {
	var req TranslateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.TranslationService.Translate(
		ctx.Request.Context(),
		req.Text, req.SourceLanguage, req.TargetLanguage,
		req.ContentType, req.ContentID,
	)
	if err != nil {
		var statusErr *service.ProviderStatusError
		if errors.As(err, &statusErr) {
			util.Error(ctx, statusErr.Status, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, result)
}
