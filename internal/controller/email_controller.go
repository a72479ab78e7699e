package controller

import (
	"errors"
	"flowlearn_backend/internal/service"
	"flowlearn_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type EmailController struct {
	EmailService *service.EmailService
}

func NewEmailController(emailService *service.EmailService) *EmailController {
	return &EmailController{EmailService: emailService}
}

// swagger:model SendEmailRequest
type SendEmailRequest struct {
	To   string                 `json:"to" binding:"required,email"`
	Type string                 `json:"type" binding:"required,oneof=welcome login magic_link password_reset email_confirmation"`
	Data map[string]interface{} `json:"data"`
}

// Send godoc
// @Summary Send a transactional auth email
// @Tags email
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body SendEmailRequest true "email payload"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 500 {object} util.Response "provider failure"
// @Router /api/send-auth-email [post]
func (c *EmailController) Send(ctx *gin.Context) {
	var req SendEmailRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	id, err := c.EmailService.SendAuthEmail(ctx.Request.Context(), req.To, service.EmailType(req.Type), req.Data)
	if err != nil {
		if errors.Is(err, util.ErrUnknownEmailTemplate) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.Error(ctx, 500, err.Error())
		return
	}

	util.Success(ctx, gin.H{"id": id})
}
