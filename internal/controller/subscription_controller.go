package controller

import (
	"flowlearn_backend/internal/model"
	"flowlearn_backend/internal/service"
	"flowlearn_backend/internal/util"
	"flowlearn_backend/pkg/logger"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubscriptionController struct {
	SubscriptionService *service.SubscriptionService
	AuthService         *service.AuthService
}

func NewSubscriptionController(subscriptionService *service.SubscriptionService, authService *service.AuthService) *SubscriptionController {
	return &SubscriptionController{
		SubscriptionService: subscriptionService,
		AuthService:         authService,
	}
}

// swagger:model CheckoutRequest
type CheckoutRequest struct {
	Tier string `json:"tier" binding:"required,oneof=monthly annual"`
}

// CreateCheckout godoc
// @Summary Open a Stripe checkout session for a paid tier
// @Tags subscription
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CheckoutRequest true "tier"
// @Success 200 {object} util.Response
// @Router /api/subscriptions/checkout [post]
func (c *SubscriptionController) CreateCheckout(ctx *gin.Context) {
	var req CheckoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	url, err := c.SubscriptionService.CreateCheckout(user, model.SubscriptionTier(req.Tier))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}

// Status godoc
// @Summary Current subscription status
// @Tags subscription
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=service.SubscriptionStatus}
// @Router /api/subscriptions/status [get]
func (c *SubscriptionController) Status(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.SubscriptionService.Status(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// Webhook godoc
// @Summary Stripe webhook receiver
// @Tags subscription
// @Accept json
// @Produce json
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "bad signature"
// @Router /api/webhooks/stripe [post]
func (c *SubscriptionController) Webhook(ctx *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, 65536))
	if err != nil {
		util.BadRequest(ctx, "unreadable payload")
		return
	}

	event, err := c.SubscriptionService.VerifyWebhook(payload, ctx.GetHeader("Stripe-Signature"))
	if err != nil {
		logger.Log.Warn("stripe webhook signature rejected", zap.Error(err))
		util.BadRequest(ctx, "invalid signature")
		return
	}

	if err := c.SubscriptionService.HandleWebhookEvent(event); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"received": true})
}
