package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	cartRepository "warranty_shop/internal/domain/cart/repository"
	"warranty_shop/internal/domain/checkout/model"
	"warranty_shop/internal/domain/checkout/service"
	"warranty_shop/pkg/logger"
	"warranty_shop/pkg/response"
)

type CheckoutHandler struct {
	service service.CheckoutService
}

func NewCheckoutHandler(s service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

type CreateSessionRequest struct {
	CartID       string                `json:"cartId" binding:"required"`
	PayLater     bool                  `json:"payLater"`
	DiscountCode string                `json:"discountCode"`
	Customer     model.CustomerDetails `json:"customer" binding:"required"`
}

// CreateSession godoc
// @Summary Open a payment session for a cart
// @Tags Checkout
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /checkout/session [post]
func (h *CheckoutHandler) CreateSession(c *gin.Context) {
	var input CreateSessionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.CreateSession(c.Request.Context(), service.CreateSessionInput{
		CartID:       input.CartID,
		PayLater:     input.PayLater,
		DiscountCode: input.DiscountCode,
		Customer:     input.Customer,
	})
	if err != nil {
		switch {
		case errors.Is(err, cartRepository.ErrCartNotFound):
			response.Fail(c, response.ErrCartNotFound, "Cart not found")
		case errors.Is(err, service.ErrEmptyCart):
			response.Fail(c, response.ErrCheckoutFailed, err.Error())
		case errors.Is(err, service.ErrInvalidDiscount):
			response.Fail(c, response.ErrDiscountInvalid, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrCheckoutFailed, err.Error())
		}
		return
	}

	response.Success(c, result)
}

// Webhook godoc
// @Summary Receive payment provider events
// @Tags Checkout
// @Accept json
// @Produce json
// @Router /webhooks/stripe [post]
func (h *CheckoutHandler) Webhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "unreadable payload")
		return
	}

	err = h.service.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, service.ErrBadSignature) {
			response.Error(c, http.StatusBadRequest, response.ErrWebhookSignature, err.Error())
			return
		}
		// Non-2xx makes the provider redeliver later.
		logger.Log.Error("Webhook processing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"received": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// Confirm godoc
// @Summary Confirm a paid session from the success page
// @Tags Checkout
// @Produce json
// @Router /checkout/confirm [get]
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "session_id is required")
		return
	}

	refs, err := h.service.ProcessSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotPaid) {
			response.Fail(c, response.ErrSessionNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrCheckoutFailed, err.Error())
		return
	}

	response.Success(c, gin.H{"references": refs})
}
