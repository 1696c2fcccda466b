package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/discount/service"
	"warranty_shop/pkg/response"
)

type DiscountHandler struct {
	service service.DiscountService
}

func NewDiscountHandler(s service.DiscountService) *DiscountHandler {
	return &DiscountHandler{service: s}
}

type ValidateInput struct {
	Code            string `json:"code" binding:"required"`
	Email           string `json:"email"`
	OrderTotalPence int64  `json:"orderTotalPence"`
}

// Validate godoc
// @Summary Check a discount code against the full rule chain
// @Tags Discount
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /discounts/validate [post]
func (h *DiscountHandler) Validate(c *gin.Context) {
	var input ValidateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Validate(input.Code, input.Email, input.OrderTotalPence)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, result)
}

type NewsletterInput struct {
	Email string `json:"email" binding:"required,email"`
}

// NewsletterSignup godoc
// @Summary Sign up for the newsletter and receive a welcome code
// @Tags Discount
// @Accept json
// @Produce json
// @Router /newsletter/signup [post]
func (h *DiscountHandler) NewsletterSignup(c *gin.Context) {
	var input NewsletterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	code, err := h.service.NewsletterSignup(c.Request.Context(), input.Email)
	if err != nil {
		response.Fail(c, response.ErrDiscountInvalid, err.Error())
		return
	}
	response.Success(c, gin.H{"code": code.Code, "validTo": code.ValidTo})
}

type CreateCodeRequest struct {
	Code           string    `json:"code"`
	Prefix         string    `json:"prefix"`
	Type           string    `json:"type" binding:"required,oneof=percent fixed"`
	PercentOff     int64     `json:"percentOff"`
	AmountOffPence int64     `json:"amountOffPence"`
	ValidFrom      time.Time `json:"validFrom" binding:"required"`
	ValidTo        time.Time `json:"validTo" binding:"required"`
	UsageLimit     int       `json:"usageLimit" binding:"required,gt=0"`
}

func (h *DiscountHandler) CreateCode(c *gin.Context) {
	var input CreateCodeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	code, err := h.service.Create(service.CreateCodeInput{
		Code:           input.Code,
		Prefix:         input.Prefix,
		Type:           input.Type,
		PercentOff:     input.PercentOff,
		AmountOffPence: input.AmountOffPence,
		ValidFrom:      input.ValidFrom,
		ValidTo:        input.ValidTo,
		UsageLimit:     input.UsageLimit,
	})
	if err != nil {
		if errors.Is(err, service.ErrGenerationExhausted) {
			response.Fail(c, response.ErrDiscountInvalid, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, code)
}

func (h *DiscountHandler) ListCodes(c *gin.Context) {
	codes, err := h.service.List(50)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, codes)
}
