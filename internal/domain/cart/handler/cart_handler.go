package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/cart/repository"
	"warranty_shop/internal/domain/cart/service"
	planModel "warranty_shop/internal/domain/plan/model"
	vehicleModel "warranty_shop/internal/domain/vehicle/model"
	"warranty_shop/pkg/response"
)

type CartHandler struct {
	service service.CartService
}

func NewCartHandler(s service.CartService) *CartHandler {
	return &CartHandler{service: s}
}

type AddItemInput struct {
	CartID  string               `json:"cartId"`
	Vehicle vehicleModel.Vehicle `json:"vehicle" binding:"required"`
	Plan    string               `json:"plan" binding:"required"`
	Cadence string               `json:"cadence" binding:"required"`
}

// AddItem godoc
// @Summary Add a warranty selection to the cart
// @Tags Cart
// @Accept json
// @Produce json
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var input AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	cart, err := h.service.AddItem(
		c.Request.Context(),
		input.CartID,
		input.Vehicle,
		input.Plan,
		planModel.NormalizeCadence(input.Cadence),
	)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateRegistration) {
			response.Fail(c, response.ErrCartDuplicateReg, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, cart)
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			response.Fail(c, response.ErrCartNotFound, "Cart not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	cart, err := h.service.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("registration"))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCartNotFound):
			response.Fail(c, response.ErrCartNotFound, "Cart not found")
		case errors.Is(err, service.ErrItemNotFound):
			response.Fail(c, response.ErrCartNotFound, "Item not in cart")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}
	response.Success(c, cart)
}

type SetEmailInput struct {
	Email string `json:"email" binding:"required,email"`
}

// SetEmail attaches the customer email, which also arms abandoned-cart
// tracking.
func (h *CartHandler) SetEmail(c *gin.Context) {
	var input SetEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	cart, err := h.service.SetEmail(c.Request.Context(), c.Param("id"), input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			response.Fail(c, response.ErrCartNotFound, "Cart not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, cart)
}
