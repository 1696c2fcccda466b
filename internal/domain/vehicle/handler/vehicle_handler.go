package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/vehicle/service"
	"warranty_shop/pkg/response"
)

type VehicleHandler struct {
	service service.VehicleService
}

func NewVehicleHandler(s service.VehicleService) *VehicleHandler {
	return &VehicleHandler{service: s}
}

type LookupInput struct {
	Registration string `json:"registration" binding:"required"`
}

// Lookup godoc
// @Summary Look up a vehicle by registration
// @Tags Vehicle
// @Accept json
// @Produce json
// @Param input body LookupInput true "Registration"
// @Success 200 {object} response.Response
// @Router /vehicles/lookup [post]
func (h *VehicleHandler) Lookup(c *gin.Context) {
	var input LookupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.Lookup(c.Request.Context(), input.Registration)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, result)
}
