package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/plan/model"
	"warranty_shop/internal/domain/plan/service"
	"warranty_shop/pkg/response"
)

type PlanHandler struct {
	service service.PlanService
}

func NewPlanHandler(s service.PlanService) *PlanHandler {
	return &PlanHandler{service: s}
}

// ListPlans godoc
// @Summary List active warranty plans
// @Tags Plan
// @Produce json
// @Success 200 {object} response.Response
// @Router /plans [get]
func (h *PlanHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, plans)
}

type QuoteInput struct {
	Plan         string `form:"plan" binding:"required"`
	Cadence      string `form:"cadence" binding:"required"`
	VehicleClass string `form:"vehicleClass" binding:"required"`
}

// Quote godoc
// @Summary Price a plan for a cadence and vehicle class
// @Tags Plan
// @Produce json
// @Router /plans/quote [get]
func (h *PlanHandler) Quote(c *gin.Context) {
	var input QuoteInput
	if err := c.ShouldBindQuery(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	cadence := model.NormalizeCadence(input.Cadence)
	price, err := h.service.PriceFor(c.Request.Context(), input.Plan, cadence, input.VehicleClass)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) || errors.Is(err, service.ErrPriceNotFound) {
			response.Fail(c, response.ErrPlanNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, gin.H{
		"plan":             input.Plan,
		"cadence":          cadence,
		"durationMonths":   cadence.Months(),
		"vehicleClass":     input.VehicleClass,
		"pricePence":       price.PricePence,
		"maxClaimPence":    price.MaxClaimPence,
		"warrantyTypeCode": price.WarrantyTypeCode,
	})
}

type CreatePlanInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (h *PlanHandler) CreatePlan(c *gin.Context) {
	var input CreatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	plan, err := h.service.CreatePlan(input.Name, input.Description)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, plan)
}

type UpdatePlanInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Active      bool   `json:"active"`
}

func (h *PlanHandler) UpdatePlan(c *gin.Context) {
	var input UpdatePlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	plan, err := h.service.UpdatePlan(c.Param("id"), input.Name, input.Description, input.Active)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			response.Fail(c, response.ErrPlanNotFound, "Plan not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, plan)
}

type AddPriceInput struct {
	Cadence          string `json:"cadence" binding:"required"`
	VehicleClass     string `json:"vehicleClass" binding:"required"`
	PricePence       int64  `json:"pricePence" binding:"required,gt=0"`
	MaxClaimPence    int64  `json:"maxClaimPence" binding:"required,gt=0"`
	WarrantyTypeCode string `json:"warrantyTypeCode" binding:"required"`
}

func (h *PlanHandler) AddPrice(c *gin.Context) {
	var input AddPriceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	price, err := h.service.AddPrice(
		c.Param("id"),
		model.NormalizeCadence(input.Cadence),
		input.VehicleClass,
		input.PricePence,
		input.MaxClaimPence,
		input.WarrantyTypeCode,
	)
	if err != nil {
		if errors.Is(err, service.ErrPlanNotFound) {
			response.Fail(c, response.ErrPlanNotFound, "Plan not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, price)
}

func (h *PlanHandler) ListPrices(c *gin.Context) {
	prices, err := h.service.ListPrices(c.Param("id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, prices)
}
