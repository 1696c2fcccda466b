package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	checkoutService "warranty_shop/internal/domain/checkout/service"
	customerService "warranty_shop/internal/domain/customer/service"
	"warranty_shop/internal/domain/reconcile/service"
	trackingService "warranty_shop/internal/domain/tracking/service"
	"warranty_shop/pkg/response"
)

type ReconcileHandler struct {
	service   service.ReconcileService
	checkout  checkoutService.CheckoutService
	customers customerService.CustomerService
	tracking  trackingService.TrackingService
}

func NewReconcileHandler(
	s service.ReconcileService,
	checkout checkoutService.CheckoutService,
	customers customerService.CustomerService,
	tracking trackingService.TrackingService,
) *ReconcileHandler {
	return &ReconcileHandler{
		service:   s,
		checkout:  checkout,
		customers: customers,
		tracking:  tracking,
	}
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Back-office login
// @Tags Admin
// @Accept json
// @Produce json
// @Router /admin/login [post]
func (h *ReconcileHandler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	token, expiresAt, err := h.service.Login(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			response.Error(c, http.StatusUnauthorized, response.ErrAuthFailed, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, gin.H{"token": token, "expiresAt": expiresAt})
}

// Reconcile godoc
// @Summary Provider sessions against recorded policies
// @Tags Admin
// @Produce json
// @Router /admin/reconcile [get]
func (h *ReconcileHandler) Reconcile(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "25"), 10, 64)

	statuses, err := h.service.Reconcile(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, statuses)
}

// ProcessSession replays fulfilment for a paid session that never made
// it into the database.
func (h *ReconcileHandler) ProcessSession(c *gin.Context) {
	refs, err := h.checkout.ProcessSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, checkoutService.ErrSessionNotPaid) {
			response.Fail(c, response.ErrSessionNotFound, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, gin.H{"references": refs})
}

func (h *ReconcileHandler) ListPolicies(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	policies, err := h.customers.ListRecentPolicies(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, policies)
}

func (h *ReconcileHandler) ListCustomers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	customers, err := h.customers.ListCustomers(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, customers)
}

func (h *ReconcileHandler) ResendWelcomeEmail(c *gin.Context) {
	if err := h.customers.ResendWelcomeEmail(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, gin.H{"sent": true})
}

func (h *ReconcileHandler) ReRegisterWarranty(c *gin.Context) {
	if err := h.customers.ReRegisterWarranty(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, gin.H{"registered": true})
}

func (h *ReconcileHandler) ListDeadLetters(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	rows, err := h.service.ListDeadLetters(limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, rows)
}

func (h *ReconcileHandler) ListEmailLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.tracking.ListEmailLogs(c.Query("recipient"), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, logs)
}
