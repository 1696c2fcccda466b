package reconcile

import (
	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/checkout"
	"warranty_shop/internal/domain/customer"
	"warranty_shop/internal/domain/reconcile/handler"
	"warranty_shop/internal/domain/reconcile/service"
	"warranty_shop/internal/domain/tracking"
	"warranty_shop/internal/pkg/middleware"
	"warranty_shop/internal/pkg/registry"
)

// ReconcileModule is the back office: login, session reconciliation
// and the replay tools for failed side effects.
type ReconcileModule struct{}

func init() {
	registry.Register(&ReconcileModule{})
}

func (m *ReconcileModule) Name() string {
	return "reconcile"
}

func (m *ReconcileModule) Priority() int {
	return 50
}

func (m *ReconcileModule) Init(ctx *registry.ModuleContext) error {
	svc := service.NewReconcileService(ctx.DB, checkout.Service, customer.Service)
	h := handler.NewReconcileHandler(svc, checkout.Service, customer.Service, tracking.Service)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ReconcileHandler) {
	r.POST("/admin/login", h.Login)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/reconcile", h.Reconcile)
		admin.POST("/sessions/:id/process", h.ProcessSession)
		admin.GET("/policies", h.ListPolicies)
		admin.GET("/customers", h.ListCustomers)
		admin.POST("/policies/:id/resend-welcome", h.ResendWelcomeEmail)
		admin.POST("/policies/:id/re-register", h.ReRegisterWarranty)
		admin.GET("/dead-letters", h.ListDeadLetters)
		admin.GET("/email-logs", h.ListEmailLogs)
	}
}
