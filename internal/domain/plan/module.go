package plan

import (
	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/plan/handler"
	"warranty_shop/internal/domain/plan/repository"
	"warranty_shop/internal/domain/plan/service"
	"warranty_shop/internal/pkg/middleware"
	"warranty_shop/internal/pkg/registry"
)

// PlanModule exposes warranty plans and pricing.
type PlanModule struct{}

func init() {
	registry.Register(&PlanModule{})
}

func (m *PlanModule) Name() string {
	return "plan"
}

func (m *PlanModule) Priority() int {
	return 10
}

// Service is set during Init so dependent modules (checkout) can reuse
// the same instance.
var Service service.PlanService

func (m *PlanModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewPlanRepository(ctx.DB)
	Service = service.NewPlanService(repo, ctx.Redis)
	h := handler.NewPlanHandler(Service)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PlanHandler) {
	g := r.Group("/plans")
	g.GET("", h.ListPlans)
	g.GET("/quote", h.Quote)

	admin := g.Group("")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreatePlan)
		admin.PUT("/:id", h.UpdatePlan)
		admin.POST("/:id/prices", h.AddPrice)
		admin.GET("/:id/prices", h.ListPrices)
	}
}
