package discount

import (
	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/discount/handler"
	"warranty_shop/internal/domain/discount/repository"
	"warranty_shop/internal/domain/discount/service"
	"warranty_shop/internal/domain/tracking"
	"warranty_shop/internal/pkg/middleware"
	"warranty_shop/internal/pkg/registry"
)

// DiscountModule owns promotional codes, their Stripe mirrors and the
// newsletter signup flow.
type DiscountModule struct{}

func init() {
	registry.Register(&DiscountModule{})
}

func (m *DiscountModule) Name() string {
	return "discount"
}

func (m *DiscountModule) Priority() int {
	return 20
}

// Service is set during Init; the checkout module redeems codes through
// it after a successful payment.
var Service service.DiscountService

func (m *DiscountModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewDiscountRepository(ctx.DB)
	Service = service.NewDiscountService(repo, tracking.Service, service.NewStripeMirror(), ctx.Outbox)
	h := handler.NewDiscountHandler(Service)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.DiscountHandler) {
	r.POST("/discounts/validate", h.Validate)
	r.POST("/newsletter/signup", h.NewsletterSignup)

	admin := r.Group("/discounts")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("", h.CreateCode)
		admin.GET("", h.ListCodes)
	}
}
