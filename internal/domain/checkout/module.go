package checkout

import (
	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/cart"
	"warranty_shop/internal/domain/checkout/handler"
	"warranty_shop/internal/domain/checkout/service"
	"warranty_shop/internal/domain/customer"
	"warranty_shop/internal/domain/discount"
	"warranty_shop/internal/domain/tracking"
	"warranty_shop/internal/pkg/registry"
)

// CheckoutModule turns carts into paid sessions and paid sessions into
// policies.
type CheckoutModule struct{}

func init() {
	registry.Register(&CheckoutModule{})
}

func (m *CheckoutModule) Name() string {
	return "checkout"
}

func (m *CheckoutModule) Priority() int {
	return 40
}

var Service service.CheckoutService

func (m *CheckoutModule) Init(ctx *registry.ModuleContext) error {
	Service = service.NewCheckoutService(
		cart.Service,
		discount.Service,
		customer.Service,
		tracking.Service,
		service.NewStripeProvider(),
		service.NewBumperProvider(),
	)
	h := handler.NewCheckoutHandler(Service)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CheckoutHandler) {
	r.POST("/checkout/session", h.CreateSession)
	r.GET("/checkout/confirm", h.Confirm)
	r.POST("/webhooks/stripe", h.Webhook)
}
