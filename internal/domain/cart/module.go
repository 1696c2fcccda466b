package cart

import (
	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/cart/handler"
	"warranty_shop/internal/domain/cart/repository"
	cartService "warranty_shop/internal/domain/cart/service"
	"warranty_shop/internal/domain/plan"
	"warranty_shop/internal/domain/tracking"
	"warranty_shop/internal/pkg/registry"
)

// CartModule holds the quote wizard's selections.
type CartModule struct{}

func init() {
	registry.Register(&CartModule{})
}

func (m *CartModule) Name() string {
	return "cart"
}

func (m *CartModule) Priority() int {
	// After plan (pricing) and tracking (abandoned carts).
	return 30
}

// Service is shared with the checkout module, which clears the cart on
// purchase.
var Service cartService.CartService

func (m *CartModule) Init(ctx *registry.ModuleContext) error {
	store := repository.NewCartStore(ctx.Redis)
	Service = cartService.NewCartService(store, plan.Service, tracking.Service)
	h := handler.NewCartHandler(Service)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CartHandler) {
	g := r.Group("/cart")
	g.POST("/items", h.AddItem)
	g.GET("/:id", h.GetCart)
	g.DELETE("/:id/items/:registration", h.RemoveItem)
	g.PUT("/:id/email", h.SetEmail)
}
