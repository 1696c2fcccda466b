package vehicle

import (
	"github.com/gin-gonic/gin"

	"warranty_shop/internal/domain/vehicle/handler"
	"warranty_shop/internal/domain/vehicle/service"
	"warranty_shop/internal/pkg/middleware"
	"warranty_shop/internal/pkg/registry"
)

// VehicleModule fronts the DVLA vehicle-enquiry API.
type VehicleModule struct{}

func init() {
	registry.Register(&VehicleModule{})
}

func (m *VehicleModule) Name() string {
	return "vehicle"
}

func (m *VehicleModule) Priority() int {
	return 10
}

func (m *VehicleModule) Init(ctx *registry.ModuleContext) error {
	dvla := service.NewDVLAClient()
	svc := service.NewVehicleService(dvla)
	h := handler.NewVehicleHandler(svc)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.VehicleHandler) {
	g := r.Group("/vehicles")
	// The DVLA API is metered, so the public lookup is rate limited.
	g.POST("/lookup", middleware.RateLimitMiddleware(2, 5), h.Lookup)
}
