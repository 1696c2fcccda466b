package tracking

import (
	"time"

	"warranty_shop/internal/domain/tracking/repository"
	trackingService "warranty_shop/internal/domain/tracking/service"
	"warranty_shop/internal/pkg/mailer"
	"warranty_shop/internal/pkg/registry"
)

// TrackingModule owns the append-only marketing rows and transactional
// email sending. No public routes of its own; other modules call into
// Service, and the admin email-log view lives in reconcile.
type TrackingModule struct{}

func init() {
	registry.Register(&TrackingModule{})
}

func (m *TrackingModule) Name() string {
	return "tracking"
}

func (m *TrackingModule) Priority() int {
	// Before everything that sends email or tracks carts.
	return 5
}

var Service trackingService.TrackingService

func (m *TrackingModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewTrackingRepository(ctx.DB)
	Service = trackingService.NewTrackingService(repo, mailer.NewMailer())

	// Follow up quotes left idle for a day, checking hourly.
	Service.StartAbandonedCartJob(time.Hour, 24*time.Hour)

	return nil
}
