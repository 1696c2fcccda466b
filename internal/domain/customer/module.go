package customer

import (
	"warranty_shop/internal/domain/customer/repository"
	"warranty_shop/internal/domain/customer/service"
	"warranty_shop/internal/domain/tracking"
	"warranty_shop/internal/pkg/registry"
	"warranty_shop/internal/pkg/warranty"
)

// CustomerModule owns customers, policies and the post-payment side
// effects. It has no public routes; checkout and reconcile drive it
// through Service.
type CustomerModule struct{}

func init() {
	registry.Register(&CustomerModule{})
}

func (m *CustomerModule) Name() string {
	return "customer"
}

func (m *CustomerModule) Priority() int {
	return 35
}

var Service service.CustomerService

func (m *CustomerModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewCustomerRepository(ctx.DB)
	Service = service.NewCustomerService(repo, tracking.Service, warranty.NewClient(), ctx.Outbox)
	return nil
}
