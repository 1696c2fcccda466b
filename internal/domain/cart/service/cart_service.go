package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"warranty_shop/internal/domain/cart/model"
	"warranty_shop/internal/domain/cart/repository"
	planModel "warranty_shop/internal/domain/plan/model"
	planService "warranty_shop/internal/domain/plan/service"
	vehicleModel "warranty_shop/internal/domain/vehicle/model"
)

var (
	ErrDuplicateRegistration = errors.New("only one warranty per vehicle is allowed")
	ErrItemNotFound          = errors.New("item not in cart")
)

// AbandonedTracker is implemented by the tracking service. The call is
// fire-and-forget: carts must never fail because tracking did.
type AbandonedTracker interface {
	TrackAbandonedCart(cartID, email string, totalPence int64, itemCount int)
}

type CartService interface {
	Get(ctx context.Context, cartID string) (*model.Cart, error)
	AddItem(ctx context.Context, cartID string, vehicle vehicleModel.Vehicle, plan string, cadence planModel.Cadence) (*model.Cart, error)
	RemoveItem(ctx context.Context, cartID, registration string) (*model.Cart, error)
	SetEmail(ctx context.Context, cartID, email string) (*model.Cart, error)
	Clear(ctx context.Context, cartID string) error
}

type cartService struct {
	store   repository.CartStore
	plans   planService.PlanService
	tracker AbandonedTracker
}

func NewCartService(store repository.CartStore, plans planService.PlanService, tracker AbandonedTracker) CartService {
	return &cartService{store: store, plans: plans, tracker: tracker}
}

func (s *cartService) Get(ctx context.Context, cartID string) (*model.Cart, error) {
	return s.store.Get(ctx, cartID)
}

// AddItem prices the selection and appends it. An empty cartID starts
// a new cart. A registration already in the cart is rejected without
// mutating anything.
func (s *cartService) AddItem(ctx context.Context, cartID string, vehicle vehicleModel.Vehicle, plan string, cadence planModel.Cadence) (*model.Cart, error) {
	var cart *model.Cart

	if cartID == "" {
		cart = &model.Cart{ID: uuid.New().String()}
	} else {
		existing, err := s.store.Get(ctx, cartID)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				cart = &model.Cart{ID: cartID}
			} else {
				return nil, err
			}
		} else {
			cart = existing
		}
	}

	if cart.HasRegistration(vehicle.Registration) {
		return nil, ErrDuplicateRegistration
	}

	price, err := s.plans.PriceFor(ctx, plan, cadence, vehicle.Class)
	if err != nil {
		return nil, err
	}

	cart.Items = append(cart.Items, model.CartItem{
		Vehicle:          vehicle,
		Plan:             plan,
		Cadence:          cadence,
		PricePence:       price.PricePence,
		MaxClaimPence:    price.MaxClaimPence,
		WarrantyTypeCode: price.WarrantyTypeCode,
		AddedAt:          time.Now(),
	})

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.track(cart)
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, registration string) (*model.Cart, error) {
	cart, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	kept := cart.Items[:0]
	removed := false
	for _, item := range cart.Items {
		if item.Vehicle.Registration == registration {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	if !removed {
		return nil, ErrItemNotFound
	}
	cart.Items = kept

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) SetEmail(ctx context.Context, cartID, email string) (*model.Cart, error) {
	cart, err := s.store.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	cart.Email = email
	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}

	s.track(cart)
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, cartID string) error {
	return s.store.Delete(ctx, cartID)
}

func (s *cartService) track(cart *model.Cart) {
	if s.tracker == nil || cart.Email == "" || len(cart.Items) == 0 {
		return
	}
	go s.tracker.TrackAbandonedCart(cart.ID, cart.Email, cart.TotalPence(), len(cart.Items))
}
