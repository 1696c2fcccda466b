package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"go.uber.org/zap"

	cartModel "warranty_shop/internal/domain/cart/model"
	cartService "warranty_shop/internal/domain/cart/service"
	checkoutModel "warranty_shop/internal/domain/checkout/model"
	customerService "warranty_shop/internal/domain/customer/service"
	discountService "warranty_shop/internal/domain/discount/service"
	"warranty_shop/pkg/logger"
	"warranty_shop/pkg/metrics"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrInvalidDiscount  = errors.New("discount code is not valid")
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrSessionNotPaid   = errors.New("session is not paid")
	ErrSessionNoPayload = errors.New("session carries no purchase metadata")
)

// CartConversionTracker marks carts converted so the follow-up mailer
// leaves buyers alone.
type CartConversionTracker interface {
	MarkCartConverted(cartID string)
}

type CreateSessionInput struct {
	CartID       string
	PayLater     bool
	DiscountCode string
	Customer     checkoutModel.CustomerDetails
}

type CheckoutService interface {
	// CreateSession opens a payment session for the cart. PayLater
	// routes through the finance provider first and silently falls
	// back to card checkout when it cannot take the order.
	CreateSession(ctx context.Context, input CreateSessionInput) (*checkoutModel.SessionResult, error)

	// HandleWebhook verifies and processes a provider event. It only
	// errors on signature failure or a broken payload; processing
	// problems after the rows are written stay internal.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error

	// ProcessSession replays fulfilment for a paid session. Used by
	// the success page as a webhook fallback and by the back office.
	ProcessSession(ctx context.Context, sessionID string) ([]string, error)

	ListRecentSessions(ctx context.Context, limit int64) ([]*stripe.CheckoutSession, error)
}

type checkoutService struct {
	carts     cartService.CartService
	discounts discountService.DiscountService
	customers customerService.CustomerService
	tracker   CartConversionTracker
	card      CardProvider
	payLater  PayLaterProvider
}

func NewCheckoutService(
	carts cartService.CartService,
	discounts discountService.DiscountService,
	customers customerService.CustomerService,
	tracker CartConversionTracker,
	card CardProvider,
	payLater PayLaterProvider,
) CheckoutService {
	return &checkoutService{
		carts:     carts,
		discounts: discounts,
		customers: customers,
		tracker:   tracker,
		card:      card,
		payLater:  payLater,
	}
}

func (s *checkoutService) CreateSession(ctx context.Context, input CreateSessionInput) (*checkoutModel.SessionResult, error) {
	cart, err := s.carts.Get(ctx, input.CartID)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	total := cart.TotalPence()

	var discountPence int64
	var promotionCodeID string
	if input.DiscountCode != "" {
		validation, err := s.discounts.Validate(input.DiscountCode, input.Customer.Email, total)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, fmt.Errorf("%w: %s", ErrInvalidDiscount, validation.Reason)
		}
		discountPence = validation.DiscountPence
		promotionCodeID = validation.PromotionCodeID
	}

	purchase := s.buildPurchase(cart, input)
	meta, err := encodePurchase(purchase)
	if err != nil {
		return nil, err
	}

	fallbackReason := ""
	if input.PayLater {
		result := s.payLater.CreateApplication(ctx, PayLaterRequest{
			OrderReference:     cart.ID,
			AmountPence:        total - discountPence,
			ProductDescription: describeCart(len(cart.Items)),
			Customer:           input.Customer,
		})
		if !result.Fallback {
			metrics.Default.CheckoutSessionsTotal.WithLabelValues(checkoutModel.ProviderBumper, "created").Inc()
			return &checkoutModel.SessionResult{
				Provider:    checkoutModel.ProviderBumper,
				RedirectURL: result.RedirectURL,
			}, nil
		}
		metrics.Default.CheckoutSessionsTotal.WithLabelValues(checkoutModel.ProviderBumper, "fallback").Inc()
		fallbackReason = result.FallbackReason
	}

	req := CardSessionRequest{
		Email:           input.Customer.Email,
		Metadata:        meta,
		PromotionCodeID: promotionCodeID,
	}
	for _, item := range cart.Items {
		req.LineItems = append(req.LineItems, CardLineItem{
			Name:       lineItemName(item.Plan, item.Vehicle.Registration),
			PricePence: item.PricePence,
		})
	}

	sessionID, redirectURL, err := s.card.CreateSession(ctx, req)
	if err != nil {
		metrics.Default.CheckoutSessionsTotal.WithLabelValues(checkoutModel.ProviderStripe, "error").Inc()
		return nil, err
	}
	metrics.Default.CheckoutSessionsTotal.WithLabelValues(checkoutModel.ProviderStripe, "created").Inc()

	return &checkoutModel.SessionResult{
		Provider:         checkoutModel.ProviderStripe,
		SessionID:        sessionID,
		RedirectURL:      redirectURL,
		FallbackToStripe: fallbackReason != "",
		FallbackReason:   fallbackReason,
	}, nil
}

func (s *checkoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := s.card.VerifyWebhook(payload, signature)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("decode session event: %w", err)
	}

	return s.finalize(ctx, sess.ID, sess.Metadata)
}

func (s *checkoutService) ProcessSession(ctx context.Context, sessionID string) ([]string, error) {
	sess, err := s.card.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, ErrSessionNotPaid
	}

	if err := s.finalize(ctx, sess.ID, sess.Metadata); err != nil {
		return nil, err
	}

	policies, err := s.customers.ListPoliciesBySession(sessionID)
	if err != nil {
		return nil, err
	}
	refs := make([]string, 0, len(policies))
	for _, p := range policies {
		refs = append(refs, p.Reference)
	}
	return refs, nil
}

func (s *checkoutService) ListRecentSessions(ctx context.Context, limit int64) ([]*stripe.CheckoutSession, error) {
	return s.card.ListRecentSessions(ctx, limit)
}

// finalize persists the purchase and runs the soft follow-ups. Once
// the customer and policy rows are written, nothing here may return an
// error: a Stripe retry of the same webhook must get a clean response.
func (s *checkoutService) finalize(ctx context.Context, sessionID string, meta map[string]string) error {
	if len(meta) == 0 {
		return ErrSessionNoPayload
	}

	purchase, err := decodePurchase(meta)
	if err != nil {
		return err
	}
	purchase.SessionID = sessionID

	created, err := s.customers.HandleSuccessfulPayment(ctx, purchase)
	if err != nil {
		return err
	}

	if len(created) > 0 && purchase.DiscountCode != "" {
		if err := s.discounts.Redeem(purchase.DiscountCode, purchase.Customer.Email); err != nil {
			logger.Log.Warn("Failed to redeem discount after payment",
				zap.String("code", purchase.DiscountCode), zap.Error(err))
		}
	}

	if purchase.CartID != "" {
		s.tracker.MarkCartConverted(purchase.CartID)
		if err := s.carts.Clear(ctx, purchase.CartID); err != nil {
			logger.Log.Warn("Failed to clear cart after payment",
				zap.String("cart_id", purchase.CartID), zap.Error(err))
		}
	}

	return nil
}

func (s *checkoutService) buildPurchase(cart *cartModel.Cart, input CreateSessionInput) customerService.Purchase {
	purchase := customerService.Purchase{
		CartID:       cart.ID,
		DiscountCode: strings.ToUpper(strings.TrimSpace(input.DiscountCode)),
		Customer: customerService.PurchaseCustomer{
			Title:        input.Customer.Title,
			FirstName:    input.Customer.FirstName,
			LastName:     input.Customer.LastName,
			Email:        input.Customer.Email,
			Phone:        input.Customer.Phone,
			AddressLine1: input.Customer.AddressLine1,
			AddressLine2: input.Customer.AddressLine2,
			City:         input.Customer.City,
			Postcode:     input.Customer.Postcode,
		},
	}
	for _, item := range cart.Items {
		purchase.Items = append(purchase.Items, customerService.PurchaseItem{
			Registration:     item.Vehicle.Registration,
			Make:             item.Vehicle.Make,
			Plan:             item.Plan,
			Cadence:          string(item.Cadence),
			DurationMonths:   item.Cadence.Months(),
			PricePence:       item.PricePence,
			MaxClaimPence:    item.MaxClaimPence,
			WarrantyTypeCode: item.WarrantyTypeCode,
		})
	}
	return purchase
}

func lineItemName(plan, registration string) string {
	if plan == "" {
		return "Warranty - " + registration
	}
	return fmt.Sprintf("%s warranty - %s", strings.ToUpper(plan[:1])+plan[1:], registration)
}

func describeCart(items int) string {
	if items == 1 {
		return "Vehicle warranty"
	}
	return fmt.Sprintf("Vehicle warranties (%d)", items)
}

// poundsString renders pence as pounds with two decimals.
func poundsString(pence int64) string {
	return fmt.Sprintf("%d.%02d", pence/100, pence%100)
}
