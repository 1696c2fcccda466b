package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/checkout/session"
	"github.com/stripe/stripe-go/v74/webhook"

	"warranty_shop/internal/pkg/config"
	"warranty_shop/pkg/metrics"
)

// CardLineItem is one warranty priced for the hosted checkout page.
type CardLineItem struct {
	Name       string
	PricePence int64
}

// CardSessionRequest describes the Stripe session to create.
type CardSessionRequest struct {
	Email           string
	LineItems       []CardLineItem
	Metadata        map[string]string
	PromotionCodeID string
}

// CardProvider wraps the Stripe hosted-checkout API. Interface so the
// service tests run without Stripe.
type CardProvider interface {
	CreateSession(ctx context.Context, req CardSessionRequest) (sessionID, redirectURL string, err error)
	GetSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	VerifyWebhook(payload []byte, signature string) (stripe.Event, error)
	ListRecentSessions(ctx context.Context, limit int64) ([]*stripe.CheckoutSession, error)
}

type stripeProvider struct{}

func NewStripeProvider() CardProvider {
	return &stripeProvider{}
}

func (p *stripeProvider) CreateSession(ctx context.Context, req CardSessionRequest) (string, string, error) {
	cfg := config.GlobalConfig

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail: stripe.String(req.Email),
		SuccessURL:    stripe.String(cfg.App.BaseURL + cfg.Stripe.SuccessPath + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:     stripe.String(cfg.App.BaseURL + cfg.Stripe.CancelPath),
	}
	params.Context = ctx

	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(1),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyGBP)),
				UnitAmount: stripe.Int64(item.PricePence),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}

	// A code already validated server-side is attached directly; the
	// hosted page stays open to other promotion codes otherwise.
	if req.PromotionCodeID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{PromotionCode: stripe.String(req.PromotionCodeID)},
		}
	} else {
		params.AllowPromotionCodes = stripe.Bool(true)
	}

	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := session.New(params)
	if err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "error").Inc()
		return "", "", fmt.Errorf("stripe session create: %w", err)
	}

	metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "ok").Inc()
	return sess.ID, sess.URL, nil
}

func (p *stripeProvider) GetSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("line_items")

	sess, err := session.Get(sessionID, params)
	if err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "error").Inc()
		return nil, fmt.Errorf("stripe session get: %w", err)
	}
	metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "ok").Inc()
	return sess, nil
}

func (p *stripeProvider) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEvent(payload, signature, config.GlobalConfig.Stripe.WebhookSecret)
}

// ListRecentSessions feeds the back-office reconciliation view.
func (p *stripeProvider) ListRecentSessions(ctx context.Context, limit int64) ([]*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionListParams{}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)

	var sessions []*stripe.CheckoutSession
	iter := session.List(params)
	for iter.Next() {
		sessions = append(sessions, iter.CheckoutSession())
	}
	if err := iter.Err(); err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "error").Inc()
		return nil, fmt.Errorf("stripe session list: %w", err)
	}

	metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "ok").Inc()
	return sessions, nil
}
