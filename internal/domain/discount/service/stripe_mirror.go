package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/coupon"
	"github.com/stripe/stripe-go/v74/promotioncode"

	"warranty_shop/internal/domain/discount/model"
	"warranty_shop/pkg/metrics"
)

// stripeMirror creates the Stripe coupon and promotion code matching a
// local discount code. Runs on the outbox, so transient Stripe errors
// are retried.
type stripeMirror struct{}

func NewStripeMirror() StripeMirror {
	return &stripeMirror{}
}

func (m *stripeMirror) MirrorCode(ctx context.Context, code *model.DiscountCode) (string, string, error) {
	params := &stripe.CouponParams{
		Duration: stripe.String(string(stripe.CouponDurationOnce)),
		Name:     stripe.String(code.Code),
		RedeemBy: stripe.Int64(code.ValidTo.Unix()),
	}
	params.Context = ctx

	switch code.Type {
	case model.TypePercent:
		params.PercentOff = stripe.Float64(float64(code.PercentOff))
	case model.TypeFixed:
		params.AmountOff = stripe.Int64(code.AmountOffPence)
		params.Currency = stripe.String(string(stripe.CurrencyGBP))
	default:
		return "", "", fmt.Errorf("unknown discount type %q", code.Type)
	}

	cp, err := coupon.New(params)
	if err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "error").Inc()
		return "", "", fmt.Errorf("stripe coupon create: %w", err)
	}

	promoParams := &stripe.PromotionCodeParams{
		Coupon:         stripe.String(cp.ID),
		Code:           stripe.String(code.Code),
		ExpiresAt:      stripe.Int64(code.ValidTo.Unix()),
		MaxRedemptions: stripe.Int64(int64(code.UsageLimit)),
	}
	promoParams.Context = ctx

	promo, err := promotioncode.New(promoParams)
	if err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "error").Inc()
		return "", "", fmt.Errorf("stripe promotion code create: %w", err)
	}

	metrics.Default.OutboundCallsTotal.WithLabelValues("stripe", "ok").Inc()
	return cp.ID, promo.ID, nil
}
