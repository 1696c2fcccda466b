package model

import (
	"time"

	baseModel "warranty_shop/pkg/model"
)

// Discount types.
const (
	TypePercent = "percent"
	TypeFixed   = "fixed"
)

// DiscountCode is a promotional code. Stripe IDs mirror the code into
// the card provider so Stripe-hosted checkout can apply it natively.
type DiscountCode struct {
	baseModel.BaseModel
	Code                  string    `gorm:"type:varchar(40);unique;not null" json:"code"`
	Type                  string    `gorm:"type:varchar(10);not null" json:"type"`
	PercentOff            int64     `json:"percentOff,omitempty"`
	AmountOffPence        int64     `json:"amountOffPence,omitempty"`
	ValidFrom             time.Time `gorm:"not null" json:"validFrom"`
	ValidTo               time.Time `gorm:"not null" json:"validTo"`
	UsageLimit            int       `gorm:"not null" json:"usageLimit"`
	UsedCount             int       `gorm:"default:0" json:"usedCount"`
	Active                bool      `gorm:"default:true" json:"active"`
	StripeCouponID        string    `json:"stripeCouponId,omitempty"`
	StripePromotionCodeID string    `json:"stripePromotionCodeId,omitempty"`
}

// Redemption records one customer's use of a code, keyed by email.
type Redemption struct {
	baseModel.BaseModel
	CodeID string `gorm:"type:uuid;index;not null" json:"codeId"`
	Email  string `gorm:"index;not null" json:"email"`
}

// ValidationResult is returned to the checkout flow. Invalid codes are
// a business answer, not an error.
type ValidationResult struct {
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason,omitempty"`
	Code          string `json:"code,omitempty"`
	DiscountPence int64  `json:"discountPence,omitempty"`

	// PromotionCodeID lets checkout attach the Stripe mirror of the
	// code to the hosted session. Not part of the storefront answer.
	PromotionCodeID string `json:"-"`
}

// DiscountFor computes the discount a code gives on an order total.
// Fixed amounts are clamped so the final price never goes negative.
func (d *DiscountCode) DiscountFor(orderTotalPence int64) int64 {
	switch d.Type {
	case TypePercent:
		return orderTotalPence * d.PercentOff / 100
	case TypeFixed:
		if d.AmountOffPence > orderTotalPence {
			return orderTotalPence
		}
		return d.AmountOffPence
	default:
		return 0
	}
}
