package model

import (
	"time"

	baseModel "warranty_shop/pkg/model"
)

// AbandonedCart tracks a quote that reached the email step but has not
// converted. The follow-up job mails each row at most once.
type AbandonedCart struct {
	baseModel.BaseModel
	CartID     string     `gorm:"uniqueIndex;not null" json:"cartId"`
	Email      string     `gorm:"index;not null" json:"email"`
	TotalPence int64      `json:"totalPence"`
	ItemCount  int        `json:"itemCount"`
	LastSeenAt time.Time  `json:"lastSeenAt"`
	EmailedAt  *time.Time `json:"emailedAt,omitempty"`
	Converted  bool       `gorm:"default:false" json:"converted"`
}

// NewsletterSignup is an append-only record of a marketing opt-in.
type NewsletterSignup struct {
	baseModel.BaseModel
	Email        string `gorm:"index;not null" json:"email"`
	DiscountCode string `json:"discountCode"`
}

// EmailLog records every transactional send attempt.
type EmailLog struct {
	baseModel.BaseModel
	Recipient string `gorm:"index;not null" json:"recipient"`
	Kind      string `gorm:"index;not null" json:"kind"`
	Status    string `gorm:"not null" json:"status"` // sent, failed
	Error     string `json:"error,omitempty"`
}

// Email kinds.
const (
	EmailKindWelcome       = "welcome"
	EmailKindDiscount      = "discount_code"
	EmailKindAbandonedCart = "abandoned_cart"
)

const (
	EmailStatusSent   = "sent"
	EmailStatusFailed = "failed"
)
