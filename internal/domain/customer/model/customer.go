package model

import (
	"time"

	planModel "warranty_shop/internal/domain/plan/model"
	baseModel "warranty_shop/pkg/model"
)

// Customer is upserted by email on every successful payment, so repeat
// buyers keep one row with their latest details.
type Customer struct {
	baseModel.BaseModel
	Email        string `gorm:"unique;not null" json:"email"`
	Title        string `json:"title"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city"`
	Postcode     string `json:"postcode"`
}

// Policy registration statuses. A policy is created pending; the
// outbox task flips it once the legacy API accepts it.
const (
	PolicyStatusPending    = "pending"
	PolicyStatusRegistered = "registered"
	PolicyStatusFailed     = "failed"
)

// Policy is one purchased warranty. The price fields are the snapshot
// actually paid, not the current plan price.
type Policy struct {
	baseModel.BaseModel
	CustomerID       string            `gorm:"type:uuid;index;not null" json:"customerId"`
	Reference        string            `gorm:"unique;not null" json:"reference"`
	Registration     string            `gorm:"index;not null" json:"registration"`
	Make             string            `json:"make"`
	Plan             string            `json:"plan"`
	Cadence          planModel.Cadence `gorm:"type:varchar(20)" json:"cadence"`
	DurationMonths   int               `json:"durationMonths"`
	PricePence       int64             `json:"pricePence"`
	MaxClaimPence    int64             `json:"maxClaimPence"`
	WarrantyTypeCode string            `json:"warrantyTypeCode"`
	StripeSessionID  string            `gorm:"index" json:"stripeSessionId"`
	DiscountCode     string            `json:"discountCode,omitempty"`
	StartDate        time.Time         `json:"startDate"`
	EndDate          time.Time         `json:"endDate"`
	Status           string            `gorm:"default:pending" json:"status"`
	LastError        string            `json:"lastError,omitempty"`
}

// DomainEvent is an append-only audit row written alongside state
// changes the back office may need to trace.
type DomainEvent struct {
	baseModel.BaseModel
	Kind    string `gorm:"index;not null" json:"kind"`
	Ref     string `gorm:"index" json:"ref"`
	Payload string `gorm:"type:text" json:"payload"`
}
