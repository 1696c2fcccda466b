package model

import (
	"time"

	planModel "warranty_shop/internal/domain/plan/model"
	vehicleModel "warranty_shop/internal/domain/vehicle/model"
)

// CartItem is one selected warranty: a vehicle, a plan and a price
// snapshot taken when the item was added.
type CartItem struct {
	Vehicle          vehicleModel.Vehicle `json:"vehicle"`
	Plan             string               `json:"plan"`
	Cadence          planModel.Cadence    `json:"cadence"`
	PricePence       int64                `json:"pricePence"`
	MaxClaimPence    int64                `json:"maxClaimPence"`
	WarrantyTypeCode string               `json:"warrantyTypeCode"`
	AddedAt          time.Time            `json:"addedAt"`
}

// Cart lives in Redis, keyed by ID. The browser holds only the ID.
type Cart struct {
	ID        string     `json:"id"`
	Email     string     `json:"email,omitempty"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TotalPence sums the item prices.
func (c *Cart) TotalPence() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.PricePence
	}
	return total
}

// HasRegistration reports whether a vehicle is already in the cart.
func (c *Cart) HasRegistration(registration string) bool {
	for _, item := range c.Items {
		if item.Vehicle.Registration == registration {
			return true
		}
	}
	return false
}
