package model

import (
	baseModel "warranty_shop/pkg/model"
)

// Plan is a warranty coverage tier (Basic, Gold, Platinum).
type Plan struct {
	baseModel.BaseModel
	Name        string `gorm:"type:varchar(50);unique;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Active      bool   `gorm:"default:true" json:"active"`
}

// PlanPrice is one price point: plan x cadence x vehicle class.
// Amounts are in pence.
type PlanPrice struct {
	baseModel.BaseModel
	PlanID           string  `gorm:"type:uuid;index;not null" json:"planId"`
	Cadence          Cadence `gorm:"type:varchar(20);not null" json:"cadence"`
	VehicleClass     string  `gorm:"type:varchar(20);not null" json:"vehicleClass"`
	PricePence       int64   `gorm:"not null" json:"pricePence"`
	MaxClaimPence    int64   `gorm:"not null" json:"maxClaimPence"`
	WarrantyTypeCode string  `gorm:"type:varchar(10);not null" json:"warrantyTypeCode"`
}
