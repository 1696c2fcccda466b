package repository

import (
	"gorm.io/gorm"

	"warranty_shop/internal/domain/plan/model"
)

type PlanRepository interface {
	Create(plan *model.Plan) error
	Update(plan *model.Plan) error
	GetByID(id string) (*model.Plan, error)
	GetByName(name string) (*model.Plan, error)
	ListActive() ([]model.Plan, error)
	CreatePrice(price *model.PlanPrice) error
	GetPrice(planID string, cadence model.Cadence, vehicleClass string) (*model.PlanPrice, error)
	ListPrices(planID string) ([]model.PlanPrice, error)
}

type planRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(plan *model.Plan) error {
	return r.db.Create(plan).Error
}

func (r *planRepository) Update(plan *model.Plan) error {
	return r.db.Save(plan).Error
}

func (r *planRepository) GetByID(id string) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.First(&plan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) GetByName(name string) (*model.Plan, error) {
	var plan model.Plan
	if err := r.db.Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *planRepository) ListActive() ([]model.Plan, error) {
	var plans []model.Plan
	if err := r.db.Where("active = ?", true).Order("name").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *planRepository) CreatePrice(price *model.PlanPrice) error {
	return r.db.Create(price).Error
}

func (r *planRepository) GetPrice(planID string, cadence model.Cadence, vehicleClass string) (*model.PlanPrice, error) {
	var price model.PlanPrice
	err := r.db.Where("plan_id = ? AND cadence = ? AND vehicle_class = ?", planID, cadence, vehicleClass).
		First(&price).Error
	if err != nil {
		return nil, err
	}
	return &price, nil
}

func (r *planRepository) ListPrices(planID string) ([]model.PlanPrice, error) {
	var prices []model.PlanPrice
	if err := r.db.Where("plan_id = ?", planID).Find(&prices).Error; err != nil {
		return nil, err
	}
	return prices, nil
}
