package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"warranty_shop/internal/domain/plan/model"
	"warranty_shop/internal/domain/plan/repository"
)

var ErrPlanNotFound = errors.New("plan not found")
var ErrPriceNotFound = errors.New("no price for plan, cadence and vehicle class")

type PlanService interface {
	CreatePlan(name, description string) (*model.Plan, error)
	UpdatePlan(id, name, description string, active bool) (*model.Plan, error)
	ListPlans() ([]model.Plan, error)
	GetPlanByName(name string) (*model.Plan, error)
	AddPrice(planID string, cadence model.Cadence, vehicleClass string, pricePence, maxClaimPence int64, typeCode string) (*model.PlanPrice, error)
	ListPrices(planID string) ([]model.PlanPrice, error)

	// PriceFor resolves the price point for a quote. Read-through
	// cached in Redis; prices change rarely and the quote wizard hits
	// this on every step.
	PriceFor(ctx context.Context, planName string, cadence model.Cadence, vehicleClass string) (*model.PlanPrice, error)
}

type planService struct {
	repo repository.PlanRepository
	rdb  *redis.Client
}

const priceCacheTTL = 10 * time.Minute

func NewPlanService(repo repository.PlanRepository, rdb *redis.Client) PlanService {
	return &planService{repo: repo, rdb: rdb}
}

func (s *planService) CreatePlan(name, description string) (*model.Plan, error) {
	plan := &model.Plan{
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := s.repo.Create(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) UpdatePlan(id, name, description string, active bool) (*model.Plan, error) {
	plan, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	plan.Name = name
	plan.Description = description
	plan.Active = active

	if err := s.repo.Update(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *planService) ListPlans() ([]model.Plan, error) {
	return s.repo.ListActive()
}

func (s *planService) GetPlanByName(name string) (*model.Plan, error) {
	plan, err := s.repo.GetByName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

func (s *planService) AddPrice(planID string, cadence model.Cadence, vehicleClass string, pricePence, maxClaimPence int64, typeCode string) (*model.PlanPrice, error) {
	if _, err := s.repo.GetByID(planID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	price := &model.PlanPrice{
		PlanID:           planID,
		Cadence:          cadence,
		VehicleClass:     vehicleClass,
		PricePence:       pricePence,
		MaxClaimPence:    maxClaimPence,
		WarrantyTypeCode: typeCode,
	}
	if err := s.repo.CreatePrice(price); err != nil {
		return nil, err
	}

	// Invalidate any cached copy of this price point.
	key := priceCacheKey(planID, cadence, vehicleClass)
	s.rdb.Del(context.Background(), key)

	return price, nil
}

func (s *planService) ListPrices(planID string) ([]model.PlanPrice, error) {
	return s.repo.ListPrices(planID)
}

func priceCacheKey(planID string, cadence model.Cadence, vehicleClass string) string {
	return fmt.Sprintf("plan:price:%s:%s:%s", planID, cadence, vehicleClass)
}

func (s *planService) PriceFor(ctx context.Context, planName string, cadence model.Cadence, vehicleClass string) (*model.PlanPrice, error) {
	plan, err := s.GetPlanByName(planName)
	if err != nil {
		return nil, err
	}

	key := priceCacheKey(plan.ID, cadence, vehicleClass)
	if cached, err := s.rdb.Get(ctx, key).Result(); err == nil {
		var price model.PlanPrice
		if err := json.Unmarshal([]byte(cached), &price); err == nil {
			return &price, nil
		}
	}

	price, err := s.repo.GetPrice(plan.ID, cadence, vehicleClass)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPriceNotFound
		}
		return nil, err
	}

	if raw, err := json.Marshal(price); err == nil {
		s.rdb.Set(ctx, key, raw, priceCacheTTL)
	}

	return price, nil
}
