package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"warranty_shop/internal/domain/vehicle/model"
)

// maxVehicleAgeYears is the cover cut-off.
const maxVehicleAgeYears = 15

type VehicleService interface {
	// Lookup fetches a vehicle from the DVLA and classifies it.
	// Business refusals (not found, too old) come back in the result,
	// not as errors.
	Lookup(ctx context.Context, registration string) (*model.LookupResult, error)
}

type vehicleService struct {
	dvla DVLAClient
	now  func() time.Time
}

func NewVehicleService(dvla DVLAClient) VehicleService {
	return &vehicleService{dvla: dvla, now: time.Now}
}

func (s *vehicleService) Lookup(ctx context.Context, registration string) (*model.LookupResult, error) {
	reg := normalizeRegistration(registration)
	if reg == "" {
		return &model.LookupResult{Found: false, Error: "registration is required"}, nil
	}

	resp, err := s.dvla.Enquiry(ctx, reg)
	if err != nil {
		if errors.Is(err, errVehicleNotFound) {
			return &model.LookupResult{Found: false, Error: "vehicle not found"}, nil
		}
		return nil, err
	}

	if resp.YearOfManufacture > 0 && s.now().Year()-resp.YearOfManufacture > maxVehicleAgeYears {
		return &model.LookupResult{
			Found: false,
			Error: fmt.Sprintf("we cannot cover vehicles over %d years old", maxVehicleAgeYears),
		}, nil
	}

	v := &model.Vehicle{
		Registration:      reg,
		Make:              resp.Make,
		Colour:            resp.Colour,
		FuelType:          resp.FuelType,
		YearOfManufacture: resp.YearOfManufacture,
		EngineCapacity:    resp.EngineCapacity,
		TypeApproval:      resp.TypeApproval,
		Wheelplan:         resp.Wheelplan,
		MotStatus:         resp.MotStatus,
	}
	v.Class = Classify(resp.FuelType, resp.TypeApproval, resp.Wheelplan)

	return &model.LookupResult{Found: true, Vehicle: v}, nil
}

// Classify buckets a vehicle into a pricing class using the DVLA fuel
// type, type approval and wheelplan. Heuristic order matters: fuel
// identifies EVs and hybrids regardless of body type.
func Classify(fuelType, typeApproval, wheelplan string) string {
	fuel := strings.ToUpper(strings.TrimSpace(fuelType))
	approval := strings.ToUpper(strings.TrimSpace(typeApproval))
	plan := strings.ToUpper(strings.TrimSpace(wheelplan))

	switch {
	case fuel == "ELECTRICITY":
		return model.ClassEV
	case strings.Contains(fuel, "HYBRID"):
		return model.ClassPHEV
	case strings.HasPrefix(approval, "L"):
		// L-category approvals are mopeds, motorcycles and trikes.
		return model.ClassMotorbike
	case strings.Contains(plan, "2 WHEEL"):
		return model.ClassMotorbike
	case strings.HasPrefix(approval, "N"):
		// N1/N2 are goods vehicles.
		return model.ClassVan
	default:
		return model.ClassCar
	}
}

func normalizeRegistration(reg string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(reg), " ", ""))
}
