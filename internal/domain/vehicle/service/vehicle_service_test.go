package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"warranty_shop/internal/domain/vehicle/model"
)

type MockDVLAClient struct {
	mock.Mock
}

func (m *MockDVLAClient) Enquiry(ctx context.Context, registration string) (*dvlaResponse, error) {
	args := m.Called(ctx, registration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dvlaResponse), args.Error(1)
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func TestLookup(t *testing.T) {
	t.Run("Classifies and normalizes registration", func(t *testing.T) {
		mockDVLA := new(MockDVLAClient)
		svc := &vehicleService{dvla: mockDVLA, now: fixedNow}

		mockDVLA.On("Enquiry", mock.Anything, "AB12CDE").Return(&dvlaResponse{
			RegistrationNumber: "AB12CDE",
			Make:               "FORD",
			FuelType:           "PETROL",
			YearOfManufacture:  2018,
			TypeApproval:       "M1",
			Wheelplan:          "2 AXLE RIGID BODY",
		}, nil)

		result, err := svc.Lookup(context.Background(), "ab12 cde")

		assert.NoError(t, err)
		assert.True(t, result.Found)
		assert.Equal(t, "AB12CDE", result.Vehicle.Registration)
		assert.Equal(t, model.ClassCar, result.Vehicle.Class)
		mockDVLA.AssertExpectations(t)
	})

	t.Run("Rejects vehicles over fifteen years old", func(t *testing.T) {
		mockDVLA := new(MockDVLAClient)
		svc := &vehicleService{dvla: mockDVLA, now: fixedNow}

		mockDVLA.On("Enquiry", mock.Anything, "OLD1CAR").Return(&dvlaResponse{
			YearOfManufacture: 2005,
			FuelType:          "PETROL",
		}, nil)

		result, err := svc.Lookup(context.Background(), "OLD1CAR")

		assert.NoError(t, err)
		assert.False(t, result.Found)
		assert.Contains(t, result.Error, "over 15 years")
	})

	t.Run("Vehicle not found is a business refusal", func(t *testing.T) {
		mockDVLA := new(MockDVLAClient)
		svc := &vehicleService{dvla: mockDVLA, now: fixedNow}

		mockDVLA.On("Enquiry", mock.Anything, "NOPE123").Return(nil, errVehicleNotFound)

		result, err := svc.Lookup(context.Background(), "NOPE123")

		assert.NoError(t, err)
		assert.False(t, result.Found)
		assert.Equal(t, "vehicle not found", result.Error)
	})
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name         string
		fuel         string
		typeApproval string
		wheelplan    string
		want         string
	}{
		{"Petrol M1 is a car", "PETROL", "M1", "2 AXLE RIGID BODY", model.ClassCar},
		{"Electric is EV regardless of body", "ELECTRICITY", "N1", "2 AXLE RIGID BODY", model.ClassEV},
		{"Hybrid is PHEV", "HYBRID ELECTRIC (CLEAN)", "M1", "2 AXLE RIGID BODY", model.ClassPHEV},
		{"N1 goods vehicle is a van", "DIESEL", "N1", "2 AXLE RIGID BODY", model.ClassVan},
		{"L3 approval is a motorbike", "PETROL", "L3e", "2 WHEEL", model.ClassMotorbike},
		{"Two wheeler without approval is a motorbike", "PETROL", "", "2 WHEEL", model.ClassMotorbike},
		{"Unknown everything defaults to car", "", "", "", model.ClassCar},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.fuel, tc.typeApproval, tc.wheelplan))
		})
	}
}
