package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"warranty_shop/internal/domain/customer/model"
	trackingModel "warranty_shop/internal/domain/tracking/model"
	trackingService "warranty_shop/internal/domain/tracking/service"
	"warranty_shop/internal/pkg/warranty"
)

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) UpsertCustomer(c *model.Customer) (*model.Customer, error) {
	args := m.Called(c)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetCustomerByEmail(email string) (*model.Customer, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetCustomerByID(id string) (*model.Customer, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ListCustomers(limit int) ([]model.Customer, error) {
	args := m.Called(limit)
	return args.Get(0).([]model.Customer), args.Error(1)
}

func (m *MockCustomerRepository) CreatePolicy(p *model.Policy) error {
	args := m.Called(p)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetPolicyByID(id string) (*model.Policy, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockCustomerRepository) GetPolicyByReference(reference string) (*model.Policy, error) {
	args := m.Called(reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Policy), args.Error(1)
}

func (m *MockCustomerRepository) PolicyExistsForSession(sessionID, registration string) (bool, error) {
	args := m.Called(sessionID, registration)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) ListPoliciesBySession(sessionID string) ([]model.Policy, error) {
	args := m.Called(sessionID)
	return args.Get(0).([]model.Policy), args.Error(1)
}

func (m *MockCustomerRepository) ListRecentPolicies(limit int) ([]model.Policy, error) {
	args := m.Called(limit)
	return args.Get(0).([]model.Policy), args.Error(1)
}

func (m *MockCustomerRepository) UpdatePolicyStatus(id, status, lastError string) error {
	args := m.Called(id, status, lastError)
	return args.Error(0)
}

func (m *MockCustomerRepository) CreateEvent(event *model.DomainEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

type MockWarrantyClient struct {
	mock.Mock
}

func (m *MockWarrantyClient) Register(ctx context.Context, reg warranty.Registration) error {
	args := m.Called(ctx, reg)
	return args.Error(0)
}

type MockTrackingService struct {
	mock.Mock
}

func (m *MockTrackingService) TrackAbandonedCart(cartID, email string, totalPence int64, itemCount int) {
	m.Called(cartID, email, totalPence, itemCount)
}

func (m *MockTrackingService) MarkCartConverted(cartID string) {
	m.Called(cartID)
}

func (m *MockTrackingService) RecordNewsletterSignup(email, discountCode string) error {
	args := m.Called(email, discountCode)
	return args.Error(0)
}

func (m *MockTrackingService) HasNewsletterSignup(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockTrackingService) SendWelcomeEmail(ctx context.Context, email trackingService.WelcomeEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockTrackingService) SendDiscountEmail(ctx context.Context, to, code, description string) error {
	args := m.Called(ctx, to, code, description)
	return args.Error(0)
}

func (m *MockTrackingService) ListEmailLogs(recipient string, limit int) ([]trackingModel.EmailLog, error) {
	args := m.Called(recipient, limit)
	return args.Get(0).([]trackingModel.EmailLog), args.Error(1)
}

func (m *MockTrackingService) StartAbandonedCartJob(interval, idleAfter time.Duration) {
	m.Called(interval, idleAfter)
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func newTestService(repo *MockCustomerRepository, tracking *MockTrackingService, wc *MockWarrantyClient) *customerService {
	return &customerService{
		repo:     repo,
		tracking: tracking,
		warranty: wc,
		now:      fixedNow,
	}
}

func samplePurchase() Purchase {
	return Purchase{
		SessionID: "cs_test_123",
		CartID:    "cart-1",
		Customer: PurchaseCustomer{
			Title:        "Mr",
			FirstName:    "Alan",
			LastName:     "Turing",
			Email:        "Alan@Example.com",
			Phone:        "07000000000",
			AddressLine1: "1 Bletchley Park",
			City:         "Milton Keynes",
			Postcode:     "MK3 6EB",
		},
		Items: []PurchaseItem{{
			Registration:     "AB12CDE",
			Make:             "FORD",
			Plan:             "gold",
			Cadence:          "monthly",
			DurationMonths:   12,
			PricePence:       29900,
			MaxClaimPence:    300000,
			WarrantyTypeCode: "G12",
		}},
	}
}

func TestHandleSuccessfulPayment(t *testing.T) {
	t.Run("Creates policy with end date from duration", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := newTestService(repo, new(MockTrackingService), new(MockWarrantyClient))

		saved := &model.Customer{Email: "alan@example.com"}
		saved.ID = "cust-1"
		repo.On("UpsertCustomer", mock.MatchedBy(func(c *model.Customer) bool {
			return c.Email == "alan@example.com"
		})).Return(saved, nil)
		repo.On("PolicyExistsForSession", "cs_test_123", "AB12CDE").Return(false, nil)
		repo.On("CreatePolicy", mock.AnythingOfType("*model.Policy")).Return(nil)
		repo.On("CreateEvent", mock.AnythingOfType("*model.DomainEvent")).Return(nil)

		created, err := svc.HandleSuccessfulPayment(context.Background(), samplePurchase())

		require.NoError(t, err)
		require.Len(t, created, 1)
		policy := created[0]
		assert.Equal(t, "cust-1", policy.CustomerID)
		assert.Equal(t, fixedNow(), policy.StartDate)
		assert.Equal(t, fixedNow().AddDate(0, 12, 0), policy.EndDate)
		assert.Equal(t, model.PolicyStatusPending, policy.Status)
		assert.Regexp(t, `^WRT-20260601-[A-Z2-9]{6}$`, policy.Reference)
	})

	t.Run("Replaying a session skips existing policies", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		svc := newTestService(repo, new(MockTrackingService), new(MockWarrantyClient))

		saved := &model.Customer{Email: "alan@example.com"}
		saved.ID = "cust-1"
		repo.On("UpsertCustomer", mock.Anything).Return(saved, nil)
		repo.On("PolicyExistsForSession", "cs_test_123", "AB12CDE").Return(true, nil)

		created, err := svc.HandleSuccessfulPayment(context.Background(), samplePurchase())

		require.NoError(t, err)
		assert.Empty(t, created)
		repo.AssertNotCalled(t, "CreatePolicy", mock.Anything)
	})
}

func TestRegisterWarranty(t *testing.T) {
	pendingPolicy := func() *model.Policy {
		p := &model.Policy{
			CustomerID:       "cust-1",
			Reference:        "WRT-20260601-ABCDEF",
			Registration:     "AB12CDE",
			Make:             "FORD",
			DurationMonths:   12,
			PricePence:       29900,
			MaxClaimPence:    300000,
			WarrantyTypeCode: "G12",
			Status:           model.PolicyStatusPending,
		}
		p.ID = "policy-1"
		return p
	}
	customer := func() *model.Customer {
		c := &model.Customer{
			Email:        "alan@example.com",
			Title:        "Mr",
			FirstName:    "Alan",
			LastName:     "Turing",
			Phone:        "07000000000",
			AddressLine1: "1 Bletchley Park",
			City:         "Milton Keynes",
			Postcode:     "MK3 6EB",
		}
		c.ID = "cust-1"
		return c
	}

	t.Run("Success marks policy registered", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		wc := new(MockWarrantyClient)
		svc := newTestService(repo, new(MockTrackingService), wc)

		repo.On("GetPolicyByID", "policy-1").Return(pendingPolicy(), nil)
		repo.On("GetCustomerByID", "cust-1").Return(customer(), nil)
		repo.On("CreateEvent", mock.Anything).Return(nil)
		repo.On("UpdatePolicyStatus", "policy-1", model.PolicyStatusRegistered, "").Return(nil)

		wc.On("Register", mock.Anything, mock.MatchedBy(func(reg warranty.Registration) bool {
			return reg.PurchasePrice == "299.00" &&
				reg.MaxClaim == "3000.00" &&
				reg.DurationMonths == 12 &&
				reg.Reference == "WRT-20260601-ABCDEF"
		})).Return(nil)

		err := svc.registerWarranty(context.Background(), "policy-1")

		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Failure marks policy failed and returns the error", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		wc := new(MockWarrantyClient)
		svc := newTestService(repo, new(MockTrackingService), wc)

		regErr := &warranty.RegistrationError{Category: warranty.CategoryUpstream, Message: "boom"}
		repo.On("GetPolicyByID", "policy-1").Return(pendingPolicy(), nil)
		repo.On("GetCustomerByID", "cust-1").Return(customer(), nil)
		repo.On("UpdatePolicyStatus", "policy-1", model.PolicyStatusFailed, regErr.Error()).Return(nil)
		wc.On("Register", mock.Anything, mock.Anything).Return(regErr)

		err := svc.registerWarranty(context.Background(), "policy-1")

		assert.Error(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Already registered is a no-op", func(t *testing.T) {
		repo := new(MockCustomerRepository)
		wc := new(MockWarrantyClient)
		svc := newTestService(repo, new(MockTrackingService), wc)

		done := pendingPolicy()
		done.Status = model.PolicyStatusRegistered
		repo.On("GetPolicyByID", "policy-1").Return(done, nil)

		err := svc.registerWarranty(context.Background(), "policy-1")

		require.NoError(t, err)
		wc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestSendWelcomeEmail(t *testing.T) {
	repo := new(MockCustomerRepository)
	tracking := new(MockTrackingService)
	svc := newTestService(repo, tracking, new(MockWarrantyClient))

	policy := &model.Policy{
		CustomerID:   "cust-1",
		Reference:    "WRT-20260601-ABCDEF",
		Registration: "AB12CDE",
		Plan:         "gold",
		EndDate:      fixedNow().AddDate(0, 12, 0),
	}
	policy.ID = "policy-1"
	cust := &model.Customer{Email: "alan@example.com", FirstName: "Alan"}
	cust.ID = "cust-1"

	repo.On("GetPolicyByID", "policy-1").Return(policy, nil)
	repo.On("GetCustomerByID", "cust-1").Return(cust, nil)
	tracking.On("SendWelcomeEmail", mock.Anything, mock.MatchedBy(func(e trackingService.WelcomeEmail) bool {
		return e.To == "alan@example.com" && e.Reference == "WRT-20260601-ABCDEF"
	})).Return(nil)

	err := svc.sendWelcomeEmail(context.Background(), "policy-1")

	require.NoError(t, err)
	tracking.AssertExpectations(t)
}

func TestPenceToPounds(t *testing.T) {
	assert.Equal(t, "299.00", penceToPounds(29900))
	assert.Equal(t, "0.05", penceToPounds(5))
	assert.Equal(t, "12.34", penceToPounds(1234))
}
