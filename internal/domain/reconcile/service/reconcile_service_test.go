package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v74"
	"golang.org/x/crypto/bcrypt"

	checkoutModel "warranty_shop/internal/domain/checkout/model"
	checkoutService "warranty_shop/internal/domain/checkout/service"
	customerModel "warranty_shop/internal/domain/customer/model"
	customerService "warranty_shop/internal/domain/customer/service"
	"warranty_shop/internal/pkg/config"
)

type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) CreateSession(ctx context.Context, input checkoutService.CreateSessionInput) (*checkoutModel.SessionResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutModel.SessionResult), args.Error(1)
}

func (m *MockCheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	args := m.Called(ctx, payload, signature)
	return args.Error(0)
}

func (m *MockCheckoutService) ProcessSession(ctx context.Context, sessionID string) ([]string, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCheckoutService) ListRecentSessions(ctx context.Context, limit int64) ([]*stripe.CheckoutSession, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*stripe.CheckoutSession), args.Error(1)
}

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) HandleSuccessfulPayment(ctx context.Context, purchase customerService.Purchase) ([]customerModel.Policy, error) {
	args := m.Called(ctx, purchase)
	return args.Get(0).([]customerModel.Policy), args.Error(1)
}

func (m *MockCustomerService) GetCustomerByEmail(email string) (*customerModel.Customer, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*customerModel.Customer), args.Error(1)
}

func (m *MockCustomerService) ListCustomers(limit int) ([]customerModel.Customer, error) {
	args := m.Called(limit)
	return args.Get(0).([]customerModel.Customer), args.Error(1)
}

func (m *MockCustomerService) ListRecentPolicies(limit int) ([]customerModel.Policy, error) {
	args := m.Called(limit)
	return args.Get(0).([]customerModel.Policy), args.Error(1)
}

func (m *MockCustomerService) ListPoliciesBySession(sessionID string) ([]customerModel.Policy, error) {
	args := m.Called(sessionID)
	return args.Get(0).([]customerModel.Policy), args.Error(1)
}

func (m *MockCustomerService) ResendWelcomeEmail(ctx context.Context, policyID string) error {
	args := m.Called(ctx, policyID)
	return args.Error(0)
}

func (m *MockCustomerService) ReRegisterWarranty(ctx context.Context, policyID string) error {
	args := m.Called(ctx, policyID)
	return args.Error(0)
}

func setupAdminConfig(t *testing.T, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	config.GlobalConfig.Admin.Email = "admin@warrantyshop.co.uk"
	config.GlobalConfig.Admin.PasswordHash = string(hash)
	config.GlobalConfig.JWT.Secret = "test-secret-test-secret-test-secret!"
	config.GlobalConfig.JWT.Expire = 1
}

func TestLogin(t *testing.T) {
	setupAdminConfig(t, "correct-horse")
	svc := NewReconcileService(nil, new(MockCheckoutService), new(MockCustomerService))

	t.Run("Valid credentials issue a token", func(t *testing.T) {
		token, expiresAt, err := svc.Login("admin@warrantyshop.co.uk", "correct-horse")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.NotNil(t, expiresAt)
	})

	t.Run("Wrong password", func(t *testing.T) {
		_, _, err := svc.Login("admin@warrantyshop.co.uk", "wrong")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("Wrong email", func(t *testing.T) {
		_, _, err := svc.Login("someone@else.com", "correct-horse")
		assert.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestReconcile(t *testing.T) {
	checkout := new(MockCheckoutService)
	customers := new(MockCustomerService)
	svc := NewReconcileService(nil, checkout, customers)

	checkout.On("ListRecentSessions", mock.Anything, int64(25)).Return([]*stripe.CheckoutSession{
		{ID: "cs_paid_recorded", CustomerEmail: "a@b.com", AmountTotal: 29900, PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid},
		{ID: "cs_paid_missing", CustomerEmail: "c@d.com", AmountTotal: 19900, PaymentStatus: stripe.CheckoutSessionPaymentStatusPaid},
		{ID: "cs_unpaid", CustomerEmail: "e@f.com", AmountTotal: 9900, PaymentStatus: stripe.CheckoutSessionPaymentStatusUnpaid},
	}, nil)
	customers.On("ListPoliciesBySession", "cs_paid_recorded").
		Return([]customerModel.Policy{{Reference: "WRT-20260601-ABCDEF"}}, nil)
	customers.On("ListPoliciesBySession", "cs_paid_missing").
		Return([]customerModel.Policy{}, nil)
	customers.On("ListPoliciesBySession", "cs_unpaid").
		Return([]customerModel.Policy{}, nil)

	statuses, err := svc.Reconcile(context.Background(), 25)

	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.False(t, statuses[0].Missing, "paid session with a policy is fine")
	assert.True(t, statuses[1].Missing, "paid session without policies needs replay")
	assert.False(t, statuses[2].Missing, "unpaid session is not missing anything")
}
