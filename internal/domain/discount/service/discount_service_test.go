package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"warranty_shop/internal/domain/discount/model"
)

type MockDiscountRepository struct {
	mock.Mock
}

func (m *MockDiscountRepository) Create(code *model.DiscountCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockDiscountRepository) Update(code *model.DiscountCode) error {
	args := m.Called(code)
	return args.Error(0)
}

func (m *MockDiscountRepository) GetByCode(code string) (*model.DiscountCode, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DiscountCode), args.Error(1)
}

func (m *MockDiscountRepository) CodeExists(code string) (bool, error) {
	args := m.Called(code)
	return args.Bool(0), args.Error(1)
}

func (m *MockDiscountRepository) List(limit int) ([]model.DiscountCode, error) {
	args := m.Called(limit)
	return args.Get(0).([]model.DiscountCode), args.Error(1)
}

func (m *MockDiscountRepository) IncrementUsage(codeID string) error {
	args := m.Called(codeID)
	return args.Error(0)
}

func (m *MockDiscountRepository) CreateRedemption(redemption *model.Redemption) error {
	args := m.Called(redemption)
	return args.Error(0)
}

func (m *MockDiscountRepository) HasRedemption(codeID, email string) (bool, error) {
	args := m.Called(codeID, email)
	return args.Bool(0), args.Error(1)
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
}

func activeCode() *model.DiscountCode {
	code := &model.DiscountCode{
		Code:       "SAVE-ABC123",
		Type:       model.TypePercent,
		PercentOff: 10,
		ValidFrom:  fixedNow().Add(-24 * time.Hour),
		ValidTo:    fixedNow().Add(24 * time.Hour),
		UsageLimit: 100,
		UsedCount:  5,
		Active:     true,
	}
	code.ID = "code-id-1"
	return code
}

func newTestService(repo *MockDiscountRepository) *discountService {
	return &discountService{repo: repo, now: fixedNow}
}

func TestValidate(t *testing.T) {
	t.Run("Valid percent code reports discount", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		repo.On("GetByCode", "SAVE-ABC123").Return(activeCode(), nil)
		repo.On("HasRedemption", "code-id-1", "a@b.com").Return(false, nil)

		result, err := svc.Validate("save-abc123", "a@b.com", 30000)

		require.NoError(t, err)
		assert.True(t, result.Valid)
		assert.Equal(t, int64(3000), result.DiscountPence)
	})

	t.Run("Unknown code", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		repo.On("GetByCode", "NOPE").Return(nil, gorm.ErrRecordNotFound)

		result, err := svc.Validate("NOPE", "", 30000)

		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, ReasonNotFound, result.Reason)
	})

	t.Run("Inactive code", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		code := activeCode()
		code.Active = false
		repo.On("GetByCode", "SAVE-ABC123").Return(code, nil)

		result, err := svc.Validate("SAVE-ABC123", "", 30000)

		require.NoError(t, err)
		assert.False(t, result.Valid)
		assert.Equal(t, ReasonNotFound, result.Reason)
	})

	t.Run("Outside validity window", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		notYet := activeCode()
		notYet.ValidFrom = fixedNow().Add(time.Hour)
		repo.On("GetByCode", "SAVE-ABC123").Return(notYet, nil).Once()

		result, err := svc.Validate("SAVE-ABC123", "", 30000)
		require.NoError(t, err)
		assert.Equal(t, ReasonNotYetValid, result.Reason)

		expired := activeCode()
		expired.ValidTo = fixedNow().Add(-time.Hour)
		repo.On("GetByCode", "SAVE-ABC123").Return(expired, nil).Once()

		result, err = svc.Validate("SAVE-ABC123", "", 30000)
		require.NoError(t, err)
		assert.Equal(t, ReasonExpired, result.Reason)
	})

	t.Run("Usage limit reached", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		code := activeCode()
		code.UsedCount = code.UsageLimit
		repo.On("GetByCode", "SAVE-ABC123").Return(code, nil)

		result, err := svc.Validate("SAVE-ABC123", "", 30000)

		require.NoError(t, err)
		assert.Equal(t, ReasonLimitReached, result.Reason)
	})

	t.Run("Already redeemed by this customer", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		repo.On("GetByCode", "SAVE-ABC123").Return(activeCode(), nil)
		repo.On("HasRedemption", "code-id-1", "a@b.com").Return(true, nil)

		result, err := svc.Validate("SAVE-ABC123", "a@b.com", 30000)

		require.NoError(t, err)
		assert.Equal(t, ReasonAlreadyRedeemed, result.Reason)
	})

	t.Run("No email skips the redemption check", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		repo.On("GetByCode", "SAVE-ABC123").Return(activeCode(), nil)

		result, err := svc.Validate("SAVE-ABC123", "", 30000)

		require.NoError(t, err)
		assert.True(t, result.Valid)
		repo.AssertNotCalled(t, "HasRedemption", mock.Anything, mock.Anything)
	})
}

func TestDiscountFor(t *testing.T) {
	t.Run("Fixed discount clamps at the order total", func(t *testing.T) {
		code := &model.DiscountCode{Type: model.TypeFixed, AmountOffPence: 50000}
		assert.Equal(t, int64(30000), code.DiscountFor(30000))
		assert.Equal(t, int64(50000), code.DiscountFor(80000))
	})

	t.Run("Percent discount", func(t *testing.T) {
		code := &model.DiscountCode{Type: model.TypePercent, PercentOff: 25}
		assert.Equal(t, int64(7500), code.DiscountFor(30000))
	})
}

func TestGenerateCode(t *testing.T) {
	t.Run("Retries on collision", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		repo.On("CodeExists", mock.AnythingOfType("string")).Return(true, nil).Twice()
		repo.On("CodeExists", mock.AnythingOfType("string")).Return(false, nil).Once()

		code, err := svc.generateCode("NEWS")

		require.NoError(t, err)
		assert.Contains(t, code, "NEWS-")
		assert.Len(t, code, len("NEWS-")+codeSuffixLen)
		repo.AssertExpectations(t)
	})

	t.Run("Gives up after ten attempts", func(t *testing.T) {
		repo := new(MockDiscountRepository)
		svc := newTestService(repo)

		repo.On("CodeExists", mock.AnythingOfType("string")).Return(true, nil).Times(maxGenerationTries)

		_, err := svc.generateCode("NEWS")

		assert.ErrorIs(t, err, ErrGenerationExhausted)
	})
}
