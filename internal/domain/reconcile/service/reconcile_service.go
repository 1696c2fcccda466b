package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/stripe/stripe-go/v74"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	checkoutService "warranty_shop/internal/domain/checkout/service"
	customerService "warranty_shop/internal/domain/customer/service"
	"warranty_shop/internal/pkg/config"
	"warranty_shop/internal/pkg/worker"
	"warranty_shop/pkg/utils"
)

var ErrBadCredentials = errors.New("invalid email or password")

// SessionStatus is one row of the reconciliation view: a provider
// session next to what our database recorded for it.
type SessionStatus struct {
	SessionID     string    `json:"sessionId"`
	Email         string    `json:"email"`
	AmountPence   int64     `json:"amountPence"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
	PolicyCount   int       `json:"policyCount"`

	// Missing flags a paid session with no policies: a webhook that
	// never arrived or failed. These are the ones worth replaying.
	Missing bool `json:"missing"`
}

type ReconcileService interface {
	// Login checks the configured back-office credentials and issues
	// an admin token.
	Login(email, password string) (token string, expiresAt *time.Time, err error)

	// Reconcile lists recent provider sessions with their local state.
	Reconcile(ctx context.Context, limit int64) ([]SessionStatus, error)

	ListDeadLetters(limit int) ([]worker.DeadLetter, error)
}

type reconcileService struct {
	db        *gorm.DB
	checkout  checkoutService.CheckoutService
	customers customerService.CustomerService
}

func NewReconcileService(db *gorm.DB, checkout checkoutService.CheckoutService, customers customerService.CustomerService) ReconcileService {
	return &reconcileService{
		db:        db,
		checkout:  checkout,
		customers: customers,
	}
}

func (s *reconcileService) Login(email, password string) (string, *time.Time, error) {
	cfg := config.GlobalConfig.Admin
	if cfg.Email == "" || cfg.PasswordHash == "" {
		return "", nil, ErrBadCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(cfg.Email)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(cfg.PasswordHash), []byte(password))
	if !emailOK || passErr != nil {
		return "", nil, ErrBadCredentials
	}

	return utils.GenerateToken(email, utils.RoleAdmin)
}

func (s *reconcileService) Reconcile(ctx context.Context, limit int64) ([]SessionStatus, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	sessions, err := s.checkout.ListRecentSessions(ctx, limit)
	if err != nil {
		return nil, err
	}

	statuses := make([]SessionStatus, 0, len(sessions))
	for _, sess := range sessions {
		policies, err := s.customers.ListPoliciesBySession(sess.ID)
		if err != nil {
			return nil, err
		}

		paid := sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid
		statuses = append(statuses, SessionStatus{
			SessionID:     sess.ID,
			Email:         sess.CustomerEmail,
			AmountPence:   sess.AmountTotal,
			PaymentStatus: string(sess.PaymentStatus),
			CreatedAt:     time.Unix(sess.Created, 0),
			PolicyCount:   len(policies),
			Missing:       paid && len(policies) == 0,
		})
	}

	return statuses, nil
}

func (s *reconcileService) ListDeadLetters(limit int) ([]worker.DeadLetter, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []worker.DeadLetter
	err := s.db.Order("created_at DESC").Limit(limit).Find(&rows).Error
	return rows, err
}
