package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"

	"warranty_shop/internal/domain/customer/model"
	"warranty_shop/internal/domain/customer/repository"
	planModel "warranty_shop/internal/domain/plan/model"
	trackingService "warranty_shop/internal/domain/tracking/service"
	"warranty_shop/internal/pkg/warranty"
	"warranty_shop/internal/pkg/worker"
	"warranty_shop/pkg/logger"
	"warranty_shop/pkg/metrics"
)

// PurchaseCustomer is the buyer's details as collected at checkout.
type PurchaseCustomer struct {
	Title        string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	AddressLine1 string
	AddressLine2 string
	City         string
	Postcode     string
}

// PurchaseItem is one warranty line from a paid session.
type PurchaseItem struct {
	Registration     string
	Make             string
	Plan             string
	Cadence          string
	DurationMonths   int
	PricePence       int64
	MaxClaimPence    int64
	WarrantyTypeCode string
}

// Purchase is everything the payment provider handed back for one
// completed session.
type Purchase struct {
	SessionID    string
	CartID       string
	DiscountCode string
	Customer     PurchaseCustomer
	Items        []PurchaseItem
}

type CustomerService interface {
	// HandleSuccessfulPayment upserts the customer and creates one
	// policy per line item. Side effects (warranty registration,
	// welcome email) ride the outbox; their failures never surface
	// here. Replaying the same session is a no-op per item.
	HandleSuccessfulPayment(ctx context.Context, purchase Purchase) ([]model.Policy, error)

	GetCustomerByEmail(email string) (*model.Customer, error)
	ListCustomers(limit int) ([]model.Customer, error)
	ListRecentPolicies(limit int) ([]model.Policy, error)
	ListPoliciesBySession(sessionID string) ([]model.Policy, error)

	// ResendWelcomeEmail and ReRegisterWarranty are the back-office
	// replay hooks for policies whose side effects dead-lettered.
	ResendWelcomeEmail(ctx context.Context, policyID string) error
	ReRegisterWarranty(ctx context.Context, policyID string) error
}

type customerService struct {
	repo     repository.CustomerRepository
	tracking trackingService.TrackingService
	warranty warranty.Client
	outbox   *worker.Outbox
	now      func() time.Time
}

func NewCustomerService(repo repository.CustomerRepository, tracking trackingService.TrackingService, warrantyClient warranty.Client, outbox *worker.Outbox) CustomerService {
	return &customerService{
		repo:     repo,
		tracking: tracking,
		warranty: warrantyClient,
		outbox:   outbox,
		now:      time.Now,
	}
}

func (s *customerService) HandleSuccessfulPayment(ctx context.Context, purchase Purchase) ([]model.Policy, error) {
	customer, err := s.repo.UpsertCustomer(&model.Customer{
		Email:        strings.ToLower(strings.TrimSpace(purchase.Customer.Email)),
		Title:        purchase.Customer.Title,
		FirstName:    purchase.Customer.FirstName,
		LastName:     purchase.Customer.LastName,
		Phone:        purchase.Customer.Phone,
		AddressLine1: purchase.Customer.AddressLine1,
		AddressLine2: purchase.Customer.AddressLine2,
		City:         purchase.Customer.City,
		Postcode:     purchase.Customer.Postcode,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}

	created := make([]model.Policy, 0, len(purchase.Items))
	for _, item := range purchase.Items {
		exists, err := s.repo.PolicyExistsForSession(purchase.SessionID, item.Registration)
		if err != nil {
			return created, err
		}
		if exists {
			// Webhook retries and manual replays land here.
			logger.Log.Info("Policy already recorded for session, skipping",
				zap.String("session_id", purchase.SessionID),
				zap.String("registration", item.Registration))
			continue
		}

		start := s.now()
		policy := &model.Policy{
			CustomerID:       customer.ID,
			Reference:        s.newReference(),
			Registration:     item.Registration,
			Make:             item.Make,
			Plan:             item.Plan,
			Cadence:          planModel.NormalizeCadence(item.Cadence),
			DurationMonths:   item.DurationMonths,
			PricePence:       item.PricePence,
			MaxClaimPence:    item.MaxClaimPence,
			WarrantyTypeCode: item.WarrantyTypeCode,
			StripeSessionID:  purchase.SessionID,
			DiscountCode:     purchase.DiscountCode,
			StartDate:        start,
			EndDate:          start.AddDate(0, item.DurationMonths, 0),
			Status:           model.PolicyStatusPending,
		}
		if err := s.repo.CreatePolicy(policy); err != nil {
			return created, fmt.Errorf("create policy: %w", err)
		}
		metrics.Default.PoliciesCreatedTotal.Inc()
		s.recordEvent("policy_created", policy.Reference, policy)

		s.enqueueRegistration(policy.ID, policy.Reference)
		created = append(created, *policy)
	}

	if len(created) > 0 {
		s.enqueueWelcomeEmail(customer, created[0])
	}

	return created, nil
}

func (s *customerService) enqueueRegistration(policyID, reference string) {
	if s.outbox == nil {
		return
	}
	s.outbox.Enqueue(worker.TaskFunc{
		TaskKind: "warranty_register",
		TaskRef:  reference,
		Fn: func(ctx context.Context) error {
			return s.registerWarranty(ctx, policyID)
		},
	})
}

func (s *customerService) enqueueWelcomeEmail(customer *model.Customer, policy model.Policy) {
	if s.outbox == nil {
		return
	}
	policyID := policy.ID
	s.outbox.Enqueue(worker.TaskFunc{
		TaskKind: "welcome_email",
		TaskRef:  customer.Email,
		Fn: func(ctx context.Context) error {
			return s.sendWelcomeEmail(ctx, policyID)
		},
	})
}

// registerWarranty pushes one policy into the legacy administration
// API and records the outcome on the policy row.
func (s *customerService) registerWarranty(ctx context.Context, policyID string) error {
	policy, err := s.repo.GetPolicyByID(policyID)
	if err != nil {
		return err
	}
	if policy.Status == model.PolicyStatusRegistered {
		return nil
	}

	customer, err := s.repo.GetCustomerByID(policy.CustomerID)
	if err != nil {
		return err
	}

	reg := warranty.Registration{
		Title:            customer.Title,
		FirstName:        customer.FirstName,
		LastName:         customer.LastName,
		AddressLine1:     customer.AddressLine1,
		AddressLine2:     customer.AddressLine2,
		City:             customer.City,
		Postcode:         customer.Postcode,
		Email:            customer.Email,
		Phone:            customer.Phone,
		VehicleReg:       policy.Registration,
		VehicleMake:      policy.Make,
		PurchasePrice:    penceToPounds(policy.PricePence),
		WarrantyTypeCode: policy.WarrantyTypeCode,
		DurationMonths:   policy.DurationMonths,
		MaxClaim:         penceToPounds(policy.MaxClaimPence),
		Reference:        policy.Reference,
	}

	if err := s.warranty.Register(ctx, reg); err != nil {
		if updateErr := s.repo.UpdatePolicyStatus(policy.ID, model.PolicyStatusFailed, err.Error()); updateErr != nil {
			logger.Log.Warn("Failed to record registration failure",
				zap.String("reference", policy.Reference), zap.Error(updateErr))
		}
		return err
	}

	s.recordEvent("warranty_registered", policy.Reference, nil)
	return s.repo.UpdatePolicyStatus(policy.ID, model.PolicyStatusRegistered, "")
}

func (s *customerService) sendWelcomeEmail(ctx context.Context, policyID string) error {
	policy, err := s.repo.GetPolicyByID(policyID)
	if err != nil {
		return err
	}
	customer, err := s.repo.GetCustomerByID(policy.CustomerID)
	if err != nil {
		return err
	}

	return s.tracking.SendWelcomeEmail(ctx, trackingService.WelcomeEmail{
		To:           customer.Email,
		Name:         customer.FirstName,
		Plan:         policy.Plan,
		Registration: policy.Registration,
		Reference:    policy.Reference,
		EndDate:      policy.EndDate,
	})
}

func (s *customerService) GetCustomerByEmail(email string) (*model.Customer, error) {
	return s.repo.GetCustomerByEmail(strings.ToLower(strings.TrimSpace(email)))
}

func (s *customerService) ListCustomers(limit int) ([]model.Customer, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListCustomers(limit)
}

func (s *customerService) ListRecentPolicies(limit int) ([]model.Policy, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListRecentPolicies(limit)
}

func (s *customerService) ListPoliciesBySession(sessionID string) ([]model.Policy, error) {
	return s.repo.ListPoliciesBySession(sessionID)
}

func (s *customerService) ResendWelcomeEmail(ctx context.Context, policyID string) error {
	return s.sendWelcomeEmail(ctx, policyID)
}

func (s *customerService) ReRegisterWarranty(ctx context.Context, policyID string) error {
	return s.registerWarranty(ctx, policyID)
}

func (s *customerService) recordEvent(kind, ref string, payload interface{}) {
	body := ""
	if payload != nil {
		if b, err := json.Marshal(payload); err == nil {
			body = string(b)
		}
	}
	if err := s.repo.CreateEvent(&model.DomainEvent{Kind: kind, Ref: ref, Payload: body}); err != nil {
		logger.Log.Warn("Failed to write domain event",
			zap.String("kind", kind), zap.String("ref", ref), zap.Error(err))
	}
}

const referenceCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newReference builds a policy reference like WRT-20260601-K7M2QD.
func (s *customerService) newReference() string {
	var sb strings.Builder
	max := big.NewInt(int64(len(referenceCharset)))
	for i := 0; i < 6; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			idx = big.NewInt(time.Now().UnixNano() % int64(len(referenceCharset)))
		}
		sb.WriteByte(referenceCharset[idx.Int64()])
	}
	return fmt.Sprintf("WRT-%s-%s", s.now().Format("20060102"), sb.String())
}

// penceToPounds renders pence as pounds with two decimals, the format
// the legacy API expects.
func penceToPounds(pence int64) string {
	return fmt.Sprintf("%d.%02d", pence/100, pence%100)
}
