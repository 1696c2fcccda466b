package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"warranty_shop/internal/domain/tracking/model"
	"warranty_shop/internal/domain/tracking/repository"
	"warranty_shop/internal/pkg/mailer"
	"warranty_shop/pkg/logger"
)

// WelcomeEmail carries what the welcome template needs.
type WelcomeEmail struct {
	To           string
	Name         string
	Plan         string
	Registration string
	Reference    string
	EndDate      time.Time
	PolicyPDF    []byte
}

type TrackingService interface {
	// TrackAbandonedCart records a cart snapshot. Fire-and-forget:
	// errors are logged, never returned.
	TrackAbandonedCart(cartID, email string, totalPence int64, itemCount int)

	// MarkCartConverted stops follow-up email for a purchased cart.
	MarkCartConverted(cartID string)

	RecordNewsletterSignup(email, discountCode string) error
	HasNewsletterSignup(email string) (bool, error)

	SendWelcomeEmail(ctx context.Context, email WelcomeEmail) error
	SendDiscountEmail(ctx context.Context, to, code, description string) error

	ListEmailLogs(recipient string, limit int) ([]model.EmailLog, error)

	// StartAbandonedCartJob launches the periodic follow-up mailer.
	StartAbandonedCartJob(interval, idleAfter time.Duration)
}

type trackingService struct {
	repo   repository.TrackingRepository
	mailer mailer.Mailer
}

func NewTrackingService(repo repository.TrackingRepository, m mailer.Mailer) TrackingService {
	return &trackingService{repo: repo, mailer: m}
}

func (s *trackingService) TrackAbandonedCart(cartID, email string, totalPence int64, itemCount int) {
	row := &model.AbandonedCart{
		CartID:     cartID,
		Email:      email,
		TotalPence: totalPence,
		ItemCount:  itemCount,
		LastSeenAt: time.Now(),
	}
	if err := s.repo.UpsertAbandonedCart(row); err != nil {
		logger.Log.Warn("Failed to track abandoned cart",
			zap.String("cart_id", cartID), zap.Error(err))
	}
}

func (s *trackingService) MarkCartConverted(cartID string) {
	if cartID == "" {
		return
	}
	if err := s.repo.MarkConverted(cartID); err != nil {
		logger.Log.Warn("Failed to mark cart converted",
			zap.String("cart_id", cartID), zap.Error(err))
	}
}

func (s *trackingService) RecordNewsletterSignup(email, discountCode string) error {
	return s.repo.CreateNewsletterSignup(&model.NewsletterSignup{
		Email:        email,
		DiscountCode: discountCode,
	})
}

func (s *trackingService) HasNewsletterSignup(email string) (bool, error) {
	return s.repo.HasNewsletterSignup(email)
}

func (s *trackingService) SendWelcomeEmail(ctx context.Context, email WelcomeEmail) error {
	msg := mailer.Message{
		To:       email.To,
		ToName:   email.Name,
		Subject:  "Your warranty is active",
		HTMLBody: welcomeHTML(email),
		TextBody: welcomeText(email),
		PDF:      email.PolicyPDF,
		PDFName:  "warranty-policy.pdf",
	}

	err := s.mailer.Send(ctx, msg)
	s.logEmail(email.To, model.EmailKindWelcome, err)
	return err
}

func (s *trackingService) SendDiscountEmail(ctx context.Context, to, code, description string) error {
	msg := mailer.Message{
		To:       to,
		Subject:  "Your discount code",
		HTMLBody: discountHTML(code, description),
		TextBody: discountText(code, description),
	}

	err := s.mailer.Send(ctx, msg)
	s.logEmail(to, model.EmailKindDiscount, err)
	return err
}

func (s *trackingService) sendAbandonedCartEmail(ctx context.Context, cart model.AbandonedCart) error {
	msg := mailer.Message{
		To:       cart.Email,
		Subject:  "Your warranty quote is waiting",
		HTMLBody: abandonedCartHTML(cart),
		TextBody: abandonedCartText(cart),
	}

	err := s.mailer.Send(ctx, msg)
	s.logEmail(cart.Email, model.EmailKindAbandonedCart, err)
	return err
}

func (s *trackingService) ListEmailLogs(recipient string, limit int) ([]model.EmailLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListEmailLogs(recipient, limit)
}

// StartAbandonedCartJob periodically mails carts idle past the cutoff.
// Each cart is mailed at most once; a failed send leaves emailed_at
// unset so the next tick retries it.
func (s *trackingService) StartAbandonedCartJob(interval, idleAfter time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			s.runAbandonedCartPass(idleAfter)
		}
	}()
	logger.Log.Info("Abandoned cart job started",
		zap.Duration("interval", interval), zap.Duration("idle_after", idleAfter))
}

func (s *trackingService) runAbandonedCartPass(idleAfter time.Duration) {
	cutoff := time.Now().Add(-idleAfter)

	due, err := s.repo.ListDue(cutoff, 50)
	if err != nil {
		logger.Log.Error("Abandoned cart pass failed to list", zap.Error(err))
		return
	}

	for _, cart := range due {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := s.sendAbandonedCartEmail(ctx, cart)
		cancel()

		if err != nil {
			logger.Log.Warn("Abandoned cart email failed",
				zap.String("cart_id", cart.CartID), zap.Error(err))
			continue
		}

		if err := s.repo.MarkEmailed(cart.CartID, time.Now()); err != nil {
			logger.Log.Warn("Failed to mark cart emailed",
				zap.String("cart_id", cart.CartID), zap.Error(err))
		}
	}
}

func (s *trackingService) logEmail(recipient, kind string, sendErr error) {
	row := &model.EmailLog{
		Recipient: recipient,
		Kind:      kind,
		Status:    model.EmailStatusSent,
	}
	if sendErr != nil {
		row.Status = model.EmailStatusFailed
		row.Error = sendErr.Error()
	}
	if err := s.repo.CreateEmailLog(row); err != nil {
		logger.Log.Warn("Failed to write email log", zap.Error(err))
	}
}
