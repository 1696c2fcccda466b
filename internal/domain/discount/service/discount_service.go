package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"warranty_shop/internal/domain/discount/model"
	"warranty_shop/internal/domain/discount/repository"
	trackingService "warranty_shop/internal/domain/tracking/service"
	"warranty_shop/internal/pkg/worker"
	"warranty_shop/pkg/logger"
)

// Validation failure reasons. These exact strings surface to the
// storefront.
const (
	ReasonNotFound        = "code not found or inactive"
	ReasonNotYetValid     = "code is not valid yet"
	ReasonExpired         = "code has expired"
	ReasonLimitReached    = "code usage limit reached"
	ReasonAlreadyRedeemed = "code already redeemed by this customer"
)

var ErrGenerationExhausted = errors.New("could not generate a unique code")

const (
	codeCharset        = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeSuffixLen      = 6
	maxGenerationTries = 10
)

type CreateCodeInput struct {
	Code           string // empty means generate
	Prefix         string
	Type           string
	PercentOff     int64
	AmountOffPence int64
	ValidFrom      time.Time
	ValidTo        time.Time
	UsageLimit     int
}

type DiscountService interface {
	Create(input CreateCodeInput) (*model.DiscountCode, error)
	List(limit int) ([]model.DiscountCode, error)

	// Validate runs the full check chain against a code. An order
	// total lets it report the concrete discount amount.
	Validate(code, email string, orderTotalPence int64) (*model.ValidationResult, error)

	// Redeem records usage after a successful payment.
	Redeem(code, email string) error

	// NewsletterSignup records the opt-in, issues a one-off 10% code
	// and emails it.
	NewsletterSignup(ctx context.Context, email string) (*model.DiscountCode, error)
}

// StripeMirror pushes a code into the card provider so hosted checkout
// can apply it. Implemented in stripe_mirror.go; nil in tests.
type StripeMirror interface {
	MirrorCode(ctx context.Context, code *model.DiscountCode) (couponID, promotionCodeID string, err error)
}

type discountService struct {
	repo     repository.DiscountRepository
	tracking trackingService.TrackingService
	mirror   StripeMirror
	outbox   *worker.Outbox
	now      func() time.Time
}

func NewDiscountService(repo repository.DiscountRepository, tracking trackingService.TrackingService, mirror StripeMirror, outbox *worker.Outbox) DiscountService {
	return &discountService{
		repo:     repo,
		tracking: tracking,
		mirror:   mirror,
		outbox:   outbox,
		now:      time.Now,
	}
}

func (s *discountService) Create(input CreateCodeInput) (*model.DiscountCode, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		generated, err := s.generateCode(input.Prefix)
		if err != nil {
			return nil, err
		}
		code = generated
	}

	row := &model.DiscountCode{
		Code:           code,
		Type:           input.Type,
		PercentOff:     input.PercentOff,
		AmountOffPence: input.AmountOffPence,
		ValidFrom:      input.ValidFrom,
		ValidTo:        input.ValidTo,
		UsageLimit:     input.UsageLimit,
		Active:         true,
	}
	if err := s.repo.Create(row); err != nil {
		return nil, err
	}

	s.enqueueMirror(row)
	return row, nil
}

// enqueueMirror pushes the Stripe coupon/promotion-code creation onto
// the outbox; a Stripe outage must not block code creation.
func (s *discountService) enqueueMirror(row *model.DiscountCode) {
	if s.mirror == nil || s.outbox == nil {
		return
	}

	codeStr := row.Code
	s.outbox.Enqueue(worker.TaskFunc{
		TaskKind: "stripe_mirror_discount",
		TaskRef:  codeStr,
		Fn: func(ctx context.Context) error {
			fresh, err := s.repo.GetByCode(codeStr)
			if err != nil {
				return err
			}
			couponID, promoID, err := s.mirror.MirrorCode(ctx, fresh)
			if err != nil {
				return err
			}
			fresh.StripeCouponID = couponID
			fresh.StripePromotionCodeID = promoID
			return s.repo.Update(fresh)
		},
	})
}

func (s *discountService) List(limit int) ([]model.DiscountCode, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.List(limit)
}

func (s *discountService) Validate(code, email string, orderTotalPence int64) (*model.ValidationResult, error) {
	row, err := s.repo.GetByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
		}
		return nil, err
	}

	if !row.Active {
		return &model.ValidationResult{Valid: false, Reason: ReasonNotFound}, nil
	}

	now := s.now()
	if now.Before(row.ValidFrom) {
		return &model.ValidationResult{Valid: false, Reason: ReasonNotYetValid}, nil
	}
	if now.After(row.ValidTo) {
		return &model.ValidationResult{Valid: false, Reason: ReasonExpired}, nil
	}

	if row.UsedCount >= row.UsageLimit {
		return &model.ValidationResult{Valid: false, Reason: ReasonLimitReached}, nil
	}

	if email != "" {
		redeemed, err := s.repo.HasRedemption(row.ID, email)
		if err != nil {
			return nil, err
		}
		if redeemed {
			return &model.ValidationResult{Valid: false, Reason: ReasonAlreadyRedeemed}, nil
		}
	}

	return &model.ValidationResult{
		Valid:           true,
		Code:            row.Code,
		DiscountPence:   row.DiscountFor(orderTotalPence),
		PromotionCodeID: row.StripePromotionCodeID,
	}, nil
}

func (s *discountService) Redeem(code, email string) error {
	row, err := s.repo.GetByCode(code)
	if err != nil {
		return err
	}

	if err := s.repo.IncrementUsage(row.ID); err != nil {
		return err
	}

	return s.repo.CreateRedemption(&model.Redemption{
		CodeID: row.ID,
		Email:  email,
	})
}

func (s *discountService) NewsletterSignup(ctx context.Context, email string) (*model.DiscountCode, error) {
	already, err := s.tracking.HasNewsletterSignup(email)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, errors.New("email already signed up")
	}

	code, err := s.Create(CreateCodeInput{
		Prefix:     "NEWS",
		Type:       model.TypePercent,
		PercentOff: 10,
		ValidFrom:  s.now(),
		ValidTo:    s.now().Add(30 * 24 * time.Hour),
		UsageLimit: 1,
	})
	if err != nil {
		return nil, err
	}

	if err := s.tracking.RecordNewsletterSignup(email, code.Code); err != nil {
		logger.Log.Warn("Failed to record newsletter signup",
			zap.String("email", email), zap.Error(err))
	}

	// Email delivery rides the outbox so signup never fails on a
	// SendGrid hiccup.
	if s.outbox != nil {
		codeStr := code.Code
		s.outbox.Enqueue(worker.TaskFunc{
			TaskKind: "discount_email",
			TaskRef:  email,
			Fn: func(ctx context.Context) error {
				return s.tracking.SendDiscountEmail(ctx, email, codeStr, "10% off your first warranty, valid for 30 days.")
			},
		})
	}

	return code, nil
}

// generateCode tries prefix + random suffix up to 10 times before
// giving up, in case the random space is poisoned by old codes.
func (s *discountService) generateCode(prefix string) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = "SAVE"
	}

	for i := 0; i < maxGenerationTries; i++ {
		code := fmt.Sprintf("%s-%s", prefix, randomSuffix(codeSuffixLen))

		exists, err := s.repo.CodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", ErrGenerationExhausted
}

func randomSuffix(n int) string {
	var sb strings.Builder
	max := big.NewInt(int64(len(codeCharset)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand failing means the process is in a bad way;
			// fall back to a time-derived index.
			idx = big.NewInt(time.Now().UnixNano() % int64(len(codeCharset)))
		}
		sb.WriteByte(codeCharset[idx.Int64()])
	}
	return sb.String()
}
