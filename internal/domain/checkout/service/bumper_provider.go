package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"warranty_shop/internal/domain/checkout/model"
	"warranty_shop/internal/pkg/config"
	"warranty_shop/pkg/logger"
	"warranty_shop/pkg/metrics"
)

// Pay-later fallback reasons. The storefront switches to card checkout
// on any of them; the reason string is surfaced for support.
const (
	FallbackMissingCredentials = "missing_credentials"
	FallbackProviderError      = "provider_error"
	FallbackDeclined           = "application_declined"
)

// PayLaterRequest describes the finance application to open.
type PayLaterRequest struct {
	OrderReference     string
	AmountPence        int64
	ProductDescription string
	Customer           model.CustomerDetails
}

// PayLaterResult never carries an error: any failure to open an
// application is expressed as a fallback so checkout degrades to card
// payment instead of breaking.
type PayLaterResult struct {
	RedirectURL    string
	Fallback       bool
	FallbackReason string
}

type PayLaterProvider interface {
	CreateApplication(ctx context.Context, req PayLaterRequest) *PayLaterResult
}

type bumperProvider struct {
	http      *resty.Client
	apiKey    string
	secretKey string
}

func NewBumperProvider() PayLaterProvider {
	cfg := config.GlobalConfig.Bumper

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)

	return &bumperProvider{
		http:      httpClient,
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
	}
}

type bumperApplyRequest struct {
	APIKey       string `json:"api_key"`
	OrderRef     string `json:"order_reference"`
	Amount       string `json:"amount"` // pounds, two decimals
	Currency     string `json:"currency"`
	Product      string `json:"product_description"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Mobile       string `json:"mobile"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	Town         string `json:"town"`
	Postcode     string `json:"postcode"`
	SuccessURL   string `json:"success_url"`
	FailureURL   string `json:"failure_url"`
}

type bumperApplyResponse struct {
	Success     bool   `json:"success"`
	RedirectURL string `json:"redirect_url"`
	Message     string `json:"message"`
}

func (p *bumperProvider) CreateApplication(ctx context.Context, req PayLaterRequest) *PayLaterResult {
	if p.apiKey == "" || p.secretKey == "" {
		logger.Log.Warn("Pay-later credentials missing, falling back to card checkout")
		return &PayLaterResult{Fallback: true, FallbackReason: FallbackMissingCredentials}
	}

	cfg := config.GlobalConfig
	body := bumperApplyRequest{
		APIKey:       p.apiKey,
		OrderRef:     req.OrderReference,
		Amount:       poundsString(req.AmountPence),
		Currency:     "GBP",
		Product:      req.ProductDescription,
		FirstName:    req.Customer.FirstName,
		LastName:     req.Customer.LastName,
		Email:        req.Customer.Email,
		Mobile:       req.Customer.Phone,
		AddressLine1: req.Customer.AddressLine1,
		AddressLine2: req.Customer.AddressLine2,
		Town:         req.Customer.City,
		Postcode:     req.Customer.Postcode,
		SuccessURL:   cfg.App.BaseURL + cfg.Bumper.SuccessPath,
		FailureURL:   cfg.App.BaseURL + cfg.Bumper.FailurePath,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return &PayLaterResult{Fallback: true, FallbackReason: FallbackProviderError}
	}

	var result bumperApplyResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetHeader("Signature", p.sign(payload)).
		SetBody(payload).
		SetResult(&result).
		Post("/v2/apply")

	if err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("bumper", "error").Inc()
		logger.Log.Warn("Pay-later request failed, falling back to card checkout",
			zap.String("order_ref", req.OrderReference), zap.Error(err))
		return &PayLaterResult{Fallback: true, FallbackReason: FallbackProviderError}
	}

	if resp.IsError() {
		metrics.Default.OutboundCallsTotal.WithLabelValues("bumper", "error").Inc()
		logger.Log.Warn("Pay-later provider rejected the request",
			zap.String("order_ref", req.OrderReference),
			zap.Int("status", resp.StatusCode()))
		return &PayLaterResult{Fallback: true, FallbackReason: FallbackProviderError}
	}

	if !result.Success || result.RedirectURL == "" {
		metrics.Default.OutboundCallsTotal.WithLabelValues("bumper", "declined").Inc()
		return &PayLaterResult{Fallback: true, FallbackReason: FallbackDeclined}
	}

	metrics.Default.OutboundCallsTotal.WithLabelValues("bumper", "ok").Inc()
	return &PayLaterResult{RedirectURL: result.RedirectURL}
}

// sign produces the hex HMAC-SHA256 of the request body the provider
// verifies against.
func (p *bumperProvider) sign(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(p.secretKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
