package warranty

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-multierror"

	"warranty_shop/internal/pkg/config"
	"warranty_shop/pkg/metrics"
)

// Registration is the fixed-shape payload the legacy warranty
// administration API expects for every new policy.
type Registration struct {
	Title            string `json:"Title"`
	FirstName        string `json:"FirstName"`
	LastName         string `json:"Surname"`
	AddressLine1     string `json:"Address1"`
	AddressLine2     string `json:"Address2,omitempty"`
	City             string `json:"Town"`
	Postcode         string `json:"Postcode"`
	Email            string `json:"EmailAddress"`
	Phone            string `json:"Telephone"`
	VehicleReg       string `json:"VRM"`
	VehicleMake      string `json:"Make"`
	PurchasePrice    string `json:"PurchasePrice"` // pounds, two decimals
	WarrantyTypeCode string `json:"WarrantyType"`
	DurationMonths   int    `json:"Duration"`
	MaxClaim         string `json:"MaxClaimAmount"` // pounds, two decimals
	Reference        string `json:"Reference"`
}

// registrationResponse is the legacy API's envelope. Anything other
// than Response=="Success" is a failure even on HTTP 200.
type registrationResponse struct {
	Response string              `json:"Response"`
	Message  string              `json:"Message"`
	Errors   map[string][]string `json:"Errors"`
}

// Error categories for upstream failures.
const (
	CategoryCredentials = "bad_credentials"
	CategoryValidation  = "validation_failed"
	CategoryMethod      = "wrong_method"
	CategoryUpstream    = "upstream_error"
)

// RegistrationError is the structured failure returned instead of a
// bare error so callers (and dead-letter rows) keep the category and
// any per-field detail.
type RegistrationError struct {
	Category string              `json:"category"`
	Message  string              `json:"message"`
	Fields   map[string][]string `json:"fields,omitempty"`
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("warranty registration failed (%s): %s", e.Category, e.Message)
}

// Client posts new policies to the legacy warranty API.
type Client interface {
	Register(ctx context.Context, reg Registration) error
}

type client struct {
	http *resty.Client
}

func NewClient() Client {
	cfg := config.GlobalConfig.Warranty

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetBasicAuth(cfg.Username, cfg.Password).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &client{http: httpClient}
}

// Validate checks the payload's required fields before any network
// traffic; the legacy API rejects partial records with opaque errors.
func (r Registration) Validate() error {
	var result *multierror.Error

	required := []struct {
		name  string
		value string
	}{
		{"title", r.Title},
		{"first name", r.FirstName},
		{"surname", r.LastName},
		{"address line 1", r.AddressLine1},
		{"town", r.City},
		{"postcode", r.Postcode},
		{"email", r.Email},
		{"telephone", r.Phone},
		{"vehicle registration", r.VehicleReg},
		{"vehicle make", r.VehicleMake},
		{"purchase price", r.PurchasePrice},
		{"warranty type", r.WarrantyTypeCode},
		{"max claim amount", r.MaxClaim},
		{"reference", r.Reference},
	}
	for _, f := range required {
		if f.value == "" {
			result = multierror.Append(result, fmt.Errorf("%s is required", f.name))
		}
	}
	if r.DurationMonths <= 0 {
		result = multierror.Append(result, fmt.Errorf("duration must be positive"))
	}

	return result.ErrorOrNil()
}

func (c *client) Register(ctx context.Context, reg Registration) error {
	if err := reg.Validate(); err != nil {
		return &RegistrationError{
			Category: CategoryValidation,
			Message:  err.Error(),
		}
	}

	var body registrationResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reg).
		SetResult(&body).
		SetError(&body).
		Post("/warranties/register")

	if err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("warranty_api", "error").Inc()
		return fmt.Errorf("warranty api: %w", err)
	}

	if resp.IsError() {
		metrics.Default.OutboundCallsTotal.WithLabelValues("warranty_api", "error").Inc()
		return mapStatusError(resp.StatusCode(), &body)
	}

	if body.Response != "Success" {
		metrics.Default.OutboundCallsTotal.WithLabelValues("warranty_api", "error").Inc()
		return &RegistrationError{
			Category: CategoryUpstream,
			Message:  body.Message,
		}
	}

	metrics.Default.OutboundCallsTotal.WithLabelValues("warranty_api", "ok").Inc()
	return nil
}

func mapStatusError(status int, body *registrationResponse) *RegistrationError {
	switch status {
	case 401:
		return &RegistrationError{
			Category: CategoryCredentials,
			Message:  "warranty API rejected our credentials",
		}
	case 422:
		msg := body.Message
		if msg == "" {
			msg = "warranty API rejected the registration payload"
		}
		return &RegistrationError{
			Category: CategoryValidation,
			Message:  msg,
			Fields:   body.Errors,
		}
	case 405:
		return &RegistrationError{
			Category: CategoryMethod,
			Message:  "warranty API endpoint does not accept this method",
		}
	default:
		return &RegistrationError{
			Category: CategoryUpstream,
			Message:  fmt.Sprintf("warranty API returned status %d: %s", status, body.Message),
		}
	}
}
