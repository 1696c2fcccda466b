package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"warranty_shop/internal/pkg/config"
	"warranty_shop/pkg/metrics"
)

// dvlaResponse mirrors the DVLA vehicle-enquiry API body.
type dvlaResponse struct {
	RegistrationNumber string `json:"registrationNumber"`
	Make               string `json:"make"`
	Colour             string `json:"colour"`
	FuelType           string `json:"fuelType"`
	YearOfManufacture  int    `json:"yearOfManufacture"`
	EngineCapacity     int    `json:"engineCapacity"`
	TypeApproval       string `json:"typeApproval"`
	Wheelplan          string `json:"wheelplan"`
	MotStatus          string `json:"motStatus"`
}

type dvlaError struct {
	Errors []struct {
		Status string `json:"status"`
		Code   string `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// DVLAClient calls the government vehicle-enquiry service.
type DVLAClient interface {
	Enquiry(ctx context.Context, registration string) (*dvlaResponse, error)
}

type dvlaClient struct {
	http *resty.Client
}

// NewDVLAClient builds the client with a 5s timeout and 3 attempts on
// transient failures, backoff capped at 4s.
func NewDVLAClient() DVLAClient {
	cfg := config.GlobalConfig.DVLA

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("x-api-key", cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(4 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// Retry network errors and 5xx only; a 404 is a real answer.
			return err != nil || r.StatusCode() >= 500
		})

	return &dvlaClient{http: client}
}

var errVehicleNotFound = fmt.Errorf("vehicle not found")

func (c *dvlaClient) Enquiry(ctx context.Context, registration string) (*dvlaResponse, error) {
	var (
		body   dvlaResponse
		apiErr dvlaError
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"registrationNumber": registration}).
		SetResult(&body).
		SetError(&apiErr).
		Post("/vehicles")

	if err != nil {
		metrics.Default.OutboundCallsTotal.WithLabelValues("dvla", "error").Inc()
		return nil, fmt.Errorf("dvla enquiry: %w", err)
	}

	if resp.StatusCode() == 404 {
		metrics.Default.OutboundCallsTotal.WithLabelValues("dvla", "not_found").Inc()
		return nil, errVehicleNotFound
	}

	if resp.IsError() {
		metrics.Default.OutboundCallsTotal.WithLabelValues("dvla", "error").Inc()
		detail := ""
		if len(apiErr.Errors) > 0 {
			detail = apiErr.Errors[0].Detail
		}
		return nil, fmt.Errorf("dvla enquiry status %d: %s", resp.StatusCode(), detail)
	}

	metrics.Default.OutboundCallsTotal.WithLabelValues("dvla", "ok").Inc()
	return &body, nil
}
