package warranty

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRegistration() Registration {
	return Registration{
		Title:            "Mr",
		FirstName:        "John",
		LastName:         "Smith",
		AddressLine1:     "1 High Street",
		City:             "London",
		Postcode:         "SW1A 1AA",
		Email:            "john@example.com",
		Phone:            "07700900000",
		VehicleReg:       "AB12CDE",
		VehicleMake:      "FORD",
		PurchasePrice:    "299.00",
		WarrantyTypeCode: "B1",
		DurationMonths:   12,
		MaxClaim:         "5000.00",
		Reference:        "WRT-20260601-ABCD",
	}
}

func newTestClient(serverURL string) *client {
	return &client{
		http: resty.New().
			SetBaseURL(serverURL).
			SetBasicAuth("user", "pass").
			SetHeader("Content-Type", "application/json").
			SetTimeout(5 * time.Second),
	}
}

func TestValidate(t *testing.T) {
	t.Run("Complete payload passes", func(t *testing.T) {
		assert.NoError(t, validRegistration().Validate())
	})

	t.Run("Collects every missing field", func(t *testing.T) {
		reg := validRegistration()
		reg.FirstName = ""
		reg.Postcode = ""
		reg.Reference = ""

		err := reg.Validate()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "first name is required")
		assert.Contains(t, err.Error(), "postcode is required")
		assert.Contains(t, err.Error(), "reference is required")
	})
}

func TestRegister(t *testing.T) {
	t.Run("Success response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "user", user)
			assert.Equal(t, "pass", pass)

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Response":"Success"}`))
		}))
		defer server.Close()

		err := newTestClient(server.URL).Register(context.Background(), validRegistration())
		assert.NoError(t, err)
	})

	t.Run("401 maps to bad credentials", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		err := newTestClient(server.URL).Register(context.Background(), validRegistration())

		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr)
		assert.Equal(t, CategoryCredentials, regErr.Category)
	})

	t.Run("422 keeps per-field detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			w.Write([]byte(`{"Response":"Error","Message":"validation failed","Errors":{"Postcode":["invalid format"]}}`))
		}))
		defer server.Close()

		err := newTestClient(server.URL).Register(context.Background(), validRegistration())

		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr)
		assert.Equal(t, CategoryValidation, regErr.Category)
		assert.Equal(t, []string{"invalid format"}, regErr.Fields["Postcode"])
	})

	t.Run("405 maps to wrong method", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}))
		defer server.Close()

		err := newTestClient(server.URL).Register(context.Background(), validRegistration())

		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr)
		assert.Equal(t, CategoryMethod, regErr.Category)
	})

	t.Run("HTTP 200 with non-success body still fails", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Response":"Error","Message":"duplicate reference"}`))
		}))
		defer server.Close()

		err := newTestClient(server.URL).Register(context.Background(), validRegistration())

		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr)
		assert.Equal(t, CategoryUpstream, regErr.Category)
		assert.Contains(t, regErr.Message, "duplicate reference")
	})

	t.Run("Invalid payload never hits the network", func(t *testing.T) {
		called := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))
		defer server.Close()

		reg := validRegistration()
		reg.Email = ""

		err := newTestClient(server.URL).Register(context.Background(), reg)

		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr)
		assert.Equal(t, CategoryValidation, regErr.Category)
		assert.False(t, called)
	})
}
