package model

// Payment providers.
const (
	ProviderStripe = "stripe"
	ProviderBumper = "bumper"
)

// CustomerDetails is what the checkout form collects. All of it goes
// into the session metadata so the webhook can rebuild the purchase
// without a database round trip.
type CustomerDetails struct {
	Title        string `json:"title" binding:"required"`
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Phone        string `json:"phone" binding:"required"`
	AddressLine1 string `json:"addressLine1" binding:"required"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city" binding:"required"`
	Postcode     string `json:"postcode" binding:"required"`
}

// SessionResult is returned to the storefront. When the pay-later
// provider could not take the order, FallbackToStripe is set and the
// session fields describe the Stripe session created instead.
type SessionResult struct {
	Provider         string `json:"provider"`
	SessionID        string `json:"sessionId,omitempty"`
	RedirectURL      string `json:"redirectUrl"`
	FallbackToStripe bool   `json:"fallbackToStripe,omitempty"`
	FallbackReason   string `json:"fallbackReason,omitempty"`
}
