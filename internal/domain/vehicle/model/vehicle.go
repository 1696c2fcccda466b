package model

// Vehicle classes used for pricing.
const (
	ClassCar       = "car"
	ClassVan       = "van"
	ClassMotorbike = "motorbike"
	ClassEV        = "ev"
	ClassPHEV      = "phev"
)

// Vehicle is the DVLA snapshot we keep on carts, customers and
// provider metadata.
type Vehicle struct {
	Registration      string `json:"registration"`
	Make              string `json:"make"`
	Colour            string `json:"colour"`
	FuelType          string `json:"fuelType"`
	YearOfManufacture int    `json:"yearOfManufacture"`
	EngineCapacity    int    `json:"engineCapacity"`
	TypeApproval      string `json:"typeApproval"`
	Wheelplan         string `json:"wheelplan"`
	MotStatus         string `json:"motStatus"`
	Class             string `json:"class"`
}

// LookupResult is what the quote wizard gets back. A vehicle we will
// not cover (too old, not found) is Found=false with a reason, not an
// error.
type LookupResult struct {
	Found   bool     `json:"found"`
	Error   string   `json:"error,omitempty"`
	Vehicle *Vehicle `json:"vehicle,omitempty"`
}
