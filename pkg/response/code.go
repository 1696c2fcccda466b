package response

// Business status codes.
const (
	CodeSuccess = 0
	CodeError   = 1

	// Admin/auth errors 100xx
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// Discount errors 200xx
	ErrDiscountNotFound = 20001
	ErrDiscountInvalid  = 20002

	// Cart errors 210xx
	ErrCartNotFound     = 21001
	ErrCartDuplicateReg = 21002

	// Vehicle lookup errors 220xx
	ErrVehicleNotFound = 22001
	ErrVehicleTooOld   = 22002

	// Checkout errors 230xx
	ErrCheckoutFailed   = 23001
	ErrSessionNotFound  = 23002
	ErrWebhookSignature = 23003

	// Plan errors 240xx
	ErrPlanNotFound = 24001

	// System errors 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
