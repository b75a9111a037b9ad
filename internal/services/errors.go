package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrInvalidSocialToken = errors.New("social login token could not be verified")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDeleted     = errors.New("account has been deleted")
	ErrRoleMismatch       = errors.New("account already exists with a different role")
	ErrRoleAlreadySet     = errors.New("role has already been selected")
	ErrEmailTaken         = errors.New("email already in use")
	ErrPhoneTaken         = errors.New("phone already in use")
	ErrForbidden          = errors.New("not allowed")

	ErrVendorNotFound       = errors.New("vendor profile not found")
	ErrConcurrentUpdate     = errors.New("profile was modified concurrently, please retry")
	ErrMandatoryDocuments   = errors.New("mandatory documents are missing")
	ErrDocumentsNotVerified = errors.New("mandatory documents must be verified before approval")
	ErrReasonRequired       = errors.New("a reason is required")
	ErrNoFiles              = errors.New("no files were uploaded")
	ErrBankDetailsMissing   = errors.New("vendor has not submitted bank details")

	ErrBookingNotFound     = errors.New("booking not found")
	ErrInvalidTravelDate   = errors.New("travel date must be today or later in YYYY-MM-DD format")
	ErrInvalidGuests       = errors.New("guests must be at least 1")
	ErrItemUnavailable     = errors.New("item is not available for booking")
	ErrPriceChanged        = errors.New("price has changed, please review the booking")
	ErrInvalidCoupon       = errors.New("coupon is invalid or exhausted")
	ErrBookingNotPayable   = errors.New("booking cannot be paid in its current state")
	ErrInvalidSignature    = errors.New("payment signature verification failed")
	ErrOrderMismatch       = errors.New("order does not belong to this booking")
	ErrPaymentNotCompleted = errors.New("payment has not been completed")
	ErrPayoutAlreadyPaid   = errors.New("payout already marked as paid")
	ErrRefundedBooking     = errors.New("booking has been refunded")
	ErrAlreadyRefunded     = errors.New("booking has already been refunded")
	ErrNotCancellable      = errors.New("only unpaid pending bookings can be cancelled")

	ErrPolicyNotFound  = errors.New("policy not found")
	ErrInvalidPolicy   = errors.New("unknown policy target or type")
	ErrSettingNotFound = errors.New("setting not found")
	ErrInvalidSetting  = errors.New("setting value does not match its type")

	// ErrProviderTimeout and ErrProviderFailure wrap OAuth provider calls.
	ErrProviderTimeout = errors.New("identity provider timed out")
	ErrProviderFailure = errors.New("identity provider request failed")
	ErrNotConfigured   = errors.New("provider is not configured")
)
