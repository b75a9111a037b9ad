package handlers

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ermradulsharma/pahadigo-sub000/internal/catalog"
	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/gateway"
	"github.com/ermradulsharma/pahadigo-sub000/internal/kyc"
	"github.com/ermradulsharma/pahadigo-sub000/internal/middleware"
	"github.com/ermradulsharma/pahadigo-sub000/internal/notify"
	"github.com/ermradulsharma/pahadigo-sub000/internal/otp"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
	"github.com/ermradulsharma/pahadigo-sub000/internal/storage"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// errBadBody marks a request whose body could not be decoded.
var errBadBody = errors.New("invalid request body")

// validationError carries a field → message map for 422 responses.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string { return "validation failed" }

func fieldErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &validationError{fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_without_all":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "datetime":
		return "must match " + fe.Param()
	default:
		return "is invalid"
	}
}

// BindJSON decodes the body into dst and runs struct validation.
func BindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return errBadBody
	}
	return check(dst)
}

func check(dst any) error {
	if err := validate.Struct(dst); err != nil {
		return fieldErrors(err)
	}
	return nil
}

// ParamUUID parses a route parameter as a UUID; a bad value is a 422.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, &validationError{fields: map[string]string{name: "must be a valid id"}}
	}
	return id, nil
}

func PageQuery(c *fiber.Ctx) repository.Page {
	return repository.Page{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 20)}.Normalize()
}

// CurrentUser is the authenticated user's id from the access token.
func CurrentUser(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := middleware.UserID(c)
	if err != nil {
		return uuid.Nil, services.ErrInvalidToken
	}
	return id, nil
}

var statusTable = []struct {
	status int
	errs   []error
}{
	{fiber.StatusBadRequest, []error{
		errBadBody, otp.ErrInvalidOTP, services.ErrInvalidSignature, services.ErrOrderMismatch,
	}},
	{fiber.StatusUnauthorized, []error{
		services.ErrInvalidCredentials, services.ErrInvalidToken, services.ErrInvalidSocialToken,
	}},
	{fiber.StatusForbidden, []error{
		services.ErrForbidden, services.ErrAccountDeleted,
	}},
	{fiber.StatusNotFound, []error{
		services.ErrUserNotFound, services.ErrVendorNotFound, services.ErrBookingNotFound,
		services.ErrPolicyNotFound, services.ErrSettingNotFound,
		catalog.ErrItemNotFound, kyc.ErrDocumentNotFound,
	}},
	{fiber.StatusConflict, []error{
		services.ErrRoleMismatch, services.ErrRoleAlreadySet, services.ErrEmailTaken, services.ErrPhoneTaken,
		services.ErrConcurrentUpdate, services.ErrDocumentsNotVerified,
		services.ErrPriceChanged, services.ErrBookingNotPayable, services.ErrPaymentNotCompleted,
		services.ErrPayoutAlreadyPaid, services.ErrRefundedBooking, services.ErrAlreadyRefunded,
		services.ErrNotCancellable, kyc.ErrInvalidTransition,
	}},
	{fiber.StatusUnprocessableEntity, []error{
		services.ErrMandatoryDocuments, services.ErrContentRejected, services.ErrBankDetailsMissing,
		services.ErrReasonRequired, services.ErrNoFiles, services.ErrInvalidPolicy, services.ErrInvalidSetting,
		services.ErrInvalidCoupon, services.ErrInvalidTravelDate, services.ErrInvalidGuests, services.ErrItemUnavailable,
		kyc.ErrUnknownSlot, kyc.ErrSingularSlot, kyc.ErrInvalidFieldKey, kyc.ErrIndexRequired,
		kyc.ErrInvalidStatus, kyc.ErrReasonRequired,
		catalog.ErrUnknownCategory, catalog.ErrInvalidItem,
		otp.ErrInvalidRole, otp.ErrInvalidIdentifier, storage.ErrUnsupportedFile,
	}},
	{fiber.StatusTooManyRequests, []error{otp.ErrOTPThrottled}},
	{fiber.StatusBadGateway, []error{
		services.ErrProviderFailure, gateway.ErrProviderFailure, notify.ErrDeliveryFailed,
	}},
	{fiber.StatusGatewayTimeout, []error{services.ErrProviderTimeout, gateway.ErrProviderTimeout}},
	{fiber.StatusServiceUnavailable, []error{services.ErrNotConfigured, gateway.ErrNotConfigured, notify.ErrNotConfigured}},
}

// statusFor maps a service error onto an HTTP status. Unknown errors are 500.
func statusFor(err error) int {
	status, _ := classify(err)
	return status
}

// classify returns the status for err and the message that is safe to show
// for it: the matched sentinel's text, never the wrapped chain.
func classify(err error) (int, string) {
	var verr *validationError
	if errors.As(err, &verr) {
		return fiber.StatusUnprocessableEntity, err.Error()
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code, ferr.Message
	}
	for _, row := range statusTable {
		for _, target := range row.errs {
			if errors.Is(err, target) {
				return row.status, target.Error()
			}
		}
	}
	return fiber.StatusInternalServerError, "Internal server error"
}

func RespondOK(c *fiber.Ctx, message string, data any) error {
	return c.JSON(dto.Response{Success: true, Message: message, Data: data})
}

func RespondCreated(c *fiber.Ctx, message string, data any) error {
	return c.Status(fiber.StatusCreated).JSON(dto.Response{Success: true, Message: message, Data: data})
}

// RespondError writes the envelope for err. 5xx details never reach the
// client; they are logged and sent to Sentry instead.
func RespondError(c *fiber.Ctx, err error) error {
	status, public := classify(err)
	resp := dto.Response{Success: false, Message: err.Error()}

	var verr *validationError
	var missing *services.MissingDocumentsError
	switch {
	case errors.As(err, &verr):
		resp.Data = verr.fields
	case errors.As(err, &missing):
		resp.Data = fiber.Map{"missingDocuments": missing.Slots}
	}

	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"status", status,
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		} else {
			sentry.CaptureException(err)
		}
		resp.Message = public
	}

	return c.Status(status).JSON(resp)
}

// ErrorHandler is the fiber.App error handler. It keeps the envelope for
// errors returned by middleware and unmatched routes.
func ErrorHandler(c *fiber.Ctx, err error) error {
	return RespondError(c, err)
}
