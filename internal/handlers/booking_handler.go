package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ermradulsharma/pahadigo-sub000/internal/dto"
	"github.com/ermradulsharma/pahadigo-sub000/internal/repository"
	"github.com/ermradulsharma/pahadigo-sub000/internal/services"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

func bookingFilter(c *fiber.Ctx) repository.BookingFilter {
	return repository.BookingFilter{
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
		Page:          PageQuery(c),
	}
}

func (h *BookingHandler) Create(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.CreateBookingRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	b, err := h.bookingService.CreateBooking(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondCreated(c, "Booking created", b)
}

func (h *BookingHandler) Mine(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	f := bookingFilter(c)
	f.UserID = &userID
	page, err := h.bookingService.List(c.UserContext(), f)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", page)
}

func (h *BookingHandler) Get(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	id, err := ParamUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}
	b, err := h.bookingService.GetForUser(c.UserContext(), userID, id)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "", b)
}

func (h *BookingHandler) Cancel(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	id, err := ParamUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.CancelBookingRequest
	if len(c.Body()) > 0 {
		if err := BindJSON(c, &req); err != nil {
			return RespondError(c, err)
		}
	}
	b, err := h.bookingService.CancelBooking(c.UserContext(), userID, id, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Booking cancelled", b)
}

func (h *BookingHandler) Voucher(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	id, err := ParamUUID(c, "id")
	if err != nil {
		return RespondError(c, err)
	}
	pdf, err := h.bookingService.Voucher(c.UserContext(), userID, id)
	if err != nil {
		return RespondError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="voucher-`+id.String()+`.pdf"`)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}

func (h *BookingHandler) CreateOrder(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.CreateOrderRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	resp, err := h.bookingService.CreateOrder(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Order created", resp)
}

func (h *BookingHandler) VerifyPayment(c *fiber.Ctx) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return RespondError(c, err)
	}
	var req dto.VerifyPaymentRequest
	if err := BindJSON(c, &req); err != nil {
		return RespondError(c, err)
	}
	b, err := h.bookingService.VerifyPayment(c.UserContext(), userID, &req)
	if err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "Payment verified", b)
}

// RazorpayWebhook applies gateway payment events. The signature covers the
// raw body, so the body is passed through untouched.
func (h *BookingHandler) RazorpayWebhook(c *fiber.Ctx) error {
	signature := c.Get("X-Razorpay-Signature")
	if signature == "" {
		return RespondError(c, services.ErrInvalidSignature)
	}
	body := append([]byte(nil), c.Body()...)
	if err := h.bookingService.HandleWebhook(c.UserContext(), body, signature); err != nil {
		return RespondError(c, err)
	}
	return RespondOK(c, "received", nil)
}
