package dto

// Razorpay webhook event names handled by the payment flow.
const (
	RazorpayPaymentCaptured = "payment.captured"
	RazorpayPaymentFailed   = "payment.failed"
)

type RazorpayWebhook struct {
	Entity    string          `json:"entity"`
	AccountID string          `json:"account_id"`
	Event     string          `json:"event"`
	Contains  []string        `json:"contains"`
	Payload   RazorpayPayload `json:"payload"`
	CreatedAt int64           `json:"created_at"`
}

type RazorpayPayload struct {
	Payment struct {
		Entity RazorpayPayment `json:"entity"`
	} `json:"payment"`
}

type RazorpayPayment struct {
	ID               string            `json:"id"`
	Entity           string            `json:"entity"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Status           string            `json:"status"`
	OrderID          string            `json:"order_id"`
	Method           string            `json:"method"`
	Captured         bool              `json:"captured"`
	Email            string            `json:"email"`
	Contact          string            `json:"contact"`
	ErrorCode        string            `json:"error_code"`
	ErrorDescription string            `json:"error_description"`
	Notes            map[string]string `json:"notes"`
	CreatedAt        int64             `json:"created_at"`
}
