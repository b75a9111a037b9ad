package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPayment_KnownSignature(t *testing.T) {
	const secret = "S"
	sig := Sign(secret, "order_1", "pay_1")

	assert.True(t, VerifyPayment(secret, "order_1", "pay_1", sig))
	assert.False(t, VerifyPayment(secret, "order_1", "pay_2", sig))
	assert.False(t, VerifyPayment(secret, "order_2", "pay_1", sig))
	assert.False(t, VerifyPayment("other", "order_1", "pay_1", sig))
	assert.False(t, VerifyPayment("", "order_1", "pay_1", sig))
	assert.False(t, VerifyPayment(secret, "order_1", "pay_1", ""))
}

func TestVerifyPayment_AnySingleCharMutationFails(t *testing.T) {
	const secret = "S"
	sig := Sign(secret, "order_1", "pay_1")
	payment := []byte("pay_1")

	for i := range payment {
		mutated := append([]byte{}, payment...)
		mutated[i] ^= 0x01
		assert.False(t, VerifyPayment(secret, "order_1", string(mutated), sig), "mutation at %d", i)
	}
}

func TestVerifyWebhook(t *testing.T) {
	body := []byte(`{"event":"payment.captured"}`)
	mac := hmac.New(sha256.New, []byte("whsec"))
	mac.Write(body)
	good := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifyWebhook("whsec", body, good))
	assert.False(t, VerifyWebhook("whsec", append(body, ' '), good))
	assert.False(t, VerifyWebhook("", body, good))
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1000000), MinorUnits(10000))
	assert.Equal(t, int64(1999), MinorUnits(19.99))
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_key", user)
		assert.Equal(t, "rzp_secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(1000000), body["amount"])
		assert.Equal(t, "INR", body["currency"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_abc","amount":1000000,"currency":"INR","receipt":"bk_1","status":"created"}`))
	}))
	defer srv.Close()

	rp := NewRazorpay(srv.URL, 2*time.Second)
	order, err := rp.CreateOrder(context.Background(),
		Credentials{KeyID: "rzp_key", KeySecret: "rzp_secret"},
		OrderRequest{Amount: 10000, Currency: "INR", Receipt: "bk_1"})
	require.NoError(t, err)
	assert.Equal(t, "order_abc", order.ID)
}

func TestCreateOrder_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount invalid"}}`))
	}))
	defer srv.Close()

	rp := NewRazorpay(srv.URL, 2*time.Second)
	_, err := rp.CreateOrder(context.Background(), Credentials{KeyID: "k", KeySecret: "s"}, OrderRequest{Amount: 1, Currency: "INR"})
	assert.ErrorIs(t, err, ErrProviderFailure)
	assert.Contains(t, err.Error(), "amount invalid")
}

func TestCreateOrder_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	rp := NewRazorpay(srv.URL, 50*time.Millisecond)
	_, err := rp.CreateOrder(context.Background(), Credentials{KeyID: "k", KeySecret: "s"}, OrderRequest{Amount: 1, Currency: "INR"})
	assert.ErrorIs(t, err, ErrProviderTimeout)
}

func TestCreateOrder_NotConfigured(t *testing.T) {
	rp := NewRazorpay("http://unused", time.Second)
	_, err := rp.CreateOrder(context.Background(), Credentials{}, OrderRequest{Amount: 1})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
