package billing

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

func testGateway(t *testing.T, h http.HandlerFunc) *RazorpayGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	g := NewRazorpayGateway("key_test", "secret_test", 2*time.Second)
	g.BaseURL = srv.URL
	return g
}

func TestCreateOrder(t *testing.T) {
	var got orderRequest
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key_test", user)
		assert.Equal(t, "secret_test", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "order_abc123", "amount": got.Amount, "currency": got.Currency,
		})
	})

	order, err := g.CreateOrder(context.Background(), 249.50, "INR", "pickup_42")
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", order.ID)
	assert.Equal(t, int64(24950), order.Amount, "amount must be converted to paise")
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, int64(24950), got.Amount)
	assert.Equal(t, "pickup_42", got.Receipt)
}

func TestCreateOrderPaiseRounding(t *testing.T) {
	cases := []struct {
		amount float64
		paise  int64
	}{
		{19.99, 1999}, // float64 stores 19.99 fractionally low; truncation billed 1998
		{0.01, 1},
		{0.10, 10},
		{1234.56, 123456},
		{100.00, 10000},
	}
	for _, tc := range cases {
		var got orderRequest
		g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"id": "order_r", "amount": got.Amount, "currency": got.Currency,
			})
		})
		_, err := g.CreateOrder(context.Background(), tc.amount, "INR", "pickup_7")
		require.NoError(t, err)
		assert.Equal(t, tc.paise, got.Amount, "amount %.2f", tc.amount)
	}
}

func TestCreateOrderGatewayError(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	_, err := g.CreateOrder(context.Background(), 100, "INR", "pickup_1")
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateOrderEmptyOrderID(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := g.CreateOrder(context.Background(), 100, "INR", "pickup_1")
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestCreateOrderTimeout(t *testing.T) {
	g := testGateway(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	g.Client.Timeout = 50 * time.Millisecond

	_, err := g.CreateOrder(context.Background(), 100, "INR", "pickup_1")
	require.ErrorIs(t, err, ErrGatewayUnavailable)
}

func TestVerifySignature(t *testing.T) {
	g := NewRazorpayGateway("key_test", "secret_test", 0)

	mac := hmac.New(sha256.New, []byte("secret_test"))
	mac.Write([]byte("order_abc|pay_def"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, g.VerifySignature("order_abc", "pay_def", valid))
	assert.False(t, g.VerifySignature("order_abc", "pay_def", "deadbeef"+valid[8:]), "tampered signature")
	assert.False(t, g.VerifySignature("order_xyz", "pay_def", valid), "signature bound to order id")
	assert.False(t, g.VerifySignature("order_abc", "pay_def", ""))
}
