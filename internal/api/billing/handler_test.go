package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"repairmybike-api/internal/infra/payments"
	"repairmybike-api/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	name  string
	calls int
}

func (s *stubOrders) Name() string { return s.name }

func (s *stubOrders) CreateOrder(_ context.Context, req payments.OrderRequest) (payments.Order, error) {
	s.calls++
	return payments.Order{ID: "order_1", Gateway: s.name, Amount: req.Amount, Currency: req.Currency, Receipt: req.Receipt}, nil
}

func setupRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/payments/razorpay/create-order", h.CreateOrder("razorpay"))
	r.POST("/api/payments/stripe/create-order", h.CreateOrder("stripe"))
	r.POST("/api/payments/razorpay/verify", h.VerifyPayment)
	return r
}

func post(r http.Handler, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestVerifyPaymentForgedSignatureTouchesNothing(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	rp := payments.NewRazorpay("rzp_test_key", "secret")
	r := setupRouter(NewHandler(db, rp, rp))

	w, resp := post(r, "/api/payments/razorpay/verify", gin.H{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payments.Sign("attacker", "order_1", "pay_1"),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, true, resp["error"])
	assert.Equal(t, "Invalid payment signature", resp["message"])
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	rp := payments.NewRazorpay("rzp_test_key", "secret")
	r := setupRouter(NewHandler(db, rp, rp))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE gateway_order_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	w, resp := post(r, "/api/payments/razorpay/verify", gin.H{
		"razorpay_order_id":   "order_missing",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  payments.Sign("secret", "order_missing", "pay_1"),
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Payment record not found", resp["message"])
}

func TestVerifyPaymentMissingFields(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	rp := payments.NewRazorpay("rzp_test_key", "secret")
	r := setupRouter(NewHandler(db, rp, rp))

	w, resp := post(r, "/api/payments/razorpay/verify", gin.H{"razorpay_order_id": "order_1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, resp, "errors")
	assert.Contains(t, resp["errors"], "razorpay_signature")
}

func TestCreateOrderDisabled(t *testing.T) {
	db, _ := testutil.NewMockDB(t)

	t.Run("no gateway", func(t *testing.T) {
		r := setupRouter(NewHandler(db, nil, nil))
		w, resp := post(r, "/api/payments/razorpay/create-order", gin.H{"booking_id": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Online payment is currently disabled. Please use cash payment.", resp["message"])
	})

	t.Run("other gateway configured", func(t *testing.T) {
		orders := &stubOrders{name: "stripe"}
		r := setupRouter(NewHandler(db, orders, nil))
		w, _ := post(r, "/api/payments/razorpay/create-order", gin.H{"booking_id": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, orders.calls)
	})

	t.Run("verify without verifier", func(t *testing.T) {
		r := setupRouter(NewHandler(db, &stubOrders{name: "stripe"}, nil))
		w, _ := post(r, "/api/payments/razorpay/verify", gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateOrderUnknownBooking(t *testing.T) {
	db, mock := testutil.NewMockDB(t)
	orders := &stubOrders{name: "razorpay"}
	r := setupRouter(NewHandler(db, orders, nil))

	mock.ExpectQuery(`SELECT \* FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w, resp := post(r, "/api/payments/razorpay/create-order", gin.H{"booking_id": 404})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Booking not found", resp["message"])
	assert.Zero(t, orders.calls)
}
