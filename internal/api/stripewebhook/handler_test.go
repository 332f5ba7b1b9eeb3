package stripewebhooks

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"repairmybike-api/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stretchr/testify/assert"
)

type fakeEvents struct {
	event stripego.Event
	err   error
}

func (f fakeEvents) ParseEvent([]byte, string) (stripego.Event, error) {
	return f.event, f.err
}

func send(h *Handler) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/payments/stripe/webhook", h.StripeWebhook)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/stripe/webhook", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStripeWebhook(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		db, _ := testutil.NewMockDB(t)
		w := send(NewHandler(db, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("bad signature", func(t *testing.T) {
		db, _ := testutil.NewMockDB(t)
		w := send(NewHandler(db, fakeEvents{err: errors.New("signature mismatch")}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unhandled event is acknowledged", func(t *testing.T) {
		db, _ := testutil.NewMockDB(t)
		w := send(NewHandler(db, fakeEvents{event: stripego.Event{Type: "customer.created"}}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ignored"}`, w.Body.String())
	})

	t.Run("payment failure is recorded", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "payments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ev := stripego.Event{
			Type: "payment_intent.payment_failed",
			Data: &stripego.EventData{Raw: []byte(`{"id":"pi_123","status":"requires_payment_method","last_payment_error":{"code":"card_declined","message":"Your card was declined."}}`)},
		}
		w := send(NewHandler(db, fakeEvents{event: ev}))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"received"}`, w.Body.String())
	})
}
