package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"repairmybike-api/internal/domain/users"
	"repairmybike-api/internal/infra/identity"
	"repairmybike-api/internal/infra/tokens"
	"repairmybike-api/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeProvider struct {
	sent     []string
	approved bool
	sendErr  error
}

func (f *fakeProvider) SendCode(_ context.Context, _ users.Channel, to string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

func (f *fakeProvider) VerifyCode(context.Context, users.Channel, string, string) (identity.Verification, error) {
	if f.approved {
		return identity.Verification{Approved: true, Status: "approved"}, nil
	}
	return identity.Verification{Status: "pending"}, nil
}

func setupRouter(db *gorm.DB, provider identity.Provider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(db, provider, tokens.NewIssuer("test-secret", time.Hour, 24*time.Hour), users.DefaultRateLimit, 5*time.Minute)
	r := gin.New()
	r.POST("/api/auth/otp/request", h.RequestOTP)
	r.POST("/api/auth/otp/verify", h.VerifyOTP)
	r.POST("/api/auth/phone/login", h.PhoneLogin)
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func setupOTPDB(t *testing.T) *gorm.DB {
	return testutil.NewTestDB(t, &users.OTPAttempt{}, &users.OTPSend{}, &users.PhoneOTP{}, &users.EmailOTP{})
}

func TestRequestOTPRateLimited(t *testing.T) {
	db := setupOTPDB(t)
	provider := &fakeProvider{}
	r := setupRouter(db, provider)

	body := gin.H{"identifier": "+1 415 555 0100", "method": "phone"}
	for n := 1; n <= 5; n++ {
		w := postJSON(r, "/api/auth/otp/request", body)
		require.Equal(t, http.StatusOK, w.Code, "request %d: %s", n, w.Body.String())

		resp := decode(t, w)
		assert.Equal(t, false, resp["error"])
		assert.Equal(t, "+14155550100", resp["identifier"])
		assert.Equal(t, "+14155550100", resp["phone_number"])
		assert.Equal(t, float64(300), resp["expires_in"])
	}

	w := postJSON(r, "/api/auth/otp/request", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	resp := decode(t, w)
	assert.Equal(t, true, resp["error"])
	assert.Equal(t, msgTooManyRequests, resp["message"])
	assert.Len(t, provider.sent, 5)

	var attempt users.OTPAttempt
	require.NoError(t, db.Where("identifier = ?", "+14155550100").First(&attempt).Error)
	assert.Equal(t, 5, attempt.AttemptsCount)
	assert.True(t, attempt.IsBlocked)

	var recorded int64
	require.NoError(t, db.Model(&users.PhoneOTP{}).Count(&recorded).Error)
	assert.Equal(t, int64(5), recorded)
}

func TestRequestOTPFailedDeliveryKeepsQuota(t *testing.T) {
	db := setupOTPDB(t)
	provider := &fakeProvider{sendErr: errors.New("twilio: 503")}
	r := setupRouter(db, provider)
	body := gin.H{"identifier": "rider@example.com", "method": "email"}

	for n := 0; n < 3; n++ {
		w := postJSON(r, "/api/auth/otp/request", body)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, msgSendFailed, decode(t, w)["message"])
	}

	provider.sendErr = nil
	for n := 1; n <= 5; n++ {
		w := postJSON(r, "/api/auth/otp/request", body)
		require.Equal(t, http.StatusOK, w.Code, "request %d: %s", n, w.Body.String())
		assert.Equal(t, "rider@example.com", decode(t, w)["email"])
	}

	w := postJSON(r, "/api/auth/otp/request", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestOTPProviderUnavailable(t *testing.T) {
	db := setupOTPDB(t)
	r := setupRouter(db, identity.Disabled{})

	w := postJSON(r, "/api/auth/otp/request", gin.H{"identifier": "rider@example.com", "method": "email"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, msgSendFailed, decode(t, w)["message"])

	var sends int64
	require.NoError(t, db.Model(&users.OTPSend{}).Count(&sends).Error)
	assert.Zero(t, sends)
}

func TestRequestOTPInvalidIdentifier(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	r := setupRouter(db, &fakeProvider{})

	w := postJSON(r, "/api/auth/otp/request", gin.H{"identifier": "not-a-phone", "method": "phone"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Contains(t, resp["errors"], "identifier")

	w = postJSON(r, "/api/auth/otp/request", gin.H{"identifier": "+14155550100", "method": "pigeon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVerifyOTPRejectedCode(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	r := setupRouter(db, &fakeProvider{approved: false})

	w := postJSON(r, "/api/auth/otp/verify", gin.H{"identifier": "+14155550100", "method": "phone", "otp_code": "123456"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, msgInvalidOTP, decode(t, w)["message"])

	w = postJSON(r, "/api/auth/phone/login", gin.H{"phone_number": "+14155550100", "otp_code": "123456"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
