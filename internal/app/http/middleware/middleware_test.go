package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"repairmybike-api/internal/domain/access"
	"repairmybike-api/internal/infra/tokens"
	"repairmybike-api/internal/testutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func identityEcho(c *gin.Context) {
	caps, _ := c.Get("capabilities")
	c.JSON(http.StatusOK, gin.H{
		"user_id":      c.GetUint("user_id"),
		"role":         c.GetString("role"),
		"auth_method":  c.GetString("auth_method"),
		"capabilities": caps,
	})
}

func TestStaffAccess(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	issuer := tokens.NewIssuer("secret", time.Hour, time.Hour)

	r := gin.New()
	r.GET("/stats", StaffAccess(db, issuer, "staff-key"), RequireCapability(access.CapViewStats), identityEcho)
	r.GET("/users", StaffAccess(db, issuer, "staff-key"), RequireCapability(access.CapManageUsers), identityEcho)

	tests := []struct {
		name   string
		path   string
		header map[string]string
		want   int
	}{
		{"valid key", "/stats", map[string]string{StaffKeyHeader: "staff-key"}, http.StatusOK},
		{"wrong key", "/stats", map[string]string{StaffKeyHeader: "guess"}, http.StatusForbidden},
		{"key lacks capability", "/users", map[string]string{StaffKeyHeader: "staff-key"}, http.StatusForbidden},
		{"no credentials", "/stats", nil, http.StatusUnauthorized},
		{"malformed bearer", "/stats", map[string]string{"Authorization": "Token abc"}, http.StatusUnauthorized},
		{"invalid token", "/stats", map[string]string{"Authorization": "Bearer abc.def.ghi"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestStaffAccessWithoutConfiguredKey(t *testing.T) {
	db, _ := testutil.NewMockDB(t)
	r := gin.New()
	r.GET("/stats", StaffAccess(db, tokens.NewIssuer("secret", time.Hour, time.Hour), ""), identityEcho)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	req.Header.Set(StaffKeyHeader, "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthMiddlewareSession(t *testing.T) {
	issuer := tokens.NewIssuer("secret", time.Hour, time.Hour)
	pair, err := issuer.Issue(12, "customer")
	require.NoError(t, err)

	t.Run("active session", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "user_sessions" WHERE .*session_token = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "session_token", "status", "expires_at"}).
				AddRow(5, 12, pair.SessionToken, "active", time.Now().Add(time.Hour)))
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"."id" = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "role", "is_active"}).AddRow(12, "customer", true))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "user_sessions" SET .*"last_activity"`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		r := gin.New()
		r.GET("/me", AuthMiddleware(db, issuer), identityEcho)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.SessionToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(12), body["user_id"])
		assert.Equal(t, "customer", body["role"])
	})

	t.Run("activity write failure is logged", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		restore := zap.ReplaceGlobals(zap.New(core))
		defer restore()

		db, mock := testutil.NewMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "user_sessions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "session_token", "status", "expires_at"}).
				AddRow(5, 12, pair.SessionToken, "active", time.Now().Add(time.Hour)))
		mock.ExpectQuery(`SELECT \* FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "role", "is_active"}).AddRow(12, "customer", true))
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "user_sessions"`).WillReturnError(errors.New("read-only replica"))
		mock.ExpectRollback()

		r := gin.New()
		r.GET("/me", AuthMiddleware(db, issuer), identityEcho)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.SessionToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		entries := logs.FilterMessage("session activity not recorded").All()
		require.Len(t, entries, 1)
		assert.Equal(t, uint64(5), entries[0].ContextMap()["session_id"])
	})

	t.Run("revoked session", func(t *testing.T) {
		db, mock := testutil.NewMockDB(t)
		mock.ExpectQuery(`SELECT \* FROM "user_sessions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		r := gin.New()
		r.GET("/me", AuthMiddleware(db, issuer), identityEcho)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.SessionToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Session has been revoked or expired")
	})

	t.Run("refresh token is not a session token", func(t *testing.T) {
		db, _ := testutil.NewMockDB(t)
		r := gin.New()
		r.GET("/me", AuthMiddleware(db, issuer), identityEcho)
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("optional auth lets anonymous through", func(t *testing.T) {
		db, _ := testutil.NewMockDB(t)
		r := gin.New()
		r.GET("/parts", OptionalAuth(db, issuer), identityEcho)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/parts", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user_id":0`)
	})
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set("role", c.Query("as"))
		c.Next()
	}, RequireRole("admin"), identityEcho)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?as=admin", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin?as=staff", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSanitizeInput(t *testing.T) {
	r := gin.New()
	r.Use(SanitizeAndCleanInputMiddleware())
	r.POST("/echo", func(c *gin.Context) {
		b, _ := io.ReadAll(c.Request.Body)
		c.Data(http.StatusOK, "application/json", b)
	})

	send := func(contentType, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(body))
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("nested strings are cleaned", func(t *testing.T) {
		w := send("application/json", `{"notes":"<script>alert(1)</script>Front brake","customer":{"name":"<b>Asha</b>"},"tags":["<i>urgent</i>",3],"quantity":2}`)
		require.Equal(t, http.StatusOK, w.Code)

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Front brake", got["notes"])
		assert.Equal(t, "Asha", got["customer"].(map[string]interface{})["name"])
		assert.Equal(t, []interface{}{"urgent", float64(3)}, got["tags"])
		assert.Equal(t, float64(2), got["quantity"])
	})

	t.Run("plain text keeps quotes and ampersands", func(t *testing.T) {
		w := send("application/json", `{"customer_name":"Seán O'Brien","address":"A & B Motors, 5 < 6 Lane","notes":"<b>Chain</b> & sprocket","sneaky":"&lt;script&gt;alert(1)&lt;/script&gt;ok"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var got map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "Seán O'Brien", got["customer_name"])
		assert.Equal(t, "A & B Motors, 5 < 6 Lane", got["address"])
		assert.Equal(t, "Chain & sprocket", got["notes"])
		assert.NotContains(t, got["sneaky"], "<script")
		assert.Contains(t, got["sneaky"], "ok")
	})

	t.Run("malformed json", func(t *testing.T) {
		w := send("application/json", `{"notes":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("empty body passes through", func(t *testing.T) {
		w := send("application/json", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("non json body is untouched", func(t *testing.T) {
		w := send("text/plain", "<b>raw</b>")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "<b>raw</b>", w.Body.String())
	})
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", bytes.NewReader(nil))
	req.Header.Set(RequestIDHeader, "req-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
}
