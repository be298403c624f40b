package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "quad-backend/internal/common/errors"
	"quad-backend/internal/features/account/models"
	"quad-backend/internal/platform/ratelimiter"
)

const (
	testBotToken = "123456:TEST-TOKEN"
	linkedAddr   = models.Identity("0:00000000000000000000000000000000000000000000000000000000000000aa")
)

func init() {
	gin.SetMode(gin.TestMode)
}

// signInitData builds an init_data query string signed the way Telegram does.
func signInitData(t *testing.T, userID int64, authDate time.Time) string {
	t.Helper()
	user, err := json.Marshal(map[string]interface{}{"id": userID, "first_name": "Test"})
	require.NoError(t, err)

	vals := url.Values{}
	vals.Set("auth_date", strconv.FormatInt(authDate.Unix(), 10))
	vals.Set("query_id", "AAH")
	vals.Set("user", string(user))

	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+vals.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(testBotToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	vals.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return vals.Encode()
}

type stubResolver map[int64]models.Identity

func (r stubResolver) LinkedAddress(_ context.Context, userID int64) (models.Identity, error) {
	if id, ok := r[userID]; ok {
		return id, nil
	}
	return "", apperrors.New(apperrors.ErrCodeWalletNotLinked, "No wallet linked to this user")
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, getRequestID(c)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	assert.Equal(t, w.Header().Get(requestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc")
	w = serve(r, req)
	assert.Equal(t, "abc", w.Body.String())
}

func TestAbortWithErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.From(apperrors.ErrInsufficientFunds), http.StatusConflict},
		{apperrors.From(apperrors.ErrUserNotRegistered), http.StatusForbidden},
		{apperrors.From(apperrors.ErrRecipientNotRegistered), http.StatusNotFound},
		{apperrors.From(apperrors.ErrAlreadyRegistered), http.StatusConflict},
		{apperrors.From(apperrors.ErrInvalidAmount), http.StatusBadRequest},
		{apperrors.From(apperrors.ErrLockTimeout), http.StatusServiceUnavailable},
		{apperrors.From(apperrors.ErrTokenTransferFailed), http.StatusBadGateway},
		{apperrors.NewValidationError("email", "bad"), http.StatusBadRequest},
		{assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		r := gin.New()
		r.Use(RequestID())
		r.GET("/", func(c *gin.Context) { AbortWithError(c, tt.err) })

		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, tt.status, w.Code, "error %v", tt.err)
		resp := decodeError(t, w)
		assert.False(t, resp.Success)
		assert.NotEmpty(t, resp.RequestID)
	}
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.ErrCodeInternal, decodeError(t, w).Error.Code)
}

func TestTelegramInitData(t *testing.T) {
	newRouter := func(debug bool) *gin.Engine {
		r := gin.New()
		r.Use(TelegramInitData(testBotToken, time.Hour, debug))
		r.GET("/", func(c *gin.Context) {
			u, ok := TelegramUserFrom(c)
			if !ok {
				c.String(http.StatusOK, "anonymous")
				return
			}
			c.String(http.StatusOK, strconv.FormatInt(u.ID, 10))
		})
		return r
	}

	t.Run("missing header", func(t *testing.T) {
		w := serve(newRouter(false), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing header in debug", func(t *testing.T) {
		w := serve(newRouter(true), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "anonymous", w.Body.String())
	})

	t.Run("valid", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(initDataHeader, signInitData(t, 777, time.Now()))
		w := serve(newRouter(false), req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "777", w.Body.String())
	})

	t.Run("tampered", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(initDataHeader, strings.Replace(signInitData(t, 777, time.Now()), "query_id=AAH", "query_id=AAX", 1))
		w := serve(newRouter(false), req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(initDataHeader, signInitData(t, 777, time.Now().Add(-2*time.Hour)))
		w := serve(newRouter(false), req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCaller(t *testing.T) {
	resolver := stubResolver{777: linkedAddr}
	newRouter := func(debug bool) *gin.Engine {
		r := gin.New()
		r.Use(TelegramInitData(testBotToken, time.Hour, debug), Caller(resolver, debug))
		r.GET("/", func(c *gin.Context) {
			id, _ := CallerFrom(c)
			c.String(http.StatusOK, id.String())
		})
		return r
	}

	t.Run("linked wallet", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(initDataHeader, signInitData(t, 777, time.Now()))
		w := serve(newRouter(false), req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, linkedAddr.String(), w.Body.String())
	})

	t.Run("no wallet", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(initDataHeader, signInitData(t, 1, time.Now()))
		w := serve(newRouter(false), req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("debug header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(callerHeader, "0:00000000000000000000000000000000000000000000000000000000000000BB")
		w := serve(newRouter(true), req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "0:00000000000000000000000000000000000000000000000000000000000000bb", w.Body.String())
	})

	t.Run("debug header ignored outside debug", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(callerHeader, linkedAddr.String())
		w := serve(newRouter(false), req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireAdmin(t *testing.T) {
	r := gin.New()
	r.Use(TelegramInitData(testBotToken, time.Hour, false), RequireAdmin([]int64{1}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(initDataHeader, signInitData(t, 1, time.Now()))
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(initDataHeader, signInitData(t, 2, time.Now()))
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(ratelimiter.New(0.5, 1, time.Minute)))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
}
