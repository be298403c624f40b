package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"quad-backend/internal/features/wallet/models"
	"quad-backend/internal/features/wallet/repository/memory"
	"quad-backend/internal/features/wallet/service"
)

func newRouter(userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewService(memory.NewRepository(), service.Config{
		Domain:     "quad.example.org",
		ProofTTL:   5 * time.Minute,
		PayloadTTL: 15 * time.Minute,
	})

	r := gin.New()
	withUser := func(c *gin.Context) {
		if userID != 0 {
			c.Set("user", initdata.User{ID: userID})
		}
		c.Next()
	}
	NewHandler(svc).RegisterRoutes(r.Group("/api/v1"), withUser)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWalletRoutesNeedUser(t *testing.T) {
	r := newRouter(0)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/wallet", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/wallet/payload", "").Code)
}

func TestGeneratePayload(t *testing.T) {
	r := newRouter(9)
	w := serve(r, http.MethodGet, "/api/v1/wallet/payload", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.PayloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Payload)
	assert.True(t, resp.ExpiresAt.After(time.Now()))
}

func TestGetLinkedWithoutWallet(t *testing.T) {
	r := newRouter(9)
	w := serve(r, http.MethodGet, "/api/v1/wallet", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "WALLET_NOT_LINKED")
}

func TestVerifyProofRejectsBadBody(t *testing.T) {
	r := newRouter(9)
	w := serve(r, http.MethodPost, "/api/v1/wallet/proof", `{"address":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
