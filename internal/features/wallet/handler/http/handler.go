package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "quad-backend/internal/common/errors"
	"quad-backend/internal/common/middleware"
	"quad-backend/internal/features/wallet/models"
	"quad-backend/internal/features/wallet/service"
)

type Handler struct {
	service *service.Service
}

func NewHandler(service *service.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts /wallet. Routes need a Telegram user, so auth must
// include TelegramInitData and RequireAuth.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, auth ...gin.HandlerFunc) {
	wallet := router.Group("/wallet", auth...)
	{
		wallet.GET("", h.GetLinked)
		wallet.GET("/payload", h.GeneratePayload)
		wallet.POST("/proof", h.VerifyProof)
	}
}

func telegramUserID(c *gin.Context) (int64, bool) {
	u, ok := middleware.TelegramUserFrom(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.NewUnauthorizedError("Telegram init data required"))
		return 0, false
	}
	return u.ID, true
}

// @Summary Get TON Proof payload
// @Description Issues a single-use payload for the wallet to sign with ton_proof
// @Tags wallet
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.PayloadResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /wallet/payload [get]
func (h *Handler) GeneratePayload(c *gin.Context) {
	userID, ok := telegramUserID(c)
	if !ok {
		return
	}
	resp, err := h.service.GeneratePayload(c.Request.Context(), userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Verify TON Proof
// @Description Verifies wallet ownership and links the wallet to the Telegram user
// @Tags wallet
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param proof body models.ProofRequest true "TON Proof data"
// @Success 200 {object} models.Link
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Proof rejected"
// @Router /wallet/proof [post]
func (h *Handler) VerifyProof(c *gin.Context) {
	userID, ok := telegramUserID(c)
	if !ok {
		return
	}
	var req models.ProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return
	}

	link, err := h.service.VerifyProof(c.Request.Context(), userID, &req)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// @Summary Get linked wallet
// @Tags wallet
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.Link
// @Failure 404 {object} models.ErrorResponse "No wallet linked"
// @Router /wallet [get]
func (h *Handler) GetLinked(c *gin.Context) {
	userID, ok := telegramUserID(c)
	if !ok {
		return
	}
	link, err := h.service.Linked(c.Request.Context(), userID)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
