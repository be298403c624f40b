package http

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "quad-backend/internal/common/errors"
	"quad-backend/internal/common/middleware"
	"quad-backend/internal/features/account/mapper"
	"quad-backend/internal/features/account/models"
	"quad-backend/internal/features/account/service"
)

const (
	defaultJournalLimit = 50
	maxJournalLimit     = 1000
)

// Guards are the middleware chains protecting account routes.
type Guards struct {
	// Caller resolves the acting address; must run before RateLimit.
	Caller    gin.HandlerFunc
	RateLimit gin.HandlerFunc
	Admin     gin.HandlerFunc
}

type AccountHandler struct {
	service service.AccountService
}

func NewAccountHandler(service service.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

func (h *AccountHandler) RegisterRoutes(router *gin.RouterGroup, g Guards) {
	accounts := router.Group("/accounts")
	{
		accounts.GET("/:address", h.GetAccount)
	}

	me := router.Group("/accounts", g.Caller, g.RateLimit)
	{
		me.POST("/register", h.Register)
		me.GET("/me", h.GetMe)
		me.PUT("/me", h.UpdateMe)
	}

	ledger := router.Group("/ledger")
	{
		ledger.GET("/stats", h.GetStats)
	}

	ops := router.Group("/ledger", g.Caller, g.RateLimit)
	{
		ops.POST("/deposit", h.Deposit)
		ops.POST("/transfer", h.Transfer)
	}

	admin := router.Group("/ledger", g.Admin)
	{
		admin.GET("/journal", h.GetJournal)
		admin.GET("/audit", h.RunAudit)
	}
}

func caller(c *gin.Context) (models.Identity, bool) {
	id, ok := middleware.CallerFrom(c)
	if !ok {
		middleware.AbortWithError(c, apperrors.NewUnauthorizedError("caller address required"))
	}
	return id, ok
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.AbortWithError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Invalid request body"))
		return false
	}
	return true
}

func parseAmount(c *gin.Context, raw string) (*big.Int, bool) {
	n, err := models.ParseAmount(raw)
	if err != nil {
		middleware.AbortWithError(c, apperrors.From(apperrors.ErrInvalidAmount).WithDetail("amount", raw))
		return nil, false
	}
	return n, true
}

// @Summary Register account
// @Description Registers the caller with a profile. The category is fixed at registration.
// @Tags accounts
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.RegisterRequest true "Profile"
// @Success 201 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse "Invalid profile"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 409 {object} models.ErrorResponse "Already registered"
// @Router /accounts/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.service.RegisterUser(c.Request.Context(), id, models.ProfileInput{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Category:    models.Category(*req.Category),
		Bio:         req.Bio,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, mapper.ToProfileResponse(p))
}

// @Summary Get own account
// @Tags accounts
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.ProfileResponse
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Router /accounts/me [get]
func (h *AccountHandler) GetMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	h.respondProfile(c, id)
}

// @Summary Update own profile
// @Description Replaces username, email, phone number and bio. Balance and category are untouched.
// @Tags accounts
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.UpdateProfileRequest true "Profile"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse "Invalid profile"
// @Failure 403 {object} models.ErrorResponse "Not registered"
// @Router /accounts/me [put]
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.service.UpdateUserProfile(c.Request.Context(), id, models.ProfileUpdate{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Bio:         req.Bio,
	})
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapper.ToProfileResponse(p))
}

// @Summary Get account by address
// @Description Any address can be queried; unseen addresses return the unregistered default.
// @Tags accounts
// @Produce json
// @Param address path string true "TON address, raw or user-friendly"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse "Invalid address"
// @Router /accounts/{address} [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, err := models.ParseIdentity(c.Param("address"))
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("address", err.Error()))
		return
	}
	h.respondProfile(c, id)
}

func (h *AccountHandler) respondProfile(c *gin.Context, id models.Identity) {
	p, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToProfileResponse(p))
}

// @Summary Deposit funds
// @Description Pulls the amount from the caller's token allowance into custody and credits the internal balance.
// @Tags ledger
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.DepositRequest true "Amount"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse "Invalid amount"
// @Failure 403 {object} models.ErrorResponse "User not registered"
// @Failure 502 {object} models.ErrorResponse "Token transfer failed"
// @Failure 503 {object} models.ErrorResponse "Ledger busy"
// @Router /ledger/deposit [post]
func (h *AccountHandler) Deposit(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.DepositRequest
	if !bindJSON(c, &req) {
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	p, err := h.service.DepositFunds(c.Request.Context(), id, amount)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToProfileResponse(p))
}

// @Summary Transfer funds
// @Description Moves an internal balance to another registered account.
// @Tags ledger
// @Accept json
// @Produce json
// @Security TelegramInitData
// @Param request body models.TransferRequest true "Recipient and amount"
// @Success 200 {object} models.ProfileResponse
// @Failure 400 {object} models.ErrorResponse "Invalid amount or recipient"
// @Failure 403 {object} models.ErrorResponse "User not registered"
// @Failure 404 {object} models.ErrorResponse "Recipient not registered"
// @Failure 409 {object} models.ErrorResponse "Insufficient funds"
// @Router /ledger/transfer [post]
func (h *AccountHandler) Transfer(c *gin.Context) {
	id, ok := caller(c)
	if !ok {
		return
	}
	var req models.TransferRequest
	if !bindJSON(c, &req) {
		return
	}
	recipient, err := models.ParseIdentity(req.Recipient)
	if err != nil {
		middleware.AbortWithError(c, apperrors.NewValidationError("recipient", err.Error()))
		return
	}
	amount, ok := parseAmount(c, req.Amount)
	if !ok {
		return
	}

	p, err := h.service.TransferFunds(c.Request.Context(), id, recipient, amount)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToProfileResponse(p))
}

// @Summary Ledger statistics
// @Tags ledger
// @Produce json
// @Success 200 {object} models.StatsResponse
// @Router /ledger/stats [get]
func (h *AccountHandler) GetStats(c *gin.Context) {
	st, err := h.service.Stats(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToStatsResponse(st))
}

// @Summary Ledger journal
// @Description Most recent entries first (admin only)
// @Tags ledger
// @Produce json
// @Security TelegramInitData
// @Param limit query int false "Max entries" default(50)
// @Success 200 {object} models.JournalResponse
// @Failure 403 {object} models.ErrorResponse "Admin access required"
// @Router /ledger/journal [get]
func (h *AccountHandler) GetJournal(c *gin.Context) {
	limit := int64(defaultJournalLimit)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			middleware.AbortWithError(c, apperrors.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}
	if limit > maxJournalLimit {
		limit = maxJournalLimit
	}

	entries, err := h.service.Journal(c.Request.Context(), limit)
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToJournalResponse(entries))
}

// @Summary Conservation audit
// @Description Checks that registered balances add up to total deposits (admin only)
// @Tags ledger
// @Produce json
// @Security TelegramInitData
// @Success 200 {object} models.AuditResponse
// @Failure 403 {object} models.ErrorResponse "Admin access required"
// @Router /ledger/audit [get]
func (h *AccountHandler) RunAudit(c *gin.Context) {
	report, err := h.service.Audit(c.Request.Context())
	if err != nil {
		middleware.AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.ToAuditResponse(report))
}
