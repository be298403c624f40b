package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "quad-backend/internal/common/errors"
	"quad-backend/internal/features/account/models"
	"quad-backend/internal/platform/ratelimiter"
)

const (
	callerKey    = "caller"
	callerHeader = "X-Caller-Address"
)

// WalletResolver maps a Telegram user to their linked wallet address.
type WalletResolver interface {
	LinkedAddress(ctx context.Context, userID int64) (models.Identity, error)
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := TelegramUserFrom(c); !ok {
			AbortWithError(c, apperrors.NewUnauthorizedError("Telegram init data required"))
			return
		}
		c.Next()
	}
}

func RequireAdmin(adminIDs []int64) gin.HandlerFunc {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := TelegramUserFrom(c)
		if !ok {
			AbortWithError(c, apperrors.NewUnauthorizedError("Telegram init data required"))
			return
		}
		if _, ok := admins[user.ID]; !ok {
			AbortWithError(c, apperrors.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}

// Caller resolves the acting account address. With debug enabled the
// X-Caller-Address header is trusted; otherwise the address is the wallet
// linked to the Telegram user.
func Caller(resolver WalletResolver, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if debug {
			if raw := c.GetHeader(callerHeader); raw != "" {
				id, err := models.ParseIdentity(raw)
				if err != nil {
					AbortWithError(c, apperrors.NewValidationError(callerHeader, err.Error()))
					return
				}
				c.Set(callerKey, id)
				c.Next()
				return
			}
		}

		user, ok := TelegramUserFrom(c)
		if !ok {
			AbortWithError(c, apperrors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		id, err := resolver.LinkedAddress(c.Request.Context(), user.ID)
		if err != nil {
			if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeWalletNotLinked {
				AbortWithError(c, apperrors.NewForbiddenError("link a wallet first").WithDetail("user_id", user.ID))
				return
			}
			AbortWithError(c, err)
			return
		}

		c.Set(callerKey, id)
		c.Next()
	}
}

// CallerFrom returns the address stored by Caller.
func CallerFrom(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get(callerKey)
	if !ok {
		return "", false
	}
	id, ok := v.(models.Identity)
	return id, ok && !id.IsZero()
}

// RateLimit throttles per caller address, falling back to client IP.
func RateLimit(l *ratelimiter.KeyLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if id, ok := CallerFrom(c); ok {
			key = id.String()
		}

		if !l.Allow(key, time.Now()) {
			retry := l.RetryAfter()
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds()+0.999)))
			AbortWithError(c, apperrors.NewRateLimitError(retry))
			return
		}
		c.Next()
	}
}
