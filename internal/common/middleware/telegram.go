package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	apperrors "quad-backend/internal/common/errors"
)

const (
	initDataHeader  = "init_data"
	telegramUserKey = "user"
)

// TelegramInitData validates the init_data header signed by the bot and stores
// the Telegram user in the context. In debug mode a missing header is allowed
// so that X-Caller-Address can be used instead.
func TelegramInitData(botToken string, expIn time.Duration, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		initDataQuery := c.GetHeader(initDataHeader)
		if initDataQuery == "" {
			if debug {
				c.Next()
				return
			}
			AbortWithError(c, apperrors.NewUnauthorizedError("Telegram init data required"))
			return
		}

		if botToken == "" {
			log.Error().Msg("BOT_TOKEN is not configured, rejecting init data")
			AbortWithError(c, apperrors.New(apperrors.ErrCodeInternal, "Server configuration error"))
			return
		}

		if err := initdata.Validate(initDataQuery, botToken, expIn); err != nil {
			log.Debug().Err(err).Msg("Init data validation failed")
			AbortWithError(c, apperrors.NewUnauthorizedError("invalid init data"))
			return
		}

		parsed, err := initdata.Parse(initDataQuery)
		if err != nil {
			AbortWithError(c, apperrors.Wrap(err, apperrors.ErrCodeBadRequest, "Failed to parse init data"))
			return
		}

		c.Set(telegramUserKey, parsed.User)
		c.Next()
	}
}

// TelegramUserFrom returns the user stored by TelegramInitData.
func TelegramUserFrom(c *gin.Context) (initdata.User, bool) {
	v, ok := c.Get(telegramUserKey)
	if !ok {
		return initdata.User{}, false
	}
	u, ok := v.(initdata.User)
	return u, ok && u.ID != 0
}
