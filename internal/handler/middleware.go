package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sumire/fixhub/internal/domain"
	"github.com/sumire/fixhub/internal/notify"
	"github.com/sumire/fixhub/internal/service"
)

const userIDKey = "user_id"
const localeKey = "locale"

// RequestLogger logs each request with method, path, status and latency.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			slog.Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}

// JWTAuth validates the Bearer token and stores the user ID in the context.
func JWTAuth(auth *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if header == "" {
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return domain.ErrUnauthorized
			}

			userID, err := auth.ValidateToken(parts[1])
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(userIDKey, userID)
			return next(c)
		}
	}
}

// RequestLocale resolves the Accept-Language header into a supported
// locale and stores it in the context.
func RequestLocale() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(localeKey, notify.ParseLocale(c.Request().Header.Get("Accept-Language")))
			return next(c)
		}
	}
}

// GetUserID retrieves the authenticated user's ID from the context.
func GetUserID(c echo.Context) (int64, error) {
	id, ok := c.Get(userIDKey).(int64)
	if !ok {
		return 0, domain.ErrUnauthorized
	}
	return id, nil
}

// GetLocale retrieves the resolved request locale from the context.
func GetLocale(c echo.Context) notify.Locale {
	if loc, ok := c.Get(localeKey).(notify.Locale); ok {
		return loc
	}
	return notify.DefaultLocale
}
