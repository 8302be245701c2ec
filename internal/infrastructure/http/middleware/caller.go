package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/innoviahub/meeting-transcription/errors"
)

const (
	// HeaderUserID carries the caller identity set by the authenticating gateway.
	HeaderUserID = "X-User-ID"

	callerKey = "user_id"
)

// CallerIdentity copies X-User-ID into the echo context when present.
func CallerIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := strings.TrimSpace(c.Request().Header.Get(HeaderUserID)); id != "" {
				c.Set(callerKey, id)
			}
			return next(c)
		}
	}
}

// RequireCaller rejects requests without a caller identity.
// onError writes the failure so responses share the API error body.
func RequireCaller(onError func(echo.Context, error) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := GetCallerID(c); !ok {
				return onError(c, errors.ErrUnauthenticated())
			}
			return next(c)
		}
	}
}

// GetCallerID returns the identity stored by CallerIdentity.
func GetCallerID(c echo.Context) (string, bool) {
	id, ok := c.Get(callerKey).(string)
	return id, ok && id != ""
}
