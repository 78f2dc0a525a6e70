package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	SessionCookie = "stokcer_sid"
	sessionKey    = "session_id"
)

// SessionMiddleware gives every browser a cart session id, kept in the
// stokcer_sid cookie.
func SessionMiddleware(ttl time.Duration, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				if _, err := uuid.Parse(cookie.Value); err == nil {
					sid = cookie.Value
				}
			}

			if sid == "" {
				sid = uuid.NewString()
			}
			// refreshed on every request
			c.SetCookie(&http.Cookie{
				Name:     SessionCookie,
				Value:    sid,
				Path:     "/",
				MaxAge:   int(ttl.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})

			c.Set(sessionKey, sid)
			return next(c)
		}
	}
}

func SessionID(c echo.Context) string {
	sid, _ := c.Get(sessionKey).(string)
	return sid
}
