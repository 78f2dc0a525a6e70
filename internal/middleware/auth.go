package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/piyol1998/stokcer-sub001/internal/model"
)

const (
	userKey = "user"

	demoUserID = "demo-user-001"
)

// AuthMiddleware reads the shopper from the X-User-* headers an upstream
// auth proxy sets. Requests without X-User-Id act as the demo user.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			user := &model.User{
				ID:        strings.TrimSpace(h.Get("X-User-Id")),
				FirstName: h.Get("X-User-First-Name"),
				LastName:  h.Get("X-User-Last-Name"),
				Email:     h.Get("X-User-Email"),
				Phone:     h.Get("X-User-Phone"),
			}
			if user.ID == "" {
				user = &model.User{
					ID:        demoUserID,
					FirstName: "Demo",
					LastName:  "Shopper",
					Email:     "demo@stokcer.test",
				}
			}

			c.Set(userKey, user)
			return next(c)
		}
	}
}

func CurrentUser(c echo.Context) *model.User {
	if u, ok := c.Get(userKey).(*model.User); ok {
		return u
	}
	return &model.User{ID: demoUserID}
}
