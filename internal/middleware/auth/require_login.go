package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (m *Middleware) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := m.principalFromRequest(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
		}

		c.Set(principalKey, p)
		return next(c)
	}
}
