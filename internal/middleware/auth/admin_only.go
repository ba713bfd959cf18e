package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum/internal/authz"
)

func (m *Middleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := m.principalFromRequest(c)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
		}
		if p.Role != authz.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}

		c.Set(principalKey, p)
		return next(c)
	}
}
