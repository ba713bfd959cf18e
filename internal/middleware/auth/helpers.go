package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum/internal/authz"
	"github.com/Skotchmaster/forum/internal/token"
)

const principalKey = "principal"

type Middleware struct {
	Codec *token.Codec
}

// principalFromRequest resolves the bearer token into a Principal. Any
// failure comes back as token.ErrInvalidToken.
func (m *Middleware) principalFromRequest(c echo.Context) (authz.Principal, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return authz.Principal{}, token.ErrInvalidToken
	}

	claims, err := m.Codec.Verify(raw)
	if err != nil {
		return authz.Principal{}, err
	}

	role, ok := authz.ParseRole(claims.Role)
	if !ok {
		return authz.Principal{}, token.ErrInvalidToken
	}

	return authz.Principal{Username: claims.Username, Role: role}, nil
}

// PrincipalFromContext returns the principal stored by RequireLogin. The
// zero Principal means the request never passed the middleware.
func PrincipalFromContext(c echo.Context) authz.Principal {
	if p, ok := c.Get(principalKey).(authz.Principal); ok {
		return p
	}
	return authz.Principal{}
}
