package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum/internal/authz"
	mwauth "github.com/Skotchmaster/forum/internal/middleware/auth"
	"github.com/Skotchmaster/forum/internal/repo"
)

type UserHandler struct {
	Users *repo.UserRepo
	Posts *repo.PostRepo
}

func (h *UserHandler) Profile(c echo.Context) error {
	p := mwauth.PrincipalFromContext(c)
	if err := authz.Require(authz.ActionViewProfile, p, ""); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
	}

	user, err := h.Users.FindByUsername(c.Request().Context(), p.Username)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	postCount, err := h.Posts.CountByAuthor(c.Request().Context(), user.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"username":   user.Username,
		"role":       user.Role,
		"post_count": postCount,
	})
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	p := mwauth.PrincipalFromContext(c)
	if err := authz.Require(authz.ActionListUsers, p, ""); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "only admins can list users")
	}

	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) ChangeRole(c echo.Context) error {
	p := mwauth.PrincipalFromContext(c)
	if err := authz.Require(authz.ActionChangeRole, p, ""); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "only admins can change user roles")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	role, ok := authz.ParseRole(req.Role)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role")
	}

	username := c.Param("username")
	if err := h.Users.UpdateRole(c.Request().Context(), username, string(role)); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "role updated",
	})
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	p := mwauth.PrincipalFromContext(c)
	if err := authz.Require(authz.ActionDeleteUser, p, ""); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "only admins can delete users")
	}

	username := c.Param("username")
	if err := h.Users.Delete(c.Request().Context(), username); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.NoContent(http.StatusNoContent)
}
