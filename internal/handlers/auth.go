package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum/internal/mykafka"
	"github.com/Skotchmaster/forum/internal/repo"
	"github.com/Skotchmaster/forum/internal/service"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Producer *mykafka.Producer
}

func (h *AuthHandler) publish(c echo.Context, key string, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	res, err := h.Auth.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, repo.ErrUserExists):
			return echo.NewHTTPError(http.StatusBadRequest, "username already registered")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not register user")
	}

	h.publish(c, req.Username, map[string]interface{}{
		"type":     "user_registered",
		"username": req.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": res.AccessToken,
		"token_type":   "bearer",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	res, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, repo.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not log in")
	}

	h.publish(c, req.Username, map[string]interface{}{
		"type":     "user_logged_in",
		"username": req.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": res.AccessToken,
		"token_type":   "bearer",
		"is_admin":     res.IsAdmin,
	})
}
