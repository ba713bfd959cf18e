package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/forum/internal/authz"
	"github.com/Skotchmaster/forum/internal/models"
	"github.com/Skotchmaster/forum/internal/repo"
)

func newUserHandler(t *testing.T) (*UserHandler, *gorm.DB) {
	db := InitTestDB(t)
	return &UserHandler{
		Users: &repo.UserRepo{DB: db},
		Posts: &repo.PostRepo{DB: db},
	}, db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) {
	user := models.User{Username: username, PasswordHash: "x", Role: role}
	require.NoError(t, db.Create(&user).Error)
}

func TestProfile(t *testing.T) {
	h, db := newUserHandler(t)
	seedUser(t, db, "bob", "user")
	require.NoError(t, db.Create(&models.Post{Title: "t", Content: "c", Author: "bob"}).Error)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asPrincipal(c, "bob", authz.RoleUser)

	require.NoError(t, h.Profile(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "bob", resp["username"])
	require.Equal(t, "user", resp["role"])
	require.EqualValues(t, 1, resp["post_count"])
}

func TestListUsers_AdminOnly(t *testing.T) {
	h, db := newUserHandler(t)
	seedUser(t, db, "bob", "user")
	seedUser(t, db, "root", "admin")

	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	asPrincipal(c, "bob", authz.RoleUser)

	err := h.ListUsers(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)

	reqAdmin := httptest.NewRequest(http.MethodGet, "/users", nil)
	recAdmin := httptest.NewRecorder()
	cAdmin := e.NewContext(reqAdmin, recAdmin)
	asPrincipal(cAdmin, "root", authz.RoleAdmin)

	require.NoError(t, h.ListUsers(cAdmin))
	require.Equal(t, http.StatusOK, recAdmin.Code)

	var users []models.User
	require.NoError(t, json.Unmarshal(recAdmin.Body.Bytes(), &users))
	require.Len(t, users, 2)
}

func TestChangeRole(t *testing.T) {
	h, db := newUserHandler(t)
	seedUser(t, db, "bob", "user")

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPut, "/users/bob/role", map[string]string{"role": "admin"})
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	asPrincipal(c, "root", authz.RoleAdmin)

	require.NoError(t, h.ChangeRole(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var user models.User
	require.NoError(t, db.Where("username = ?", "bob").First(&user).Error)
	require.Equal(t, "admin", user.Role)
}

func TestChangeRole_RejectsUnknownRole(t *testing.T) {
	h, db := newUserHandler(t)
	seedUser(t, db, "bob", "user")

	e := echo.New()
	// A typo must never slip a made-up role into the users table.
	req, rec := jsonRequest(t, http.MethodPut, "/users/bob/role", map[string]string{"role": "superadmin"})
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	asPrincipal(c, "root", authz.RoleAdmin)

	err := h.ChangeRole(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusBadRequest, he.Code)

	var user models.User
	require.NoError(t, db.Where("username = ?", "bob").First(&user).Error)
	require.Equal(t, "user", user.Role)
}

func TestChangeRole_NonAdminForbidden(t *testing.T) {
	h, db := newUserHandler(t)
	seedUser(t, db, "bob", "user")

	e := echo.New()
	req, rec := jsonRequest(t, http.MethodPut, "/users/bob/role", map[string]string{"role": "admin"})
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	asPrincipal(c, "bob", authz.RoleUser)

	err := h.ChangeRole(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestDeleteUser(t *testing.T) {
	h, db := newUserHandler(t)
	seedUser(t, db, "bob", "user")

	e := echo.New()

	req := httptest.NewRequest(http.MethodDelete, "/users/bob", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("bob")
	asPrincipal(c, "bob", authz.RoleUser)

	err := h.DeleteUser(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusForbidden, he.Code)

	reqAdmin := httptest.NewRequest(http.MethodDelete, "/users/bob", nil)
	recAdmin := httptest.NewRecorder()
	cAdmin := e.NewContext(reqAdmin, recAdmin)
	cAdmin.SetParamNames("username")
	cAdmin.SetParamValues("bob")
	asPrincipal(cAdmin, "root", authz.RoleAdmin)

	require.NoError(t, h.DeleteUser(cAdmin))
	require.Equal(t, http.StatusNoContent, recAdmin.Code)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestDeleteUser_NotFound(t *testing.T) {
	h, _ := newUserHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/users/ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("ghost")
	asPrincipal(c, "root", authz.RoleAdmin)

	err := h.DeleteUser(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	require.Equal(t, http.StatusNotFound, he.Code)
}
