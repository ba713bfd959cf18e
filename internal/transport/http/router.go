package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/forum/internal/handlers"
	mwauth "github.com/Skotchmaster/forum/internal/middleware/auth"
)

type Deps struct {
	DB            *gorm.DB
	Auth          *mwauth.Middleware
	AuthHandler   *handlers.AuthHandler
	PostHandler   *handlers.PostHandler
	UserHandler   *handlers.UserHandler
	SearchHandler *handlers.SearchHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	v1.POST("/register", d.AuthHandler.Register)
	v1.POST("/login", d.AuthHandler.Login)

	// The whole forum area requires a valid token, reads included.
	forum := v1.Group("", d.Auth.RequireLogin)

	forum.GET("/posts", d.PostHandler.GetPosts)
	forum.GET("/posts/:id", d.PostHandler.GetPost)
	forum.POST("/posts", d.PostHandler.CreatePost)
	forum.PUT("/posts/:id", d.PostHandler.UpdatePost)
	forum.DELETE("/posts/:id", d.PostHandler.DeletePost)

	forum.GET("/search", d.SearchHandler.Search)
	forum.GET("/users/profile", d.UserHandler.Profile)

	admin := v1.Group("/users", d.Auth.AdminOnly)

	admin.GET("", d.UserHandler.ListUsers)
	admin.PUT("/:username/role", d.UserHandler.ChangeRole)
	admin.DELETE("/:username", d.UserHandler.DeleteUser)
}
