package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/forum/internal/authz"
	mwauth "github.com/Skotchmaster/forum/internal/middleware/auth"
	"github.com/Skotchmaster/forum/internal/models"
	"github.com/Skotchmaster/forum/internal/mykafka"
	"github.com/Skotchmaster/forum/internal/repo"
	"github.com/Skotchmaster/forum/internal/service/search"
	"github.com/Skotchmaster/forum/internal/util"
)

type PostHandler struct {
	Posts    *repo.PostRepo
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

func (h *PostHandler) publish(c echo.Context, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "post_events", fmt.Sprint(event["postID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *PostHandler) index(c echo.Context, post *models.Post) {
	if h.ES == nil {
		return
	}
	if err := search.IndexPost(c.Request().Context(), h.ES, h.Index, post); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}
}

func (h *PostHandler) CreatePost(c echo.Context) error {
	p := mwauth.PrincipalFromContext(c)
	if err := authz.Require(authz.ActionCreatePost, p, ""); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to create posts")
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Photo   string `json:"photo"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if req.Title == "" || req.Content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and content are required")
	}

	post := models.Post{
		Title:   req.Title,
		Content: req.Content,
		Photo:   req.Photo,
		Author:  p.Username,
	}
	if err := h.Posts.Insert(c.Request().Context(), &post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "post could not be created")
	}

	h.index(c, &post)
	h.publish(c, map[string]interface{}{
		"type":   "post_created",
		"postID": post.ID,
		"author": post.Author,
	})

	return c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) GetPosts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	posts, total, err := h.Posts.List(c.Request().Context(), offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": posts,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	post, err := h.Posts.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
		Photo   string `json:"photo"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	post, err := h.Posts.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	p := mwauth.PrincipalFromContext(c)
	if err := authz.Require(authz.ActionEditPost, p, post.Author); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to edit this post")
	}

	// Author never changes on edit, whoever edits.
	post.Title = req.Title
	post.Content = req.Content
	post.Photo = req.Photo

	if err := h.Posts.Update(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	h.index(c, post)
	h.publish(c, map[string]interface{}{
		"type":   "post_updated",
		"postID": post.ID,
		"author": post.Author,
	})

	return c.JSON(http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}

	post, err := h.Posts.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	p := mwauth.PrincipalFromContext(c)
	if err := authz.Require(authz.ActionDeletePost, p, post.Author); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "you do not have permission to delete this post")
	}

	if err := h.Posts.Delete(c.Request().Context(), post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	if h.ES != nil {
		if err := search.DeletePost(c.Request().Context(), h.ES, h.Index, post.ID); err != nil {
			c.Logger().Errorf("ES delete error: %v", err)
		}
	}
	h.publish(c, map[string]interface{}{
		"type":   "post_deleted",
		"postID": post.ID,
		"author": post.Author,
	})

	return c.NoContent(http.StatusNoContent)
}
