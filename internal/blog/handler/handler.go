// Package handler exposes the article admin over HTTP. Every route expects
// middleware.GinRequireAuth to have run first.
package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fluxynet/blog/internal/apperr"
	"github.com/fluxynet/blog/internal/blog"
	"github.com/fluxynet/blog/internal/logger"
	"github.com/fluxynet/blog/internal/middleware"
)

type Handler struct {
	admin *blog.Admin
}

func NewHandler(admin *blog.Admin) *Handler {
	return &Handler{admin: admin}
}

// ArticleRequest is the body of create and update calls.
type ArticleRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/articles", h.create)
	r.GET("/articles", h.list)
	r.GET("/articles/:id", h.get)
	r.PATCH("/articles/:id", h.update)
	r.PUT("/articles/:id/status/publish", h.transition(h.admin.Publish))
	r.PUT("/articles/:id/status/draft", h.transition(h.admin.MoveToDraft))
	r.PUT("/articles/:id/status/trash", h.transition(h.admin.MoveToTrash))
	r.DELETE("/articles/:id", h.transition(h.admin.Delete))
}

func articleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apperr.Respond(c, apperr.InvalidInput("invalid article id"))
		return uuid.Nil, false
	}
	return id, true
}

func bindArticle(c *gin.Context) (ArticleRequest, bool) {
	var req ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.Serialization("reading request body", err))
		return ArticleRequest{}, false
	}
	return req, true
}

func (h *Handler) create(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		apperr.RespondStatus(c, http.StatusUnauthorized, apperr.PermissionDenied("no session"))
		return
	}

	req, ok := bindArticle(c)
	if !ok {
		return
	}

	article, err := h.admin.Create(c.Request.Context(), req.Title, req.Description, req.Content, user.Login)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	logger.Info("article created", map[string]any{
		"id":     article.ID.String(),
		"author": article.Author,
	})

	c.JSON(http.StatusAccepted, article)
}

func (h *Handler) list(c *gin.Context) {
	page := int64(1)
	if raw := c.Query("page"); raw != "" {
		p, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			apperr.Respond(c, apperr.InvalidInput("page must be a number"))
			return
		}
		page = p
	}

	listing, err := h.admin.List(c.Request.Context(), blog.ParseListOptions(c.Query("status")), page)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

func (h *Handler) get(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	article, err := h.admin.Get(c.Request.Context(), id)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, article)
}

func (h *Handler) update(c *gin.Context) {
	id, ok := articleID(c)
	if !ok {
		return
	}

	req, ok := bindArticle(c)
	if !ok {
		return
	}

	if err := h.admin.Update(c.Request.Context(), id, req.Title, req.Description, req.Content); err != nil {
		apperr.Respond(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// transition wraps the id-only operations: status changes and delete.
func (h *Handler) transition(op func(context.Context, uuid.UUID) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := articleID(c)
		if !ok {
			return
		}

		if err := op(c.Request.Context(), id); err != nil {
			apperr.Respond(c, err)
			return
		}

		c.Status(http.StatusAccepted)
	}
}
