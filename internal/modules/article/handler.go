package article

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/pagecraft/enhance/internal/middleware"
	"github.com/pagecraft/enhance/internal/pkg/pagination"
	"github.com/pagecraft/enhance/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/articles")

	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.GET("/slug/:slug", h.getBySlug)

	a := g.Group("", authMW)
	a.POST("", h.create)
	a.PATCH("/:id", h.update)
	a.DELETE("/:id", h.remove)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)

	// Unauthenticated readers only see published content.
	publishedOnly := !middleware.IsAuthenticated(c)
	if c.Query("published") == "true" {
		publishedOnly = true
	}

	articles, page, err := h.svc.List(q, publishedOnly)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, articles, page)
}

func (h *Handler) get(c *gin.Context) {
	article, err := h.svc.Get(c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) getBySlug(c *gin.Context) {
	article, err := h.svc.GetBySlug(c.Param("slug"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) create(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	article, err := h.svc.Create(input)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.Created(c, article)
}

func (h *Handler) update(c *gin.Context) {
	var input UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	article, err := h.svc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, article)
}

func (h *Handler) remove(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}
	response.NoContent(c)
}

func (h *Handler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(c)
	case errors.Is(err, ErrSlugTaken), errors.Is(err, ErrTitleRequired):
		response.UnprocessableEntity(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
