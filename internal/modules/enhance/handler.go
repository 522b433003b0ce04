package enhance

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
	g := rg.Group("/enhance")

	g.GET("/faq/:id", h.getFAQ)
	g.GET("/summary/:id", h.getSummary)
	g.GET("/links/:id", h.getLinks)

	a := g.Group("", authMW)
	a.DELETE("/cache/:id", h.invalidate)
	a.POST("/validate-key", h.validateKey)
	a.GET("/results/:feature", h.listResults)
	a.DELETE("/results/:feature/:id", h.deleteResult)
}

func (h *Handler) getFAQ(c *gin.Context) {
	result, err := h.svc.GetFAQ(c.Request.Context(), middleware.RequesterID(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) getSummary(c *gin.Context) {
	result, err := h.svc.GetSummary(c.Request.Context(), middleware.RequesterID(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) getLinks(c *gin.Context) {
	result, err := h.svc.GetInternalLinks(c.Request.Context(), middleware.RequesterID(c), c.Param("id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *Handler) invalidate(c *gin.Context) {
	h.svc.InvalidateCache(c.Request.Context(), c.Param("id"))
	response.NoContent(c)
}

type validateKeyRequest struct {
	ProviderID string `json:"provider_id" binding:"required"`
}

func (h *Handler) validateKey(c *gin.Context) {
	var req validateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.svc.ValidateAPIKey(c.Request.Context(), req.ProviderID); err != nil {
		h.renderError(c, err)
		return
	}
	response.OK(c, gin.H{"valid": true})
}

func (h *Handler) listResults(c *gin.Context) {
	rows, page, err := h.svc.ListResults(c.Request.Context(), c.Param("feature"), pagination.FromContext(c))
	if err != nil {
		if e, ok := AsError(err); ok && e.Kind == KindBadRequest {
			response.BadRequest(c, e.Message)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.Paged(c, rows, page)
}

func (h *Handler) deleteResult(c *gin.Context) {
	err := h.svc.DeleteResult(c.Request.Context(), c.Param("feature"), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrContentNotFound) {
			response.NotFound(c)
			return
		}
		if e, ok := AsError(err); ok && e.Kind == KindBadRequest {
			response.BadRequest(c, e.Message)
			return
		}
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// renderError maps classified enhancement errors onto distinct HTTP
// responses.
func (h *Handler) renderError(c *gin.Context, err error) {
	if errors.Is(err, ErrContentNotFound) {
		response.NotFound(c)
		return
	}
	if errors.Is(err, ErrFeatureDisabled) {
		response.NotFoundMsg(c, "feature is disabled")
		return
	}

	e, ok := AsError(err)
	if !ok {
		response.InternalError(c, err)
		return
	}

	switch e.Kind {
	case KindNoProviderConfigured, KindMissingCredentials:
		response.ServiceUnavailable(c, e.Message)
	case KindRateLimited:
		response.TooManyRequests(c, e.Message, e.RetryAfter)
	case KindQuotaExceeded:
		response.TooManyRequests(c, e.Message, 0)
	case KindInvalidCredentials, KindBadRequest, KindTransientNetwork, KindMalformedResponse:
		response.BadGateway(c, e.Message)
	default:
		response.InternalError(c, e)
	}
}
