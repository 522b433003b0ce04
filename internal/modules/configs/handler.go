package configs

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/pagecraft/enhance/internal/config"
	"github.com/pagecraft/enhance/internal/pkg/response"
)

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/configs")

	g.GET("", h.getPublic)

	a := g.Group("", authMW)
	a.GET("/all", h.getAll)
	a.PATCH("", h.patch)
}

// getPublic returns the public-safe subset of the config.
func (h *Handler) getPublic(c *gin.Context) {
	cfg, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{
		"seo": cfg.SEO,
		"url": cfg.URL,
		"ai": gin.H{
			"enable_faq":     cfg.AI.EnableFAQ,
			"enable_summary": cfg.AI.EnableSummary,
			"enable_links":   cfg.AI.EnableLinks,
		},
	})
}

// getAll returns the full config (admin only) with API keys masked.
func (h *Handler) getAll(c *gin.Context) {
	cfg, err := h.svc.Get()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, redactConfig(*cfg))
}

// patch merges a partial config update.
func (h *Handler) patch(c *gin.Context) {
	var partial map[string]json.RawMessage
	if err := c.ShouldBindJSON(&partial); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	updated, err := h.svc.Patch(partial)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, redactConfig(*updated))
}

// redactConfig replaces stored provider API keys with a placeholder so
// key material never leaves the server.
func redactConfig(cfg config.FullConfig) config.FullConfig {
	providers := make([]config.AIProvider, len(cfg.AI.Providers))
	copy(providers, cfg.AI.Providers)
	for i := range providers {
		if providers[i].APIKey != "" {
			providers[i].APIKey = "********"
		}
	}
	cfg.AI.Providers = providers
	return cfg
}
