package app

import (
	"github.com/gin-gonic/gin"
	"github.com/pagecraft/enhance/internal/middleware"
	"github.com/pagecraft/enhance/internal/modules/article"
	"github.com/pagecraft/enhance/internal/modules/configs"
	"github.com/pagecraft/enhance/internal/modules/enhance"
	pkgredis "github.com/pagecraft/enhance/internal/pkg/redis"
	"github.com/pagecraft/enhance/internal/pkg/response"
	"github.com/pagecraft/enhance/internal/pkg/secret"
)

func (a *App) registerRoutes(rc *pkgredis.Client, box *secret.Box) {
	r := a.router
	db := a.db
	authMW := middleware.Auth()

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	r.GET("/", func(c *gin.Context) {
		response.OK(c, gin.H{
			"name":    "pagecraft-enhance",
			"version": "1.0.0",
		})
	})

	// Shared services
	cfgSvc := configs.NewService(db, box)
	enhanceSvc := enhance.NewService(db, cfgSvc, rc, a.logger)
	articleSvc := article.NewService(db, enhanceSvc, a.logger)

	api := r.Group("/api/v1")
	api.Use(middleware.OptionalAuth())
	// Per-second IP throttle for unauthenticated clients. Runs after
	// OptionalAuth so a valid token exempts the request.
	api.Use(middleware.RateLimit(rc))

	api.GET("/health", func(c *gin.Context) {
		response.OK(c, gin.H{"status": "ok"})
	})

	configs.NewHandler(cfgSvc).RegisterRoutes(api, authMW)
	article.NewHandler(articleSvc).RegisterRoutes(api, authMW)
	enhance.NewHandler(enhanceSvc).RegisterRoutes(api, authMW)
}
