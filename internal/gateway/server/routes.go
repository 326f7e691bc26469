package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeassist/internal/gateway/handler"
	"codeassist/internal/gateway/middleware"
	"codeassist/internal/gateway/repository/usage"
)

type RouterConfig struct {
	ClientURL     string
	FreeTierLimit int
	BodyLimit     int64
	Gatherer      prometheus.Gatherer
	Usage         usage.Store
	// Now is the clock used for quota periods. Defaults to time.Now.
	Now func() time.Time
}

// NewRouter builds the HTTP surface. Everything under /api/code requires a
// caller identity, and the three operations also pass the quota check.
func NewRouter(code *handler.CodeHandler, cfg RouterConfig) http.Handler {
	if cfg.BodyLimit <= 0 {
		cfg.BodyLimit = middleware.DefaultBodyLimit
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.BodyLimit(cfg.BodyLimit))

	r.GET("/api/health", code.Health)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/code", middleware.Identity())
	quota := middleware.Quota(cfg.Usage, cfg.FreeTierLimit, cfg.Now)
	api.POST("/analyze", quota, code.Analyze)
	api.POST("/fix-bug", quota, code.FixBug)
	api.POST("/generate-docs", quota, code.GenerateDocs)
	api.GET("/history", code.History)
	api.GET("/analysis/:id", code.GetAnalysis)
	api.GET("/docs", code.ListDocs)
	api.GET("/docs/:id", code.GetDoc)

	r.NoRoute(handler.NotFound)

	return middleware.CORS(cfg.ClientURL)(r)
}
