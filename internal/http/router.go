// Package httpapi wires Gin to the handlers and the cross-cutting middleware:
// tracing, correlation IDs, redacting access logs, recovery, metrics, CORS,
// security headers, compression, idempotency and rate limiting.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/sevenlabsxyz/evento-client-sub006/internal/config"
	_ "github.com/sevenlabsxyz/evento-client-sub006/internal/docs"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/http/handlers"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/http/middleware"
	"github.com/sevenlabsxyz/evento-client-sub006/internal/services"
)

const maxBodyBytes = 64 << 10

// Deps are the services behind the API.
type Deps struct {
	Invoices      handlers.InvoiceService
	Notifications handlers.NotificationService
	Pledges       handlers.PledgeService
	// IdempotencyLookup backs Idempotency-Key replay on invoice requests (optional).
	IdempotencyLookup middleware.IdempotencyLookup
}

// RegisterRoutes installs middleware and mounts the API under cfg.APIBasePath.
//
// Order:
//  1. otelgin, RequestID, Identity
//  2. Logger, Recovery
//  3. body limit, Metrics, CORS, security headers, gzip (except SSE)
//  4. per-route: idempotency before the rate limiter so replays bypass it
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Identity())
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{"X-API-Key", middleware.HeaderIdempotencyKey},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(maxBodyBytes))
	r.Use(middleware.Metrics())
	r.Use(corsMiddleware(cfg.CORS))
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`/track$`, `^/metrics$`})))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	h := handlers.New(deps.Invoices, deps.Notifications, deps.Pledges)
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.CallerKey)
	idem := middleware.IdempotencyValidator(services.ScopeInvoice, middleware.IdempotencyOptions{MaxLen: 200}, deps.IdempotencyLookup)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.POST("/lightning/invoice", idem, rl.Handler(), h.RequestInvoice)
		api.GET("/lightning/address/:address", rl.Handler(), h.LookupAddress)

		api.POST("/notifications", rl.Handler(), h.Notify)

		api.POST("/pledges", rl.Handler(), h.CreatePledge)
		api.GET("/pledges/:id/status", rl.Handler(), h.PledgeStatus)
		api.GET("/pledges/:id/track", rl.Handler(), clearWriteDeadline, h.TrackPledge)
	}
}

func corsMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	cc := cors.Config{
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization",
			middleware.HeaderUser, middleware.HeaderIdempotencyKey, "Last-Event-ID"},
		ExposeHeaders:    []string{"X-Request-ID", middleware.HeaderIdempotencyReplayed, "Retry-After"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.AllowedOrigins
	}
	return cors.New(cc)
}

// clearWriteDeadline lifts the server WriteTimeout for long-lived streams.
func clearWriteDeadline(c *gin.Context) {
	_ = http.NewResponseController(c.Writer).SetWriteDeadline(time.Time{})
	c.Next()
}

func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
