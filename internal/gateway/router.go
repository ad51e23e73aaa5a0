// Package gateway is the public edge. It validates requests, applies the
// per-user rate limit and relays them to the backend API unchanged.
package gateway

import (
	"context"
	"net/http"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	componentGateway = "gateway"
	requestIDHeader  = "X-Request-Id"
	requestIDKey     = "request_id"
)

// Forwarder relays a request to the backend.
type Forwarder interface {
	Forward(ctx context.Context, method, path, rawQuery, userID, requestID string, body []byte) (*BackendResponse, error)
}

type Gateway struct {
	cfg      config.GatewayConfig
	backend  Forwarder
	limiter  domain.RateLimitStore
	validate *validator.Validate
	logger   *zerolog.Logger
}

// New builds the gateway. A nil limiter disables rate limiting.
func New(cfg config.GatewayConfig, backend Forwarder, limiter domain.RateLimitStore, logger *zerolog.Logger) *Gateway {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Gateway{
		cfg:      cfg,
		backend:  backend,
		limiter:  limiter,
		validate: NewValidator(time.Now),
		logger:   logger,
	}
}

func (g *Gateway) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), g.requestID(), g.accessLog(), g.observe())
	_ = r.SetTrustedProxies(nil)

	if len(g.cfg.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  g.cfg.AllowOrigins,
			AllowHeaders:  []string{"Origin", "Content-Type", models.HeaderUserID, requestIDHeader},
			ExposeHeaders: []string{"Content-Length", "Content-Disposition", requestIDHeader},
			AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/", g.rateLimit())

	api.POST("/users", g.createUser)
	api.GET("/users", g.relay)
	api.GET("/users/:id", g.relay)
	api.PATCH("/users/:id", g.updateUser)
	api.DELETE("/users/:id", g.relay)

	api.POST("/items", g.createItem)
	api.GET("/items", g.paged)
	api.GET("/items/search", g.paged)
	api.GET("/items/:id", g.relay)
	api.PATCH("/items/:id", g.updateItem)
	api.POST("/items/:id/comment", g.addComment)

	api.POST("/bookings", g.createBooking)
	api.GET("/bookings", g.listBookings)
	api.GET("/bookings/owner", g.listBookings)
	api.GET("/bookings/owner/export", g.exportBookings)
	api.GET("/bookings/:id", g.relay)
	api.PATCH("/bookings/:id", g.decideBooking)

	api.POST("/requests", g.createRequest)
	api.GET("/requests", g.relay)
	api.GET("/requests/all", g.paged)
	api.GET("/requests/:id", g.relay)

	return r
}

func (g *Gateway) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (g *Gateway) accessLog() gin.HandlerFunc {
	base := g.logger.With().Str("component", componentGateway).Logger()

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		base.Info().
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("user_id", c.GetHeader(models.HeaderUserID)).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("gateway request")
	}
}

func (g *Gateway) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTP(componentGateway, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// rateLimit counts requests per acting user, or per client IP for
// anonymous calls. Store errors let the request through.
func (g *Gateway) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if g.limiter == nil || !g.cfg.RateLimit.Enabled {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if userID := strings.TrimSpace(c.GetHeader(models.HeaderUserID)); userID != "" {
			key = "user:" + userID
		}

		allowed, err := g.limiter.CheckRateLimit(c.Request.Context(), key, g.cfg.RateLimit.Requests, g.cfg.RateLimit.Window)
		if err != nil {
			g.logger.Warn().Err(err).Str("key", key).Msg("rate limit check failed")
			c.Next()
			return
		}
		if !allowed {
			metrics.IncRateLimited(componentGateway)
			abortWithError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
