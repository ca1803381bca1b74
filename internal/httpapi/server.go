// Package httpapi exposes the trip services as a JSON API.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/alexanderramin/itinera/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	dateLayout      = "2006-01-02"
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Services are the use cases the API serves.
type Services struct {
	Trips    service.TripService
	Optimize service.OptimizeService
	Replan   service.ReplanService
	Segments service.SegmentService
}

type Options struct {
	Logger *slog.Logger
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	// AllowedOrigins enables CORS for browser clients; empty disables it.
	AllowedOrigins []string
}

type Server struct {
	svc    Services
	logger *slog.Logger
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(svc Services, opts Options) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	s := &Server{svc: svc, logger: opts.Logger}

	r := gin.New()
	r.Use(requestIDMiddleware(), s.logMiddleware(), gin.Recovery())
	if len(opts.AllowedOrigins) > 0 {
		cfg := cors.DefaultConfig()
		cfg.AllowOrigins = opts.AllowedOrigins
		cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
		cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", requestIDHeader}
		cfg.ExposeHeaders = []string{requestIDHeader}
		r.Use(cors.New(cfg))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": errorBody{Code: "NOT_FOUND", Message: "no route for " + c.Request.Method + " " + c.Request.URL.Path}})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	trips := api.Group("/trips")
	{
		trips.POST("", s.createTrip)
		trips.GET("", s.listTrips)
		trips.GET("/:id", s.getTrip)
		trips.DELETE("/:id", s.deleteTrip)
		trips.PUT("/:id/preferences", s.adjustPreference)
		trips.POST("/:id/optimize", s.optimize)
		trips.POST("/:id/preview", s.preview)
		trips.POST("/:id/replan", s.replan)
		trips.POST("/:id/suggestions", s.suggestActivities)
		trips.GET("/:id/segments", s.listSegments)
		trips.POST("/:id/events", s.recordEvent)
		trips.GET("/:id/events", s.listEvents)
	}

	segments := api.Group("/segments")
	{
		segments.GET("/:id", s.getSegment)
		segments.PUT("/:id/lock", s.setLock)
		segments.GET("/:id/alternatives", s.listAlternatives)
		segments.POST("/:id/replace", s.replace)
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func (s *Server) logMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.InfoContext(c.Request.Context(), "http_request",
			"request_id", requestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
