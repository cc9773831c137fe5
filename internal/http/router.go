// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/fleetops/go-fleet-backend/docs" // swagger spec registration
	"github.com/fleetops/go-fleet-backend/internal/config"
	"github.com/fleetops/go-fleet-backend/internal/domain"
	"github.com/fleetops/go-fleet-backend/internal/http/handlers"
	"github.com/fleetops/go-fleet-backend/internal/http/middleware"
	"github.com/fleetops/go-fleet-backend/internal/repo"
	"github.com/fleetops/go-fleet-backend/internal/services"
)

// allocationRepoShim adapts the repository free functions to the
// services.AllocationRepo interface expected by the AllocationService. This
// keeps services decoupled from the concrete repo package while reusing
// existing functions.
type allocationRepoShim struct{}

// InsertAllocation proxies repo.InsertAllocation.
func (allocationRepoShim) InsertAllocation(ctx context.Context, db *mongo.Database, a *domain.Allocation) (primitive.ObjectID, error) {
	return repo.InsertAllocation(ctx, db, a)
}

// FindAllocationByID proxies repo.FindAllocationByID.
func (allocationRepoShim) FindAllocationByID(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (*domain.Allocation, error) {
	return repo.FindAllocationByID(ctx, db, id)
}

// FindAllocationByVehicleAndDate proxies repo.FindAllocationByVehicleAndDate.
func (allocationRepoShim) FindAllocationByVehicleAndDate(ctx context.Context, db *mongo.Database, vehicleID int, date time.Time) (*domain.Allocation, error) {
	return repo.FindAllocationByVehicleAndDate(ctx, db, vehicleID, date)
}

// ListAllocations proxies repo.ListAllocations.
func (allocationRepoShim) ListAllocations(ctx context.Context, db *mongo.Database, f domain.HistoryFilter, limit int64) ([]domain.Allocation, error) {
	return repo.ListAllocations(ctx, db, f, limit)
}

// ReplaceAllocation proxies repo.ReplaceAllocation.
func (allocationRepoShim) ReplaceAllocation(ctx context.Context, db *mongo.Database, id primitive.ObjectID, a *domain.Allocation) (int64, error) {
	return repo.ReplaceAllocation(ctx, db, id, a)
}

// DeleteAllocation proxies repo.DeleteAllocation.
func (allocationRepoShim) DeleteAllocation(ctx context.Context, db *mongo.Database, id primitive.ObjectID) (int64, error) {
	return repo.DeleteAllocation(ctx, db, id)
}

// idempotencyStore adapts the idempotency repo functions to the
// handlers.IdempotencyStore interface, binding the database handle and the
// configured record TTL.
type idempotencyStore struct {
	db  *mongo.Database
	ttl time.Duration
}

// Get proxies repo.GetIdempotency.
func (s idempotencyStore) Get(ctx context.Context, key string, now time.Time) (*domain.IdempotencyRecord, error) {
	return repo.GetIdempotency(ctx, s.db, key, now)
}

// Record proxies repo.CreateIdempotency. A duplicate key means a concurrent
// retry already recorded the outcome; that is not an error for the caller.
func (s idempotencyStore) Record(ctx context.Context, key, allocationID string, status int) error {
	_, err := repo.CreateIdempotency(ctx, s.db, key, allocationID, status, s.ttl)
	if err == repo.ErrDuplicateKey {
		return nil
	}
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Idempotency validator (before rate limiter to allow bypass on replay)
//  8. Rate limiter (per user/IP, bypass on replay)
//  9. Compression, CORS and security headers
func RegisterRoutes(r *gin.Engine, db *mongo.Database, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 8) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 9) Response compression for JSON payloads (history can be large)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness and readiness. Readiness pings the store with a short deadline
	// so orchestrators stop routing traffic when Mongo is unreachable.
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Client().Ping(ctx, nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	allocSvc := services.NewAllocationService(db, allocationRepoShim{})
	allocSvc.HistoryLimit = cfg.HistoryMaxResults

	h := handlers.New(allocSvc, idempotencyStore{db: db, ttl: cfg.IdempotencyTTL})

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		api.POST("/allocations", h.CreateAllocation)
		api.PUT("/allocations/:id", h.UpdateAllocation)
		api.DELETE("/allocations/:id", h.DeleteAllocation)
		api.GET("/allocations/history", h.AllocationHistory)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
