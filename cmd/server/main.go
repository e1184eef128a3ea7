package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"
	"storefront-catalog-api/internal/models"
	"storefront-catalog-api/internal/services"
	"storefront-catalog-api/pkg/metrics"
)

var (
	rateLimiters = make(map[string]*rate.Limiter)
	rateMutex    = &sync.RWMutex{}
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}

	registry := metrics.NewRegistry()
	catalogService := services.NewCatalogService(registry)
	redisCache := catalogService.Cache()

	r := gin.Default()

	// Add CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Add request ID middleware
	r.Use(func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)
		start := time.Now()
		c.Next()
		log.Printf("[%s] %s %s - %v - %d",
			requestID, c.Request.Method, c.Request.URL.Path,
			time.Since(start), c.Writer.Status())
	})

	r.Use(rateLimitMiddleware())

	// Health check with cache status
	r.GET("/health", func(c *gin.Context) {
		health := gin.H{
			"status":  "healthy",
			"service": "storefront-catalog-api",
			"version": "1.0.0",
		}

		if redisCache != nil && redisCache.IsAvailable() {
			health["cache"] = "redis connected"
		} else {
			health["cache"] = "redis unavailable"
		}

		c.JSON(http.StatusOK, health)
	})

	r.GET("/metrics", gin.WrapH(registry.Handler()))

	// Rate limit status endpoint
	r.GET("/rate-limit/status", func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := getRateLimiter(ip)

		c.JSON(http.StatusOK, gin.H{
			"ip":               ip,
			"limit_per_second": limiter.Limit(),
			"burst_capacity":   limiter.Burst(),
			"tokens_available": limiter.Tokens(),
		})
	})

	// Cache stats endpoint
	r.GET("/cache/stats", func(c *gin.Context) {
		if redisCache == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "cache not available",
			})
			return
		}

		c.JSON(http.StatusOK, redisCache.GetStats())
	})

	// Cache debug endpoint
	r.GET("/cache/debug", func(c *gin.Context) {
		if redisCache == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "cache not available",
			})
			return
		}

		keys := redisCache.GetAllKeys()

		keyDetails := make([]gin.H, 0, len(keys))
		for _, key := range keys {
			ttl := redisCache.GetKeyTTL(key)
			keyDetails = append(keyDetails, gin.H{
				"key":         key,
				"ttl_seconds": int(ttl.Seconds()),
				"expires_in":  ttl.String(),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"total_keys":  len(keys),
			"cache_keys":  keyDetails,
			"cache_stats": redisCache.GetStats(),
			"debug_info": gin.H{
				"redis_available": redisCache.IsAvailable(),
				"timestamp":       time.Now().Format(time.RFC3339),
			},
		})
	})

	// Cache flush endpoint (for testing)
	r.DELETE("/cache/flush", func(c *gin.Context) {
		if redisCache == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "cache not available",
			})
			return
		}

		if err := redisCache.FlushCache(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "failed to flush cache",
				"details": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message":   "cache flushed successfully",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Pure transform boundary: raw payload in, canonical entries out
	r.POST("/catalog/build", func(c *gin.Context) {
		var records []models.RawRecord
		if err := c.ShouldBindJSON(&records); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_payload",
				Code:    http.StatusBadRequest,
				Message: "body must be a JSON array of raw product records",
				Details: err.Error(),
			})
			return
		}

		result := catalogService.BuildCatalog(records)
		c.JSON(http.StatusOK, gin.H{
			"entries": result.Entries,
			"total":   len(result.Entries),
			"skipped": result.Skipped,
		})
	})

	// Listing endpoint with visibility filtering and caching
	r.GET("/catalog", func(c *gin.Context) {
		params := parseListParams(c)

		results, err := catalogService.ListCatalog(params)
		if err != nil {
			log.Printf("Catalog error: %v", err)
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "catalog_failed",
				Code:    http.StatusBadGateway,
				Message: err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, results)
	})

	// Single canonical entry
	r.GET("/catalog/:id", func(c *gin.Context) {
		entry, err := catalogService.GetEntry(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "catalog_failed",
				Code:    http.StatusBadGateway,
				Message: err.Error(),
			})
			return
		}
		if entry == nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "no catalog entry with that id",
			})
			return
		}
		c.JSON(http.StatusOK, entry)
	})

	// Variant selection: color/size hints resolve to one purchasable variant
	r.GET("/catalog/:id/select", func(c *gin.Context) {
		entry, variant, err := catalogService.SelectVariant(
			c.Param("id"), c.Query("color"), c.Query("size"))
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "catalog_failed",
				Code:    http.StatusBadGateway,
				Message: err.Error(),
			})
			return
		}
		if entry == nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "no catalog entry with that id",
			})
			return
		}
		// A nil variant means the selection is currently invalid, not
		// that the entry has no variants; the caller decides the UX.
		c.JSON(http.StatusOK, gin.H{
			"baseId":  entry.BaseID,
			"variant": variant,
		})
	})

	// Selectable colors and sizes
	r.GET("/catalog/:id/options", func(c *gin.Context) {
		options, err := catalogService.VariantOptions(c.Param("id"), c.Query("color"))
		if err != nil {
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "catalog_failed",
				Code:    http.StatusBadGateway,
				Message: err.Error(),
			})
			return
		}
		if options == nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Code:    http.StatusNotFound,
				Message: "no catalog entry with that id",
			})
			return
		}
		c.JSON(http.StatusOK, options)
	})

	// API info endpoint
	r.GET("/api/info", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Storefront Catalog API",
			"version":     "1.0.0",
			"description": "Canonical product catalog over a raw storefront backend payload",
			"features":    []string{"Variant grouping", "Visibility filtering", "Variant selection", "Redis caching", "Kafka ingestion"},
			"endpoints": map[string]string{
				"POST /catalog/build":      "Group a raw product payload into canonical entries",
				"GET /catalog":             "List visible catalog entries with pagination",
				"GET /catalog/:id":         "Fetch one canonical entry",
				"GET /catalog/:id/select":  "Resolve a color/size selection to a variant",
				"GET /catalog/:id/options": "List selectable colors and sizes",
				"GET /health":              "Health check",
				"GET /metrics":             "Prometheus metrics",
				"GET /cache/stats":         "Cache statistics",
			},
		})
	})

	log.Printf("Starting catalog server on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func parseListParams(c *gin.Context) models.ListParams {
	params := models.ListParams{
		Collection: c.Query("collection"),
		Page:       1,
		Limit:      10,
	}

	if p := c.Query("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			params.Page = pageNum
		}
	}
	if l := c.Query("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			params.Limit = limitNum
		}
	}

	return params
}

func getRateLimiter(ip string) *rate.Limiter {
	rateMutex.RLock()
	limiter, exists := rateLimiters[ip]
	rateMutex.RUnlock()

	if !exists {
		rateMutex.Lock()
		limiter = rate.NewLimiter(rate.Limit(10), 20) // 10 req/sec, burst 20
		rateLimiters[ip] = limiter
		rateMutex.Unlock()
	}

	return limiter
}

func rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		limiter := getRateLimiter(ip)

		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests from your IP",
				"retry_after": "1 second",
				"ip":          ip,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
