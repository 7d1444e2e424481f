package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/X1NY1NG/VRGame/backend/internal/extraction"
	"github.com/X1NY1NG/VRGame/backend/internal/heuristics"
	"github.com/X1NY1NG/VRGame/backend/internal/kg"
	"github.com/X1NY1NG/VRGame/backend/internal/turn"
	"github.com/X1NY1NG/VRGame/backend/pkg/config"
	apperrors "github.com/X1NY1NG/VRGame/backend/pkg/errors"
	"github.com/X1NY1NG/VRGame/backend/pkg/logger"
)

func main() {
	// Initialize logger
	if err := logger.Init(os.Getenv("ENV")); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting companion memory server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Firestore client
	ctx := context.Background()
	client, err := firestore.NewClient(ctx, cfg.FirestoreProjectID)
	if err != nil {
		log.Fatal("Failed to create Firestore client", zap.Error(err))
	}
	defer client.Close()

	// Initialize dependencies
	store := kg.NewFirestoreStore(client)
	extractor := extraction.NewExtractor(cfg.OpenAIAPIKey, cfg.ModelID, cfg.ExtractionRetries)
	classifier := heuristics.NewRegexClassifier()
	orchestrator := turn.NewOrchestrator(store, extractor, classifier, cfg.CorefTimeout)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(orchestrator, store, log)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// newRouter wires the HTTP surface: health check, turn processing and the
// graph export endpoint
func newRouter(orchestrator *turn.Orchestrator, store kg.Store, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestID())
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, accept, origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := router.Group("/api")
	{
		// Process one conversational turn
		api.POST("/turn", func(c *gin.Context) {
			var req struct {
				UserID  string   `json:"userId" binding:"required"`
				Text    string   `json:"text" binding:"required"`
				History []string `json:"history"`
			}

			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "userId and text required"})
				return
			}

			result, err := orchestrator.RunTurn(c.Request.Context(), req.UserID, req.Text, req.History)
			if err != nil {
				var missing *apperrors.ErrMissingField
				if errors.As(err, &missing) {
					c.JSON(http.StatusBadRequest, gin.H{"error": missing.Error()})
					return
				}
				log.Error("Failed to process turn", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process turn"})
				return
			}

			c.JSON(http.StatusOK, result)
		})

		// Export a user's full graph, no traversal
		api.GET("/graph/:userId", func(c *gin.Context) {
			userID := c.Param("userId")
			c.Header("Cache-Control", "no-store, no-cache, max-age=0, must-revalidate")

			dump, err := store.DumpGraph(c.Request.Context(), userID)
			if err != nil {
				log.Error("Failed to dump graph", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export graph"})
				return
			}

			c.JSON(http.StatusOK, dump)
		})
	}

	return router
}

// requestID tags every request with an id for log correlation
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}
