package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"justicia-backend/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries the services the API is built from
type RouterConfig struct {
	Cases          *service.CaseService
	Decisions      *service.DecisionService
	Evidence       *service.EvidenceService
	References     *service.ReferenceService
	Logger         *slog.Logger
	AllowedOrigins []string // Empty allows every origin.
}

// NewRouter wires every route onto a gin engine
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger), corsMiddleware(cfg.AllowedOrigins))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	caseHandler := NewCaseHandler(cfg.Cases)
	decisionHandler := NewDecisionHandler(cfg.Decisions)
	fileHandler := NewFileHandler(cfg.Evidence)
	referenceHandler := NewReferenceHandler(cfg.References)

	api := r.Group("/api")
	{
		// Case endpoints
		api.POST("/cases", caseHandler.CreateCase)
		api.GET("/cases", caseHandler.ListCases)
		api.GET("/cases/:id", caseHandler.GetCase)
		api.PUT("/cases/:id", caseHandler.UpdateCase)
		api.GET("/statistics", caseHandler.GetStatistics)

		// Decision endpoints
		api.POST("/cases/:id/decide", decisionHandler.DecideCase)
		api.GET("/cases/:id/decisions", decisionHandler.ListDecisions)
		api.POST("/decisions/:id/approve", decisionHandler.ApproveDecision)
		api.GET("/decisions/:id/document", decisionHandler.GetDecisionDocument)

		// Evidence endpoints
		api.POST("/cases/:id/evidence", fileHandler.UploadEvidence)
		api.GET("/cases/:id/evidence", fileHandler.ListEvidence)
		api.GET("/files/:id", fileHandler.GetFile)
		api.GET("/files/:id/download", fileHandler.DownloadFile)

		// Reference data
		api.GET("/articles", referenceHandler.ListArticles)
		api.GET("/precedents", referenceHandler.ListPrecedents)
		api.GET("/criteria", referenceHandler.ListCriteria)
		api.GET("/rules", referenceHandler.GetRules)
	}

	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
