package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "receiptly/docs" // swagger spec registration
	"receiptly/internal/handler"
	"receiptly/internal/middleware"
	"receiptly/internal/service"
)

// Options carries everything Setup wires into the engine.
type Options struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	AuthService    service.AuthService
	Health         *handler.HealthHandler
	Receipts       *handler.ReceiptHandler
	Workflow       *handler.WorkflowHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(opts.AllowedOrigins))

	// Health checks
	r.GET("/healthz", opts.Health.Liveness)
	r.GET("/readyz", opts.Health.Readiness)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Workflow host, authenticated by the signing key rather than a user token
	wf := r.Group("/api/workflow")
	wf.GET("", opts.Workflow.Introspect)
	wf.POST("", opts.Workflow.Deliver)
	wf.PUT("", opts.Workflow.Sync)

	// Protected routes - require a valid identity token
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(opts.AuthService))

	receipts := v1.Group("/receipts")
	receipts.POST("/upload-url", opts.Receipts.UploadURL)
	receipts.POST("", opts.Receipts.Create)
	receipts.POST("/upload", opts.Receipts.Upload)
	receipts.GET("", opts.Receipts.List)
	receipts.GET("/stream", opts.Receipts.Stream)
	receipts.GET("/export", opts.Receipts.Export)
	receipts.GET("/:id", opts.Receipts.GetByID)
	receipts.PATCH("/:id/status", opts.Receipts.UpdateStatus)
	receipts.DELETE("/:id", opts.Receipts.Delete)

	files := v1.Group("/files")
	files.GET("/:id/download-url", opts.Receipts.DownloadURL)

	return r
}
