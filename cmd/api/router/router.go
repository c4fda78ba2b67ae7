package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/bson"

	"clauseguard/cmd/api/auth"
	"clauseguard/cmd/api/handlers"
	"clauseguard/cmd/api/middleware"
	"clauseguard/db"
	_ "clauseguard/docs"
	"clauseguard/services"
)

func New(analysisSvc *services.AnalysisService, documentSvc *services.DocumentService, aiLogs handlers.AILogLister, jwtMgr *auth.JWTManager) *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestLoggingMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		api.POST("/analyses", handlers.SubmitAnalysisHandler(analysisSvc, jwtMgr))
		api.GET("/analyses", handlers.ListAnalysesHandler(analysisSvc, jwtMgr))
		api.GET("/analyses/:id", handlers.GetAnalysisHandler(analysisSvc, jwtMgr))

		api.GET("/result", handlers.GetResultHandler(analysisSvc, jwtMgr))
		api.DELETE("/result", handlers.ClearResultHandler(analysisSvc, jwtMgr))

		api.POST("/documents/extract", handlers.ExtractDocumentHandler(documentSvc, jwtMgr))

		api.GET("/ai-logs", handlers.ListAILogsHandler(aiLogs, jwtMgr))
	}

	return r
}
