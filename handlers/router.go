package handlers

import (
	"net/http"
	"time"

	"game_collection/logging"
	"game_collection/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	allowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	allowHeaders = []string{"Content-Type"}
)

func NewRouter(records *store.RecordStore, images *store.ImageStore, staticDir string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(logging.RequestLogger(logger))
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic while handling request", zap.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}))

	// Responses carry the wildcard origin whether or not the client sent an
	// Origin header; cors only acts when one is present.
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Next()
	})
	r.Use(cors.New(cors.Config{
		AllowOrigins:              []string{"*"},
		AllowMethods:              allowMethods,
		AllowHeaders:              allowHeaders,
		ExposeHeaders:             []string{"Content-Length"},
		MaxAge:                    12 * time.Hour,
		OptionsResponseStatusCode: http.StatusOK,
	}))

	api := r.Group("/api")
	{
		api.GET("/games", ListGames(records, logger))
		api.POST("/games", CreateGame(records, logger))
		api.PUT("/games/:id", UpdateGame(records, logger))
		api.DELETE("/games/:id", DeleteGame(records, logger))
		api.GET("/image/:filename", GetImage(images, logger))
	}

	r.OPTIONS("/*path", Preflight)
	r.NoRoute(Static(staticDir, logger))
	return r
}

// Preflight answers any OPTIONS request with permissive CORS headers.
func Preflight(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	c.Status(http.StatusOK)
}
