package handlers

import (
	"errors"
	"net/http"

	"game_collection/models"
	"game_collection/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ListGames(records *store.RecordStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		games, err := records.List()
		if err != nil {
			respondError(c, logger, "list games", err)
			return
		}
		c.PureJSON(http.StatusOK, games)
	}
}

func CreateGame(records *store.RecordStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.GameInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.PureJSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		game, err := records.Create(input)
		if err != nil {
			respondError(c, logger, "create game", err)
			return
		}
		logger.Info("game created", zap.String("id", game.ID), zap.String("name", game.Name))
		c.PureJSON(http.StatusOK, game)
	}
}

func UpdateGame(records *store.RecordStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		var input models.GameInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.PureJSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
			return
		}

		game, err := records.Update(id, input)
		if err != nil {
			respondError(c, logger, "update game", err)
			return
		}
		logger.Info("game updated", zap.String("id", game.ID), zap.String("name", game.Name))
		c.PureJSON(http.StatusOK, game)
	}
}

func DeleteGame(records *store.RecordStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := records.Delete(id); err != nil {
			respondError(c, logger, "delete game", err)
			return
		}
		logger.Info("game deleted", zap.String("id", id))
		c.PureJSON(http.StatusOK, gin.H{"success": true})
	}
}

func GetImage(images *store.ImageStore, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, contentType, err := images.Read(c.Param("filename"))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.PureJSON(http.StatusNotFound, gin.H{"error": "Image not found"})
				return
			}
			respondError(c, logger, "read image", err)
			return
		}
		c.Data(http.StatusOK, contentType, data)
	}
}

// respondError maps store errors to status codes. Unexpected errors are logged
// and answered with a generic message.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.PureJSON(http.StatusNotFound, gin.H{"error": "Game not found"})
	case errors.Is(err, store.ErrInvalidImageData):
		logger.Warn(op+" failed", zap.Error(err))
		c.PureJSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
	default:
		logger.Error(op+" failed", zap.Error(err))
		c.PureJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
