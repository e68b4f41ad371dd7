package httpapi

import (
	"errors"
	"net/http"

	postEntity "contentstaging/internal/core/post"
	postapp "contentstaging/internal/core/post/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps use case errors to status codes. Unexpected errors are
// logged and hidden from the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, postEntity.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, postapp.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	default:
		logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
