package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BatchController struct {
	bc     BatchUseCase
	logger *zap.Logger
}

func NewBatchController(bc BatchUseCase, logger *zap.Logger) *BatchController {
	return &BatchController{bc: bc, logger: logger}
}

func (ctl *BatchController) SelectPosts(c *gin.Context) {
	var req struct {
		IDs []uint64 `json:"ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
		return
	}
	if err := ctl.bc.SelectPosts(c.Request.Context(), c.Param("batch"), req.IDs); err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (ctl *BatchController) SelectedPosts(c *gin.Context) {
	ids, err := ctl.bc.SelectedPosts(c.Request.Context(), c.Param("batch"))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ids": ids})
}

func (ctl *BatchController) ClearSelection(c *gin.Context) {
	if err := ctl.bc.ClearSelection(c.Request.Context(), c.Param("batch")); err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
