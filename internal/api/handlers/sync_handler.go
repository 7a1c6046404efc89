package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepflow/inventory-intel/internal/ledger"
	"github.com/prepflow/inventory-intel/internal/service"
)

type SyncHandler struct {
	service *service.SyncService
}

func NewSyncHandler(service *service.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// RunCycle triggers one synchronization pass across all channels.
func (h *SyncHandler) RunCycle(c *gin.Context) {
	result, err := h.service.RunOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListResolutions returns the audit trail of recent conflict resolutions.
func (h *SyncHandler) ListResolutions(c *gin.Context) {
	resolutions := h.service.Resolutions()
	c.JSON(http.StatusOK, gin.H{"resolutions": resolutions, "count": len(resolutions)})
}

// CheckIntegrity compares ledger stock against every channel for one item.
func (h *SyncHandler) CheckIntegrity(c *gin.Context) {
	itemID := c.Param("item_id")

	discrepancies, err := h.service.CheckIntegrity(c.Request.Context(), itemID)
	if err != nil {
		if errors.Is(err, ledger.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item_id":       itemID,
		"discrepancies": discrepancies,
		"consistent":    len(discrepancies) == 0,
	})
}
