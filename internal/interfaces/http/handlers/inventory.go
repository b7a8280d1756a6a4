// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/inventory"
	"github.com/your-org/stockledger-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// InventoryHandler handles inventory endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	engine           *inventory.Engine
	config           *config.Config
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(db *gorm.DB, cfg *config.Config) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventory.NewService(db, cfg),
		engine:           inventory.NewEngine(db, cfg),
		config:           cfg,
	}
}

// GetRecord handles GET /inventory/:product_id
func (h *InventoryHandler) GetRecord(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	record, err := h.inventoryService.GetRecord(uint(productID), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Inventory record retrieved successfully",
		"data":    record,
	})
}

// AdjustStock handles POST /inventory/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	var req inventory.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	// Sale-linked entries are written by the sale orchestrator, not directly.
	if req.AdjustmentType == inventory.AdjustmentTypeSale || req.SaleID != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Sale adjustments are recorded through the sales endpoint",
		})
		return
	}

	adjustment, err := h.engine.ApplyAdjustment(&req, userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Stock adjusted successfully",
		"data":    adjustment,
	})
}

// UpdateThresholds handles PUT /inventory/:product_id/thresholds
func (h *InventoryHandler) UpdateThresholds(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	var req struct {
		MinimumStock int  `json:"minimum_stock" binding:"min=0"`
		MaximumStock *int `json:"maximum_stock,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request data",
			"details": err.Error(),
		})
		return
	}

	record, err := h.inventoryService.UpdateThresholds(uint(productID), userID, req.MinimumStock, req.MaximumStock)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Stock thresholds updated successfully",
		"data":    record,
	})
}

// GetLowStock handles GET /inventory/low-stock
func (h *InventoryHandler) GetLowStock(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	records, err := h.inventoryService.LowStock(userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Low stock records retrieved successfully",
		"data":    records,
		"count":   len(records),
	})
}

// GetOutOfStock handles GET /inventory/out-of-stock
func (h *InventoryHandler) GetOutOfStock(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	records, err := h.inventoryService.OutOfStock(userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Out of stock records retrieved successfully",
		"data":    records,
		"count":   len(records),
	})
}

// GetAdjustmentHistory handles GET /inventory/:product_id/history
func (h *InventoryHandler) GetAdjustmentHistory(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid product ID",
		})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	adjustments, err := h.inventoryService.AdjustmentHistory(uint(productID), userID, days)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Adjustment history retrieved successfully",
		"data":    adjustments,
		"count":   len(adjustments),
	})
}
