// internal/interfaces/http/handlers/report.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/report"
	"github.com/your-org/stockledger-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// ReportHandler handles reporting endpoints
type ReportHandler struct {
	reportService *report.Service
	config        *config.Config
}

// NewReportHandler creates a new report handler
func NewReportHandler(db *gorm.DB, cfg *config.Config) *ReportHandler {
	return &ReportHandler{
		reportService: report.NewService(db, cfg),
		config:        cfg,
	}
}

// GetDashboard handles GET /reports/dashboard
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	stats, err := h.reportService.GetDashboardStats(userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard statistics retrieved successfully",
		"data":    stats,
	})
}

// GetDailySales handles GET /reports/daily-sales
func (h *ReportHandler) GetDailySales(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))

	result, err := h.reportService.GetDailySales(userID, days)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Daily sales retrieved successfully",
		"data":    result,
	})
}

// GetTopProducts handles GET /reports/top-products
func (h *ReportHandler) GetTopProducts(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": "User not authenticated",
		})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.reportService.GetTopProducts(userID, limit)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Top products retrieved successfully",
		"data":    result,
	})
}
