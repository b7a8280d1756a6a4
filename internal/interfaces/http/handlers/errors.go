// internal/interfaces/http/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/stockledger-backend/internal/domain/inventory"
	"github.com/your-org/stockledger-backend/internal/domain/product"
	"github.com/your-org/stockledger-backend/internal/domain/sale"
)

// respondDomainError translates core errors into HTTP responses:
// missing/not-owned resources map to 404, stock and policy violations to
// 400, everything else to 500.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, inventory.ErrRecordNotFound),
		errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, sale.ErrSaleNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": err.Error(),
		})
	case inventory.IsInsufficientStock(err),
		sale.IsNotCancellable(err),
		errors.Is(err, inventory.ErrZeroQuantityChange),
		errors.Is(err, inventory.ErrInvalidAdjustmentType),
		errors.Is(err, sale.ErrProductInactive):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
