// internal/domain/inventory/engine.go
package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/stockledger-backend/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Engine is the sole mutator of InventoryRecord quantity. Every mutation
// happens under a row-level lock and is paired with exactly one ledger
// entry in the same transaction.
type Engine struct {
	db     *gorm.DB
	config *config.Config
}

// NewEngine creates a new adjustment engine
func NewEngine(db *gorm.DB, cfg *config.Config) *Engine {
	return &Engine{
		db:     db,
		config: cfg,
	}
}

// AdjustmentRequest represents a stock adjustment
type AdjustmentRequest struct {
	ProductID      uint           `json:"product_id" binding:"required"`
	AdjustmentType AdjustmentType `json:"adjustment_type" binding:"required"`
	QuantityChange int            `json:"quantity_change" binding:"required"`
	Reason         string         `json:"reason,omitempty"`
	SaleID         *uint          `json:"sale_id,omitempty"`
}

// ComputeNewQuantity is the single place the post-adjustment quantity is
// derived from the locked quantity and the requested change.
func ComputeNewQuantity(previous, change int) int {
	return previous + change
}

// ApplyAdjustment applies a stock adjustment in its own transaction.
func (e *Engine) ApplyAdjustment(req *AdjustmentRequest, userID uint) (*StockAdjustment, error) {
	tx := e.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	adjustment, err := e.Apply(tx, req, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	return adjustment, nil
}

// Apply applies a stock adjustment inside the caller's transaction. The
// orchestrators use this so the sale row and the inventory mutation commit
// or roll back together. The caller owns the transaction; Apply never
// commits or rolls back.
func (e *Engine) Apply(tx *gorm.DB, req *AdjustmentRequest, userID uint) (*StockAdjustment, error) {
	if req.QuantityChange == 0 {
		return nil, ErrZeroQuantityChange
	}
	if !req.AdjustmentType.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAdjustmentType, req.AdjustmentType)
	}

	// Ownership check against the products table; the record itself does
	// not carry the owner.
	var owned int64
	if err := tx.Table("products").
		Where("id = ? AND user_id = ? AND deleted_at IS NULL", req.ProductID, userID).
		Count(&owned).Error; err != nil {
		return nil, fmt.Errorf("failed to verify product ownership: %w", err)
	}
	if owned == 0 {
		return nil, ErrRecordNotFound
	}

	// Row lock serializes concurrent adjustments for the same product.
	// The second caller blocks here and sees the first one's committed
	// quantity before computing its own.
	var record InventoryRecord
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", req.ProductID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to load inventory record: %w", err)
	}

	previousQuantity := record.Quantity
	newQuantity := ComputeNewQuantity(previousQuantity, req.QuantityChange)
	if newQuantity < 0 {
		return nil, &InsufficientStockError{
			ProductID: int(req.ProductID),
			Available: previousQuantity,
			Requested: -req.QuantityChange,
		}
	}

	record.Quantity = newQuantity
	if req.AdjustmentType == AdjustmentTypeAddition {
		now := time.Now().UTC()
		record.LastRestocked = &now
	}

	if err := tx.Save(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to update inventory record: %w", err)
	}

	adjustment := &StockAdjustment{
		ProductID:        req.ProductID,
		UserID:           userID,
		AdjustmentType:   req.AdjustmentType,
		QuantityChange:   req.QuantityChange,
		PreviousQuantity: previousQuantity,
		NewQuantity:      newQuantity,
		Reason:           req.Reason,
		SaleID:           req.SaleID,
	}

	if err := tx.Create(adjustment).Error; err != nil {
		return nil, fmt.Errorf("failed to record adjustment: %w", err)
	}

	return adjustment, nil
}
