// internal/domain/inventory/entity.go
package inventory

import (
	"time"
)

// AdjustmentType represents the kind of stock adjustment
type AdjustmentType string

const (
	AdjustmentTypeAddition    AdjustmentType = "addition"    // Restock, purchase
	AdjustmentTypeSubtraction AdjustmentType = "subtraction" // Manual decrease
	AdjustmentTypeSale        AdjustmentType = "sale"        // Recorded sale
	AdjustmentTypeDamage      AdjustmentType = "damage"      // Damaged goods write-off
	AdjustmentTypeExpired     AdjustmentType = "expired"     // Expired goods write-off
	AdjustmentTypeCorrection  AdjustmentType = "correction"  // Compensating entry (e.g. sale cancellation)
)

// IsValid reports whether the adjustment type is one of the enumerated kinds.
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypeAddition, AdjustmentTypeSubtraction, AdjustmentTypeSale,
		AdjustmentTypeDamage, AdjustmentTypeExpired, AdjustmentTypeCorrection:
		return true
	}
	return false
}

// InventoryRecord represents current stock on hand for a product.
// Quantity is only ever written by the adjustment engine; every change is
// paired with exactly one StockAdjustment row in the same transaction.
type InventoryRecord struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	ProductID     uint       `gorm:"uniqueIndex;not null" json:"product_id"`
	Quantity      int        `gorm:"not null;default:0" json:"quantity"`
	MinimumStock  int        `gorm:"not null;default:0" json:"minimum_stock"`
	MaximumStock  *int       `json:"maximum_stock,omitempty"`
	LastRestocked *time.Time `json:"last_restocked,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// StockAdjustment is one immutable ledger entry. Rows are insert-only;
// nothing in the codebase updates or deletes them.
type StockAdjustment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ProductID        uint           `gorm:"not null;index" json:"product_id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	AdjustmentType   AdjustmentType `gorm:"not null;size:20" json:"adjustment_type"`
	QuantityChange   int            `gorm:"not null" json:"quantity_change"`
	PreviousQuantity int            `gorm:"not null" json:"previous_quantity"`
	NewQuantity      int            `gorm:"not null" json:"new_quantity"`
	Reason           string         `gorm:"type:text" json:"reason,omitempty"`
	SaleID           *uint          `gorm:"index" json:"sale_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TableName overrides
func (InventoryRecord) TableName() string { return "inventory_records" }
func (StockAdjustment) TableName() string { return "stock_adjustments" }

// IsLowStock reports whether the record is at or below its minimum stock.
func (r *InventoryRecord) IsLowStock() bool {
	if r.MinimumStock == 0 {
		return r.Quantity == 0
	}
	return r.Quantity <= r.MinimumStock
}

// IsOutOfStock reports whether the record has no stock on hand.
func (r *InventoryRecord) IsOutOfStock() bool {
	return r.Quantity == 0
}

// StockRatio returns quantity relative to minimum stock, used to rank how
// critical a low-stock record is. Records with no minimum are ranked last
// unless they are out of stock.
func (r *InventoryRecord) StockRatio() float64 {
	if r.Quantity == 0 {
		return 0
	}
	if r.MinimumStock == 0 {
		return float64(r.Quantity)
	}
	return float64(r.Quantity) / float64(r.MinimumStock)
}
