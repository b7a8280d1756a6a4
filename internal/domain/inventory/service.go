// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"
	"time"

	"github.com/your-org/stockledger-backend/internal/config"
	"gorm.io/gorm"
)

// Service handles inventory queries and record lifecycle. Quantity writes
// are not done here; those go through the Engine.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new inventory service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// CreateRecord creates the inventory record for a new product inside the
// caller's transaction. This is the one place an initial quantity is set
// without a ledger entry; everything after goes through the engine.
func (s *Service) CreateRecord(tx *gorm.DB, productID uint, initialQuantity, minimumStock int, maximumStock *int) (*InventoryRecord, error) {
	if initialQuantity < 0 {
		return nil, fmt.Errorf("initial quantity must not be negative")
	}
	if minimumStock < 0 {
		return nil, fmt.Errorf("minimum stock must not be negative")
	}
	if maximumStock != nil && *maximumStock < minimumStock {
		return nil, fmt.Errorf("maximum stock must not be below minimum stock")
	}

	record := &InventoryRecord{
		ProductID:    productID,
		Quantity:     initialQuantity,
		MinimumStock: minimumStock,
		MaximumStock: maximumStock,
	}

	if err := tx.Create(record).Error; err != nil {
		return nil, fmt.Errorf("failed to create inventory record: %w", err)
	}

	return record, nil
}

// GetRecord retrieves the inventory record for a product owned by the user.
func (s *Service) GetRecord(productID, userID uint) (*InventoryRecord, error) {
	var record InventoryRecord
	err := s.db.
		Joins("JOIN products ON products.id = inventory_records.product_id").
		Where("inventory_records.product_id = ? AND products.user_id = ? AND products.deleted_at IS NULL", productID, userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to retrieve inventory record: %w", err)
	}
	return &record, nil
}

// UpdateThresholds updates minimum/maximum stock levels. Quantity is
// deliberately out of reach here.
func (s *Service) UpdateThresholds(productID, userID uint, minimumStock int, maximumStock *int) (*InventoryRecord, error) {
	if minimumStock < 0 {
		return nil, fmt.Errorf("minimum stock must not be negative")
	}
	if maximumStock != nil && *maximumStock < minimumStock {
		return nil, fmt.Errorf("maximum stock must not be below minimum stock")
	}

	record, err := s.GetRecord(productID, userID)
	if err != nil {
		return nil, err
	}

	record.MinimumStock = minimumStock
	record.MaximumStock = maximumStock
	if err := s.db.Model(record).Select("minimum_stock", "maximum_stock").Updates(map[string]interface{}{
		"minimum_stock": minimumStock,
		"maximum_stock": maximumStock,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update stock thresholds: %w", err)
	}

	return record, nil
}

// LowStock returns the user's inventory records at or below minimum stock,
// most critical first (lowest quantity/minimum ratio). Records with a zero
// minimum only qualify once they are fully out of stock.
func (s *Service) LowStock(userID uint) ([]InventoryRecord, error) {
	var records []InventoryRecord
	err := s.db.
		Joins("JOIN products ON products.id = inventory_records.product_id").
		Where("products.user_id = ? AND products.deleted_at IS NULL", userID).
		Where("(inventory_records.minimum_stock > 0 AND inventory_records.quantity <= inventory_records.minimum_stock) OR inventory_records.quantity = 0").
		Order("CASE WHEN inventory_records.minimum_stock = 0 THEN 0 ELSE CAST(inventory_records.quantity AS FLOAT) / inventory_records.minimum_stock END ASC").
		Order("inventory_records.quantity ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve low stock records: %w", err)
	}
	return records, nil
}

// OutOfStock returns the user's inventory records with zero quantity.
func (s *Service) OutOfStock(userID uint) ([]InventoryRecord, error) {
	var records []InventoryRecord
	err := s.db.
		Joins("JOIN products ON products.id = inventory_records.product_id").
		Where("products.user_id = ? AND products.deleted_at IS NULL AND inventory_records.quantity = 0", userID).
		Order("inventory_records.updated_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve out of stock records: %w", err)
	}
	return records, nil
}

// AdjustmentHistory returns the ledger entries for a product over the last
// sinceDays days, newest first. The ledger itself is never filtered or
// rewritten; this is a read-only window onto it.
func (s *Service) AdjustmentHistory(productID, userID uint, sinceDays int) ([]StockAdjustment, error) {
	// Verify the product belongs to the caller before exposing its audit trail.
	if _, err := s.GetRecord(productID, userID); err != nil {
		return nil, err
	}

	if sinceDays <= 0 {
		sinceDays = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -sinceDays)

	var adjustments []StockAdjustment
	err := s.db.
		Where("product_id = ? AND created_at >= ?", productID, since).
		Order("created_at DESC").
		Find(&adjustments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve adjustment history: %w", err)
	}
	return adjustments, nil
}
