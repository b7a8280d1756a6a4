// internal/domain/sale/service.go
package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/inventory"
	"github.com/your-org/stockledger-backend/internal/domain/product"
)

// Service orchestrates sales against the inventory ledger. Both the sale
// row and the stock movement commit in one transaction, or neither does.
type Service struct {
	db     *gorm.DB
	config *config.Config
	engine *inventory.Engine
}

// NewService creates a new sale service
func NewService(db *gorm.DB, cfg *config.Config, engine *inventory.Engine) *Service {
	return &Service{
		db:     db,
		config: cfg,
		engine: engine,
	}
}

// RecordSaleRequest represents sale creation data
type RecordSaleRequest struct {
	ProductID uint             `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,gt=0"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Notes     string           `json:"notes,omitempty"`
}

// CancelSaleRequest represents sale cancellation data
type CancelSaleRequest struct {
	Reason string `json:"reason,omitempty"`
}

// SaleListRequest represents sale list query parameters
type SaleListRequest struct {
	Page      int        `form:"page,default=1"`
	Limit     int        `form:"limit,default=20"`
	ProductID uint       `form:"product_id"`
	Status    SaleStatus `form:"status"`
	DateFrom  string     `form:"date_from"`
	DateTo    string     `form:"date_to"`
}

// SaleListResponse represents a paginated sale list
type SaleListResponse struct {
	Sales      []Sale             `json:"sales"`
	Pagination product.Pagination `json:"pagination"`
}

// RecordSale turns a purchase request into a consistent {sale row,
// inventory decrement, ledger entry} triple in a single transaction.
func (s *Service) RecordSale(userID uint, req *RecordSaleRequest) (*Sale, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("sale quantity must be positive")
	}
	if req.UnitPrice != nil && !req.UnitPrice.IsPositive() {
		return nil, fmt.Errorf("unit price must be positive")
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Product lookup scoped to the caller; a product you don't own is a
	// product that doesn't exist.
	var prod product.Product
	err := tx.Where("id = ? AND user_id = ?", req.ProductID, userID).First(&prod).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	if !prod.IsActive {
		tx.Rollback()
		return nil, ErrProductInactive
	}

	unitPrice := prod.Price
	if req.UnitPrice != nil {
		unitPrice = *req.UnitPrice
	}
	totalAmount := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

	now := time.Now().UTC()
	sale := &Sale{
		ProductID:   req.ProductID,
		UserID:      userID,
		Quantity:    req.Quantity,
		UnitPrice:   unitPrice,
		TotalAmount: totalAmount,
		SaleDate:    now,
		Status:      SaleStatusCompleted,
		Notes:       req.Notes,
	}

	if err := tx.Create(sale).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create sale: %w", err)
	}

	// Receipt number derives from the row id, same scheme as order numbers
	// elsewhere: RCP-YYYYMMDD-000042.
	sale.ReceiptNumber = s.generateReceiptNumber(sale.ID, now)
	if err := tx.Model(sale).Update("receipt_number", sale.ReceiptNumber).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to assign receipt number: %w", err)
	}

	// The decrement and its ledger entry ride the same transaction as the
	// sale row. InsufficientStock here rolls everything back, including
	// the sale row just created.
	_, err = s.engine.Apply(tx, &inventory.AdjustmentRequest{
		ProductID:      req.ProductID,
		AdjustmentType: inventory.AdjustmentTypeSale,
		QuantityChange: -req.Quantity,
		Reason:         fmt.Sprintf("Sale: %s", sale.ReceiptNumber),
		SaleID:         &sale.ID,
	}, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit sale transaction: %w", err)
	}

	sale.Product = &prod
	return sale, nil
}

// CancelSale reverses a completed sale within the cancellation window. The
// original sale ledger entry stays untouched; a compensating correction
// entry restores the stock.
func (s *Service) CancelSale(saleID, userID uint, reason string) (*Sale, error) {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Lock the sale row so two concurrent cancellations cannot both pass
	// the status check.
	var sale Sale
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", saleID, userID).
		First(&sale).Error
	if err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to retrieve sale: %w", err)
	}

	if sale.Status != SaleStatusCompleted {
		tx.Rollback()
		return nil, &NotCancellableError{
			SaleID: saleID,
			Reason: fmt.Sprintf("sale status is %s", sale.Status),
		}
	}

	window := s.config.Sales.CancellationWindow
	if time.Since(sale.SaleDate) > window {
		tx.Rollback()
		return nil, &NotCancellableError{
			SaleID: saleID,
			Reason: fmt.Sprintf("cancellation window of %s has passed", window),
		}
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":        SaleStatusCancelled,
		"cancel_reason": reason,
		"cancelled_at":  now,
	}
	if err := tx.Model(&sale).Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update sale status: %w", err)
	}

	_, err = s.engine.Apply(tx, &inventory.AdjustmentRequest{
		ProductID:      sale.ProductID,
		AdjustmentType: inventory.AdjustmentTypeCorrection,
		QuantityChange: sale.Quantity,
		Reason:         fmt.Sprintf("Cancelled sale: %s", sale.ReceiptNumber),
		SaleID:         &sale.ID,
	}, userID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit cancellation: %w", err)
	}

	sale.Status = SaleStatusCancelled
	sale.CancelReason = reason
	sale.CancelledAt = &now
	return &sale, nil
}

// GetSale retrieves a single sale owned by the user.
func (s *Service) GetSale(saleID, userID uint) (*Sale, error) {
	var sale Sale
	err := s.db.Preload("Product").
		Where("id = ? AND user_id = ?", saleID, userID).
		First(&sale).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to retrieve sale: %w", err)
	}
	return &sale, nil
}

// GetSales retrieves the user's sales with filtering and pagination.
func (s *Service) GetSales(userID uint, req *SaleListRequest) (*SaleListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Sale{}).Preload("Product").Where("user_id = ?", userID)

	if req.ProductID > 0 {
		query = query.Where("product_id = ?", req.ProductID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	if req.DateFrom != "" {
		query = query.Where("sale_date >= ?", req.DateFrom)
	}
	if req.DateTo != "" {
		query = query.Where("sale_date <= ?", req.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}

	var sales []Sale
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("sale_date DESC").Offset(offset).Limit(req.Limit).Find(&sales).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &SaleListResponse{
		Sales: sales,
		Pagination: product.Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

func (s *Service) generateReceiptNumber(saleID uint, at time.Time) string {
	return fmt.Sprintf("%s-%s-%06d", s.config.Sales.ReceiptPrefix, at.Format("20060102"), saleID)
}
