// internal/domain/product/service.go
package product

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/inventory"
)

// ErrProductNotFound is returned when the product does not exist or does
// not belong to the calling user.
var ErrProductNotFound = errors.New("product not found")

// Service handles product catalog business logic
type Service struct {
	db               *gorm.DB
	config           *config.Config
	inventoryService *inventory.Service
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config, inventoryService *inventory.Service) *Service {
	return &Service{
		db:               db,
		config:           cfg,
		inventoryService: inventoryService,
	}
}

// CreateProductRequest represents product creation data
type CreateProductRequest struct {
	SKU             string          `json:"sku" binding:"required"`
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price" binding:"required"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	Unit            string          `json:"unit"`
	InitialQuantity int             `json:"initial_quantity"`
	MinimumStock    int             `json:"minimum_stock"`
	MaximumStock    *int            `json:"maximum_stock,omitempty"`
}

// UpdateProductRequest represents product update data
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	CostPrice   *decimal.Decimal `json:"cost_price,omitempty"`
	Unit        *string          `json:"unit,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// ProductListRequest represents product list query parameters
type ProductListRequest struct {
	Page     int    `form:"page,default=1"`
	Limit    int    `form:"limit,default=20"`
	Category string `form:"category"`
	Search   string `form:"search"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// ProductListResponse represents a paginated product list
type ProductListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

// CreateProduct creates a product and its inventory record in one transaction.
func (s *Service) CreateProduct(userID uint, req *CreateProductRequest) (*Product, error) {
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("price must be positive")
	}

	var existing Product
	if err := s.db.Where("user_id = ? AND sku = ?", userID, req.SKU).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("product with SKU '%s' already exists", req.SKU)
	}

	unit := req.Unit
	if unit == "" {
		unit = "pcs"
	}

	product := &Product{
		UserID:      userID,
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		CostPrice:   req.CostPrice,
		Unit:        unit,
		IsActive:    true,
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(product).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	record, err := s.inventoryService.CreateRecord(tx, product.ID, req.InitialQuantity, req.MinimumStock, req.MaximumStock)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit product creation: %w", err)
	}

	product.Inventory = record
	return product, nil
}

// GetProduct retrieves a product owned by the user.
func (s *Service) GetProduct(productID, userID uint) (*Product, error) {
	var product Product
	err := s.db.Preload("Inventory").
		Where("id = ? AND user_id = ?", productID, userID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to retrieve product: %w", err)
	}
	return &product, nil
}

// GetProducts retrieves the user's products with filtering and pagination.
func (s *Service) GetProducts(userID uint, req *ProductListRequest) (*ProductListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 20
	}

	query := s.db.Model(&Product{}).Preload("Inventory").Where("user_id = ?", userID)

	if req.Category != "" {
		query = query.Where("category = ?", req.Category)
	}
	if req.Search != "" {
		pattern := "%" + req.Search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []Product
	offset := (req.Page - 1) * req.Limit
	if err := query.Order("name ASC").Offset(offset).Limit(req.Limit).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve products: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &ProductListResponse{
		Products: products,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateProduct updates catalog fields. Stock quantity is not reachable
// from here; it only moves through the adjustment engine.
func (s *Service) UpdateProduct(productID, userID uint, req *UpdateProductRequest) (*Product, error) {
	product, err := s.GetProduct(productID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return nil, fmt.Errorf("price must be positive")
		}
		updates["price"] = *req.Price
	}
	if req.CostPrice != nil {
		updates["cost_price"] = *req.CostPrice
	}
	if req.Unit != nil {
		updates["unit"] = *req.Unit
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return product, nil
	}

	if err := s.db.Model(product).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return s.GetProduct(productID, userID)
}

// DeleteProduct soft-deletes a product and removes its inventory record.
// Ledger entries stay; the audit trail outlives the product.
func (s *Service) DeleteProduct(productID, userID uint) error {
	product, err := s.GetProduct(productID, userID)
	if err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("product_id = ?", productID).Delete(&inventory.InventoryRecord{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete inventory record: %w", err)
	}

	if err := tx.Delete(product).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return tx.Commit().Error
}
