// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/your-org/stockledger-backend/internal/domain/inventory"
	"github.com/your-org/stockledger-backend/internal/domain/product"
	"github.com/your-org/stockledger-backend/internal/domain/sale"
	"github.com/your-org/stockledger-backend/internal/domain/user"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Dependency order: users, products, then the inventory pair, then sales
	models := []interface{}{
		&user.User{},
		&product.Product{},
		&inventory.InventoryRecord{},
		&inventory.StockAdjustment{},
		&sale.Sale{},
	}

	for _, model := range models {
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed successfully")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_user_active ON products(user_id, is_active)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_user_sku ON products(user_id, sku) WHERE deleted_at IS NULL",
		"CREATE INDEX IF NOT EXISTS idx_products_category ON products(user_id, category)",

		// Inventory indexes
		"CREATE INDEX IF NOT EXISTS idx_inventory_records_quantity ON inventory_records(quantity)",
		"CREATE INDEX IF NOT EXISTS idx_inventory_records_low_stock ON inventory_records(product_id) WHERE quantity <= minimum_stock",

		// Ledger indexes
		"CREATE INDEX IF NOT EXISTS idx_stock_adjustments_product_created ON stock_adjustments(product_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_stock_adjustments_sale ON stock_adjustments(sale_id)",
		"CREATE INDEX IF NOT EXISTS idx_stock_adjustments_type ON stock_adjustments(adjustment_type)",

		// Sale indexes
		"CREATE INDEX IF NOT EXISTS idx_sales_user_status ON sales(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_sales_user_date ON sales(user_id, sale_date DESC)",
		"CREATE INDEX IF NOT EXISTS idx_sales_product_date ON sales(product_id, sale_date DESC)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("Warning: failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("Created %d indexes successfully (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("Seeding initial data...")

	demoUser, err := m.seedDemoUser()
	if err != nil {
		return fmt.Errorf("failed to seed demo user: %w", err)
	}

	if err := m.seedDemoProducts(demoUser.ID); err != nil {
		return fmt.Errorf("failed to seed demo products: %w", err)
	}

	log.Println("Initial data seeded successfully")
	return nil
}

func (m *Migration) seedDemoUser() (*user.User, error) {
	var existing user.User
	result := m.db.Where("email = ?", "demo@example.com").First(&existing)
	if result.Error == nil {
		log.Printf("Demo user already exists with ID: %d", existing.ID)
		return &existing, nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("demo1234"), 10)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	demoUser := user.User{
		Email:        "demo@example.com",
		Password:     string(hashedPassword),
		FirstName:    "Demo",
		LastName:     "Owner",
		BusinessName: "Demo Corner Shop",
		IsActive:     true,
	}

	if err := m.db.Create(&demoUser).Error; err != nil {
		return nil, fmt.Errorf("failed to create demo user: %w", err)
	}

	log.Println("Created demo user: demo@example.com (password: demo1234)")
	return &demoUser, nil
}

func (m *Migration) seedDemoProducts(userID uint) error {
	var productCount int64
	m.db.Model(&product.Product{}).Where("user_id = ?", userID).Count(&productCount)
	if productCount > 0 {
		log.Println("Demo products already exist")
		return nil
	}

	maxNotebooks := 200
	demoProducts := []struct {
		product  product.Product
		quantity int
		minimum  int
		maximum  *int
	}{
		{
			product: product.Product{
				UserID:    userID,
				SKU:       "NB-A5-001",
				Name:      "A5 Notebook",
				Category:  "Stationery",
				Price:     decimal.NewFromFloat(3.50),
				CostPrice: decimal.NewFromFloat(1.20),
				Unit:      "pcs",
				IsActive:  true,
			},
			quantity: 120,
			minimum:  20,
			maximum:  &maxNotebooks,
		},
		{
			product: product.Product{
				UserID:    userID,
				SKU:       "PEN-BL-001",
				Name:      "Ballpoint Pen (Blue)",
				Category:  "Stationery",
				Price:     decimal.NewFromFloat(0.80),
				CostPrice: decimal.NewFromFloat(0.25),
				Unit:      "pcs",
				IsActive:  true,
			},
			quantity: 300,
			minimum:  50,
		},
		{
			product: product.Product{
				UserID:    userID,
				SKU:       "MUG-CER-001",
				Name:      "Ceramic Mug",
				Category:  "Kitchenware",
				Price:     decimal.NewFromFloat(6.00),
				CostPrice: decimal.NewFromFloat(2.75),
				Unit:      "pcs",
				IsActive:  true,
			},
			quantity: 4,
			minimum:  10,
		},
	}

	for _, seed := range demoProducts {
		prod := seed.product
		if err := m.db.Create(&prod).Error; err != nil {
			log.Printf("Warning: failed to create demo product %s: %v", prod.SKU, err)
			continue
		}

		record := inventory.InventoryRecord{
			ProductID:    prod.ID,
			Quantity:     seed.quantity,
			MinimumStock: seed.minimum,
			MaximumStock: seed.maximum,
		}
		if err := m.db.Create(&record).Error; err != nil {
			log.Printf("Warning: failed to create inventory record for %s: %v", prod.SKU, err)
			continue
		}

		log.Printf("Created demo product: %s (stock: %d)", prod.Name, seed.quantity)
	}

	return nil
}

// GetTableInfo returns information about database tables
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	log.Println("Database tables:")
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		log.Printf("  %-25s | %d records", table, count)
	}

	return nil
}
