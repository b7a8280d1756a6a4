package sale

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/inventory"
	"github.com/your-org/stockledger-backend/internal/domain/product"
	"github.com/your-org/stockledger-backend/internal/domain/user"
)

func testConfig() *config.Config {
	return &config.Config{
		Sales: config.SalesConfig{
			CancellationWindow: 24 * time.Hour,
			ReceiptPrefix:      "RCP",
		},
	}
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping database test")
	}

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&user.User{},
		&product.Product{},
		&inventory.InventoryRecord{},
		&inventory.StockAdjustment{},
		&Sale{},
	))
	return db
}

func testService(db *gorm.DB) *Service {
	cfg := testConfig()
	return NewService(db, cfg, inventory.NewEngine(db, cfg))
}

func seedProduct(t *testing.T, db *gorm.DB, quantity int, active bool) (userID, productID uint) {
	t.Helper()

	u := &user.User{
		Email:    fmt.Sprintf("test-%s@example.com", uuid.NewString()),
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(u).Error)

	p := &product.Product{
		UserID:   u.ID,
		SKU:      "TST-" + uuid.NewString()[:8],
		Name:     "Test Product",
		Price:    decimal.NewFromInt(25),
		IsActive: active,
	}
	require.NoError(t, db.Create(p).Error)
	require.NoError(t, db.Create(&inventory.InventoryRecord{
		ProductID: p.ID,
		Quantity:  quantity,
	}).Error)

	return u.ID, p.ID
}

func currentQuantity(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var record inventory.InventoryRecord
	require.NoError(t, db.Where("product_id = ?", productID).First(&record).Error)
	return record.Quantity
}

func ledgerEntries(t *testing.T, db *gorm.DB, productID uint) []inventory.StockAdjustment {
	t.Helper()
	var entries []inventory.StockAdjustment
	require.NoError(t, db.Where("product_id = ?", productID).Order("id ASC").Find(&entries).Error)
	return entries
}

func TestGenerateReceiptNumber(t *testing.T) {
	svc := &Service{config: testConfig()}
	at := time.Date(2026, 2, 3, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "RCP-20260203-000042", svc.generateReceiptNumber(42, at))
	assert.Equal(t, "RCP-20260203-123456", svc.generateReceiptNumber(123456, at))
}

func TestNotCancellableError(t *testing.T) {
	err := &NotCancellableError{SaleID: 9, Reason: "sale status is cancelled"}

	assert.Equal(t, "sale 9 cannot be cancelled: sale status is cancelled", err.Error())
	assert.True(t, IsNotCancellable(err))
	assert.True(t, IsNotCancellable(fmt.Errorf("cancelling: %w", err)))
	assert.False(t, IsNotCancellable(errors.New("cannot be cancelled")))
}

func TestRecordSale(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 10, true)

	sale, err := svc.RecordSale(userID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  3,
	})
	require.NoError(t, err)

	assert.Equal(t, SaleStatusCompleted, sale.Status)
	assert.True(t, sale.UnitPrice.Equal(decimal.NewFromInt(25)), "unit price defaults to the product price")
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(75)))
	assert.Regexp(t, `^RCP-\d{8}-\d{6}$`, sale.ReceiptNumber)

	assert.Equal(t, 7, currentQuantity(t, db, productID))

	entries := ledgerEntries(t, db, productID)
	require.Len(t, entries, 1)
	assert.Equal(t, inventory.AdjustmentTypeSale, entries[0].AdjustmentType)
	assert.Equal(t, -3, entries[0].QuantityChange)
	require.NotNil(t, entries[0].SaleID)
	assert.Equal(t, sale.ID, *entries[0].SaleID)
}

func TestRecordSaleWithExplicitPrice(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 10, true)

	price := decimal.RequireFromString("19.99")
	sale, err := svc.RecordSale(userID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  2,
		UnitPrice: &price,
	})
	require.NoError(t, err)

	assert.True(t, sale.UnitPrice.Equal(price))
	assert.True(t, sale.TotalAmount.Equal(decimal.RequireFromString("39.98")))
}

func TestRecordSaleInsufficientStockRollsBack(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 2, true)

	_, err := svc.RecordSale(userID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  5,
	})
	require.Error(t, err)
	assert.True(t, inventory.IsInsufficientStock(err))

	// The whole transaction rolled back: no sale row, no ledger entry,
	// quantity untouched.
	var saleCount int64
	require.NoError(t, db.Model(&Sale{}).Where("product_id = ?", productID).Count(&saleCount).Error)
	assert.Zero(t, saleCount)
	assert.Empty(t, ledgerEntries(t, db, productID))
	assert.Equal(t, 2, currentQuantity(t, db, productID))
}

func TestRecordSaleInactiveProduct(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 10, false)

	_, err := svc.RecordSale(userID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, ErrProductInactive)
}

func TestRecordSaleUnownedProduct(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	_, productID := seedProduct(t, db, 10, true)
	strangerID, _ := seedProduct(t, db, 0, true)

	_, err := svc.RecordSale(strangerID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, product.ErrProductNotFound)
}

func TestCancelSaleRestoresStock(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 10, true)

	sale, err := svc.RecordSale(userID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  4,
	})
	require.NoError(t, err)
	require.Equal(t, 6, currentQuantity(t, db, productID))

	cancelled, err := svc.CancelSale(sale.ID, userID, "customer returned")
	require.NoError(t, err)

	assert.Equal(t, SaleStatusCancelled, cancelled.Status)
	assert.Equal(t, "customer returned", cancelled.CancelReason)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 10, currentQuantity(t, db, productID))

	// Append-only: the original sale entry survives and a compensating
	// correction entry follows it.
	entries := ledgerEntries(t, db, productID)
	require.Len(t, entries, 2)
	assert.Equal(t, inventory.AdjustmentTypeSale, entries[0].AdjustmentType)
	assert.Equal(t, -4, entries[0].QuantityChange)
	assert.Equal(t, inventory.AdjustmentTypeCorrection, entries[1].AdjustmentType)
	assert.Equal(t, 4, entries[1].QuantityChange)
	require.NotNil(t, entries[1].SaleID)
	assert.Equal(t, sale.ID, *entries[1].SaleID)
}

func TestCancelSaleTwice(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 10, true)

	sale, err := svc.RecordSale(userID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  2,
	})
	require.NoError(t, err)

	_, err = svc.CancelSale(sale.ID, userID, "first")
	require.NoError(t, err)

	_, err = svc.CancelSale(sale.ID, userID, "second")
	require.Error(t, err)
	assert.True(t, IsNotCancellable(err))

	// The second attempt must not restore stock again.
	assert.Equal(t, 10, currentQuantity(t, db, productID))
}

func TestCancelSaleWindowExpired(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 10, true)

	sale, err := svc.RecordSale(userID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  2,
	})
	require.NoError(t, err)

	// Backdate the sale past the 24h window.
	old := time.Now().UTC().Add(-25 * time.Hour)
	require.NoError(t, db.Model(&Sale{}).Where("id = ?", sale.ID).Update("sale_date", old).Error)

	_, err = svc.CancelSale(sale.ID, userID, "too late")
	require.Error(t, err)
	assert.True(t, IsNotCancellable(err))
	assert.Equal(t, 8, currentQuantity(t, db, productID))
}

func TestCancelSaleUnowned(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 10, true)
	strangerID, _ := seedProduct(t, db, 0, true)

	sale, err := svc.RecordSale(userID, &RecordSaleRequest{
		ProductID: productID,
		Quantity:  1,
	})
	require.NoError(t, err)

	_, err = svc.CancelSale(sale.ID, strangerID, "not mine")
	assert.ErrorIs(t, err, ErrSaleNotFound)
}

func TestGetSalesFilters(t *testing.T) {
	db := testDB(t)
	svc := testService(db)
	userID, productID := seedProduct(t, db, 100, true)

	for i := 0; i < 3; i++ {
		_, err := svc.RecordSale(userID, &RecordSaleRequest{
			ProductID: productID,
			Quantity:  1,
		})
		require.NoError(t, err)
	}

	resp, err := svc.GetSales(userID, &SaleListRequest{
		ProductID: productID,
		Status:    SaleStatusCompleted,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Sales, 3)
	assert.Equal(t, int64(3), resp.Pagination.Total)

	resp, err = svc.GetSales(userID, &SaleListRequest{
		ProductID: productID,
		Status:    SaleStatusCancelled,
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Sales)
}
