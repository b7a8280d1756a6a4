package inventory_test

import (
	"fmt"
	"os"
	"sync"
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

// testDB opens the database named by TEST_DATABASE_DSN and skips the test
// when it is unset. Row locking needs a real Postgres.
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
	))
	return db
}

// seedProduct creates a user, a product and an inventory record with the
// given starting quantity, returning both owner and product IDs.
func seedProduct(t *testing.T, db *gorm.DB, quantity, minimum int) (userID, productID uint) {
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
		Price:    decimal.NewFromInt(10),
		IsActive: true,
	}
	require.NoError(t, db.Create(p).Error)

	record := &inventory.InventoryRecord{
		ProductID:    p.ID,
		Quantity:     quantity,
		MinimumStock: minimum,
	}
	require.NoError(t, db.Create(record).Error)

	return u.ID, p.ID
}

func getRecord(t *testing.T, db *gorm.DB, productID uint) *inventory.InventoryRecord {
	t.Helper()
	var record inventory.InventoryRecord
	require.NoError(t, db.Where("product_id = ?", productID).First(&record).Error)
	return &record
}

func getLedger(t *testing.T, db *gorm.DB, productID uint) []inventory.StockAdjustment {
	t.Helper()
	var entries []inventory.StockAdjustment
	require.NoError(t, db.Where("product_id = ?", productID).Order("id ASC").Find(&entries).Error)
	return entries
}

func TestApplyValidation(t *testing.T) {
	// Validation happens before any database access.
	engine := inventory.NewEngine(nil, testConfig())

	_, err := engine.Apply(nil, &inventory.AdjustmentRequest{
		ProductID:      1,
		AdjustmentType: inventory.AdjustmentTypeAddition,
		QuantityChange: 0,
	}, 1)
	assert.ErrorIs(t, err, inventory.ErrZeroQuantityChange)

	_, err = engine.Apply(nil, &inventory.AdjustmentRequest{
		ProductID:      1,
		AdjustmentType: "restock",
		QuantityChange: 5,
	}, 1)
	assert.ErrorIs(t, err, inventory.ErrInvalidAdjustmentType)
}

func TestApplyAdjustmentAddition(t *testing.T) {
	db := testDB(t)
	engine := inventory.NewEngine(db, testConfig())
	userID, productID := seedProduct(t, db, 10, 5)

	adj, err := engine.ApplyAdjustment(&inventory.AdjustmentRequest{
		ProductID:      productID,
		AdjustmentType: inventory.AdjustmentTypeAddition,
		QuantityChange: 15,
		Reason:         "weekly restock",
	}, userID)
	require.NoError(t, err)

	assert.Equal(t, 10, adj.PreviousQuantity)
	assert.Equal(t, 25, adj.NewQuantity)
	assert.Equal(t, 15, adj.QuantityChange)
	assert.Equal(t, inventory.AdjustmentTypeAddition, adj.AdjustmentType)
	assert.Equal(t, userID, adj.UserID)

	record := getRecord(t, db, productID)
	assert.Equal(t, 25, record.Quantity)
	require.NotNil(t, record.LastRestocked, "additions should stamp last_restocked")
	assert.WithinDuration(t, time.Now().UTC(), *record.LastRestocked, time.Minute)
}

func TestApplyAdjustmentSubtractionToZero(t *testing.T) {
	db := testDB(t)
	engine := inventory.NewEngine(db, testConfig())
	userID, productID := seedProduct(t, db, 5, 5)

	adj, err := engine.ApplyAdjustment(&inventory.AdjustmentRequest{
		ProductID:      productID,
		AdjustmentType: inventory.AdjustmentTypeDamage,
		QuantityChange: -5,
		Reason:         "water damage",
	}, userID)
	require.NoError(t, err)

	assert.Equal(t, 0, adj.NewQuantity)
	record := getRecord(t, db, productID)
	assert.Equal(t, 0, record.Quantity)
	assert.Nil(t, record.LastRestocked, "subtractions must not stamp last_restocked")
}

func TestApplyAdjustmentInsufficientStock(t *testing.T) {
	db := testDB(t)
	engine := inventory.NewEngine(db, testConfig())
	userID, productID := seedProduct(t, db, 5, 0)

	_, err := engine.ApplyAdjustment(&inventory.AdjustmentRequest{
		ProductID:      productID,
		AdjustmentType: inventory.AdjustmentTypeSubtraction,
		QuantityChange: -8,
	}, userID)
	require.Error(t, err)
	assert.True(t, inventory.IsInsufficientStock(err))

	// Nothing moved and nothing was written to the ledger.
	record := getRecord(t, db, productID)
	assert.Equal(t, 5, record.Quantity)
	assert.Empty(t, getLedger(t, db, productID))
}

func TestApplyAdjustmentUnownedProduct(t *testing.T) {
	db := testDB(t)
	engine := inventory.NewEngine(db, testConfig())
	ownerID, productID := seedProduct(t, db, 10, 0)
	strangerID, _ := seedProduct(t, db, 0, 0)
	require.NotEqual(t, ownerID, strangerID)

	_, err := engine.ApplyAdjustment(&inventory.AdjustmentRequest{
		ProductID:      productID,
		AdjustmentType: inventory.AdjustmentTypeAddition,
		QuantityChange: 5,
	}, strangerID)
	assert.ErrorIs(t, err, inventory.ErrRecordNotFound)
}

func TestLedgerReplaysToCurrentQuantity(t *testing.T) {
	db := testDB(t)
	engine := inventory.NewEngine(db, testConfig())
	userID, productID := seedProduct(t, db, 20, 0)

	changes := []struct {
		adjType inventory.AdjustmentType
		change  int
	}{
		{inventory.AdjustmentTypeSubtraction, -4},
		{inventory.AdjustmentTypeAddition, 10},
		{inventory.AdjustmentTypeExpired, -2},
		{inventory.AdjustmentTypeCorrection, 3},
	}
	for _, c := range changes {
		_, err := engine.ApplyAdjustment(&inventory.AdjustmentRequest{
			ProductID:      productID,
			AdjustmentType: c.adjType,
			QuantityChange: c.change,
		}, userID)
		require.NoError(t, err)
	}

	entries := getLedger(t, db, productID)
	require.Len(t, entries, len(changes))

	// Each entry chains onto the previous one, and replaying the changes
	// from the initial quantity lands exactly on the current quantity.
	replayed := 20
	for i, entry := range entries {
		assert.Equal(t, replayed, entry.PreviousQuantity, "entry %d", i)
		replayed += entry.QuantityChange
		assert.Equal(t, replayed, entry.NewQuantity, "entry %d", i)
	}
	assert.Equal(t, replayed, getRecord(t, db, productID).Quantity)
}

func TestConcurrentAdjustmentsOneWinner(t *testing.T) {
	db := testDB(t)
	engine := inventory.NewEngine(db, testConfig())
	userID, productID := seedProduct(t, db, 10, 0)

	// Two concurrent decrements of 6 against a stock of 10: the row lock
	// serializes them, so exactly one succeeds.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = engine.ApplyAdjustment(&inventory.AdjustmentRequest{
				ProductID:      productID,
				AdjustmentType: inventory.AdjustmentTypeSubtraction,
				QuantityChange: -6,
			}, userID)
		}(i)
	}
	wg.Wait()

	var failures int
	for _, err := range errs {
		if err != nil {
			assert.True(t, inventory.IsInsufficientStock(err))
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two decrements must fail")
	assert.Equal(t, 4, getRecord(t, db, productID).Quantity)
	assert.Len(t, getLedger(t, db, productID), 1)
}
