package inventory_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/your-org/stockledger-backend/internal/domain/inventory"
	"github.com/your-org/stockledger-backend/internal/domain/product"
	"github.com/your-org/stockledger-backend/internal/domain/user"
)

// seedUserWithStock creates one user with a product per (quantity, minimum)
// pair, in order.
func seedUserWithStock(t *testing.T, db *gorm.DB, stock [][2]int) (userID uint, productIDs []uint) {
	t.Helper()

	u := &user.User{
		Email:    fmt.Sprintf("test-%s@example.com", uuid.NewString()),
		Password: "not-a-real-hash",
	}
	require.NoError(t, db.Create(u).Error)

	for i, s := range stock {
		p := &product.Product{
			UserID:   u.ID,
			SKU:      "TST-" + uuid.NewString()[:8],
			Name:     fmt.Sprintf("Test Product %d", i),
			Price:    decimal.NewFromInt(10),
			IsActive: true,
		}
		require.NoError(t, db.Create(p).Error)
		require.NoError(t, db.Create(&inventory.InventoryRecord{
			ProductID:    p.ID,
			Quantity:     s[0],
			MinimumStock: s[1],
		}).Error)
		productIDs = append(productIDs, p.ID)
	}
	return u.ID, productIDs
}

func TestCreateRecordValidation(t *testing.T) {
	svc := inventory.NewService(nil, testConfig())

	_, err := svc.CreateRecord(nil, 1, -1, 0, nil)
	assert.Error(t, err)

	_, err = svc.CreateRecord(nil, 1, 0, -1, nil)
	assert.Error(t, err)

	max := 3
	_, err = svc.CreateRecord(nil, 1, 0, 5, &max)
	assert.Error(t, err, "maximum below minimum must be rejected")
}

func TestUpdateThresholdsValidation(t *testing.T) {
	svc := inventory.NewService(nil, testConfig())

	_, err := svc.UpdateThresholds(1, 1, -1, nil)
	assert.Error(t, err)

	max := 1
	_, err = svc.UpdateThresholds(1, 1, 5, &max)
	assert.Error(t, err)
}

func TestGetRecordScopedToOwner(t *testing.T) {
	db := testDB(t)
	svc := inventory.NewService(db, testConfig())
	ownerID, productIDs := seedUserWithStock(t, db, [][2]int{{10, 2}})
	strangerID, _ := seedUserWithStock(t, db, nil)

	record, err := svc.GetRecord(productIDs[0], ownerID)
	require.NoError(t, err)
	assert.Equal(t, 10, record.Quantity)

	_, err = svc.GetRecord(productIDs[0], strangerID)
	assert.ErrorIs(t, err, inventory.ErrRecordNotFound)
}

func TestLowStockOrdering(t *testing.T) {
	db := testDB(t)
	svc := inventory.NewService(db, testConfig())

	// quantity/minimum: out of stock with no minimum, 20% of minimum,
	// 50% of minimum, comfortably stocked, stocked with no minimum.
	userID, productIDs := seedUserWithStock(t, db, [][2]int{
		{0, 0},
		{2, 10},
		{5, 10},
		{50, 10},
		{5, 0},
	})

	records, err := svc.LowStock(userID)
	require.NoError(t, err)
	require.Len(t, records, 3, "well-stocked and no-minimum products must not appear")

	// Most critical first: out of stock, then by quantity/minimum ratio.
	assert.Equal(t, productIDs[0], records[0].ProductID)
	assert.Equal(t, productIDs[1], records[1].ProductID)
	assert.Equal(t, productIDs[2], records[2].ProductID)
}

func TestLowStockIncludesAtMinimum(t *testing.T) {
	db := testDB(t)
	svc := inventory.NewService(db, testConfig())
	userID, productIDs := seedUserWithStock(t, db, [][2]int{{10, 10}})

	records, err := svc.LowStock(userID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, productIDs[0], records[0].ProductID)
}

func TestOutOfStock(t *testing.T) {
	db := testDB(t)
	svc := inventory.NewService(db, testConfig())
	userID, productIDs := seedUserWithStock(t, db, [][2]int{
		{0, 5},
		{3, 5},
		{0, 0},
	})

	records, err := svc.OutOfStock(userID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	got := []uint{records[0].ProductID, records[1].ProductID}
	assert.ElementsMatch(t, []uint{productIDs[0], productIDs[2]}, got)
}

func TestAdjustmentHistoryScopedToOwner(t *testing.T) {
	db := testDB(t)
	svc := inventory.NewService(db, testConfig())
	engine := inventory.NewEngine(db, testConfig())

	ownerID, productIDs := seedUserWithStock(t, db, [][2]int{{10, 0}})
	strangerID, _ := seedUserWithStock(t, db, nil)

	for i := 0; i < 3; i++ {
		_, err := engine.ApplyAdjustment(&inventory.AdjustmentRequest{
			ProductID:      productIDs[0],
			AdjustmentType: inventory.AdjustmentTypeAddition,
			QuantityChange: 1,
		}, ownerID)
		require.NoError(t, err)
	}

	history, err := svc.AdjustmentHistory(productIDs[0], ownerID, 30)
	require.NoError(t, err)
	assert.Len(t, history, 3)

	_, err = svc.AdjustmentHistory(productIDs[0], strangerID, 30)
	assert.ErrorIs(t, err, inventory.ErrRecordNotFound)
}
