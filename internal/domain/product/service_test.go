package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	svc := NewService(nil, nil, nil)

	for _, price := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := svc.CreateProduct(1, &CreateProductRequest{
			SKU:   "TST-1",
			Name:  "Test",
			Price: price,
		})
		assert.Error(t, err, "price %s must be rejected", price)
	}
}

func TestSummarize(t *testing.T) {
	p := &Product{
		ID:   3,
		SKU:  "TST-3",
		Name: "Coffee Beans 1kg",
		Unit: "bag",
	}

	got := p.Summarize()
	assert.Equal(t, Summary{ID: 3, SKU: "TST-3", Name: "Coffee Beans 1kg", Unit: "bag"}, got)
}
