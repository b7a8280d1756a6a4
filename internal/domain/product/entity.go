// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/stockledger-backend/internal/domain/inventory"
)

// Product represents a catalog item owned by a single user. For the
// inventory core the product is read-only apart from its existence and
// ownership; stock lives in the 1:1 InventoryRecord.
type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	SKU         string          `gorm:"not null;size:100;index" json:"sku"`
	Name        string          `gorm:"not null;size:255" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    string          `gorm:"size:100" json:"category"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(12,2)" json:"cost_price"`
	Unit        string          `gorm:"size:20;default:'pcs'" json:"unit"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relationships
	Inventory *inventory.InventoryRecord `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"inventory,omitempty"`
}

// TableName overrides
func (Product) TableName() string { return "products" }

// Summary is the compact product view joined onto sale responses.
type Summary struct {
	ID   uint   `json:"id"`
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// Summarize returns the compact view of the product.
func (p *Product) Summarize() Summary {
	return Summary{
		ID:   p.ID,
		SKU:  p.SKU,
		Name: p.Name,
		Unit: p.Unit,
	}
}
