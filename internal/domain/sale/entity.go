// internal/domain/sale/entity.go
package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/your-org/stockledger-backend/internal/domain/product"
)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusRefunded  SaleStatus = "refunded"
)

// Sale represents one completed purchase. Rows are never physically
// deleted; cancellation flips the status and appends a compensating
// ledger entry.
type Sale struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ProductID     uint            `gorm:"not null;index" json:"product_id"`
	UserID        uint            `gorm:"not null;index" json:"user_id"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	SaleDate      time.Time       `gorm:"not null;index" json:"sale_date"`
	Status        SaleStatus      `gorm:"not null;size:20;default:'completed'" json:"status"`
	ReceiptNumber string          `gorm:"uniqueIndex;not null;size:50" json:"receipt_number"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	CancelReason  string          `gorm:"type:text" json:"cancel_reason,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Relationships
	Product *product.Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName overrides
func (Sale) TableName() string { return "sales" }

// ErrSaleNotFound is returned when the sale does not exist or does not
// belong to the calling user.
var ErrSaleNotFound = errors.New("sale not found")

// ErrProductInactive is returned when a sale is recorded against an
// inactive product.
var ErrProductInactive = errors.New("product is not active")

// NotCancellableError is returned when a cancellation violates the status
// precondition or the policy window. It carries the violated rule so the
// caller gets a clear reason instead of a silent no-op.
type NotCancellableError struct {
	SaleID uint
	Reason string
}

func (e *NotCancellableError) Error() string {
	return fmt.Sprintf("sale %d cannot be cancelled: %s", e.SaleID, e.Reason)
}

// IsNotCancellable reports whether err is a NotCancellableError.
func IsNotCancellable(err error) bool {
	var target *NotCancellableError
	return errors.As(err, &target)
}
