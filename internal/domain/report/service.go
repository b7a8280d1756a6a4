// internal/domain/report/service.go
package report

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/domain/sale"
)

// Service handles read-only reporting over committed sale rows and
// inventory records. It never writes; consistency comes from the ledger.
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new report service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// DashboardStats represents overall dashboard statistics for one user
type DashboardStats struct {
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	RevenueToday     decimal.Decimal `json:"revenue_today"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`

	TotalSales     int64 `json:"total_sales"`
	SalesToday     int64 `json:"sales_today"`
	SalesThisMonth int64 `json:"sales_this_month"`

	TotalProducts      int64 `json:"total_products"`
	LowStockProducts   int64 `json:"low_stock_products"`
	OutOfStockProducts int64 `json:"out_of_stock_products"`
}

// DailySales represents revenue for one day
type DailySales struct {
	Date    string          `json:"date"`
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// ProductSales represents aggregated sales for one product
type ProductSales struct {
	ProductID    uint            `json:"product_id"`
	ProductName  string          `json:"product_name"`
	QuantitySold int64           `json:"quantity_sold"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// GetDashboardStats aggregates headline numbers for the user's dashboard.
func (s *Service) GetDashboardStats(userID uint) (*DashboardStats, error) {
	stats := &DashboardStats{}
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	completed := s.db.Model(&sale.Sale{}).
		Where("user_id = ? AND status = ?", userID, sale.SaleStatusCompleted)

	if err := completed.Session(&gorm.Session{}).Count(&stats.TotalSales).Error; err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}
	if err := completed.Session(&gorm.Session{}).Where("sale_date >= ?", startOfDay).Count(&stats.SalesToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's sales: %w", err)
	}
	if err := completed.Session(&gorm.Session{}).Where("sale_date >= ?", startOfMonth).Count(&stats.SalesThisMonth).Error; err != nil {
		return nil, fmt.Errorf("failed to count this month's sales: %w", err)
	}

	var err error
	if stats.TotalRevenue, err = s.sumRevenue(userID, nil); err != nil {
		return nil, err
	}
	if stats.RevenueToday, err = s.sumRevenue(userID, &startOfDay); err != nil {
		return nil, err
	}
	if stats.RevenueThisMonth, err = s.sumRevenue(userID, &startOfMonth); err != nil {
		return nil, err
	}

	if err := s.db.Table("products").
		Where("user_id = ? AND deleted_at IS NULL", userID).
		Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	if err := s.db.Table("inventory_records").
		Joins("JOIN products ON products.id = inventory_records.product_id").
		Where("products.user_id = ? AND products.deleted_at IS NULL", userID).
		Where("(inventory_records.minimum_stock > 0 AND inventory_records.quantity <= inventory_records.minimum_stock) OR inventory_records.quantity = 0").
		Count(&stats.LowStockProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}

	if err := s.db.Table("inventory_records").
		Joins("JOIN products ON products.id = inventory_records.product_id").
		Where("products.user_id = ? AND products.deleted_at IS NULL AND inventory_records.quantity = 0", userID).
		Count(&stats.OutOfStockProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count out of stock products: %w", err)
	}

	return stats, nil
}

// GetDailySales returns per-day sale counts and revenue for the last days.
func (s *Service) GetDailySales(userID uint, days int) ([]DailySales, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -days)

	var rows []struct {
		Date    time.Time
		Count   int64
		Revenue decimal.Decimal
	}
	err := s.db.Model(&sale.Sale{}).
		Select("DATE(sale_date) AS date, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue").
		Where("user_id = ? AND status = ? AND sale_date >= ?", userID, sale.SaleStatusCompleted, since).
		Group("DATE(sale_date)").
		Order("date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily sales: %w", err)
	}

	result := make([]DailySales, 0, len(rows))
	for _, row := range rows {
		result = append(result, DailySales{
			Date:    row.Date.Format("2006-01-02"),
			Count:   row.Count,
			Revenue: row.Revenue,
		})
	}
	return result, nil
}

// GetTopProducts returns the user's best-selling products by revenue.
func (s *Service) GetTopProducts(userID uint, limit int) ([]ProductSales, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var rows []ProductSales
	err := s.db.Model(&sale.Sale{}).
		Select("sales.product_id, products.name AS product_name, COALESCE(SUM(sales.quantity), 0) AS quantity_sold, COALESCE(SUM(sales.total_amount), 0) AS revenue").
		Joins("JOIN products ON products.id = sales.product_id").
		Where("sales.user_id = ? AND sales.status = ?", userID, sale.SaleStatusCompleted).
		Group("sales.product_id, products.name").
		Order("revenue DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	return rows, nil
}

func (s *Service) sumRevenue(userID uint, since *time.Time) (decimal.Decimal, error) {
	query := s.db.Model(&sale.Sale{}).
		Select("COALESCE(SUM(total_amount), 0)").
		Where("user_id = ? AND status = ?", userID, sale.SaleStatusCompleted)
	if since != nil {
		query = query.Where("sale_date >= ?", *since)
	}

	var revenue decimal.Decimal
	if err := query.Scan(&revenue).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return revenue, nil
}
