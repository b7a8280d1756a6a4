// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/your-org/stockledger-backend/internal/config"
	"github.com/your-org/stockledger-backend/internal/interfaces/http/handlers"
	"github.com/your-org/stockledger-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires all API route groups onto the router group.
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupAuthRoutes(rg, db, cfg)
	SetupProductRoutes(rg, db, cfg)
	SetupInventoryRoutes(rg, db, cfg)
	SetupSaleRoutes(rg, db, cfg)
	SetupReportRoutes(rg, db, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

// SetupProductRoutes sets up product catalog routes
func SetupProductRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	productHandler := handlers.NewProductHandler(db, cfg)

	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		products.GET("", productHandler.GetProducts)
		products.POST("", productHandler.CreateProduct)
		products.GET("/:id", productHandler.GetProduct)
		products.PUT("/:id", productHandler.UpdateProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}
}

// SetupInventoryRoutes sets up inventory and stock adjustment routes
func SetupInventoryRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	inventoryHandler := handlers.NewInventoryHandler(db, cfg)

	inv := rg.Group("/inventory")
	inv.Use(middleware.AuthMiddleware(cfg))
	{
		// Static paths before the parameterized ones
		inv.GET("/low-stock", inventoryHandler.GetLowStock)
		inv.GET("/out-of-stock", inventoryHandler.GetOutOfStock)
		inv.POST("/adjust", inventoryHandler.AdjustStock)

		inv.GET("/:product_id", inventoryHandler.GetRecord)
		inv.PUT("/:product_id/thresholds", inventoryHandler.UpdateThresholds)
		inv.GET("/:product_id/history", inventoryHandler.GetAdjustmentHistory)
	}
}

// SetupSaleRoutes sets up sale routes
func SetupSaleRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	saleHandler := handlers.NewSaleHandler(db, cfg)

	sales := rg.Group("/sales")
	sales.Use(middleware.AuthMiddleware(cfg))
	{
		sales.GET("", saleHandler.GetSales)
		sales.POST("", saleHandler.RecordSale)
		sales.GET("/:id", saleHandler.GetSale)
		sales.POST("/:id/cancel", saleHandler.CancelSale)
	}
}

// SetupReportRoutes sets up reporting routes
func SetupReportRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	reportHandler := handlers.NewReportHandler(db, cfg)

	reports := rg.Group("/reports")
	reports.Use(middleware.AuthMiddleware(cfg))
	{
		reports.GET("/dashboard", reportHandler.GetDashboard)
		reports.GET("/daily-sales", reportHandler.GetDailySales)
		reports.GET("/top-products", reportHandler.GetTopProducts)
	}
}
