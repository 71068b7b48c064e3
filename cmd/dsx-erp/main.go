package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Castor6/dsx-erp/internal/config"
	"github.com/Castor6/dsx-erp/internal/erp/entity"
	"github.com/Castor6/dsx-erp/internal/erp/handler"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
	"github.com/Castor6/dsx-erp/internal/erp/service"
	"github.com/Castor6/dsx-erp/internal/middleware"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting dsx-erp service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// 自动迁移
	if err := entity.AutoMigrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}
	zapLogger.Info("Database migration completed")

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 初始化依赖
	repos := repository.NewRepositories(db)
	services := service.NewServices(db, repos, rdb, cfg)

	// 初始管理员账户（首次启动时创建）
	adminPassword := config.GetEnvOrDefault("ADMIN_PASSWORD", "")
	if err := services.User.EnsureDefaultAdmin(context.Background(), adminPassword); err != nil {
		zapLogger.Warn("Failed to ensure default admin", zap.Error(err))
	}

	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// AutoMigrate 对带外键的表会触发级联问题，关闭约束自动创建
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// 需要认证的接口
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			// 当前用户
			authorized.GET("/auth/me", h.Auth.Me)

			// 用户管理
			users := authorized.Group("/users")
			{
				users.GET("/me", h.User.Me)
				users.PUT("/me/profile", h.User.UpdateProfile)
				users.POST("/me/change-password", h.User.ChangePassword)

				// 管理员操作
				admin := users.Group("")
				admin.Use(middleware.RequireAdmin())
				{
					admin.GET("", h.User.ListUsers)
					admin.POST("", h.User.CreateUser)
					admin.PUT("/:id", h.User.UpdateUser)
					admin.DELETE("/:id", h.User.DeleteUser)
				}
			}

			// 仓库管理
			warehouses := authorized.Group("/warehouses")
			{
				warehouses.GET("", h.Warehouse.ListWarehouses)
				warehouses.POST("", h.Warehouse.CreateWarehouse)
				warehouses.GET("/:id", h.Warehouse.GetWarehouse)
				warehouses.PUT("/:id", h.Warehouse.UpdateWarehouse)
				warehouses.DELETE("/:id", h.Warehouse.DeleteWarehouse)
			}

			// 供应商管理
			suppliers := authorized.Group("/suppliers")
			{
				suppliers.GET("", h.Supplier.ListSuppliers)
				suppliers.POST("", h.Supplier.CreateSupplier)
				suppliers.GET("/:id", h.Supplier.GetSupplier)
				suppliers.PUT("/:id", h.Supplier.UpdateSupplier)
				suppliers.DELETE("/:id", h.Supplier.DeleteSupplier)
				suppliers.GET("/:id/products", h.Supplier.ListProductsBySupplier)
			}

			// 供货关系
			supplierProducts := authorized.Group("/supplier-products")
			{
				supplierProducts.GET("", h.Supplier.ListSupplierProducts)
				supplierProducts.POST("", h.Supplier.CreateSupplierProduct)
				supplierProducts.POST("/batch", h.Supplier.BatchCreateSupplierProducts)
				supplierProducts.POST("/import/excel", h.Supplier.ImportSupplierProducts)
				supplierProducts.PUT("/:id", h.Supplier.UpdateSupplierProduct)
				supplierProducts.DELETE("/:id", h.Supplier.DeleteSupplierProduct)
			}

			// 商品管理
			products := authorized.Group("/products")
			{
				products.GET("", h.Product.ListProducts)
				products.POST("", h.Product.CreateProduct)
				products.GET("/:id", h.Product.GetProduct)
				products.PUT("/:id", h.Product.UpdateProduct)
				products.DELETE("/:id", h.Product.DeleteProduct)
				products.GET("/:id/packaging-relations", h.Product.ListPackagingRelations)
				products.GET("/:id/suppliers", h.Supplier.ListSuppliersByProduct)
			}

			// 采购订单
			purchaseOrders := authorized.Group("/purchase-orders")
			{
				purchaseOrders.GET("", h.Purchase.ListPOs)
				purchaseOrders.POST("", h.Purchase.CreatePO)
				purchaseOrders.GET("/:id", h.Purchase.GetPO)
				purchaseOrders.PUT("/:id", h.Purchase.UpdatePO)
				purchaseOrders.POST("/:id/receive", h.Purchase.ReceivePO)
				purchaseOrders.DELETE("/:id", h.Purchase.DeletePO)
			}

			// 库存管理
			inventory := authorized.Group("/inventory")
			{
				inventory.GET("/records", h.Inventory.ListRecords)
				inventory.GET("/records/:warehouseId", h.Inventory.ListRecordsByWarehouse)
				inventory.GET("/summary", h.Inventory.Summary)
				inventory.GET("/summary/export", h.Inventory.ExportSummary)
				inventory.POST("/package", h.Inventory.Pack)
				inventory.POST("/ship", h.Inventory.Ship)
				inventory.GET("/transactions", h.Inventory.ListTransactions)
				inventory.GET("/product/:productId/packaging", h.Inventory.ProductPackagingStock)

				// 组合商品库存
				inventory.GET("/combo/records", h.Combo.ListRecords)
				inventory.GET("/combo/records/:warehouseId", h.Combo.ListRecordsByWarehouse)
				inventory.GET("/combo/summary", h.Combo.Summary)
				inventory.GET("/combo/transactions", h.Combo.ListTransactions)
				inventory.GET("/combo-product/:comboId/packaging", h.Combo.PackagingStock)
			}

			// 组合商品
			comboProducts := authorized.Group("/combo-products")
			{
				comboProducts.GET("", h.Combo.ListCombos)
				comboProducts.POST("", h.Combo.CreateCombo)
				comboProducts.GET("/:id", h.Combo.GetCombo)
				comboProducts.PUT("/:id", h.Combo.UpdateCombo)
				comboProducts.DELETE("/:id", h.Combo.DeleteCombo)
				comboProducts.GET("/:id/available", h.Combo.AvailableToAssemble)
				comboProducts.POST("/assemble", h.Combo.Assemble)
				comboProducts.POST("/ship", h.Combo.ShipCombo)
			}

			// 仪表盘
			authorized.GET("/dashboard/stats", h.Dashboard.Stats)

			// 图片上传（GET 支持 query token，便于 <img> 拉取）
			upload := authorized.Group("/upload")
			{
				upload.POST("/image", h.Upload.UploadImage)
				upload.GET("/image/*path", h.Upload.GetImage)
				upload.DELETE("/image/*path", h.Upload.DeleteImage)
			}
		}
	}
}
