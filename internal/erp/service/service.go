package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/Castor6/dsx-erp/internal/config"
	"github.com/Castor6/dsx-erp/internal/erp/repository"
)

// Services 服务集合
type Services struct {
	Auth        *AuthService
	User        *UserService
	Warehouse   *WarehouseService
	Supplier    *SupplierService
	Product     *ProductService
	Procurement *ProcurementService
	Inventory   *InventoryService
	Combo       *ComboService
	Dashboard   *DashboardService
	Upload      *UploadService
}

// NewServices 创建服务集合
func NewServices(db *gorm.DB, repos *repository.Repositories, rdb *redis.Client, cfg *config.Config) *Services {
	// 初始化MinIO客户端，未配置或初始化失败时图片上传不可用
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			minioClient = nil
		}
	}

	return &Services{
		Auth:        NewAuthService(repos.User, rdb, cfg),
		User:        NewUserService(repos.User),
		Warehouse:   NewWarehouseService(repos.Warehouse),
		Supplier:    NewSupplierService(repos.Supplier, repos.Product),
		Product:     NewProductService(repos.Product, repos.Combo, rdb),
		Procurement: NewProcurementService(repos.Purchase, repos.Supplier, repos.Warehouse, repos.Product, db),
		Inventory:   NewInventoryService(repos.Inventory, repos.Product, db),
		Combo:       NewComboService(repos.Combo, repos.Product, repos.Warehouse, repos.Inventory, db),
		Dashboard:   NewDashboardService(repos.Product, repos.Combo, repos.Supplier, repos.Warehouse, repos.Purchase),
		Upload:      NewUploadService(minioClient, cfg.MinIO.Bucket),
	}
}
