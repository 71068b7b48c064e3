package entity

import (
	"time"
)

// Warehouse 仓库
type Warehouse struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"size:128;not null"`
	Address   string    `json:"address" gorm:"size:256"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Warehouse) TableName() string {
	return "erp_warehouses"
}
