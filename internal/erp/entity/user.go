package entity

import (
	"time"
)

// User 系统用户
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Username       string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	Email          string    `json:"email" gorm:"size:128"`
	HashedPassword string    `json:"-" gorm:"size:128;not null"`
	FullName       string    `json:"full_name" gorm:"size:64"`
	IsActive       bool      `json:"is_active" gorm:"not null;default:true"`
	IsAdmin        bool      `json:"is_admin" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "erp_users"
}
