package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

// User is an account that owns sites and equipment.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName    string         `gorm:"column:first_name;size:100;not null"`
	LastName     string         `gorm:"column:last_name;size:100;not null"`
	EmailAddress string         `gorm:"column:email_address;size:256;not null;index"`
	UserName     string         `gorm:"column:user_name;size:100;not null;index"`
	UserType     enums.UserType `gorm:"column:user_type;size:20;not null;default:'Admin'"`
	PasswordHash []byte         `gorm:"column:password_hash;not null"`
	PasswordSalt []byte         `gorm:"column:password_salt;not null"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	CreatedBy    *int64         `gorm:"column:created_by"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	UpdatedBy    *int64         `gorm:"column:updated_by"`
	DeletedAt    gorm.DeletedAt `gorm:"column:deleted_at;index"`
	DeletedBy    *int64         `gorm:"column:deleted_by"`
}

func (User) TableName() string { return "users" }

// FullName joins first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsDeleted reports whether the row carries a soft-delete marker.
func (u User) IsDeleted() bool {
	return u.DeletedAt.Valid
}
