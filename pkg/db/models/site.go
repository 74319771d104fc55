package models

import (
	"time"

	"gorm.io/gorm"
)

// Site is a location owned by one user. Code is unique among live sites;
// Name is unique among one owner's live sites.
type Site struct {
	ID          int64          `gorm:"column:id;primaryKey;autoIncrement"`
	UserID      int64          `gorm:"column:user_id;not null;index"`
	Code        string         `gorm:"column:code;size:100;not null;index"`
	Name        string         `gorm:"column:name;size:200;not null"`
	Description *string        `gorm:"column:description;size:200"`
	Active      bool           `gorm:"column:active;not null"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	CreatedBy   *int64         `gorm:"column:created_by"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
	UpdatedBy   *int64         `gorm:"column:updated_by"`
	DeletedAt   gorm.DeletedAt `gorm:"column:deleted_at;index"`
	DeletedBy   *int64         `gorm:"column:deleted_by"`
}

func (Site) TableName() string { return "sites" }

func (s Site) IsDeleted() bool {
	return s.DeletedAt.Valid
}
