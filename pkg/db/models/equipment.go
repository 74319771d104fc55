package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

// Equipment is a tracked appliance. SiteID, when set, points at a site owned
// by the same user.
type Equipment struct {
	ID           int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	UserID       int64                    `gorm:"column:user_id;not null;index"`
	SiteID       *int64                   `gorm:"column:site_id;index"`
	SerialNumber string                   `gorm:"column:serial_number;size:100;not null;index"`
	Name         *string                  `gorm:"column:name;size:200"`
	Description  *string                  `gorm:"column:description;size:200"`
	Condition    enums.EquipmentCondition `gorm:"column:condition;size:20;not null;default:'Working'"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	CreatedBy    *int64                   `gorm:"column:created_by"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
	UpdatedBy    *int64                   `gorm:"column:updated_by"`
	DeletedAt    gorm.DeletedAt           `gorm:"column:deleted_at;index"`
	DeletedBy    *int64                   `gorm:"column:deleted_by"`
}

func (Equipment) TableName() string { return "equipment" }

func (e Equipment) IsDeleted() bool {
	return e.DeletedAt.Valid
}

// OnSite reports whether the equipment is currently assigned to siteID.
func (e Equipment) OnSite(siteID int64) bool {
	return e.SiteID != nil && *e.SiteID == siteID
}
