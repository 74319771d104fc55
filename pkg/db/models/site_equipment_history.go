package models

import (
	"time"

	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

// SiteEquipmentHistory is an append-only record of one equipment being
// registered to or unregistered from a site.
type SiteEquipmentHistory struct {
	ID          int64               `gorm:"column:id;primaryKey;autoIncrement"`
	EquipmentID int64               `gorm:"column:equipment_id;not null;index"`
	SiteID      int64               `gorm:"column:site_id;not null;index"`
	Action      enums.HistoryAction `gorm:"column:action;size:20;not null"`
	ActorID     int64               `gorm:"column:actor_id;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (SiteEquipmentHistory) TableName() string { return "site_equipment_history" }
