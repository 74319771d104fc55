package history

import (
	"time"

	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

// EntryDTO is one history row as returned to callers.
type EntryDTO struct {
	ID          int64               `json:"id"`
	EquipmentID int64               `json:"equipment_id"`
	SiteID      int64               `json:"site_id"`
	Action      enums.HistoryAction `json:"action"`
	ActorID     int64               `json:"actor_id"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Query filters the activity listing.
type Query struct {
	EquipmentID int64  `json:"equipment_id" label:"Equipment id" validate:"gte=0"`
	SiteID      int64  `json:"site_id" label:"Site id" validate:"gte=0"`
	Action      string `json:"action" label:"Action" validate:"omitempty,oneof=Register Unregister"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}

func fromModel(row models.SiteEquipmentHistory) EntryDTO {
	return EntryDTO{
		ID:          row.ID,
		EquipmentID: row.EquipmentID,
		SiteID:      row.SiteID,
		Action:      row.Action,
		ActorID:     row.ActorID,
		CreatedAt:   row.CreatedAt,
	}
}
