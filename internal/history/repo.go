package history

import (
	"context"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/repo"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
)

// Repository appends and reads site/equipment history rows. Rows are never
// updated or deleted.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Append records one action for the (equipment, site) pair.
func (r *Repository) Append(ctx context.Context, equipmentID, siteID int64, action enums.HistoryAction, actorID int64) error {
	row := &models.SiteEquipmentHistory{
		EquipmentID: equipmentID,
		SiteID:      siteID,
		Action:      action,
		ActorID:     actorID,
	}
	return r.base.DB(ctx).Create(row).Error
}

// Register appends a Register row.
func (r *Repository) Register(ctx context.Context, equipmentID, siteID, actorID int64) error {
	return r.Append(ctx, equipmentID, siteID, enums.HistoryActionRegister, actorID)
}

// Unregister appends an Unregister row.
func (r *Repository) Unregister(ctx context.Context, equipmentID, siteID, actorID int64) error {
	return r.Append(ctx, equipmentID, siteID, enums.HistoryActionUnregister, actorID)
}

// ListQuery filters history rows. Zero values disable a filter.
type ListQuery struct {
	Params      pagination.Params
	EquipmentID int64
	SiteID      int64
	Action      enums.HistoryAction
	// OwnerID restricts rows to equipment currently owned by the user,
	// deleted equipment included.
	OwnerID int64
}

// List returns one page of history, newest first.
func (r *Repository) List(ctx context.Context, q ListQuery) (pagination.Page[models.SiteEquipmentHistory], error) {
	query := r.base.DB(ctx).Model(&models.SiteEquipmentHistory{})
	if q.EquipmentID > 0 {
		query = query.Where("equipment_id = ?", q.EquipmentID)
	}
	if q.SiteID > 0 {
		query = query.Where("site_id = ?", q.SiteID)
	}
	if q.Action != "" {
		query = query.Where("action = ?", q.Action)
	}
	if q.OwnerID > 0 {
		owned := r.base.Unscoped(ctx).Model(&models.Equipment{}).Select("id").Where("user_id = ?", q.OwnerID)
		query = query.Where("equipment_id IN (?)", owned)
	}
	return repo.FindPage[models.SiteEquipmentHistory](query, q.Params, "created_at DESC, id DESC")
}
