package equipment

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/repo"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
)

// UniqueSerialIndex is the partial unique index guarding per-owner serials.
const UniqueSerialIndex = "ux_equipment_owner_serial_live"

var equipmentSort = repo.SortSpec{
	Columns: map[string]string{
		"SerialNumber": "serial_number",
		"Name":         "name",
		"Description":  "description",
		"Condition":    "condition",
		"SiteId":       "site_id",
		"UserId":       "user_id",
		"CreatedAt":    "created_at",
		"EquipmentId":  "id",
	},
	Fallback: "id",
}

// Repository wraps equipment persistence.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, e *models.Equipment) error {
	return r.base.DB(ctx).Create(e).Error
}

// Update writes every mutable column of e.
func (r *Repository) Update(ctx context.Context, e *models.Equipment) error {
	return r.base.DB(ctx).
		Model(e).
		Select("*").
		Omit("created_at", "created_by").
		Updates(e).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.base.DB(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByIDUnscoped also returns soft-deleted equipment.
func (r *Repository) FindByIDUnscoped(ctx context.Context, id int64) (*models.Equipment, error) {
	var e models.Equipment
	if err := r.base.Unscoped(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// FindByIDs returns the live equipment among ids keyed by id.
func (r *Repository) FindByIDs(ctx context.Context, ids []int64) (map[int64]*models.Equipment, error) {
	out := make(map[int64]*models.Equipment, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.Equipment
	if err := r.base.DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

// FindSite loads a live site by id for assignment checks.
func (r *Repository) FindSite(ctx context.Context, siteID int64) (*models.Site, error) {
	var site models.Site
	if err := r.base.DB(ctx).Where("id = ?", siteID).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// ListBySite returns the live equipment assigned to siteID.
func (r *Repository) ListBySite(ctx context.Context, siteID int64) ([]models.Equipment, error) {
	var rows []models.Equipment
	err := r.base.DB(ctx).
		Where("site_id = ?", siteID).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// SerialExists reports whether live equipment other than excludeID already
// uses serial. With the owner scope only ownerID's equipment is considered.
func (r *Repository) SerialExists(ctx context.Context, scope enums.SerialScope, ownerID int64, serial string, excludeID int64) (bool, error) {
	query := r.base.DB(ctx).
		Model(&models.Equipment{}).
		Where("serial_number = ?", strings.TrimSpace(serial))
	if scope != enums.SerialScopeGlobal {
		query = query.Where("user_id = ?", ownerID)
	}
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SoftDelete marks equipment deleted without touching its site assignment.
func (r *Repository) SoftDelete(ctx context.Context, id, actorID int64) error {
	return r.base.DB(ctx).
		Model(&models.Equipment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": time.Now().UTC(),
			"deleted_by": actorID,
			"updated_by": actorID,
		}).Error
}

// ListQuery filters a paged equipment listing.
type ListQuery struct {
	Params  pagination.Params
	OwnerID int64
	Search  string
	OrderBy string
	Desc    bool
}

// List returns one page of live equipment.
func (r *Repository) List(ctx context.Context, q ListQuery) (pagination.Page[models.Equipment], error) {
	query := r.base.DB(ctx).Model(&models.Equipment{})
	if q.OwnerID > 0 {
		query = query.Where("user_id = ?", q.OwnerID)
	}
	query = query.Scopes(repo.Search(q.Search,
		"CAST(id AS TEXT)", "serial_number", "description", "name",
	))
	return repo.FindPage[models.Equipment](query, q.Params, equipmentSort.OrderClause(q.OrderBy, q.Desc))
}
