package sites

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/repo"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
)

const (
	// UniqueCodeIndex guards codes across live sites.
	UniqueCodeIndex = "ux_sites_code_live"
	// UniqueOwnerNameIndex guards names within one owner's live sites.
	UniqueOwnerNameIndex = "ux_sites_owner_name_live"
)

// Repository wraps site persistence.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, site *models.Site) error {
	return r.base.DB(ctx).Create(site).Error
}

// Update writes every mutable column of site.
func (r *Repository) Update(ctx context.Context, site *models.Site) error {
	return r.base.DB(ctx).
		Model(site).
		Select("*").
		Omit("created_at", "created_by").
		Updates(site).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Site, error) {
	var site models.Site
	if err := r.base.DB(ctx).Where("id = ?", id).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *Repository) FindByIDUnscoped(ctx context.Context, id int64) (*models.Site, error) {
	var site models.Site
	if err := r.base.Unscoped(ctx).Where("id = ?", id).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// FindByCode looks up a live site by its normalized code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Site, error) {
	var site models.Site
	if err := r.base.DB(ctx).Where("code = ?", NormalizeCode(code)).First(&site).Error; err != nil {
		return nil, err
	}
	return &site, nil
}

// CodeExists reports whether a live site other than excludeID uses code.
func (r *Repository) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	query := r.base.DB(ctx).Model(&models.Site{}).Where("code = ?", NormalizeCode(code))
	return count(query, excludeID)
}

// NameExists reports whether ownerID has another live site named name,
// ignoring case.
func (r *Repository) NameExists(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	query := r.base.DB(ctx).
		Model(&models.Site{}).
		Where("user_id = ?", ownerID).
		Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	return count(query, excludeID)
}

func count(query *gorm.DB, excludeID int64) (bool, error) {
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) SoftDelete(ctx context.Context, id, actorID int64) error {
	return r.base.DB(ctx).
		Model(&models.Site{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": time.Now().UTC(),
			"deleted_by": actorID,
			"updated_by": actorID,
		}).Error
}

// ListQuery filters one owner's sites.
type ListQuery struct {
	Params          pagination.Params
	OwnerID         int64
	Search          string
	IncludeInactive bool
}

// List returns one page of live sites ordered by name.
func (r *Repository) List(ctx context.Context, q ListQuery) (pagination.Page[models.Site], error) {
	query := r.base.DB(ctx).Model(&models.Site{})
	if q.OwnerID > 0 {
		query = query.Where("user_id = ?", q.OwnerID)
	}
	if !q.IncludeInactive {
		query = query.Where("active = ?", true)
	}
	query = query.Scopes(repo.Search(q.Search, "name", "code", "description"))
	return repo.FindPage[models.Site](query, q.Params, "name ASC, id ASC")
}
