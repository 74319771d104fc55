package users

import (
	"context"
	"strings"
	"time"

	"github.com/kitchenequip/equipment-backend/internal/repo"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
	"gorm.io/gorm"
)

var userSort = repo.SortSpec{
	Columns: map[string]string{
		"UserName":     "user_name",
		"FirstName":    "first_name",
		"LastName":     "last_name",
		"EmailAddress": "email_address",
		"UserType":     "user_type",
		"CreatedAt":    "created_at",
		"UserId":       "id",
	},
	Fallback: "id",
}

// Repository exposes user-related persistence operations. Lookups skip
// soft-deleted users unless stated otherwise.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, user *models.User) error {
	return r.base.DB(ctx).Create(user).Error
}

// Update persists every column of user except the creation audit fields.
func (r *Repository) Update(ctx context.Context, user *models.User) error {
	return r.base.DB(ctx).Model(user).Select("*").Omit("created_at", "created_by").Updates(user).Error
}

// FindByID loads a live user.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDUnscoped loads a user whether or not it is soft-deleted.
func (r *Repository) FindByIDUnscoped(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.base.Unscoped(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUserName loads a live user by username, ignoring case.
func (r *Repository) FindByUserName(ctx context.Context, userName string) (*models.User, error) {
	var user models.User
	err := r.base.DB(ctx).
		Where("LOWER(user_name) = ?", normalize(userName)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UserNameExists reports whether a live user other than excludeID holds userName.
func (r *Repository) UserNameExists(ctx context.Context, userName string, excludeID int64) (bool, error) {
	return r.exists(ctx, "LOWER(user_name) = ?", normalize(userName), excludeID)
}

// EmailExists reports whether a live user other than excludeID holds email.
func (r *Repository) EmailExists(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "LOWER(email_address) = ?", normalize(email), excludeID)
}

func (r *Repository) exists(ctx context.Context, cond string, value string, excludeID int64) (bool, error) {
	query := r.base.DB(ctx).Model(&models.User{}).Where(cond, value)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SoftDelete marks a live user deleted. Already deleted users are untouched.
func (r *Repository) SoftDelete(ctx context.Context, id, actorID int64) error {
	return r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deleted_at": time.Now().UTC(),
			"deleted_by": actorID,
			"updated_by": actorID,
		}).Error
}

// ListQuery filters and orders a user listing.
type ListQuery struct {
	Params         pagination.Params
	Search         string
	OrderBy        string
	Desc           bool
	IncludeDeleted bool
}

// List returns one page of users.
func (r *Repository) List(ctx context.Context, q ListQuery) (pagination.Page[models.User], error) {
	db := r.base.DB(ctx)
	if q.IncludeDeleted {
		db = r.base.Unscoped(ctx)
	}
	query := db.Model(&models.User{}).Scopes(repo.Search(q.Search,
		"CAST(id AS TEXT)", "user_name", "first_name", "last_name", "email_address",
	))
	return repo.FindPage[models.User](query, q.Params, userSort.OrderClause(q.OrderBy, q.Desc))
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
