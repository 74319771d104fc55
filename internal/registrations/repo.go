package registrations

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/repo"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
)

var requestSort = repo.SortSpec{
	Columns: map[string]string{
		"UserName":     "user_name",
		"FirstName":    "first_name",
		"LastName":     "last_name",
		"EmailAddress": "email_address",
		"RequestId":    "id",
		"UserType":     "user_type",
		"CreatedAt":    "created_at",
	},
	Fallback:     "created_at",
	FallbackDesc: true,
}

// Repository wraps registration request persistence.
type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, req *models.UserRegistrationRequest) error {
	return r.base.DB(ctx).Create(req).Error
}

// Update writes the review fields of req.
func (r *Repository) Update(ctx context.Context, req *models.UserRegistrationRequest) error {
	return r.base.DB(ctx).
		Model(req).
		Select("status", "reviewed_by", "reviewed_at", "review_note", "updated_at").
		Updates(req).Error
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.UserRegistrationRequest, error) {
	var req models.UserRegistrationRequest
	if err := r.base.DB(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// PendingExists reports whether a pending request already claims userName or
// email, ignoring case.
func (r *Repository) PendingExists(ctx context.Context, userName, email string) (bool, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.UserRegistrationRequest{}).
		Where("status = ?", enums.RegistrationStatusPending).
		Where("(LOWER(user_name) = ? OR LOWER(email_address) = ?)", normalize(userName), normalize(email)).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListQuery filters registration requests. An empty Status selects all.
type ListQuery struct {
	Params  pagination.Params
	Status  enums.RegistrationStatus
	Search  string
	OrderBy string
	Desc    bool
}

func (r *Repository) List(ctx context.Context, q ListQuery) (pagination.Page[models.UserRegistrationRequest], error) {
	query := r.base.DB(ctx).Model(&models.UserRegistrationRequest{})
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	query = query.Scopes(repo.Search(q.Search,
		"CAST(id AS TEXT)", "user_name", "first_name || ' ' || last_name", "email_address",
	))
	return repo.FindPage[models.UserRegistrationRequest](query, q.Params, requestSort.OrderClause(q.OrderBy, q.Desc))
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
