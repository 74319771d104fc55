package sites

import (
	"strings"
	"time"

	"github.com/kitchenequip/equipment-backend/pkg/db/models"
)

type SiteDTO struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateSiteRequest creates a site. A zero UserID means the actor owns it; a
// nil Active means active.
type CreateSiteRequest struct {
	UserID      int64   `json:"user_id" label:"User id" validate:"gte=0"`
	Code        string  `json:"code" label:"Code" validate:"max=100"`
	Name        string  `json:"name" label:"Name" validate:"max=200"`
	Description *string `json:"description" label:"Description" validate:"omitempty,max=200"`
	Active      *bool   `json:"active"`
}

// UpdateSiteRequest edits a site. A blank Code keeps the current code; a nil
// Active keeps the current flag.
type UpdateSiteRequest struct {
	Code        string  `json:"code" label:"Code" validate:"max=100"`
	Name        string  `json:"name" label:"Name" validate:"notblank,max=200"`
	Description *string `json:"description" label:"Description" validate:"omitempty,max=200"`
	Active      *bool   `json:"active"`
}

// Query pages through one owner's sites.
type Query struct {
	Page            int    `json:"page"`
	PageSize        int    `json:"page_size"`
	Search          string `json:"search"`
	IncludeInactive bool   `json:"include_inactive"`
}

// EditEquipmentRequest lists equipment ids to attach to and detach from a
// site.
type EditEquipmentRequest struct {
	Add    []int64 `json:"add" label:"Add" validate:"dive,gt=0"`
	Remove []int64 `json:"remove" label:"Remove" validate:"dive,gt=0"`
}

// EditEquipmentResult reports how many assignments actually changed.
type EditEquipmentResult struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

func FromModel(s *models.Site) *SiteDTO {
	if s == nil {
		return nil
	}
	return &SiteDTO{
		ID:          s.ID,
		UserID:      s.UserID,
		Code:        s.Code,
		Name:        s.Name,
		Description: s.Description,
		Active:      s.Active,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func fromModelValue(s models.Site) SiteDTO {
	return *FromModel(&s)
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	t := strings.TrimSpace(*value)
	if t == "" {
		return nil
	}
	return &t
}

func distinct(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
