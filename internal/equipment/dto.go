package equipment

import (
	"strings"
	"time"

	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

type EquipmentDTO struct {
	ID           int64                    `json:"id"`
	UserID       int64                    `json:"user_id"`
	SiteID       *int64                   `json:"site_id,omitempty"`
	SerialNumber string                   `json:"serial_number"`
	Name         *string                  `json:"name,omitempty"`
	Description  *string                  `json:"description,omitempty"`
	Condition    enums.EquipmentCondition `json:"condition"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
}

// CreateEquipmentRequest registers new equipment. A zero UserID means the
// actor owns it.
type CreateEquipmentRequest struct {
	UserID       int64   `json:"user_id" label:"User id" validate:"gte=0"`
	SiteID       *int64  `json:"site_id" label:"Site id" validate:"omitempty,gt=0"`
	SerialNumber string  `json:"serial_number" label:"Serial number" validate:"notblank,max=100"`
	Name         *string `json:"name" label:"Name" validate:"omitempty,max=200"`
	Description  *string `json:"description" label:"Description" validate:"omitempty,max=200"`
	Condition    string  `json:"condition" label:"Condition"`
}

// UpdateEquipmentRequest replaces the editable fields. A nil SiteID
// unassigns the equipment.
type UpdateEquipmentRequest struct {
	SiteID       *int64  `json:"site_id" label:"Site id" validate:"omitempty,gt=0"`
	SerialNumber string  `json:"serial_number" label:"Serial number" validate:"notblank,max=100"`
	Name         *string `json:"name" label:"Name" validate:"omitempty,max=200"`
	Description  *string `json:"description" label:"Description" validate:"omitempty,max=200"`
	Condition    string  `json:"condition" label:"Condition"`
}

// OwnerQuery pages through one owner's equipment.
type OwnerQuery struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
}

// PagedQuery is the searchable, sortable listing across owners.
type PagedQuery struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
	OwnerID  int64  `json:"owner_id"`
	OrderBy  string `json:"order_by"`
	Desc     bool   `json:"desc"`
}

func FromModel(e *models.Equipment) *EquipmentDTO {
	if e == nil {
		return nil
	}
	return &EquipmentDTO{
		ID:           e.ID,
		UserID:       e.UserID,
		SiteID:       e.SiteID,
		SerialNumber: e.SerialNumber,
		Name:         e.Name,
		Description:  e.Description,
		Condition:    e.Condition,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func fromModelValue(e models.Equipment) EquipmentDTO {
	return *FromModel(&e)
}

// parseCondition maps request input to a condition. Blank input means
// Working; matching ignores case and the space in "Not Working".
func parseCondition(value string) (enums.EquipmentCondition, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return enums.EquipmentConditionWorking, true
	}
	compact := strings.ReplaceAll(strings.ToLower(trimmed), " ", "")
	switch compact {
	case "working":
		return enums.EquipmentConditionWorking, true
	case "notworking":
		return enums.EquipmentConditionNotWorking, true
	}
	return "", false
}

// trimmed returns nil for nil or blank input.
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

func trimSerial(serial string) string {
	return strings.TrimSpace(serial)
}
