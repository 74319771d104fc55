package registrations

import (
	"time"

	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

// SignupRequest is an account request awaiting review. UserType defaults to
// Admin.
type SignupRequest struct {
	FirstName    string `json:"first_name" label:"First name" validate:"max=100"`
	LastName     string `json:"last_name" label:"Last name" validate:"max=100"`
	EmailAddress string `json:"email_address" label:"Email" validate:"max=256,email"`
	UserName     string `json:"user_name" label:"Username" validate:"max=100"`
	Password     string `json:"password" label:"Password" validate:"max=256"`
	UserType     string `json:"user_type" label:"User type"`
}

// DenyRequest carries the optional reviewer note.
type DenyRequest struct {
	Note string `json:"note" label:"Note" validate:"max=500"`
}

// Query filters the registration listing. Status is "All" or one status.
type Query struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Status   string `json:"status"`
	Search   string `json:"search"`
	OrderBy  string `json:"order_by"`
	Desc     bool   `json:"desc"`
}

type RegistrationDTO struct {
	ID           int64                    `json:"id"`
	FirstName    string                   `json:"first_name"`
	LastName     string                   `json:"last_name"`
	FullName     string                   `json:"full_name"`
	EmailAddress string                   `json:"email_address"`
	UserName     string                   `json:"user_name"`
	UserType     enums.UserType           `json:"user_type"`
	Status       enums.RegistrationStatus `json:"status"`
	ReviewedBy   *int64                   `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time               `json:"reviewed_at,omitempty"`
	ReviewNote   *string                  `json:"review_note,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
}

func FromModel(r *models.UserRegistrationRequest) *RegistrationDTO {
	if r == nil {
		return nil
	}
	return &RegistrationDTO{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		FullName:     r.FullName(),
		EmailAddress: r.EmailAddress,
		UserName:     r.UserName,
		UserType:     r.UserType,
		Status:       r.Status,
		ReviewedBy:   r.ReviewedBy,
		ReviewedAt:   r.ReviewedAt,
		ReviewNote:   r.ReviewNote,
		CreatedAt:    r.CreatedAt,
	}
}

func fromModelValue(r models.UserRegistrationRequest) RegistrationDTO {
	return *FromModel(&r)
}
