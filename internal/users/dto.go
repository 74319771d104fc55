package users

import (
	"time"

	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID           int64          `json:"id"`
	FirstName    string         `json:"first_name"`
	LastName     string         `json:"last_name"`
	FullName     string         `json:"full_name"`
	EmailAddress string         `json:"email_address"`
	UserName     string         `json:"user_name"`
	UserType     enums.UserType `json:"user_type"`
	IsDeleted    bool           `json:"is_deleted"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// UpdateUserRequest is the SuperAdmin edit of another account.
type UpdateUserRequest struct {
	FirstName string `json:"first_name" label:"First name" validate:"notblank,max=100"`
	LastName  string `json:"last_name" label:"Last name" validate:"notblank,max=100"`
	UserType  string `json:"user_type" label:"User type" validate:"notblank"`
}

// UpdatePasswordRequest changes the password of UserID.
type UpdatePasswordRequest struct {
	UserID          int64  `json:"user_id" label:"User id" validate:"gt=0"`
	NewPassword     string `json:"new_password" label:"New password" validate:"notblank,max=256"`
	ConfirmPassword string `json:"confirm_password" label:"Confirm password" validate:"notblank,max=256"`
	CurrentPassword string `json:"current_password" label:"Current password" validate:"notblank,max=256"`
}

// UpdateUserInfoRequest is the self-service profile edit.
type UpdateUserInfoRequest struct {
	UserID       int64  `json:"user_id" label:"User id" validate:"gt=0"`
	FirstName    string `json:"first_name" label:"First name" validate:"notblank,max=100"`
	LastName     string `json:"last_name" label:"Last name" validate:"notblank,max=100"`
	UserName     string `json:"user_name" label:"Username" validate:"notblank,max=100"`
	EmailAddress string `json:"email_address" label:"Email" validate:"notblank,max=256,email"`
}

// Query filters the SuperAdmin user listing.
type Query struct {
	Page           int    `json:"page"`
	PageSize       int    `json:"page_size"`
	Search         string `json:"search"`
	OrderBy        string `json:"order_by"`
	Desc           bool   `json:"desc"`
	IncludeDeleted bool   `json:"include_deleted"`
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.FullName(),
		EmailAddress: u.EmailAddress,
		UserName:     u.UserName,
		UserType:     u.UserType,
		IsDeleted:    u.IsDeleted(),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func fromModelValue(u models.User) UserDTO {
	return *FromModel(&u)
}
