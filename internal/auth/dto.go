package auth

import (
	"time"

	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	UserName string `json:"user_name" label:"Username" validate:"notblank,max=100"`
	Password string `json:"password" label:"Password" validate:"required,max=256"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	UserID      int64          `json:"user_id"`
	UserType    enums.UserType `json:"user_type"`
	FullName    string         `json:"full_name"`
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
}
