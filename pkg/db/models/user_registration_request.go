package models

import (
	"strings"
	"time"

	"github.com/kitchenequip/equipment-backend/pkg/enums"
)

// UserRegistrationRequest holds a signup awaiting review. The password is
// stored only as hash + salt.
type UserRegistrationRequest struct {
	ID           int64                    `gorm:"column:id;primaryKey;autoIncrement"`
	FirstName    string                   `gorm:"column:first_name;size:100;not null"`
	LastName     string                   `gorm:"column:last_name;size:100;not null"`
	EmailAddress string                   `gorm:"column:email_address;size:256;not null;index"`
	UserName     string                   `gorm:"column:user_name;size:100;not null;index"`
	UserType     enums.UserType           `gorm:"column:user_type;size:20;not null;default:'Admin'"`
	PasswordHash []byte                   `gorm:"column:password_hash;not null"`
	PasswordSalt []byte                   `gorm:"column:password_salt;not null"`
	Status       enums.RegistrationStatus `gorm:"column:status;size:20;not null;default:'Pending';index"`
	ReviewedBy   *int64                   `gorm:"column:reviewed_by"`
	ReviewedAt   *time.Time               `gorm:"column:reviewed_at"`
	ReviewNote   *string                  `gorm:"column:review_note;size:500"`
	CreatedAt    time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserRegistrationRequest) TableName() string { return "user_registration_requests" }

func (r UserRegistrationRequest) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}
