package users

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/access"
	"github.com/kitchenequip/equipment-backend/internal/validation"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
	"github.com/kitchenequip/equipment-backend/pkg/security"
)

const (
	msgUserNotFound     = "User not found."
	msgDeleteSelf       = "You cannot delete your own account."
	msgDeleteSuperAdmin = "Cannot delete a SuperAdmin."
	msgPasswordMismatch = "New password and confirmation do not match."
	msgWrongPassword    = "Current password is incorrect."
	msgUserNameTaken    = "Username already exists."
	msgEmailTaken       = "Email already exists."
	msgInvalidUserType  = "User type is invalid."
	msgInvalidEmail     = "Invalid email address."
)

// Service exposes SuperAdmin account administration and self-service
// profile and password updates.
type Service interface {
	List(ctx context.Context, actorID int64, q Query) (pagination.Page[UserDTO], error)
	Get(ctx context.Context, actorID, id int64) (*UserDTO, error)
	Update(ctx context.Context, actorID, id int64, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, actorID, id int64) error
	UpdatePassword(ctx context.Context, actorID int64, req UpdatePasswordRequest) error
	UpdateUserInfo(ctx context.Context, actorID int64, req UpdateUserInfoRequest) (*UserDTO, error)
}

// ServiceParams packages the dependencies for the account service.
type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

type service struct {
	db   *db.Client
	logg *logger.Logger
}

// NewService builds an account service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB, logg: params.Logger}, nil
}

func (s *service) List(ctx context.Context, actorID int64, q Query) (pagination.Page[UserDTO], error) {
	params := pagination.Params{Page: q.Page, PageSize: q.PageSize}
	repo := NewRepository(s.db.DB())

	if _, err := access.RequireSuperAdmin(ctx, repo, actorID); err != nil {
		if access.IsDenied(err) {
			s.logg.Warn(s.logg.WithActorID(ctx, actorID), "users.list denied")
			return pagination.Empty[UserDTO](params), nil
		}
		return pagination.Page[UserDTO]{}, err
	}

	page, err := repo.List(ctx, ListQuery{
		Params:         params,
		Search:         q.Search,
		OrderBy:        q.OrderBy,
		Desc:           q.Desc,
		IncludeDeleted: q.IncludeDeleted,
	})
	if err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return pagination.Map(page, fromModelValue), nil
}

func (s *service) Get(ctx context.Context, actorID, id int64) (*UserDTO, error) {
	repo := NewRepository(s.db.DB())
	if _, err := access.RequireSuperAdmin(ctx, repo, actorID); err != nil {
		return nil, err
	}
	user, err := loadUser(ctx, repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Update(ctx context.Context, actorID, id int64, req UpdateUserRequest) (*UserDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	userType, err := enums.ParseUserType(req.UserType)
	if err != nil {
		return nil, pkgerrors.Validation([]string{msgInvalidUserType})
	}

	var updated *UserDTO
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		actor, err := access.RequireSuperAdmin(ctx, repo, actorID)
		if err != nil {
			return err
		}
		user, err := loadUser(ctx, repo, id)
		if err != nil {
			return err
		}

		user.FirstName = strings.TrimSpace(req.FirstName)
		user.LastName = strings.TrimSpace(req.LastName)
		user.UserType = userType
		user.UpdatedBy = &actor.ID
		if err := repo.Update(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user")
		}
		updated = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		actor, err := access.RequireSuperAdmin(ctx, repo, actorID)
		if err != nil {
			return err
		}
		if id == actor.ID {
			return pkgerrors.New(pkgerrors.CodeForbidden, msgDeleteSelf)
		}

		target, err := repo.FindByIDUnscoped(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
		}
		if target.IsDeleted() {
			return nil
		}
		if target.UserType == enums.UserTypeSuperAdmin {
			return pkgerrors.New(pkgerrors.CodeForbidden, msgDeleteSuperAdmin)
		}

		if err := repo.SoftDelete(ctx, target.ID, actor.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete user")
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"actor_id": actor.ID, "user_id": target.ID}), "user soft-deleted")
		return nil
	})
}

// UpdatePassword verifies the acting user's own current password, even when a
// SuperAdmin changes someone else's password.
func (s *service) UpdatePassword(ctx context.Context, actorID int64, req UpdatePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if req.NewPassword != req.ConfirmPassword {
		return pkgerrors.Validation([]string{msgPasswordMismatch})
	}

	hash, salt, err := security.HashNew(req.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		actor, err := access.RequireManage(ctx, repo, actorID, req.UserID)
		if err != nil {
			return err
		}
		if !security.Verify(actor.PasswordHash, actor.PasswordSalt, req.CurrentPassword) {
			return pkgerrors.New(pkgerrors.CodeValidation, msgWrongPassword).WithDetails([]string{msgWrongPassword})
		}

		target := actor
		if req.UserID != actor.ID {
			if target, err = loadUser(ctx, repo, req.UserID); err != nil {
				return err
			}
		}

		target.PasswordHash = hash
		target.PasswordSalt = salt
		target.UpdatedBy = &actor.ID
		if err := repo.Update(ctx, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update password")
		}
		return nil
	})
}

func (s *service) UpdateUserInfo(ctx context.Context, actorID int64, req UpdateUserInfoRequest) (*UserDTO, error) {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.UserName = strings.TrimSpace(req.UserName)
	req.EmailAddress = strings.TrimSpace(req.EmailAddress)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if !validation.IsEmail(req.EmailAddress) {
		return nil, pkgerrors.Validation([]string{msgInvalidEmail})
	}

	var updated *UserDTO
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		actor, err := access.RequireManage(ctx, repo, actorID, req.UserID)
		if err != nil {
			return err
		}
		user, err := loadUser(ctx, repo, req.UserID)
		if err != nil {
			return err
		}

		taken, err := repo.UserNameExists(ctx, req.UserName, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, msgUserNameTaken)
		}
		taken, err = repo.EmailExists(ctx, req.EmailAddress, user.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, msgEmailTaken)
		}

		user.FirstName = req.FirstName
		user.LastName = req.LastName
		user.UserName = req.UserName
		user.EmailAddress = req.EmailAddress
		user.UpdatedBy = &actor.ID
		if err := repo.Update(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user info")
		}
		updated = FromModel(user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func loadUser(ctx context.Context, repo *Repository, id int64) (*models.User, error) {
	user, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgUserNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
