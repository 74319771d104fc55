package registrations

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/access"
	"github.com/kitchenequip/equipment-backend/internal/users"
	"github.com/kitchenequip/equipment-backend/internal/validation"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/metrics"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
	"github.com/kitchenequip/equipment-backend/pkg/security"
)

const (
	msgAllFieldsRequired = "All fields are required."
	msgUserNameTaken     = "Username already exists."
	msgEmailTaken        = "Email already exists."
	msgPendingExists     = "A pending request already exists for this username or email."
	msgNotPending        = "Request not found or already processed."
	msgInvalidUserType   = "User type is invalid."
	msgInvalidStatus     = "Status is invalid."

	noteApproved = "Approved"
	noteDenied   = "Denied"
)

// Service runs the signup workflow: requests are submitted anonymously and
// reviewed by a SuperAdmin.
type Service interface {
	RequestSignup(ctx context.Context, req SignupRequest) (int64, error)
	Approve(ctx context.Context, reviewerID, requestID int64) (*RegistrationDTO, error)
	Deny(ctx context.Context, reviewerID, requestID int64, req DenyRequest) (*RegistrationDTO, error)
	GetPaged(ctx context.Context, actorID int64, q Query) (pagination.Page[RegistrationDTO], error)
}

type ServiceParams struct {
	DB      *db.Client
	Logger  *logger.Logger
	Metrics *metrics.DomainMetrics
}

type service struct {
	db      *db.Client
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB, logg: params.Logger, metrics: params.Metrics}, nil
}

// RequestSignup stores a pending request. The password is hashed here and
// never persisted in plain text.
func (s *service) RequestSignup(ctx context.Context, req SignupRequest) (int64, error) {
	if blank(req.FirstName, req.LastName, req.EmailAddress, req.UserName, req.Password) {
		return 0, pkgerrors.Validation([]string{msgAllFieldsRequired})
	}
	if err := validation.Struct(req); err != nil {
		return 0, err
	}
	userType := enums.UserTypeAdmin
	if strings.TrimSpace(req.UserType) != "" {
		parsed, err := enums.ParseUserType(req.UserType)
		if err != nil {
			return 0, pkgerrors.Validation([]string{msgInvalidUserType})
		}
		userType = parsed
	}

	hash, salt, err := security.HashNew(req.Password)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	userName := strings.TrimSpace(req.UserName)
	email := strings.TrimSpace(req.EmailAddress)

	var created *models.UserRegistrationRequest
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := checkIdentity(ctx, users.NewRepository(tx), userName, email); err != nil {
			return err
		}
		repo := NewRepository(tx)
		pending, err := repo.PendingExists(ctx, userName, email)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending requests")
		}
		if pending {
			return pkgerrors.New(pkgerrors.CodeConflict, msgPendingExists)
		}

		row := &models.UserRegistrationRequest{
			FirstName:    strings.TrimSpace(req.FirstName),
			LastName:     strings.TrimSpace(req.LastName),
			EmailAddress: email,
			UserName:     userName,
			UserType:     userType,
			PasswordHash: hash,
			PasswordSalt: salt,
			Status:       enums.RegistrationStatusPending,
		}
		if err := repo.Create(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, msgPendingExists)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create registration request")
		}
		created = row
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.IncRegistration("requested")
	s.logg.Info(s.logg.WithField(ctx, "registration_id", created.ID), "signup requested")
	return created.ID, nil
}

// Approve creates the user from a pending request and marks it approved in
// the same transaction.
func (s *service) Approve(ctx context.Context, reviewerID, requestID int64) (*RegistrationDTO, error) {
	var approved *models.UserRegistrationRequest
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		repo := NewRepository(tx)

		reviewer, err := access.RequireSuperAdmin(ctx, userRepo, reviewerID)
		if err != nil {
			return err
		}
		req, err := loadPending(ctx, repo, requestID)
		if err != nil {
			return err
		}
		if err := checkIdentity(ctx, userRepo, req.UserName, req.EmailAddress); err != nil {
			return err
		}

		user := &models.User{
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			EmailAddress: req.EmailAddress,
			UserName:     req.UserName,
			UserType:     req.UserType,
			PasswordHash: req.PasswordHash,
			PasswordSalt: req.PasswordSalt,
			CreatedBy:    &reviewer.ID,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, msgUserNameTaken)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
		}

		markReviewed(req, enums.RegistrationStatusApproved, reviewer.ID, noteApproved)
		if err := repo.Update(ctx, req); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "approve request")
		}
		approved = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRegistration("approved")
	s.logg.Info(s.logg.WithField(s.logg.WithActorID(ctx, reviewerID), "registration_id", requestID), "registration approved")
	return FromModel(approved), nil
}

// Deny closes a pending request. A blank note is stored as "Denied".
func (s *service) Deny(ctx context.Context, reviewerID, requestID int64, in DenyRequest) (*RegistrationDTO, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	note := strings.TrimSpace(in.Note)
	if note == "" {
		note = noteDenied
	}

	var denied *models.UserRegistrationRequest
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		reviewer, err := access.RequireSuperAdmin(ctx, users.NewRepository(tx), reviewerID)
		if err != nil {
			return err
		}
		req, err := loadPending(ctx, repo, requestID)
		if err != nil {
			return err
		}
		markReviewed(req, enums.RegistrationStatusDenied, reviewer.ID, note)
		if err := repo.Update(ctx, req); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deny request")
		}
		denied = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRegistration("denied")
	return FromModel(denied), nil
}

func (s *service) GetPaged(ctx context.Context, actorID int64, q Query) (pagination.Page[RegistrationDTO], error) {
	params := pagination.Params{Page: q.Page, PageSize: q.PageSize}

	var status enums.RegistrationStatus
	if raw := strings.TrimSpace(q.Status); raw != "" && !strings.EqualFold(raw, enums.RegistrationStatusFilterAll) {
		parsed, err := enums.ParseRegistrationStatus(raw)
		if err != nil {
			return pagination.Page[RegistrationDTO]{}, pkgerrors.Validation([]string{msgInvalidStatus})
		}
		status = parsed
	}

	conn := s.db.DB()
	if _, err := access.RequireSuperAdmin(ctx, users.NewRepository(conn), actorID); err != nil {
		if access.IsDenied(err) {
			s.logg.Warn(s.logg.WithActorID(ctx, actorID), "registrations.list denied")
			return pagination.Empty[RegistrationDTO](params), nil
		}
		return pagination.Page[RegistrationDTO]{}, err
	}

	page, err := NewRepository(conn).List(ctx, ListQuery{
		Params:  params,
		Status:  status,
		Search:  q.Search,
		OrderBy: q.OrderBy,
		Desc:    q.Desc,
	})
	if err != nil {
		return pagination.Page[RegistrationDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list registrations")
	}
	return pagination.Map(page, fromModelValue), nil
}

func checkIdentity(ctx context.Context, userRepo *users.Repository, userName, email string) error {
	taken, err := userRepo.UserNameExists(ctx, userName, 0)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check username")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, msgUserNameTaken)
	}
	taken, err = userRepo.EmailExists(ctx, email, 0)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check email")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, msgEmailTaken)
	}
	return nil
}

// loadPending returns the request only while it is still pending.
func loadPending(ctx context.Context, repo *Repository, id int64) (*models.UserRegistrationRequest, error) {
	req, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotPending)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load registration request")
	}
	if req.Status != enums.RegistrationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, msgNotPending)
	}
	return req, nil
}

func markReviewed(req *models.UserRegistrationRequest, status enums.RegistrationStatus, reviewerID int64, note string) {
	now := time.Now().UTC()
	req.Status = status
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &now
	req.ReviewNote = &note
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
