package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/users"
	"github.com/kitchenequip/equipment-backend/internal/validation"
	pkgAuth "github.com/kitchenequip/equipment-backend/pkg/auth"
	"github.com/kitchenequip/equipment-backend/pkg/auth/session"
	"github.com/kitchenequip/equipment-backend/pkg/config"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/metrics"
	"github.com/kitchenequip/equipment-backend/pkg/security"
)

const invalidCredentialsMessage = "Invalid username or password."

// Service defines the behavior needed by the auth controller.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, accessID string) error
}

type sessionManager interface {
	Start(ctx context.Context, accessID string, userID int64) error
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
// SessionManager is optional; without it tokens stay valid until they expire.
type ServiceParams struct {
	DB             *db.Client
	Logger         *logger.Logger
	Metrics        *metrics.DomainMetrics
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Now            func() time.Time
}

type service struct {
	db      *db.Client
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
	session sessionManager
	jwtCfg  config.JWTConfig
	now     func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.JWTConfig.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		db:      params.DB,
		logg:    params.Logger,
		metrics: params.Metrics,
		session: params.SessionManager,
		jwtCfg:  params.JWTConfig,
		now:     now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := users.NewRepository(s.db.DB()).FindByUserName(ctx, strings.TrimSpace(req.UserName))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.rejected(ctx)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
	}
	if user.IsDeleted() || !security.Verify(user.PasswordHash, user.PasswordSalt, req.Password) {
		return nil, s.rejected(ctx)
	}

	now := s.now()
	accessID := session.NewAccessID()
	token, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID:   user.ID,
		UserType: user.UserType,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if s.session != nil {
		if err := s.session.Start(ctx, accessID, user.ID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
		}
	}

	s.metrics.IncLogin("success")
	ctx = s.logg.WithActorID(ctx, user.ID)
	s.logg.Info(ctx, "auth.login succeeded")

	return &LoginResponse{
		UserID:      user.ID,
		UserType:    user.UserType,
		FullName:    user.FullName(),
		AccessToken: token,
		ExpiresAt:   pkgAuth.ExpiresAt(s.jwtCfg, now),
	}, nil
}

// Logout revokes the session behind the access token id. It is a no-op when
// sessions are not tracked.
func (s *service) Logout(ctx context.Context, accessID string) error {
	if s.session == nil || strings.TrimSpace(accessID) == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) rejected(ctx context.Context) error {
	s.metrics.IncLogin("failure")
	s.logg.Warn(ctx, "auth.login rejected")
	return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
}
