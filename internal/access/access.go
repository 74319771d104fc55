// Package access holds the authorization rules shared by every service.
package access

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
)

const (
	MessageActorNotFound = "Actor not found."
	MessageForbidden     = "Forbidden."
)

// UserFinder loads live users by id.
type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// IsSuperAdmin reports whether user is an active, non-deleted SuperAdmin.
func IsSuperAdmin(user *models.User) bool {
	return user != nil && !user.IsDeleted() && user.UserType == enums.UserTypeSuperAdmin
}

// CanManage reports whether actor may act on a record owned by ownerID.
func CanManage(actor *models.User, ownerID int64) bool {
	if actor == nil || actor.IsDeleted() {
		return false
	}
	return actor.ID == ownerID || IsSuperAdmin(actor)
}

// ResolveActor loads the acting user. Missing or deleted actors are
// unauthorized.
func ResolveActor(ctx context.Context, users UserFinder, actorID int64) (*models.User, error) {
	if actorID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, MessageActorNotFound)
	}
	actor, err := users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, MessageActorNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load actor")
	}
	if actor == nil || actor.IsDeleted() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, MessageActorNotFound)
	}
	return actor, nil
}

// RequireSuperAdmin resolves the actor and requires the SuperAdmin role.
func RequireSuperAdmin(ctx context.Context, users UserFinder, actorID int64) (*models.User, error) {
	actor, err := ResolveActor(ctx, users, actorID)
	if err != nil {
		return nil, err
	}
	if !IsSuperAdmin(actor) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, MessageForbidden)
	}
	return actor, nil
}

// RequireManage resolves the actor and requires ownership of ownerID or the
// SuperAdmin role.
func RequireManage(ctx context.Context, users UserFinder, actorID, ownerID int64) (*models.User, error) {
	actor, err := ResolveActor(ctx, users, actorID)
	if err != nil {
		return nil, err
	}
	if !CanManage(actor, ownerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, MessageForbidden)
	}
	return actor, nil
}

// IsDenied reports whether err is an actor resolution or permission failure.
// Listing operations translate these into an empty page.
func IsDenied(err error) bool {
	code := pkgerrors.CodeOf(err)
	return code == pkgerrors.CodeUnauthorized || code == pkgerrors.CodeForbidden
}
