package history

import (
	"context"

	"github.com/kitchenequip/equipment-backend/internal/access"
	"github.com/kitchenequip/equipment-backend/internal/users"
	"github.com/kitchenequip/equipment-backend/internal/validation"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
)

// Service lists equipment activity.
type Service interface {
	List(ctx context.Context, actorID int64, q Query) (pagination.Page[EntryDTO], error)
}

type ServiceParams struct {
	DB     *db.Client
	Logger *logger.Logger
}

type service struct {
	db   *db.Client
	logg *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &service{db: params.DB, logg: params.Logger}, nil
}

// List returns every row to a SuperAdmin and only rows for the actor's own
// equipment to anyone else. Unknown actors get an empty page.
func (s *service) List(ctx context.Context, actorID int64, q Query) (pagination.Page[EntryDTO], error) {
	params := pagination.Params{Page: q.Page, PageSize: q.PageSize}
	if err := validation.Struct(q); err != nil {
		return pagination.Page[EntryDTO]{}, err
	}

	conn := s.db.DB()
	actor, err := access.ResolveActor(ctx, users.NewRepository(conn), actorID)
	if err != nil {
		if access.IsDenied(err) {
			s.logg.Warn(s.logg.WithActorID(ctx, actorID), "history.list denied")
			return pagination.Empty[EntryDTO](params), nil
		}
		return pagination.Page[EntryDTO]{}, err
	}

	filter := ListQuery{
		Params:      params,
		EquipmentID: q.EquipmentID,
		SiteID:      q.SiteID,
		Action:      enums.HistoryAction(q.Action),
	}
	if !access.IsSuperAdmin(actor) {
		filter.OwnerID = actor.ID
	}

	page, err := NewRepository(conn).List(ctx, filter)
	if err != nil {
		return pagination.Page[EntryDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list history")
	}
	return pagination.Map(page, fromModel), nil
}
