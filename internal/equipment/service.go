package equipment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/access"
	"github.com/kitchenequip/equipment-backend/internal/history"
	"github.com/kitchenequip/equipment-backend/internal/users"
	"github.com/kitchenequip/equipment-backend/internal/validation"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/db/models"
	"github.com/kitchenequip/equipment-backend/pkg/enums"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/metrics"
	"github.com/kitchenequip/equipment-backend/pkg/pagination"
)

const (
	msgEquipmentNotFound    = "Equipment not found."
	msgOwnerNotFound        = "Owner not found."
	msgSiteNotFound         = "Site not found."
	msgSiteOtherOwner       = "Site belongs to a different user."
	msgSerialTaken          = "Serial number already exists."
	msgSerialTakenForTarget = "Serial number already exists for the target user."
	msgInvalidCondition     = "Condition is invalid."
)

// Service manages equipment records, their site assignment and the history
// rows those assignments produce.
type Service interface {
	List(ctx context.Context, actorID, ownerID int64, q OwnerQuery) (pagination.Page[EquipmentDTO], error)
	Get(ctx context.Context, actorID, id int64) (*EquipmentDTO, error)
	Create(ctx context.Context, actorID int64, req CreateEquipmentRequest) (*EquipmentDTO, error)
	Update(ctx context.Context, actorID, id int64, req UpdateEquipmentRequest) (*EquipmentDTO, error)
	Delete(ctx context.Context, actorID, id int64) error
	GetPaged(ctx context.Context, actorID int64, q PagedQuery) (pagination.Page[EquipmentDTO], error)
}

// ServiceParams packages the dependencies for the equipment service.
type ServiceParams struct {
	DB      *db.Client
	Logger  *logger.Logger
	Metrics *metrics.DomainMetrics
	// SerialScope selects where serial numbers must be unique. Empty means
	// per owner.
	SerialScope enums.SerialScope
}

type service struct {
	db      *db.Client
	logg    *logger.Logger
	metrics *metrics.DomainMetrics
	scope   enums.SerialScope
}

// NewService builds an equipment service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	scope := params.SerialScope
	if scope == "" {
		scope = enums.SerialScopeOwner
	}
	if !scope.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invalid serial scope")
	}
	return &service{
		db:      params.DB,
		logg:    params.Logger,
		metrics: params.Metrics,
		scope:   scope,
	}, nil
}

func (s *service) List(ctx context.Context, actorID, ownerID int64, q OwnerQuery) (pagination.Page[EquipmentDTO], error) {
	params := pagination.Params{Page: q.Page, PageSize: q.PageSize}
	conn := s.db.DB()

	if _, err := access.RequireManage(ctx, users.NewRepository(conn), actorID, ownerID); err != nil {
		if access.IsDenied(err) {
			s.logg.Warn(s.logg.WithActorID(ctx, actorID), "equipment.list denied")
			return pagination.Empty[EquipmentDTO](params), nil
		}
		return pagination.Page[EquipmentDTO]{}, err
	}

	page, err := NewRepository(conn).List(ctx, ListQuery{
		Params:  params,
		OwnerID: ownerID,
		Search:  q.Search,
	})
	if err != nil {
		return pagination.Page[EquipmentDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list equipment")
	}
	return pagination.Map(page, fromModelValue), nil
}

func (s *service) Get(ctx context.Context, actorID, id int64) (*EquipmentDTO, error) {
	conn := s.db.DB()
	actor, err := access.ResolveActor(ctx, users.NewRepository(conn), actorID)
	if err != nil {
		return nil, err
	}
	e, err := loadEquipment(ctx, NewRepository(conn), id)
	if err != nil {
		return nil, err
	}
	if !access.CanManage(actor, e.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, access.MessageForbidden)
	}
	return FromModel(e), nil
}

func (s *service) Create(ctx context.Context, actorID int64, req CreateEquipmentRequest) (*EquipmentDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	condition, ok := parseCondition(req.Condition)
	if !ok {
		return nil, pkgerrors.Validation([]string{msgInvalidCondition})
	}

	var created *models.Equipment
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		repo := NewRepository(tx)

		actor, err := access.ResolveActor(ctx, userRepo, actorID)
		if err != nil {
			return err
		}
		ownerID := req.UserID
		if ownerID == 0 {
			ownerID = actor.ID
		}
		if !access.CanManage(actor, ownerID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, access.MessageForbidden)
		}
		if ownerID != actor.ID {
			if _, err := userRepo.FindByID(ctx, ownerID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, msgOwnerNotFound)
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load owner")
			}
		}

		taken, err := repo.SerialExists(ctx, s.scope, ownerID, req.SerialNumber, 0)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check serial")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, msgSerialTaken)
		}

		if req.SiteID != nil {
			site, err := loadSite(ctx, repo, *req.SiteID)
			if err != nil {
				return err
			}
			if site.UserID != ownerID {
				return pkgerrors.Validation([]string{msgSiteOtherOwner})
			}
		}

		e := &models.Equipment{
			UserID:       ownerID,
			SiteID:       req.SiteID,
			SerialNumber: trimSerial(req.SerialNumber),
			Name:         trimmed(req.Name),
			Description:  trimmed(req.Description),
			Condition:    condition,
			CreatedBy:    &actor.ID,
			UpdatedBy:    &actor.ID,
		}
		if err := repo.Create(ctx, e); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, msgSerialTaken)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create equipment")
		}
		if e.SiteID != nil {
			if err := history.NewRepository(tx).Register(ctx, e.ID, *e.SiteID, actor.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record history")
			}
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created.SiteID != nil {
		s.metrics.IncHistory(enums.HistoryActionRegister.String(), 1)
	}
	s.logg.Info(s.logg.WithEquipmentID(s.logg.WithActorID(ctx, actorID), created.ID), "equipment created")
	return FromModel(created), nil
}

// Update replaces the editable fields. Assigning the equipment to a site of
// another owner is a transfer: only a SuperAdmin may do it and ownership
// follows the site.
func (s *service) Update(ctx context.Context, actorID, id int64, req UpdateEquipmentRequest) (*EquipmentDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	condition, ok := parseCondition(req.Condition)
	if !ok {
		return nil, pkgerrors.Validation([]string{msgInvalidCondition})
	}

	var (
		updated *models.Equipment
		events  []enums.HistoryAction
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		actor, err := access.ResolveActor(ctx, users.NewRepository(tx), actorID)
		if err != nil {
			return err
		}
		e, err := loadEquipment(ctx, repo, id)
		if err != nil {
			return err
		}
		if !access.CanManage(actor, e.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, access.MessageForbidden)
		}

		targetOwner := e.UserID
		if req.SiteID != nil {
			site, err := loadSite(ctx, repo, *req.SiteID)
			if err != nil {
				return err
			}
			if site.UserID != e.UserID {
				if !access.IsSuperAdmin(actor) {
					return pkgerrors.New(pkgerrors.CodeForbidden, msgSiteOtherOwner)
				}
				targetOwner = site.UserID
			}
		}

		taken, err := repo.SerialExists(ctx, s.scope, targetOwner, req.SerialNumber, e.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check serial")
		}
		if taken {
			if targetOwner != e.UserID {
				return pkgerrors.New(pkgerrors.CodeConflict, msgSerialTakenForTarget)
			}
			return pkgerrors.New(pkgerrors.CodeConflict, msgSerialTaken)
		}

		oldSite := e.SiteID
		e.UserID = targetOwner
		e.SiteID = req.SiteID
		e.SerialNumber = trimSerial(req.SerialNumber)
		e.Name = trimmed(req.Name)
		e.Description = trimmed(req.Description)
		e.Condition = condition
		e.UpdatedBy = &actor.ID
		if err := repo.Update(ctx, e); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, msgSerialTaken)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update equipment")
		}

		if !sameSite(oldSite, e.SiteID) {
			hist := history.NewRepository(tx)
			if oldSite != nil {
				if err := hist.Unregister(ctx, e.ID, *oldSite, actor.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record history")
				}
				events = append(events, enums.HistoryActionUnregister)
			}
			if e.SiteID != nil {
				if err := hist.Register(ctx, e.ID, *e.SiteID, actor.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record history")
				}
				events = append(events, enums.HistoryActionRegister)
			}
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, action := range events {
		s.metrics.IncHistory(action.String(), 1)
	}
	return FromModel(updated), nil
}

// Delete soft-deletes the equipment. Missing or already deleted equipment is
// treated as success.
func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		actor, err := access.ResolveActor(ctx, users.NewRepository(tx), actorID)
		if err != nil {
			return err
		}
		e, err := repo.FindByIDUnscoped(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
		}
		if e.IsDeleted() {
			return nil
		}
		if !access.CanManage(actor, e.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, access.MessageForbidden)
		}
		if err := repo.SoftDelete(ctx, e.ID, actor.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete equipment")
		}
		return nil
	})
}

// GetPaged lists live equipment across owners for a SuperAdmin and the
// actor's own equipment otherwise. Invalid actors get an empty page.
func (s *service) GetPaged(ctx context.Context, actorID int64, q PagedQuery) (pagination.Page[EquipmentDTO], error) {
	params := pagination.Params{Page: q.Page, PageSize: q.PageSize}
	conn := s.db.DB()

	actor, err := access.ResolveActor(ctx, users.NewRepository(conn), actorID)
	if err != nil {
		if access.IsDenied(err) {
			s.logg.Warn(s.logg.WithActorID(ctx, actorID), "equipment.paged denied")
			return pagination.Empty[EquipmentDTO](params), nil
		}
		return pagination.Page[EquipmentDTO]{}, err
	}

	ownerID := q.OwnerID
	if !access.IsSuperAdmin(actor) {
		if ownerID > 0 && ownerID != actor.ID {
			return pagination.Empty[EquipmentDTO](params), nil
		}
		ownerID = actor.ID
	}

	page, err := NewRepository(conn).List(ctx, ListQuery{
		Params:  params,
		OwnerID: ownerID,
		Search:  q.Search,
		OrderBy: q.OrderBy,
		Desc:    q.Desc,
	})
	if err != nil {
		return pagination.Page[EquipmentDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "page equipment")
	}
	return pagination.Map(page, fromModelValue), nil
}

func loadEquipment(ctx context.Context, repo *Repository, id int64) (*models.Equipment, error) {
	e, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgEquipmentNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
	}
	return e, nil
}

func loadSite(ctx context.Context, repo *Repository, id int64) (*models.Site, error) {
	site, err := repo.FindSite(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgSiteNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site")
	}
	return site, nil
}

func sameSite(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
