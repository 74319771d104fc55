package sites

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/kitchenequip/equipment-backend/internal/access"
	"github.com/kitchenequip/equipment-backend/internal/equipment"
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
	msgSiteNotFound     = "Site not found."
	msgOwnerNotFound    = "Owner not found."
	msgCodeNameRequired = "Code and Name are required."
	msgCodeTaken        = "Code already exists."
	msgNameTaken        = "Name already exists for this user."
)

// Service manages sites and which equipment is assigned to them.
type Service interface {
	List(ctx context.Context, actorID, ownerID int64, q Query) (pagination.Page[SiteDTO], error)
	Get(ctx context.Context, actorID, id int64) (*SiteDTO, error)
	FindByCode(ctx context.Context, actorID int64, code string) (*SiteDTO, error)
	Create(ctx context.Context, actorID int64, req CreateSiteRequest) (*SiteDTO, error)
	Update(ctx context.Context, actorID, id int64, req UpdateSiteRequest) (*SiteDTO, error)
	Delete(ctx context.Context, actorID, id int64) error
	EditSiteEquipment(ctx context.Context, actorID, siteID int64, req EditEquipmentRequest) (EditEquipmentResult, error)
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

func (s *service) List(ctx context.Context, actorID, ownerID int64, q Query) (pagination.Page[SiteDTO], error) {
	params := pagination.Params{Page: q.Page, PageSize: q.PageSize}
	conn := s.db.DB()

	if _, err := access.RequireManage(ctx, users.NewRepository(conn), actorID, ownerID); err != nil {
		if access.IsDenied(err) {
			s.logg.Warn(s.logg.WithActorID(ctx, actorID), "sites.list denied")
			return pagination.Empty[SiteDTO](params), nil
		}
		return pagination.Page[SiteDTO]{}, err
	}

	page, err := NewRepository(conn).List(ctx, ListQuery{
		Params:          params,
		OwnerID:         ownerID,
		Search:          q.Search,
		IncludeInactive: q.IncludeInactive,
	})
	if err != nil {
		return pagination.Page[SiteDTO]{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sites")
	}
	return pagination.Map(page, fromModelValue), nil
}

func (s *service) Get(ctx context.Context, actorID, id int64) (*SiteDTO, error) {
	return s.readSite(ctx, actorID, func(repo *Repository) (*models.Site, error) {
		return repo.FindByID(ctx, id)
	})
}

func (s *service) FindByCode(ctx context.Context, actorID int64, code string) (*SiteDTO, error) {
	if strings.TrimSpace(code) == "" {
		return nil, pkgerrors.Validation([]string{"Code is required."})
	}
	return s.readSite(ctx, actorID, func(repo *Repository) (*models.Site, error) {
		return repo.FindByCode(ctx, code)
	})
}

func (s *service) readSite(ctx context.Context, actorID int64, find func(*Repository) (*models.Site, error)) (*SiteDTO, error) {
	conn := s.db.DB()
	actor, err := access.ResolveActor(ctx, users.NewRepository(conn), actorID)
	if err != nil {
		return nil, err
	}
	site, err := find(NewRepository(conn))
	if err != nil {
		return nil, notFoundOrDependency(err, "load site")
	}
	if !access.CanManage(actor, site.UserID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, access.MessageForbidden)
	}
	return FromModel(site), nil
}

// Create checks the global code before the per-owner name and stops at the
// first conflict.
func (s *service) Create(ctx context.Context, actorID int64, req CreateSiteRequest) (*SiteDTO, error) {
	if strings.TrimSpace(req.Code) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, pkgerrors.Validation([]string{msgCodeNameRequired})
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var created *models.Site
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

		code := NormalizeCode(req.Code)
		name := strings.TrimSpace(req.Name)
		if err := checkCode(ctx, repo, code, 0); err != nil {
			return err
		}
		if err := checkName(ctx, repo, ownerID, name, 0); err != nil {
			return err
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}
		site := &models.Site{
			UserID:      ownerID,
			Code:        code,
			Name:        name,
			Description: trimmed(req.Description),
			Active:      active,
			CreatedBy:   &actor.ID,
			UpdatedBy:   &actor.ID,
		}
		if err := repo.Create(ctx, site); err != nil {
			return uniqueOrDependency(err, "create site")
		}
		created = site
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithSiteID(s.logg.WithActorID(ctx, actorID), created.ID), "site created")
	return FromModel(created), nil
}

// Update re-checks Code and Name only when they change.
func (s *service) Update(ctx context.Context, actorID, id int64, req UpdateSiteRequest) (*SiteDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var updated *models.Site
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		actor, err := access.ResolveActor(ctx, users.NewRepository(tx), actorID)
		if err != nil {
			return err
		}
		site, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFoundOrDependency(err, "load site")
		}
		if !access.CanManage(actor, site.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, access.MessageForbidden)
		}

		if strings.TrimSpace(req.Code) != "" {
			code := NormalizeCode(req.Code)
			if code != site.Code {
				if err := checkCode(ctx, repo, code, site.ID); err != nil {
					return err
				}
				site.Code = code
			}
		}
		name := strings.TrimSpace(req.Name)
		if name != site.Name {
			if err := checkName(ctx, repo, site.UserID, name, site.ID); err != nil {
				return err
			}
			site.Name = name
		}
		site.Description = trimmed(req.Description)
		if req.Active != nil {
			site.Active = *req.Active
		}
		site.UpdatedBy = &actor.ID

		if err := repo.Update(ctx, site); err != nil {
			return uniqueOrDependency(err, "update site")
		}
		updated = site
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

// Delete unregisters every live equipment on the site, clears their site
// reference and soft-deletes the site, all in one transaction. Missing or
// already deleted sites are treated as success.
func (s *service) Delete(ctx context.Context, actorID, id int64) error {
	var unregistered int
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := NewRepository(tx)
		actor, err := access.ResolveActor(ctx, users.NewRepository(tx), actorID)
		if err != nil {
			return err
		}
		site, err := repo.FindByIDUnscoped(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site")
		}
		if site.IsDeleted() {
			return nil
		}
		if !access.CanManage(actor, site.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, access.MessageForbidden)
		}

		equipRepo := equipment.NewRepository(tx)
		hist := history.NewRepository(tx)
		assigned, err := equipRepo.ListBySite(ctx, site.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load site equipment")
		}
		for i := range assigned {
			e := &assigned[i]
			if err := hist.Unregister(ctx, e.ID, site.ID, actor.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record history")
			}
			e.SiteID = nil
			e.UpdatedBy = &actor.ID
			if err := equipRepo.Update(ctx, e); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassign equipment")
			}
		}

		if err := repo.SoftDelete(ctx, site.ID, actor.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete site")
		}
		unregistered = len(assigned)
		return nil
	})
	if err != nil {
		return err
	}

	if unregistered > 0 {
		s.metrics.IncHistory(enums.HistoryActionUnregister.String(), unregistered)
		s.logg.Info(s.logg.WithFields(s.logg.WithSiteID(ctx, id), map[string]any{
			"actor_id":     actorID,
			"unregistered": unregistered,
		}), "site deleted with equipment cascade")
	}
	return nil
}

// EditSiteEquipment attaches and detaches equipment. Adds skip equipment that
// is missing, deleted, owned by someone else or already on the site; moving
// equipment off another of the owner's sites also unregisters it there.
// Removes skip equipment that is missing, deleted or not on this site.
func (s *service) EditSiteEquipment(ctx context.Context, actorID, siteID int64, req EditEquipmentRequest) (EditEquipmentResult, error) {
	if err := validation.Struct(req); err != nil {
		return EditEquipmentResult{}, err
	}
	adds := distinct(req.Add)
	removes := distinct(req.Remove)

	var (
		result       EditEquipmentResult
		unregistered int
	)
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		actor, err := access.ResolveActor(ctx, users.NewRepository(tx), actorID)
		if err != nil {
			return err
		}
		site, err := NewRepository(tx).FindByID(ctx, siteID)
		if err != nil {
			return notFoundOrDependency(err, "load site")
		}
		if !access.CanManage(actor, site.UserID) {
			return pkgerrors.New(pkgerrors.CodeForbidden, access.MessageForbidden)
		}

		equipRepo := equipment.NewRepository(tx)
		hist := history.NewRepository(tx)
		loaded, err := equipRepo.FindByIDs(ctx, append(append([]int64{}, adds...), removes...))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load equipment")
		}

		for _, id := range adds {
			e, ok := loaded[id]
			if !ok || e.UserID != site.UserID || e.OnSite(site.ID) {
				continue
			}
			if e.SiteID != nil {
				if err := hist.Unregister(ctx, e.ID, *e.SiteID, actor.ID); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record history")
				}
				unregistered++
			}
			e.SiteID = &site.ID
			e.UpdatedBy = &actor.ID
			if err := equipRepo.Update(ctx, e); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign equipment")
			}
			if err := hist.Register(ctx, e.ID, site.ID, actor.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record history")
			}
			result.Added++
		}

		for _, id := range removes {
			e, ok := loaded[id]
			if !ok || !e.OnSite(site.ID) {
				continue
			}
			e.SiteID = nil
			e.UpdatedBy = &actor.ID
			if err := equipRepo.Update(ctx, e); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unassign equipment")
			}
			if err := hist.Unregister(ctx, e.ID, site.ID, actor.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record history")
			}
			unregistered++
			result.Removed++
		}
		return nil
	})
	if err != nil {
		return EditEquipmentResult{}, err
	}

	s.metrics.IncHistory(enums.HistoryActionRegister.String(), result.Added)
	s.metrics.IncHistory(enums.HistoryActionUnregister.String(), unregistered)
	return result, nil
}

func checkCode(ctx context.Context, repo *Repository, code string, excludeID int64) error {
	taken, err := repo.CodeExists(ctx, code, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check code")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, msgCodeTaken)
	}
	return nil
}

func checkName(ctx context.Context, repo *Repository, ownerID int64, name string, excludeID int64) error {
	taken, err := repo.NameExists(ctx, ownerID, name, excludeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check name")
	}
	if taken {
		return pkgerrors.New(pkgerrors.CodeConflict, msgNameTaken)
	}
	return nil
}

func notFoundOrDependency(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgSiteNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}

// uniqueOrDependency maps a unique index violation that slipped past the
// pre-checks to the matching conflict.
func uniqueOrDependency(err error, op string) error {
	switch {
	case db.IsUniqueViolation(err, UniqueCodeIndex):
		return pkgerrors.New(pkgerrors.CodeConflict, msgCodeTaken)
	case db.IsUniqueViolation(err, UniqueOwnerNameIndex):
		return pkgerrors.New(pkgerrors.CodeConflict, msgNameTaken)
	case db.IsUniqueViolation(err, ""):
		return pkgerrors.New(pkgerrors.CodeConflict, msgCodeTaken)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
