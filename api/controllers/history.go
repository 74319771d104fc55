package controllers

import (
	"net/http"
	"strings"

	"github.com/kitchenequip/equipment-backend/api/responses"
	"github.com/kitchenequip/equipment-backend/api/validators"
	"github.com/kitchenequip/equipment-backend/internal/history"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
)

// HistoryList returns site-equipment assignment events, newest first.
func HistoryList(svc history.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable("history"))
			return
		}
		actor, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		pq, err := validators.ParsePageQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		equipmentID, err := validators.ParseQueryInt64(r, "equipment_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		siteID, err := validators.ParseQueryInt64(r, "site_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), actor, history.Query{
			EquipmentID: equipmentID,
			SiteID:      siteID,
			Action:      strings.TrimSpace(r.URL.Query().Get("action")),
			Page:        pq.Page,
			PageSize:    pq.PageSize,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
