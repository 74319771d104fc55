package controllers

import (
	"net/http"

	"github.com/kitchenequip/equipment-backend/api/middleware"
	pkgerrors "github.com/kitchenequip/equipment-backend/pkg/errors"
)

// actorID returns the authenticated caller. Routes behind middleware.Auth
// always carry one.
func actorID(r *http.Request) (int64, error) {
	id := middleware.UserIDFromContext(r.Context())
	if id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "Missing credentials.")
	}
	return id, nil
}

func unavailable(name string) error {
	return pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable")
}
