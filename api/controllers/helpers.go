package controllers

import (
	"context"

	"github.com/kolschhq/kolsch-backend/api/middleware"
	pkgerrors "github.com/kolschhq/kolsch-backend/pkg/errors"
)

// tenantOf returns the context tenant as the pointer shape the storage
// layer expects, nil when the user has no brewery.
func tenantOf(ctx context.Context) *string {
	breweryID := middleware.BreweryIDFromContext(ctx)
	if breweryID == "" {
		return nil
	}
	return &breweryID
}

// listTenant returns the tenant filter for list handlers. ok is false when
// the session has no brewery: those callers get empty lists, never the
// unfiltered all-tenants view the storage layer reserves for internal use.
func listTenant(ctx context.Context) (string, bool) {
	breweryID := middleware.BreweryIDFromContext(ctx)
	return breweryID, breweryID != ""
}

// visibleTo reports whether a record owned by owner may be served to the
// context tenant. Records without an owner are shared demo data.
func visibleTo(owner *string, ctx context.Context) bool {
	if owner == nil {
		return true
	}
	return *owner == middleware.BreweryIDFromContext(ctx)
}

// notVisible is returned for cross-tenant ids so they are indistinguishable
// from ids that never existed.
func notVisible(what string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, what+" not found")
}
