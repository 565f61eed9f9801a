package controllers

import (
	"net/http"

	pkgerrors "github.com/kolschhq/kolsch-backend/pkg/errors"

	"github.com/kolschhq/kolsch-backend/api/responses"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

// Live reports process liveness.
func Live() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"status": "ok"})
	}
}

// Ready reports whether the storage backend is reachable.
func Ready(store storage.Storage, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storage unavailable"))
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
