package middleware

import (
	"net/http"

	"github.com/kolschhq/kolsch-backend/api/responses"
	"github.com/kolschhq/kolsch-backend/internal/auth"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

// Auth resolves the session cookie and seeds the request context with the
// user, role and tenant. Requests without a valid session get a 401.
func Auth(svc *auth.Service, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if cookie, err := r.Cookie(cookieName); err == nil {
				sid = cookie.Value
			}

			identity, err := svc.Resolve(r.Context(), sid)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithUserID(r.Context(), identity.User.ID)
			ctx = WithRole(ctx, identity.User.Role)
			if identity.BreweryID != nil {
				ctx = WithBreweryID(ctx, *identity.BreweryID)
			}

			if logg != nil {
				fields := map[string]any{
					"user_id":    identity.User.ID,
					"actor_role": identity.User.Role,
				}
				if identity.BreweryID != nil {
					fields["brewery_id"] = *identity.BreweryID
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
