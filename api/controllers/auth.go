package controllers

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/kolschhq/kolsch-backend/api/responses"
	"github.com/kolschhq/kolsch-backend/api/validators"
	"github.com/kolschhq/kolsch-backend/internal/auth"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/config"
	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	pkgerrors "github.com/kolschhq/kolsch-backend/pkg/errors"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
)

// Signup onboards a brewery and its owner, then logs the owner in.
func Signup(svc *auth.Service, sessionCfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.SignupRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.IP = clientIP(r)

		handle, user, err := svc.Signup(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, sessionCfg, handle)
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// Login authenticates by username and issues a session cookie.
func Login(svc *auth.Service, sessionCfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		body.IP = clientIP(r)

		handle, user, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setSessionCookie(w, sessionCfg, handle)
		responses.WriteSuccess(w, user)
	}
}

// Logout drops the session and clears the cookie.
func Logout(svc *auth.Service, sessionCfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if cookie, err := r.Cookie(sessionCfg.CookieName); err == nil {
			sid = cookie.Value
		}

		if err := svc.Logout(r.Context(), sid); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		clearSessionCookie(w, sessionCfg)
		responses.WriteSuccess(w, map[string]any{"loggedOut": true})
	}
}

// currentUserResponse pairs the session user with their brewery, mirroring
// what the dashboard expects on first load.
type currentUserResponse struct {
	User    *models.User    `json:"user"`
	Brewery *models.Brewery `json:"brewery"`
}

// CurrentUser resolves the session cookie itself instead of sitting behind
// the auth middleware: an anonymous caller gets 200 with null data, not 401.
func CurrentUser(svc *auth.Service, store storage.Storage, sessionCfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := ""
		if cookie, err := r.Cookie(sessionCfg.CookieName); err == nil {
			sid = cookie.Value
		}

		identity, err := svc.Resolve(r.Context(), sid)
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
				responses.WriteSuccess(w, nil)
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := currentUserResponse{User: identity.User}
		if identity.BreweryID != nil {
			brewery, err := store.GetBrewery(r.Context(), *identity.BreweryID)
			if err != nil && !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			out.Brewery = brewery
		}

		responses.WriteSuccess(w, out)
	}
}

func setSessionCookie(w http.ResponseWriter, cfg config.SessionConfig, handle *auth.Handle) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    handle.SID,
		Path:     "/",
		Expires:  handle.ExpiresAt,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter, cfg config.SessionConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
