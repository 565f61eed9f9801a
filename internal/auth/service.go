package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/config"
	"github.com/kolschhq/kolsch-backend/pkg/db/models"
	pkgerrors "github.com/kolschhq/kolsch-backend/pkg/errors"
	"github.com/kolschhq/kolsch-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// RateLimiter is the slice of the redis client the auth flows use. A nil
// limiter disables rate limiting entirely.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Service implements signup, login and session resolution on top of the
// storage layer.
type Service struct {
	store       storage.Storage
	passwordCfg config.PasswordConfig
	sessionCfg  config.SessionConfig
	limiter     RateLimiter
	limits      config.AuthRateLimitConfig
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	Store          storage.Storage
	PasswordConfig config.PasswordConfig
	SessionConfig  config.SessionConfig
	RateLimiter    RateLimiter
	RateLimits     config.AuthRateLimitConfig
}

// NewService constructs an auth service with the provided dependencies.
func NewService(params ServiceParams) (*Service, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}
	return &Service{
		store:       params.Store,
		passwordCfg: params.PasswordConfig,
		sessionCfg:  params.SessionConfig,
		limiter:     params.RateLimiter,
		limits:      params.RateLimits,
	}, nil
}

// Signup creates the brewery and its owner account in one step and issues a
// session for the new user.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Handle, *models.User, error) {
	if err := s.allow(ctx, "signup:ip:"+req.IP, int64(s.limits.SignupIPLimit), s.limits.SignupWindow); err != nil {
		return nil, nil, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || email == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "username and email are required")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	_, user, err := s.store.CreateBreweryWithOwner(ctx,
		storage.InsertBrewery{
			Name:     strings.TrimSpace(req.BreweryName),
			Type:     strings.TrimSpace(req.BreweryType),
			Location: strings.TrimSpace(req.BreweryLocation),
		},
		storage.InsertUser{
			Username:  username,
			Email:     email,
			Password:  passwordHash,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Role:      models.RoleOwner,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	handle, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return handle, user, nil
}

// Login verifies the credentials and issues a fresh session.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Handle, *models.User, error) {
	username := strings.TrimSpace(req.Username)
	if err := s.allow(ctx, "login:user:"+username, int64(s.limits.LoginUsernameLimit), s.limits.LoginWindow); err != nil {
		return nil, nil, err
	}
	if err := s.allow(ctx, "login:ip:"+req.IP, int64(s.limits.LoginIPLimit), s.limits.LoginWindow); err != nil {
		return nil, nil, err
	}

	user, err := s.authenticate(ctx, username, req.Password)
	if err != nil {
		return nil, nil, err
	}

	handle, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return handle, user, nil
}

// Logout discards the session. Unknown session ids are not an error so a
// stale cookie still logs out cleanly.
func (s *Service) Logout(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	_, err := s.store.DeleteSession(ctx, sid)
	return err
}

// Resolve loads the session and its user. Expired sessions are dropped
// eagerly instead of waiting for the sweeper.
func (s *Service) Resolve(ctx context.Context, sid string) (*Identity, error) {
	if sid == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
	}

	session, err := s.store.GetSession(ctx, sid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
		}
		return nil, err
	}
	if !session.Expire.After(time.Now()) {
		_, _ = s.store.DeleteSession(ctx, sid)
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}

	var payload sessionPayload
	if err := json.Unmarshal([]byte(session.Sess), &payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode session")
	}

	user, err := s.store.GetUser(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_, _ = s.store.DeleteSession(ctx, sid)
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "not authenticated")
		}
		return nil, err
	}

	return &Identity{User: user, BreweryID: user.BreweryID}, nil
}

func (s *Service) authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, err
	}

	valid, err := security.VerifyPassword(password, user.Password)
	if err != nil {
		if errors.Is(err, security.ErrInvalidHash) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !valid {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func (s *Service) issueSession(ctx context.Context, user *models.User) (*Handle, error) {
	sid, err := newSessionID()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate session id")
	}

	payload, err := json.Marshal(sessionPayload{UserID: user.ID, BreweryID: user.BreweryID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode session")
	}

	expiresAt := time.Now().Add(s.sessionCfg.TTL)
	if err := s.store.PutSession(ctx, models.Session{
		SID:    sid,
		Sess:   string(payload),
		Expire: expiresAt,
	}); err != nil {
		return nil, err
	}

	return &Handle{SID: sid, ExpiresAt: expiresAt}, nil
}

func (s *Service) allow(ctx context.Context, scope string, limit int64, window time.Duration) error {
	if s.limiter == nil || limit <= 0 {
		return nil
	}
	allowed, _, err := s.limiter.FixedWindowAllow(ctx, scope, limit, window)
	if err != nil {
		// Rate limiting is best effort; a broken limiter must not take
		// logins down with it.
		return nil
	}
	if !allowed {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later")
	}
	return nil
}

func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
