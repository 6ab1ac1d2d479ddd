package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gigadev/qr-order-backend/internal/users"
	pkgauth "github.com/gigadev/qr-order-backend/pkg/auth"
	"github.com/gigadev/qr-order-backend/pkg/auth/session"
	"github.com/gigadev/qr-order-backend/pkg/config"
	"github.com/gigadev/qr-order-backend/pkg/db"
	pkgerrors "github.com/gigadev/qr-order-backend/pkg/errors"
	"github.com/gigadev/qr-order-backend/pkg/logger"
	"github.com/gigadev/qr-order-backend/pkg/security"
	"github.com/google/uuid"
)

type sessionManager interface {
	Generate(ctx context.Context, accessID string) (string, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// Service defines owner authentication operations.
type Service interface {
	Login(ctx context.Context, input LoginInput) (*TokenPair, error)
	Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, accessToken string) error
}

type service struct {
	users    users.Repository
	sessions sessionManager
	jwtCfg   config.JWTConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the auth service.
func NewService(usersRepo users.Repository, sessions sessionManager, jwtCfg config.JWTConfig, logg *logger.Logger) (Service, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		users:    usersRepo,
		sessions: sessions,
		jwtCfg:   jwtCfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*TokenPair, error) {
	if input.StoreID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id required")
	}
	if input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password required")
	}

	user, err := s.users.FindByStoreID(ctx, input.StoreID)
	if err != nil {
		if db.IsNotFound(err) {
			// Same answer as a bad password so probing store ids reveals nothing.
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	match, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !match {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	pair, err := s.issuePair(ctx, user.ID, user.StoreID, user.Name, session.NewAccessID())
	if err != nil {
		return nil, err
	}

	ctx = s.logg.WithUserID(s.logg.WithStoreID(ctx, user.StoreID.String()), user.ID.String())
	s.logg.Info(ctx, "owner logged in")
	return pair, nil
}

func (s *service) Refresh(ctx context.Context, accessToken, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(accessToken) == "" || strings.TrimSpace(refreshToken) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "access and refresh tokens required")
	}

	// The access token may already be expired; only the signature and
	// issuer have to hold so the jti can anchor the rotation.
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}

	newAccessID, newRefresh, err := s.sessions.Rotate(ctx, claims.ID, refreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rotate session")
	}

	signed, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:   claims.UserID,
		StoreID:  claims.StoreID,
		UserName: claims.UserName,
		JTI:      newAccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &TokenPair{AccessToken: signed, RefreshToken: newRefresh}, nil
}

func (s *service) Logout(ctx context.Context, accessToken string) error {
	if strings.TrimSpace(accessToken) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "access token required")
	}
	claims, err := pkgauth.ParseAccessTokenAllowExpired(s.jwtCfg, accessToken)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	if err := s.sessions.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}

func (s *service) issuePair(ctx context.Context, userID, storeID uuid.UUID, userName, accessID string) (*TokenPair, error) {
	signed, err := pkgauth.MintAccessToken(s.jwtCfg, s.now(), pkgauth.AccessTokenPayload{
		UserID:   userID,
		StoreID:  storeID,
		UserName: userName,
		JTI:      accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	refresh, err := s.sessions.Generate(ctx, accessID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}
	return &TokenPair{AccessToken: signed, RefreshToken: refresh}, nil
}
