package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tradematch.app/linkup/common/id"
	"tradematch.app/linkup/core/config"
	"tradematch.app/linkup/internal/model"
	"tradematch.app/linkup/internal/store"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Credentials are whatever the transport extracted from the request. At most one
// of them is used; a bearer token takes precedence.
type Credentials struct {
	SessionID   string
	BearerToken string
}

type AuthService interface {
	// Resolve returns the caller or ErrUnauthenticated. Other errors are
	// storage failures.
	Resolve(ctx context.Context, creds Credentials) (*model.User, error)
}

type authService struct {
	userStore    store.UserStore
	sessionStore store.SessionStore
	cfg          config.AuthConfig
	now          func() time.Time
}

func NewAuthService(userStore store.UserStore, sessionStore store.SessionStore, cfg config.AuthConfig) AuthService {
	return &authService{
		userStore:    userStore,
		sessionStore: sessionStore,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *authService) Resolve(ctx context.Context, creds Credentials) (*model.User, error) {
	switch {
	case creds.BearerToken != "":
		return s.resolveToken(ctx, creds.BearerToken)
	case creds.SessionID != "":
		return s.resolveSession(ctx, creds.SessionID)
	default:
		return nil, ErrUnauthenticated
	}
}

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (s *authService) resolveToken(ctx context.Context, raw string) (*model.User, error) {
	if !s.cfg.JWTEnabled() {
		return nil, ErrUnauthenticated
	}

	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if s.cfg.JWTIssuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.JWTIssuer))
	}

	claims := &tokenClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	}, opts...)
	if err != nil {
		slog.DebugContext(ctx, "rejected bearer token", "error", err)
		return nil, ErrUnauthenticated
	}

	userID, err := id.Parse(claims.Subject)
	if err != nil {
		slog.DebugContext(ctx, "bearer token subject is not a user id", "subject", claims.Subject)
		return nil, ErrUnauthenticated
	}

	return &model.User{ID: userID, Email: claims.Email}, nil
}

func (s *authService) resolveSession(ctx context.Context, raw string) (*model.User, error) {
	sessionID, err := id.Parse(raw)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessionStore.GetValid(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	if session.IsExpired(s.now()) {
		return nil, ErrUnauthenticated
	}

	user, err := s.userStore.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}
