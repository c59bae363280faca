// Package service registers applications and authenticates their requests.
//
// Applications sign their own HS256 JWTs with the shared secret issued at
// registration. The token names the application in its client_id claim
// (falling back to iss); the signature is verified with that application's
// secret.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trouwen/internal/application/models"
	id "trouwen/pkg/domain"
	dErrors "trouwen/pkg/domain-errors"
	"trouwen/pkg/platform/sentinel"
	"trouwen/pkg/requestcontext"
	"trouwen/pkg/secrets"
)

type Store interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, appID id.ApplicationID) (*models.Application, error)
	FindByClientID(ctx context.Context, clientID string) (*models.Application, error)
}

// Claims are the claims of an application token.
type Claims struct {
	ClientID string `json:"client_id"`
	UserID   string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

const defaultMaxTokenAge = 24 * time.Hour

type Service struct {
	store       Store
	logger      *slog.Logger
	maxTokenAge time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMaxTokenAge bounds how old an iat claim may be. Zero disables the check.
func WithMaxTokenAge(d time.Duration) Option {
	return func(s *Service) {
		s.maxTokenAge = d
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		logger:      slog.Default(),
		maxTokenAge: defaultMaxTokenAge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates an application with a fresh secret. The secret is
// returned so it can be handed to the application owner.
func (s *Service) Register(ctx context.Context, clientID, name string, rsin id.RSIN) (*models.Application, string, error) {
	secret, err := secrets.Generate(32)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate application secret")
	}
	app, err := models.NewApplication(id.NewApplicationID(), clientID, name, secret, rsin, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, "", dErrors.New(dErrors.CodeValidation, err.Error())
		}
		return nil, "", err
	}
	if err := s.store.Create(ctx, app); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, "", dErrors.New(dErrors.CodeConflict, "client id is already registered")
		}
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to create application")
	}
	s.logger.InfoContext(ctx, "application registered",
		"application_id", app.ID.String(),
		"client_id", app.ClientID,
	)
	return app, secret, nil
}

func (s *Service) FindByClientID(ctx context.Context, clientID string) (*models.Application, error) {
	app, err := s.store.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

// Authenticate verifies an application token and resolves its caller.
func (s *Service) Authenticate(ctx context.Context, token string) (requestcontext.Caller, error) {
	var unverified Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &unverified); err != nil {
		return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "malformed token")
	}
	clientID := unverified.ClientID
	if clientID == "" {
		clientID = unverified.Issuer
	}
	if clientID == "" {
		return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "token does not name an application")
	}

	app, err := s.store.FindByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "unknown application")
		}
		return requestcontext.Caller{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}

	now := requestcontext.Now(ctx)
	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(app.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(time.Minute),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "token has expired")
		}
		return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if s.maxTokenAge > 0 && claims.IssuedAt != nil && now.Sub(claims.IssuedAt.Time) > s.maxTokenAge {
		return requestcontext.Caller{}, dErrors.New(dErrors.CodeUnauthorized, "token is too old")
	}

	return requestcontext.Caller{
		ApplicationID: app.ID,
		ClientID:      app.ClientID,
		RSIN:          app.RSIN,
	}, nil
}

// SignToken issues a token for the application, the way a client would.
// Used by the seed command and by tests.
func SignToken(clientID, secret string, issuedAt time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   clientID,
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign application token: %w", err)
	}
	return signed, nil
}
