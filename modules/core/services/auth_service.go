package services

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/serrors"
)

var (
	ErrInvalidCredentials = serrors.NewError("AUTH_INVALID_CREDENTIALS", "invalid email or password")
	ErrAccountDisabled    = serrors.NewError("AUTH_ACCOUNT_DISABLED", "account is deactivated")
	ErrInvalidToken       = serrors.NewError("AUTH_INVALID_TOKEN", "invalid or expired token")
)

type tokenClaims struct {
	TenantID string `json:"tenant_id,omitempty"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type AuthService struct {
	users     user.Repository
	publisher eventbus.EventBus
	secret    []byte
	tokenTTL  time.Duration
}

func NewAuthService(users user.Repository, publisher eventbus.EventBus, conf *configuration.Configuration) *AuthService {
	return &AuthService{
		users:     users,
		publisher: publisher,
		secret:    []byte(conf.Auth.JWTSecret),
		tokenTTL:  conf.Auth.TokenTTL,
	}
}

// Authenticate verifies the credentials within the tenant scope already in
// the context and returns the user together with a signed access token.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (user.User, string, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !u.IsActive() {
		return nil, "", ErrAccountDisabled
	}
	if !u.CheckPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID()); err != nil {
		composables.UseLogger(ctx).WithError(err).Warn("failed to record last login")
	}
	s.publisher.Publish("auth.login", u)
	return u, token, nil
}

// UserFromToken validates a bearer token and loads the account it names.
// The returned uuid is the tenant scope embedded in the token; it is Nil for
// superadmin accounts.
func (s *AuthService) UserFromToken(ctx context.Context, raw string) (user.User, uuid.UUID, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, uuid.Nil, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, uuid.Nil, ErrInvalidToken
	}

	tenantID := uuid.Nil
	if claims.TenantID != "" {
		tenantID, err = uuid.Parse(claims.TenantID)
		if err != nil {
			return nil, uuid.Nil, ErrInvalidToken
		}
		ctx = composables.WithTenantID(ctx, tenantID)
	}

	u, err := s.users.GetByID(ctx, uint(id))
	if err != nil {
		return nil, uuid.Nil, ErrInvalidToken
	}
	if !u.IsActive() {
		return nil, uuid.Nil, ErrAccountDisabled
	}
	return u, tenantID, nil
}

// ChangePassword lets the authenticated user rotate their own password.
func (s *AuthService) ChangePassword(ctx context.Context, data *user.ChangePasswordDTO) error {
	if fields, ok := data.Ok(); !ok {
		return fields
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return err
	}
	if !u.CheckPassword(data.OldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := user.HashPassword(data.NewPassword, configuration.Use().Auth.BcryptCost)
	if err != nil {
		return err
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.users.UpdatePassword(txCtx, u.ID(), hash); err != nil {
			return err
		}
		s.publisher.Publish("auth.password_changed", u)
		return nil
	})
}

func (s *AuthService) issueToken(u user.User) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		Role: string(u.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID()), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	if !u.IsSuperadmin() {
		claims.TenantID = u.TenantID().String()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}
