package services

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/stafflink/backoffice/modules/core/domain/aggregates/user"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/eventbus"
	"github.com/stafflink/backoffice/pkg/itf"
)

type memUserRepo struct {
	nextID  uint
	byID    map[uint]user.User
	byEmail map[string]user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, byID: make(map[uint]user.User), byEmail: make(map[string]user.User)}
}

func (m *memUserRepo) add(u user.User) user.User {
	m.byID[u.ID()] = u
	m.byEmail[u.Email()] = u
	return u
}

func (m *memUserRepo) GetPaginated(ctx context.Context, params *user.FindParams) ([]user.User, int64, error) {
	return nil, 0, nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id uint) (user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func (m *memUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	id := m.nextID
	m.nextID++
	created := user.New(u.FirstName(), u.LastName(), u.Email(), u.Role(),
		user.WithID(id),
		user.WithTenantID(u.TenantID()),
		user.WithPasswordHash(u.PasswordHash()),
	)
	return m.add(created), nil
}

func (m *memUserRepo) Update(ctx context.Context, u user.User) (user.User, error) {
	m.add(u)
	return u, nil
}

func (m *memUserRepo) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return nil
}

func (m *memUserRepo) UpdateLastLogin(ctx context.Context, id uint) error { return nil }
func (m *memUserRepo) Deactivate(ctx context.Context, id uint) error      { return nil }

func (m *memUserRepo) CountActiveByDepartment(ctx context.Context, departmentID uint) (int64, error) {
	return 0, nil
}

func (m *memUserRepo) CountActiveByJobRole(ctx context.Context, jobRoleID uint) (int64, error) {
	return 0, nil
}

func authTestConfig(ttl time.Duration) *configuration.Configuration {
	return &configuration.Configuration{
		Auth: configuration.AuthOptions{
			JWTSecret:  "test-secret",
			TokenTTL:   ttl,
			BcryptCost: 4,
		},
	}
}

func seedUser(t *testing.T, repo *memUserRepo, tenantID uuid.UUID, active bool) user.User {
	t.Helper()
	hash, err := user.HashPassword("s3cret-pass", 4)
	require.NoError(t, err)
	u := user.New("Jane", "Doe", "jane@example.com", user.RoleManager,
		user.WithID(7),
		user.WithTenantID(tenantID),
		user.WithPasswordHash(hash),
		user.WithIsActive(active),
	)
	return repo.add(u)
}

func authBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return eventbus.NewEventPublisher(logger)
}

func TestAuthService_AuthenticateAndParseToken(t *testing.T) {
	repo := newMemUserRepo()
	tc := itf.NewTestContext()
	seeded := seedUser(t, repo, tc.TenantID(), true)
	svc := NewAuthService(repo, authBus(), authTestConfig(time.Hour))
	ctx := tc.Build(t)

	u, token, err := svc.Authenticate(ctx, "jane@example.com", "s3cret-pass")
	require.NoError(t, err)
	require.Equal(t, seeded.ID(), u.ID())
	require.NotEmpty(t, token)

	parsed, tenantID, err := svc.UserFromToken(ctx, token)
	require.NoError(t, err)
	require.Equal(t, seeded.ID(), parsed.ID())
	require.Equal(t, tc.TenantID(), tenantID)
}

func TestAuthService_WrongPassword(t *testing.T) {
	repo := newMemUserRepo()
	tc := itf.NewTestContext()
	seedUser(t, repo, tc.TenantID(), true)
	svc := NewAuthService(repo, authBus(), authTestConfig(time.Hour))

	_, _, err := svc.Authenticate(tc.Build(t), "jane@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_UnknownEmailSameError(t *testing.T) {
	repo := newMemUserRepo()
	svc := NewAuthService(repo, authBus(), authTestConfig(time.Hour))

	_, _, err := svc.Authenticate(itf.NewTestContext().Build(t), "nobody@example.com", "whatever")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_DisabledAccount(t *testing.T) {
	repo := newMemUserRepo()
	tc := itf.NewTestContext()
	seedUser(t, repo, tc.TenantID(), false)
	svc := NewAuthService(repo, authBus(), authTestConfig(time.Hour))

	_, _, err := svc.Authenticate(tc.Build(t), "jane@example.com", "s3cret-pass")
	require.ErrorIs(t, err, ErrAccountDisabled)
}

func TestAuthService_ExpiredToken(t *testing.T) {
	repo := newMemUserRepo()
	tc := itf.NewTestContext()
	seedUser(t, repo, tc.TenantID(), true)
	svc := NewAuthService(repo, authBus(), authTestConfig(-time.Minute))
	ctx := tc.Build(t)

	_, token, err := svc.Authenticate(ctx, "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = svc.UserFromToken(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_ForeignSecretRejected(t *testing.T) {
	repo := newMemUserRepo()
	tc := itf.NewTestContext()
	seedUser(t, repo, tc.TenantID(), true)
	ctx := tc.Build(t)

	issuer := NewAuthService(repo, authBus(), authTestConfig(time.Hour))
	_, token, err := issuer.Authenticate(ctx, "jane@example.com", "s3cret-pass")
	require.NoError(t, err)

	verifier := NewAuthService(repo, authBus(), &configuration.Configuration{
		Auth: configuration.AuthOptions{JWTSecret: "other-secret", TokenTTL: time.Hour, BcryptCost: 4},
	})
	_, _, err = verifier.UserFromToken(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_GarbageToken(t *testing.T) {
	svc := NewAuthService(newMemUserRepo(), authBus(), authTestConfig(time.Hour))

	_, _, err := svc.UserFromToken(itf.NewTestContext().Build(t), "not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_SuperadminTokenHasNoTenant(t *testing.T) {
	repo := newMemUserRepo()
	hash, err := user.HashPassword("root-pass", 4)
	require.NoError(t, err)
	repo.add(user.New("Super", "Admin", "root@example.com", user.RoleSuperadmin,
		user.WithID(1),
		user.WithPasswordHash(hash),
	))
	svc := NewAuthService(repo, authBus(), authTestConfig(time.Hour))
	ctx := itf.NewTestContext().Build(t)

	_, token, err := svc.Authenticate(ctx, "root@example.com", "root-pass")
	require.NoError(t, err)

	parsed, tenantID, err := svc.UserFromToken(ctx, token)
	require.NoError(t, err)
	require.True(t, parsed.IsSuperadmin())
	require.Equal(t, uuid.Nil, tenantID)
}
