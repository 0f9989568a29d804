package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleEmployee   Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User is the authenticated actor. Superadmin users are not tenant-scoped;
// TenantID is uuid.Nil for them until a request resolves an explicit tenant.
type User interface {
	ID() uint
	TenantID() uuid.UUID
	FirstName() string
	LastName() string
	FullName() string
	Email() string
	Phone() string
	Role() Role
	DepartmentID() *uint
	JobRoleID() *uint
	IsActive() bool
	LastLogin() *time.Time
	CreatedAt() time.Time
	UpdatedAt() time.Time

	PasswordHash() string
	CheckPassword(password string) bool
	IsSuperadmin() bool
}

type Option func(*userImpl)

func WithID(id uint) Option {
	return func(u *userImpl) { u.id = id }
}

func WithTenantID(tenantID uuid.UUID) Option {
	return func(u *userImpl) { u.tenantID = tenantID }
}

func WithPhone(phone string) Option {
	return func(u *userImpl) { u.phone = strings.TrimSpace(phone) }
}

func WithPasswordHash(hash string) Option {
	return func(u *userImpl) { u.passwordHash = hash }
}

func WithDepartmentID(id *uint) Option {
	return func(u *userImpl) { u.departmentID = id }
}

func WithJobRoleID(id *uint) Option {
	return func(u *userImpl) { u.jobRoleID = id }
}

func WithIsActive(isActive bool) Option {
	return func(u *userImpl) { u.isActive = isActive }
}

func WithLastLogin(t *time.Time) Option {
	return func(u *userImpl) { u.lastLogin = t }
}

func WithCreatedAt(t time.Time) Option {
	return func(u *userImpl) { u.createdAt = t }
}

func WithUpdatedAt(t time.Time) Option {
	return func(u *userImpl) { u.updatedAt = t }
}

func New(firstName, lastName, email string, role Role, opts ...Option) User {
	u := &userImpl{
		firstName: strings.TrimSpace(firstName),
		lastName:  strings.TrimSpace(lastName),
		email:     strings.ToLower(strings.TrimSpace(email)),
		role:      role,
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type userImpl struct {
	id           uint
	tenantID     uuid.UUID
	firstName    string
	lastName     string
	email        string
	phone        string
	passwordHash string
	role         Role
	departmentID *uint
	jobRoleID    *uint
	isActive     bool
	lastLogin    *time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

func (u *userImpl) ID() uint              { return u.id }
func (u *userImpl) TenantID() uuid.UUID   { return u.tenantID }
func (u *userImpl) FirstName() string     { return u.firstName }
func (u *userImpl) LastName() string      { return u.lastName }
func (u *userImpl) Email() string         { return u.email }
func (u *userImpl) Phone() string         { return u.phone }
func (u *userImpl) Role() Role            { return u.role }
func (u *userImpl) DepartmentID() *uint   { return u.departmentID }
func (u *userImpl) JobRoleID() *uint      { return u.jobRoleID }
func (u *userImpl) IsActive() bool        { return u.isActive }
func (u *userImpl) LastLogin() *time.Time { return u.lastLogin }
func (u *userImpl) CreatedAt() time.Time  { return u.createdAt }
func (u *userImpl) UpdatedAt() time.Time  { return u.updatedAt }
func (u *userImpl) PasswordHash() string  { return u.passwordHash }

func (u *userImpl) FullName() string {
	return strings.TrimSpace(u.firstName + " " + u.lastName)
}

func (u *userImpl) CheckPassword(password string) bool {
	if u.passwordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) == nil
}

func (u *userImpl) IsSuperadmin() bool {
	return u.role == RoleSuperadmin
}

// HashPassword produces a bcrypt hash with the configured cost.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
