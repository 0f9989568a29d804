package tenant

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tenant is the company everything else is scoped to. Code is the short
// identifier clients send in the X-Company-Code header.
type Tenant struct {
	id        uuid.UUID
	name      string
	code      string
	domain    string
	address   string
	phone     string
	isActive  bool
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Tenant)

func WithID(id uuid.UUID) Option {
	return func(t *Tenant) {
		t.id = id
	}
}

func WithDomain(domain string) Option {
	return func(t *Tenant) {
		t.domain = normalize(domain)
	}
}

func WithAddress(address string) Option {
	return func(t *Tenant) {
		t.address = strings.TrimSpace(address)
	}
}

func WithPhone(phone string) Option {
	return func(t *Tenant) {
		t.phone = strings.TrimSpace(phone)
	}
}

func WithIsActive(isActive bool) Option {
	return func(t *Tenant) {
		t.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *Tenant) {
		t.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(t *Tenant) {
		t.updatedAt = updatedAt
	}
}

func New(name, code string, opts ...Option) *Tenant {
	t := &Tenant{
		id:        uuid.New(),
		name:      strings.TrimSpace(name),
		code:      normalize(code),
		isActive:  true,
		createdAt: time.Now(),
		updatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tenant) ID() uuid.UUID {
	return t.id
}

func (t *Tenant) Name() string {
	return t.name
}

func (t *Tenant) Code() string {
	return t.code
}

func (t *Tenant) Domain() string {
	return t.domain
}

func (t *Tenant) Address() string {
	return t.address
}

func (t *Tenant) Phone() string {
	return t.phone
}

func (t *Tenant) IsActive() bool {
	return t.isActive
}

func (t *Tenant) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Tenant) UpdatedAt() time.Time {
	return t.updatedAt
}

func (t *Tenant) SetName(name string) {
	t.name = strings.TrimSpace(name)
	t.updatedAt = time.Now()
}

func (t *Tenant) SetDomain(domain string) {
	t.domain = normalize(domain)
	t.updatedAt = time.Now()
}

func (t *Tenant) SetAddress(address string) {
	t.address = strings.TrimSpace(address)
	t.updatedAt = time.Now()
}

func (t *Tenant) SetPhone(phone string) {
	t.phone = strings.TrimSpace(phone)
	t.updatedAt = time.Now()
}

func (t *Tenant) Deactivate() {
	t.isActive = false
	t.updatedAt = time.Now()
}

// Tenant codes and domains are matched case-insensitively.
func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
