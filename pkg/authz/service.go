// Package authz enforces the role model: every service write path asks it
// whether the current user's role may perform an action on an object such as
// "tasks.tasks" or "hrm.departments".
package authz

import (
	"context"
	_ "embed"
	"strings"
	"sync/atomic"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	"github.com/sirupsen/logrus"

	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/serrors"
)

//go:embed model.conf
var modelText string

//go:embed policy.csv
var policyText string

// Mode represents the global enforcement mode.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeShadow   Mode = "shadow"
	ModeEnforce  Mode = "enforce"
)

var ErrForbidden = serrors.NewError("AUTHZ_FORBIDDEN", "permission denied")

type Config struct {
	Mode   Mode
	Logger *logrus.Logger
}

type Service struct {
	enforcer *casbin.Enforcer
	mode     Mode
	logger   *logrus.Logger
}

func NewService(cfg Config) (*Service, error) {
	m, err := casbinmodel.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	if err := loadPolicy(enforcer, policyText); err != nil {
		return nil, err
	}

	mode := cfg.Mode
	switch mode {
	case ModeDisabled, ModeShadow, ModeEnforce:
	default:
		mode = ModeEnforce
	}
	return &Service{enforcer: enforcer, mode: mode, logger: cfg.Logger}, nil
}

// Authorize checks whether the user in ctx may perform action on object.
// In shadow mode denials are logged but allowed through.
func (s *Service) Authorize(ctx context.Context, object, action string) error {
	if s.mode == ModeDisabled {
		return nil
	}
	u, err := composables.UseUser(ctx)
	if err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(string(u.Role()), object, action)
	if err != nil {
		return err
	}
	if allowed {
		return nil
	}

	denial := ErrForbidden.WithMeta(map[string]string{
		"subject": string(u.Role()),
		"object":  object,
		"action":  action,
	})
	if s.mode == ModeShadow {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"subject": u.Role(),
				"object":  object,
				"action":  action,
			}).Warn("authz: shadow denial")
		}
		return nil
	}
	return denial
}

func loadPolicy(enforcer *casbin.Enforcer, text string) error {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch parts[0] {
		case "p":
			if _, err := enforcer.AddPolicy(anySlice(parts[1:])...); err != nil {
				return err
			}
		case "g":
			if _, err := enforcer.AddGroupingPolicy(anySlice(parts[1:])...); err != nil {
				return err
			}
		}
	}
	return nil
}

func anySlice(parts []string) []any {
	out := make([]any, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out
}

var defaultService atomic.Pointer[Service]

// SetDefault installs the process-wide service used by the module guards.
func SetDefault(s *Service) {
	defaultService.Store(s)
}

// Authorize uses the default service. Before SetDefault runs (unit tests,
// CLI commands) it behaves as disabled.
func Authorize(ctx context.Context, object, action string) error {
	s := defaultService.Load()
	if s == nil {
		return nil
	}
	return s.Authorize(ctx, object, action)
}
