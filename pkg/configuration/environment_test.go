package configuration

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateLimitOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    RateLimitOptions
		wantErr bool
	}{
		{"defaults", RateLimitOptions{GlobalRPS: 1000, LoginPerMin: 5, Storage: "memory"}, false},
		{"negative rps", RateLimitOptions{GlobalRPS: -1, Storage: "memory"}, true},
		{"negative login", RateLimitOptions{LoginPerMin: -1, Storage: "memory"}, true},
		{"unknown storage", RateLimitOptions{Storage: "etcd"}, true},
		{"redis without url", RateLimitOptions{Storage: "redis"}, true},
		{"redis with url", RateLimitOptions{Storage: "redis", RedisURL: "localhost:6379"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestAuthOptions_Validate(t *testing.T) {
	opts := AuthOptions{JWTSecret: "change-me-in-production", TokenTTL: 1, BcryptCost: 10}
	require.NoError(t, opts.Validate("development"))
	require.Error(t, opts.Validate(Production), "default secret must be rejected in production")

	opts = AuthOptions{JWTSecret: "s", TokenTTL: 0, BcryptCost: 10}
	require.Error(t, opts.Validate("development"))

	opts = AuthOptions{JWTSecret: "s", TokenTTL: 1, BcryptCost: 50}
	require.Error(t, opts.Validate("development"))
}

func TestAuthzOptions_Validate(t *testing.T) {
	for _, mode := range []string{"enforce", "shadow", "disabled"} {
		require.NoError(t, (&AuthzOptions{Mode: mode}).Validate())
	}
	require.Error(t, (&AuthzOptions{Mode: "audit"}).Validate())
}
