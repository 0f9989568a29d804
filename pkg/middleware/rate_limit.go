package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	libredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
	"github.com/stafflink/backoffice/pkg/serrors"
)

var errRateLimited = serrors.NewError("RATE_LIMITED", "too many requests")

type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
	// KeyFunc derives the counter key. Defaults to the client IP.
	KeyFunc func(r *http.Request) string
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	option, err := libredis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := libredis.NewClient(option)
	return sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   "ratelimit",
		MaxRetry: 3,
	})
}

// NewStore picks the configured limiter backend, falling back to memory when
// redis is unavailable.
func NewStore(conf *configuration.Configuration) limiter.Store {
	if conf.RateLimit.Storage == "redis" {
		store, err := NewRedisStore(conf.RateLimit.RedisURL)
		if err == nil {
			return store
		}
		conf.Logger().WithError(err).Warn("failed to create redis store for rate limiting, falling back to memory")
	}
	return NewMemoryStore()
}

// RateLimit rejects requests over the configured rate with 429 and the
// standard X-RateLimit response headers.
func RateLimit(config RateLimitConfig) mux.MiddlewareFunc {
	conf := configuration.Use()
	period := config.Period
	if period == 0 {
		period = time.Second
	}
	store := config.Store
	if store == nil {
		store = NewMemoryStore()
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(r *http.Request) string {
			return getRealIP(r, conf)
		}
	}
	instance := limiter.New(store, limiter.Rate{
		Period: period,
		Limit:  int64(config.RequestsPerPeriod),
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limiterCtx, err := instance.Get(r.Context(), keyFunc(r))
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiterCtx.Limit, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(limiterCtx.Remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(limiterCtx.Reset, 10))
			if limiterCtx.Reached {
				httpapi.WriteBaseError(w, http.StatusTooManyRequests, errRateLimited)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoginRateLimit limits login attempts per client IP per minute.
func LoginRateLimit(perMinute int, store limiter.Store) mux.MiddlewareFunc {
	return RateLimit(RateLimitConfig{
		RequestsPerPeriod: perMinute,
		Period:            time.Minute,
		Store:             store,
	})
}
