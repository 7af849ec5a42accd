package api

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"huddle/internal/config"
	"huddle/internal/domain"
	"huddle/internal/models"
)

type identityContextKey struct{}

// IdentityFrom returns the authenticated identity stored by the auth
// middleware. The second result is false on unauthenticated paths.
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(models.Identity)
	return id, ok
}

// HTTPAuth is the identity-provider boundary: it maps a presented API key
// to the user identity every core operation receives explicitly.
type HTTPAuth struct {
	cfg       *config.APIConfig
	byAPIKey  map[string]config.APIClientKey
	limiter   *rateLimiter
	userLimit domain.ScheduleCache
}

func NewHTTPAuth(cfg *config.APIConfig, userLimit domain.ScheduleCache) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}

	return &HTTPAuth{
		cfg:       cfg,
		byAPIKey:  m,
		limiter:   newRateLimiter(cfg),
		userLimit: userLimit,
	}
}

// Wrap authenticates every request except health and metrics probes, then
// applies both rate limits before handing off.
func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/healthz" {
			next.ServeHTTP(w, r)
			return
		}

		identity, ok := a.authenticate(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid or missing api key")
			return
		}

		if !a.allow(r.Context(), identity) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *HTTPAuth) authenticate(r *http.Request) (models.Identity, bool) {
	if !a.cfg.Auth.Enabled {
		// Auth off is a development mode: act as a fixed local user.
		return models.Identity{UID: "dev", Email: "dev@localhost", DisplayName: "Dev"}, true
	}

	header := strings.TrimSpace(a.cfg.Auth.HeaderAPIKey)
	if header == "" {
		header = "x-api-key"
	}

	presented := strings.TrimSpace(r.Header.Get(header))
	if presented == "" {
		return models.Identity{}, false
	}

	client, ok := a.byAPIKey[presented]
	if !ok {
		return models.Identity{}, false
	}
	if subtle.ConstantTimeCompare([]byte(client.Key), []byte(presented)) != 1 {
		return models.Identity{}, false
	}

	return models.Identity{
		UID:         client.UID,
		Email:       client.Email,
		DisplayName: client.DisplayName,
	}, true
}

func (a *HTTPAuth) allow(ctx context.Context, identity models.Identity) bool {
	if a.cfg.RateLimit.RPS > 0 {
		if !a.limiter.getLimiter(identity.UID).Allow() {
			return false
		}
	}

	if a.userLimit != nil && a.cfg.RateLimit.Requests > 0 {
		window := time.Duration(a.cfg.RateLimit.Window) * time.Second
		allowed, err := a.userLimit.CheckRateLimit(ctx, identity.UID, a.cfg.RateLimit.Requests, window)
		if err != nil {
			// Limiter outage must not take bookings down with it.
			return true
		}
		return allowed
	}

	return true
}
