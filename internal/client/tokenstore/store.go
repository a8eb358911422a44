// Package tokenstore keeps the bearer credential across restarts.
//
// Store is the only component allowed to touch the persisted credential.
// It behaves like a browser cookie: a fixed lifetime from issuance, a
// Secure flag outside local development and a strict same-site policy.
// Storage failures never surface to callers; a store that cannot be read
// simply reports no credential, so the session degrades to anonymous.
package tokenstore

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophrecharge/internal/client/models"
	"github.com/dmitrijs2005/gophrecharge/internal/client/repositories/credentials"
	"github.com/dmitrijs2005/gophrecharge/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the credential lifetime from issuance.
const DefaultTTL = 7 * 24 * time.Hour

type Options struct {
	TTL      time.Duration
	Secure   bool
	SameSite http.SameSite
	Now      func() time.Time
	Logger   logging.Logger
}

type Store struct {
	repo credentials.Repository
	opts Options
}

func New(repo credentials.Repository, opts Options) *Store {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.SameSite == 0 {
		opts.SameSite = http.SameSiteStrictMode
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	opts.Logger = opts.Logger.With("component", "tokenstore")
	return &Store{repo: repo, opts: opts}
}

// Set stores token for the configured lifetime, shortened to the token's
// own "exp" claim when it is a JWT that expires sooner. An empty token
// clears the store.
func (s *Store) Set(ctx context.Context, token string) {
	if token == "" {
		s.Clear(ctx)
		return
	}

	now := s.opts.Now()
	expiresAt := now.Add(s.opts.TTL)
	if exp, ok := tokenExpiry(token); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}

	c := models.Credential{
		Value:     token,
		ExpiresAt: expiresAt,
		Secure:    s.opts.Secure,
		SameSite:  s.opts.SameSite,
	}
	if err := s.repo.Save(ctx, c); err != nil {
		s.opts.Logger.Warn(ctx, "credential not persisted", "error", err)
	}
}

// Get returns the stored token, or false when none is stored, it has
// expired, or the storage cannot be read.
func (s *Store) Get(ctx context.Context) (string, bool) {
	c, ok := s.Credential(ctx)
	if !ok {
		return "", false
	}
	return c.Value, true
}

// Credential is Get with the cookie attributes attached.
func (s *Store) Credential(ctx context.Context) (models.Credential, bool) {
	c, found, err := s.repo.Load(ctx)
	if err != nil {
		s.opts.Logger.Warn(ctx, "credential storage unreadable", "error", err)
		return models.Credential{}, false
	}
	if !found || c.Value == "" {
		return models.Credential{}, false
	}
	if c.Expired(s.opts.Now()) {
		s.Clear(ctx)
		return models.Credential{}, false
	}
	return c, true
}

// Clear removes the credential. It is idempotent.
func (s *Store) Clear(ctx context.Context) {
	if err := s.repo.Delete(ctx); err != nil {
		s.opts.Logger.Warn(ctx, "credential not removed", "error", err)
	}
}

// tokenExpiry reads the "exp" claim of a JWT without verifying it; the
// server is the only party able to verify. Opaque tokens yield false.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
