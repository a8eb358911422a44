package models

import (
	"net/http"
	"time"
)

// CredentialName is the storage key of the bearer credential.
const CredentialName = "authToken"

// Credential is the persisted bearer token together with the cookie-style
// attributes it was issued with. It is replaced wholesale, never edited.
type Credential struct {
	Value     string
	ExpiresAt time.Time
	Secure    bool
	SameSite  http.SameSite
}

// Expired reports whether the credential is no longer usable at now.
func (c Credential) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}
