package model

import "strings"

// AuthenticatorType names a supported authenticator kind.
type AuthenticatorType string

const (
	AuthPassword AuthenticatorType = "password"
	AuthX509     AuthenticatorType = "x509"
)

// Authenticator holds one user's secrets for a single authenticator type, in
// the order they were added (a password authenticator keeps exactly one; an
// x509 authenticator may accumulate several accepted DNs).
//
// Grounded on original_source/metacat/db/dbobjects2.py's Authenticator /
// PasswordAuthenticator / X509Authenticator hierarchy, collapsed into a
// single struct with type-specific methods instead of a class hierarchy
// (Go has no use for the inheritance the source used purely to vary two
// short methods).
type Authenticator struct {
	Type    AuthenticatorType
	Secrets []string
}

// PasswordDefaultAlgorithm is used when SetPassword receives a bare hash
// with no "$algo:" prefix.
const PasswordDefaultAlgorithm = "sha256"

// SetPassword stores a single secret, normalizing it to the "$<algo>:<hash>"
// encoding described in spec.md §6 ("Secret encoding"). A value that is
// already so encoded passes through unchanged.
func (a *Authenticator) SetPassword(hashedPassword string) {
	a.Type = AuthPassword
	a.Secrets = []string{formatSecret(hashedPassword)}
}

func formatSecret(hashedPassword string) string {
	if strings.HasPrefix(hashedPassword, "$") && strings.Contains(hashedPassword, ":") {
		return hashedPassword
	}
	return "$" + PasswordDefaultAlgorithm + ":" + hashedPassword
}

// VerifyPassword compares an already-hashed password against the stored
// secret, stripping the "$algo:" prefix from both sides.
func (a *Authenticator) VerifyPassword(hashedPassword string) bool {
	if a.Type != AuthPassword || len(a.Secrets) == 0 {
		return false
	}
	return unpackSecret(a.Secrets[0]) == unpackSecret(formatSecret(hashedPassword))
}

func unpackSecret(secret string) string {
	if strings.HasPrefix(secret, "$") {
		if idx := strings.Index(secret, ":"); idx >= 0 {
			return secret[idx+1:]
		}
	}
	return secret
}

// AddX509Subject appends a distinguished name to an x509 authenticator if
// it isn't already present.
func (a *Authenticator) AddX509Subject(dn string) {
	a.Type = AuthX509
	for _, s := range a.Secrets {
		if s == dn {
			return
		}
	}
	a.Secrets = append(a.Secrets, dn)
}

// VerifyX509Subject reports whether dn is one of the accepted subjects.
func (a *Authenticator) VerifyX509Subject(dn string) bool {
	for _, s := range a.Secrets {
		if s == dn {
			return true
		}
	}
	return false
}

// User is the in-memory representation of a users(...) row plus its
// authenticators and role memberships.
//
// Grounded on original_source/metacat/db/dbobjects2.py's DBUser.
type User struct {
	Username       string
	Name           string
	Email          string
	Flags          string
	Authenticators map[AuthenticatorType]*Authenticator
	RoleNames      []string
}

// IsAdmin reports whether the 'a' flag is set, per spec.md §4.H: the engine
// exposes this but never consults it itself; callers decide what it means.
func (u *User) IsAdmin() bool {
	return strings.Contains(u.Flags, "a")
}

func (u *User) ToPlain() map[string]any {
	return map[string]any{
		"username": u.Username,
		"name":     u.Name,
		"email":    u.Email,
		"flags":    u.Flags,
		"roles":    u.RoleNames,
	}
}

// Role is the in-memory representation of a roles(...) row.
type Role struct {
	Name        string
	Description string
	Members     []string
}

func (r *Role) ToPlain() map[string]any {
	return map[string]any{
		"name":        r.Name,
		"description": r.Description,
		"members":     r.Members,
	}
}
