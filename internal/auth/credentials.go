// Package auth implements the HTTP Basic Auth gate that stands in for access
// control on the demo's pages.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential is a username/password pair.
type Credential struct {
	Username string
	Password string
}

// DemoCredentials is the fixed in-process account list.
var DemoCredentials = []Credential{
	{Username: "demo", Password: "medical2024"},
	{Username: "doctor", Password: "test123"},
	{Username: "admin", Password: "secure456"},
	{Username: "clinic1", Password: "interview1"},
	{Username: "clinic2", Password: "interview2"},
}

// Store verifies credentials against bcrypt hashes computed at startup, so
// plaintext passwords are not retained past construction.
type Store struct {
	hashes map[string][]byte
}

// NewStore hashes every credential. Duplicate usernames are rejected.
func NewStore(creds []Credential) (*Store, error) {
	hashes := make(map[string][]byte, len(creds))

	for _, c := range creds {
		if c.Username == "" {
			return nil, fmt.Errorf("credential with empty username")
		}
		if _, dup := hashes[c.Username]; dup {
			return nil, fmt.Errorf("duplicate credential for %q", c.Username)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash credential for %q: %w", c.Username, err)
		}
		hashes[c.Username] = hash
	}

	return &Store{hashes: hashes}, nil
}

// Verify reports whether the pair matches a known credential.
func (s *Store) Verify(username, password string) bool {
	hash, ok := s.hashes[username]
	if !ok {
		// Burn comparable time for unknown users.
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return false
	}

	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

//nolint:gochecknoglobals // fixed hash of an unusable password
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused-placeholder"), bcrypt.MinCost)
