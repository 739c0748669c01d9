// Package credstore keeps the operator's API token on disk between
// mobcashctl invocations.
package credstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// FileName is the name of the credential file inside the console home
	FileName = "credentials.json"
)

// ErrNotFound is returned by Load when no credential was saved.
var ErrNotFound = errors.New("no stored credential, run: mobcashctl auth login --token <token>")

// Credential is the stored token and what is known about it.
type Credential struct {
	Token     string     `json:"token"`
	APIURL    string     `json:"apiUrl,omitempty"`  // API the token was saved for
	SavedAt   time.Time  `json:"savedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"` // from the token's exp claim, if any
}

// Expired reports whether the token's expiry has passed at now.
func (c *Credential) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// Path returns the credential file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, FileName)
}

// Load reads the credential stored in dir.
func Load(dir string) (*Credential, error) {
	data, err := os.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("corrupt credential file %s: %w", Path(dir), err)
	}
	if strings.TrimSpace(cred.Token) == "" {
		return nil, ErrNotFound
	}
	return &cred, nil
}

// Save writes cred to dir, readable by the current user only.
func Save(dir string, cred *Credential) error {
	if cred == nil || strings.TrimSpace(cred.Token) == "" {
		return errors.New("refusing to store an empty token")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}

	// write then rename so a crash never leaves half a file behind
	tmp := Path(dir) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, Path(dir))
}

// Clear removes the stored credential. A missing file is not an error.
func Clear(dir string) error {
	err := os.Remove(Path(dir))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
