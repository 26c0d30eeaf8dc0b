package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tokenFile persists the provider session between process runs, standing in
// for the browser-local storage the hosted client relies on. Absence of the
// file simply means "no session".
type tokenFile struct {
	path string
}

func newTokenFile(path string) (*tokenFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("identity: token path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("identity: ensure token directory: %w", err)
	}
	return &tokenFile{path: path}, nil
}

// load returns the persisted session, or (nil, nil) when none is stored. A
// corrupt record is treated as no session rather than a fatal error.
func (t *tokenFile) load() (*Session, error) {
	data, err := os.ReadFile(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("identity: read token file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, nil
	}
	if sess.AccessToken == "" {
		return nil, nil
	}
	sess.hydrateFromToken()
	return &sess, nil
}

func (t *tokenFile) save(sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("identity: encode session: %w", err)
	}
	if err := os.WriteFile(t.path, data, 0o600); err != nil {
		return fmt.Errorf("identity: write token file: %w", err)
	}
	return nil
}

func (t *tokenFile) clear() error {
	if err := os.Remove(t.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("identity: remove token file: %w", err)
	}
	return nil
}
