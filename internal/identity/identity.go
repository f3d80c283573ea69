// Package identity provides the anonymous player id.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// FileProvider keeps a generated player id in a file. The id is created on
// first use and cached for the lifetime of the provider.
type FileProvider struct {
	path string

	mu sync.Mutex
	id string
}

// NewFileProvider returns a provider backed by path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// EnsureIdentity returns the stored id, creating one if needed.
func (p *FileProvider) EnsureIdentity(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.id != "" {
		return p.id, nil
	}
	data, err := os.ReadFile(p.path)
	switch {
	case err == nil:
		id := strings.TrimSpace(string(data))
		if _, perr := uuid.Parse(id); perr != nil {
			return "", fmt.Errorf("invalid player id in %s: %w", p.path, perr)
		}
		p.id = id
		return id, nil
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("failed to read player id: %w", err)
	}

	id := uuid.NewString()
	if err := writeID(p.path, id); err != nil {
		return "", err
	}
	p.id = id
	return id, nil
}

func writeID(path, id string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create identity dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "player-*.id")
	if err != nil {
		return fmt.Errorf("failed to create player id: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmp.WriteString(id + "\n"); err != nil {
		return fmt.Errorf("failed to write player id: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close player id: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write player id: %w", err)
	}
	return nil
}

// Static always returns the same id. An empty id means no identity.
type Static string

// EnsureIdentity implements score.IdentityProvider.
func (s Static) EnsureIdentity(context.Context) (string, error) {
	if s == "" {
		return "", errors.New("no player id configured")
	}
	return string(s), nil
}
