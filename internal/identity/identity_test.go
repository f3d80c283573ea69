package identity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestFileProviderCreatesAndReuses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "player.id")
	ctx := context.Background()

	first := NewFileProvider(path)
	id, err := first.EnsureIdentity(ctx)
	if err != nil {
		t.Fatalf("ensure identity: %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid, got %q", id)
	}
	again, err := first.EnsureIdentity(ctx)
	if err != nil || again != id {
		t.Fatalf("expected cached id %q, got %q (%v)", id, again, err)
	}

	second := NewFileProvider(path)
	other, err := second.EnsureIdentity(ctx)
	if err != nil {
		t.Fatalf("ensure identity from file: %v", err)
	}
	if other != id {
		t.Fatalf("expected persisted id %q, got %q", id, other)
	}
}

func TestFileProviderRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "player.id")
	if err := os.WriteFile(path, []byte("not-a-uuid\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileProvider(path).EnsureIdentity(context.Background()); err == nil {
		t.Fatalf("expected error for invalid id file")
	}
}

func TestStatic(t *testing.T) {
	id, err := Static("abc").EnsureIdentity(context.Background())
	if err != nil || id != "abc" {
		t.Fatalf("unexpected static identity %q %v", id, err)
	}
	if _, err := Static("").EnsureIdentity(context.Background()); err == nil {
		t.Fatalf("expected empty static identity to fail")
	}
}
