package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestRepositoryPutGetDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if _, ok, err := repo.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("expected empty slot, got ok=%v err=%v", ok, err)
	}

	if err := repo.Put(ctx, "token", "abc"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if v, ok, err := repo.Get(ctx, "token"); err != nil || !ok || v != "abc" {
		t.Fatalf("expected abc, got %q ok=%v err=%v", v, ok, err)
	}

	if err := repo.Put(ctx, "token", "def"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if v, _, _ := repo.Get(ctx, "token"); v != "def" {
		t.Fatalf("expected last write to win, got %q", v)
	}

	if err := repo.Delete(ctx, "token"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.Get(ctx, "token"); ok {
		t.Fatalf("expected token to be gone")
	}
	if err := repo.Delete(ctx, "token"); err != nil {
		t.Fatalf("second delete should succeed: %v", err)
	}
}

func TestRepositorySurvivesReopen(t *testing.T) {
	repo, path := newTestRepo(t)
	ctx := context.Background()
	if err := repo.Put(ctx, "user", `{"name":"Ana"}`); err != nil {
		t.Fatalf("put: %v", err)
	}
	repo.Close()

	reopened, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	v, ok, err := reopened.Get(ctx, "user")
	if err != nil || !ok || v != `{"name":"Ana"}` {
		t.Fatalf("expected persisted user, got %q ok=%v err=%v", v, ok, err)
	}
}
