package file

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T, secret string) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := Open(Config{Path: path, Secret: secret})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, path
}

func TestStore_PutGetRemove(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t, "")

	if _, ok, err := s.Get(ctx, "token"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}
	if err := s.Put(ctx, map[string]string{"token": "abc", "user": `{"username":"a"}`}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reopened, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if v, ok, _ := reopened.Get(ctx, "user"); !ok || v != `{"username":"a"}` {
		t.Fatalf("value not persisted: %q %v", v, ok)
	}

	if err := s.Remove(ctx, "token", "user", "missing"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := reopened.Get(ctx, "token"); ok {
		t.Fatal("token must be gone")
	}
}

func TestStore_SealedDocument(t *testing.T) {
	ctx := context.Background()
	s, path := openTemp(t, "s3cret")

	if err := s.Put(ctx, map[string]string{"token": "very-secret-token"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if bytes.Contains(raw, []byte("very-secret-token")) {
		t.Fatal("sealed document leaks plaintext")
	}
	if v, ok, err := s.Get(ctx, "token"); err != nil || !ok || v != "very-secret-token" {
		t.Fatalf("Get: %q %v %v", v, ok, err)
	}

	if _, err := Open(Config{Path: path}); !errors.Is(err, ErrSealed) {
		t.Fatalf("expected ErrSealed without secret, got %v", err)
	}
	if _, err := Open(Config{Path: path, Secret: "wrong"}); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen with wrong secret, got %v", err)
	}
}

func TestOpen_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(Config{Path: path}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}
