package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, Config{Path: filepath.Join(t.TempDir(), "db", "storage.db")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	if err := s.Put(ctx, map[string]string{"token": "a", "user": "b"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, map[string]string{"token": "c"}); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	if v, ok, err := s.Get(ctx, "token"); err != nil || !ok || v != "c" {
		t.Fatalf("Get: %q %v %v", v, ok, err)
	}
	if err := s.Remove(ctx, "token", "user"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "user"); ok {
		t.Fatal("user must be removed")
	}
}
