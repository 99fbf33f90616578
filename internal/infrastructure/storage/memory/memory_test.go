package memory

import (
	"context"
	"errors"
	"testing"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Put(ctx, map[string]string{"token": "t", "user": "u"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if v, ok, _ := s.Get(ctx, "token"); !ok || v != "t" {
		t.Fatalf("Get: %q %v", v, ok)
	}
	if err := s.Remove(ctx, "token", "user"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(s.Snapshot()) != 0 {
		t.Fatalf("expected empty store, got %v", s.Snapshot())
	}

	_ = s.Close()
	if err := s.Ping(ctx); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}
