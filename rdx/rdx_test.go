package rdx_test

import (
	"context"
	"testing"

	"voyago/rdx"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) *rdx.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return rdx.New(mr.Addr())
}

func TestSessionLifecycle(t *testing.T) {
	c := newTestCache(t)
	defer c.Close()
	ctx := context.Background()

	if err := c.SetSession(ctx, "u1", "token-a"); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	got, err := c.GetSession(ctx, "u1")
	if err != nil || got != "token-a" {
		t.Fatalf("GetSession = %q, %v", got, err)
	}

	// login again overwrites
	if err := c.SetSession(ctx, "u1", "token-b"); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.GetSession(ctx, "u1"); got != "token-b" {
		t.Fatalf("after overwrite: %q", got)
	}

	if err := c.DelSession(ctx, "u1"); err != nil {
		t.Fatalf("DelSession: %v", err)
	}
	if _, err := c.GetSession(ctx, "u1"); err != redis.Nil {
		t.Fatalf("expected redis.Nil after delete, got %v", err)
	}
}
