package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "placefinder/internal/adapters/redis"
	"placefinder/internal/domain"
)

func TestCache_SetGetDel(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	in := []domain.FormattedResult{
		{PlaceID: "p1", Name: "Acme", FormattedAddress: "1 Way", ReviewCount: 3},
	}
	if err := c.Set(ctx, "search:acme", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []domain.FormattedResult
	ok, err := c.Get(ctx, "search:acme", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0].PlaceID != "p1" || out[0].ReviewCount != 3 {
		t.Fatalf("unexpected value: %+v", out)
	}

	if err := c.Del(ctx, "search:acme"); err != nil {
		t.Fatalf("del: %v", err)
	}
	ok, err = c.Get(ctx, "search:acme", &out)
	if err != nil || ok {
		t.Fatalf("expected miss after del: ok=%v err=%v", ok, err)
	}
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)

	var out domain.Post
	ok, err := c.Get(context.Background(), "post:nope", &out)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}

func TestCache_TTLApplied(t *testing.T) {
	mr := miniredis.RunT(t)
	c := redisad.New(mr.Addr(), "", 0)
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	mr.FastForward(61 * time.Second)

	var out string
	ok, err := c.Get(ctx, "k", &out)
	if err != nil || ok {
		t.Fatalf("expected expiry: ok=%v err=%v", ok, err)
	}
}
