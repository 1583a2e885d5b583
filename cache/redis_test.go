package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestConnectRejectsBadURL(t *testing.T) {
	if _, err := Connect(context.Background(), "http://not-redis"); err == nil {
		t.Fatal("Connect() = nil; want parse error")
	}
}

func TestGetOnUnreachableServerErrors(t *testing.T) {
	r := New(redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	}))
	t.Cleanup(func() { _ = r.Close() })

	_, ok, err := r.Get(context.Background(), "multi:api:/matchups")
	if err == nil || ok {
		t.Fatalf("Get() = ok %v, err %v; want connection error", ok, err)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()
	r, err := Connect(ctx, "redis://"+srv.Addr())
	if err != nil {
		t.Fatalf("Connect() = %v", err)
	}
	t.Cleanup(func() { _ = r.Close() })

	const key = "multi:api:/team-stats/Brisbane%20Heat"
	body, ok, err := r.Get(ctx, key)
	if err != nil || ok || body != nil {
		t.Fatalf("Get() on miss = %q, %v, %v; want nil, false, nil", body, ok, err)
	}

	want := []byte(`{"players":[]}`)
	if err := r.Set(ctx, key, want, time.Minute); err != nil {
		t.Fatalf("Set() = %v", err)
	}
	body, ok, err = r.Get(ctx, key)
	if err != nil || !ok || string(body) != string(want) {
		t.Fatalf("Get() = %q, %v, %v; want hit", body, ok, err)
	}
	if ttl := srv.TTL(key); ttl != time.Minute {
		t.Fatalf("ttl = %v; want %v", ttl, time.Minute)
	}

	srv.FastForward(time.Minute)
	if _, ok, err := r.Get(ctx, key); err != nil || ok {
		t.Fatalf("Get() after expiry = %v, %v; want miss", ok, err)
	}
}
