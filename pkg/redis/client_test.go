package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockCmdable struct {
	data    map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
	pingErr error
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data:    make(map[string]string),
		counts:  make(map[string]int64),
		expires: make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if m.pingErr != nil {
		cmd.SetErr(m.pingErr)
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	m.data[key] = toString(value)
	if ttl > 0 {
		m.expires[key] = ttl
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if val, ok := m.data[key]; ok {
		cmd.SetVal(val)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if _, ok := m.data[key]; ok {
		cmd.SetVal(false)
		return cmd
	}
	m.data[key] = toString(value)
	if ttl > 0 {
		m.expires[key] = ttl
	}
	cmd.SetVal(true)
	return cmd
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.counts[key]++
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(m.counts[key])
	return cmd
}

func (m *mockCmdable) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	m.expires[key] = ttl
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			removed++
		}
		delete(m.counts, key)
		delete(m.expires, key)
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(removed)
	return cmd
}

func toString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return ""
}

func TestClientSetGetDel(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}
	ctx := context.Background()

	if err := client.Set(ctx, "qro:test", "value", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := client.Get(ctx, "qro:test")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "value" {
		t.Fatalf("unexpected value %q", val)
	}

	if err := client.Del(ctx, "qro:test"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, "qro:test"); err == nil {
		t.Fatal("expected miss after delete")
	}
}

func TestClientSetNX(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "key", "first", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected first setnx to win, ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "key", "second", time.Minute)
	if err != nil {
		t.Fatalf("setnx: %v", err)
	}
	if ok {
		t.Fatal("second setnx should lose")
	}
	if mock.data["key"] != "first" {
		t.Fatalf("stored value overwritten: %q", mock.data["key"])
	}
}

func TestIncrWithTTLSetsExpiryOnFirstIncrement(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}
	ctx := context.Background()

	count, err := client.IncrWithTTL(ctx, "counter", time.Minute)
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected count 1 got %d", count)
	}
	if mock.expires["counter"] != time.Minute {
		t.Fatalf("expected ttl set on first increment, got %v", mock.expires["counter"])
	}

	mock.expires["counter"] = 30 * time.Second
	count, err = client.IncrWithTTL(ctx, "counter", time.Minute)
	if err != nil {
		t.Fatalf("incr: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2 got %d", count)
	}
	if mock.expires["counter"] != 30*time.Second {
		t.Fatal("ttl must not be reset on later increments")
	}
}

func TestFixedWindowAllow(t *testing.T) {
	mock := newMockCmdable()
	client := &Client{store: mock}
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !allowed {
			t.Fatalf("request %d should pass", i)
		}
		if count != int64(i) {
			t.Fatalf("expected count %d got %d", i, count)
		}
	}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:1.2.3.4", 2, time.Minute)
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if allowed {
		t.Fatal("third request should be rejected")
	}
	if count != 3 {
		t.Fatalf("expected count 3 got %d", count)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}

	if got := client.IdempotencyKey("user|store|POST|/api/v1/products", "abc"); got != "qro:idempotency:user|store|POST|/api/v1/products:abc" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := client.RateLimitKey("rl:ip:login:1.2.3.4"); got != "qro:rate_limit:rl:ip:login:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
	if got := client.AccessSessionKey("jti-123"); got != "qro:session:access:jti-123" {
		t.Fatalf("unexpected session key %q", got)
	}
}

func TestUninitializedClientErrors(t *testing.T) {
	client := &Client{}
	ctx := context.Background()

	if err := client.Set(ctx, "k", "v", 0); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if _, err := client.Get(ctx, "k"); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
	if err := client.Ping(ctx); err == nil {
		t.Fatal("expected error from uninitialized client")
	}
}
