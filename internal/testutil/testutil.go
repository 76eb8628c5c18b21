package testutil

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
	Cleanup(func())
}

var _ TestingTB = (*testing.T)(nil)

// TestRedis bundles a client with the in-process server backing it, when there is one.
type TestRedis struct {
	Client *redis.Client
	// Server is nil when the tests run against an external Redis.
	Server *miniredis.Miniredis
}

// FastForward advances server-side time so TTL expiry can be observed.
// Against an external Redis it sleeps for d instead.
func (r *TestRedis) FastForward(d time.Duration) {
	if r.Server != nil {
		r.Server.FastForward(d)
		return
	}
	time.Sleep(d)
}

// SetupTestRedis returns a Redis client for tests.
//
// When TEST_REDIS_ADDR is set the client talks to that server (DB from
// TEST_REDIS_DB, default 1) and the DB is flushed first; otherwise an
// in-process miniredis is started. Both are closed via t.Cleanup.
func SetupTestRedis(t TestingTB) *TestRedis {
	t.Helper()

	if addr := os.Getenv("TEST_REDIS_ADDR"); addr != "" {
		return setupExternalRedis(t, addr)
	}

	srv, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() {
		closeAndLog(t, "redis client", client)
		srv.Close()
	})
	return &TestRedis{Client: client, Server: srv}
}

func setupExternalRedis(t TestingTB, addr string) *TestRedis {
	dbIndex := 1
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			dbIndex = i
		} else {
			t.Logf("Invalid TEST_REDIS_DB=%q, using DB=1", v)
		}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: dbIndex})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		closeAndLog(t, "redis client", client)
		if envBool("TEST_REQUIRE_REDIS") {
			t.Fatalf("Redis not available for testing at %s: %v", addr, err)
		}
		t.Skipf("Redis not available for testing at %s: %v", addr, err)
	}

	// Clean up any existing test data
	client.FlushDB(ctx)
	t.Cleanup(func() { closeAndLog(t, "redis client", client) })

	return &TestRedis{Client: client}
}

func closeAndLog(t TestingTB, name string, closer interface{ Close() error }) {
	if err := closer.Close(); err != nil {
		t.Logf("warning: failed to close %s: %v", name, err)
	}
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

// FixedTimeFunc returns a clock that always reports t.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
