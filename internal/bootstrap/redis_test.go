package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gutp/discux/config"
)

func TestConnectRedis_Direct(t *testing.T) {
	srv := miniredis.RunT(t)

	for name, uri := range map[string]string{
		"host and port": srv.Addr(),
		"redis url":     "redis://" + srv.Addr() + "/0",
	} {
		t.Run(name, func(t *testing.T) {
			client, err := ConnectRedis(context.Background(), RedisConnConfig{
				Redis: config.RedisConfig{URI: uri},
			})
			require.NoError(t, err)
			t.Cleanup(func() { _ = client.Close() })

			require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
			assert.Equal(t, "v", mustGet(t, srv, "k"))
		})
	}
}

func mustGet(t *testing.T, srv *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := srv.Get(key)
	require.NoError(t, err)
	return v
}

func TestConnectRedis_Errors(t *testing.T) {
	const unreachable = "127.0.0.1:1"

	tests := []struct {
		name   string
		cfg    config.RedisConfig
		errMsg string
	}{
		{name: "empty uri", cfg: config.RedisConfig{}, errMsg: "requires a URI"},
		{name: "unreachable", cfg: config.RedisConfig{URI: unreachable}, errMsg: "ping redis"},
		{name: "bad url", cfg: config.RedisConfig{URI: "redis://host:notaport/x"}, errMsg: "parse redis url"},
		{name: "cluster without nodes", cfg: config.RedisConfig{UseCluster: true}, errMsg: "at least one address"},
		{name: "sentinel without nodes", cfg: config.RedisConfig{UseSentinel: true}, errMsg: "at least one sentinel node"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := ConnectRedis(context.Background(), RedisConnConfig{Redis: tt.cfg})
			require.Error(t, err)
			assert.Nil(t, client)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestRedactAddr(t *testing.T) {
	redacted := redactAddr("redis://user:pw@cache:6379/0")
	assert.NotContains(t, redacted, "pw")
	assert.NotContains(t, redacted, "user")
	assert.Contains(t, redacted, "cache:6379")
	assert.Equal(t, "cache:6379", redactAddr("pw@cache:6379"))
	assert.Equal(t, "cache:6379", redactAddr("cache:6379"))
}

func TestWithDefaultPort(t *testing.T) {
	got := withDefaultPort([]string{" s1 ", "s2:26380", ""}, "26379")
	assert.Equal(t, []string{"s1:26379", "s2:26380"}, got)
	assert.Equal(t, []string{"s1"}, withDefaultPort([]string{"s1"}, ""))
}

func TestClusterFallbackFromURI(t *testing.T) {
	addr, user, pass, tlsCfg, err := clusterFallbackFromURI("rediss://u:p@cache:6380", "default")
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", addr)
	assert.Equal(t, "u", user)
	assert.Equal(t, "p", pass)
	assert.NotNil(t, tlsCfg)

	addr, _, pass, _, err = clusterFallbackFromURI("cache:6379", "default")
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", addr)
	assert.Equal(t, "default", pass)
}
