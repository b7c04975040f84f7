package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/agora/internal/config"
)

func TestDefaultIsUsableWithoutYAML(t *testing.T) {
	c := config.Default()

	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, "memory", c.Storage.Driver)
	assert.Equal(t, "memory", c.Cache.Kind)
	assert.Equal(t, "noop", c.Bus.Kind)
	assert.Equal(t, "2s", c.Bus.PublishTimeout)
	assert.Equal(t, 2*time.Minute, config.MustDuration(c.Cache.Memory.DefaultTTL))
}

func TestLoadAppliesDefaultsOverYAML(t *testing.T) {
	path := writeYAML(t, `
server:
  addr: ":9090"
storage:
  driver: mongo
  mongo:
    uri: mongodb://localhost:27017
cache:
  kind: redis
  redis:
    addr: localhost:6379
bus:
  redis:
    addr: localhost:6379
`)

	c, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", c.Server.Addr)
	assert.Equal(t, "mongo", c.Storage.Driver)
	assert.Equal(t, "agora", c.Storage.Mongo.Database)
	// bus redis configurado sin kind explícito: se infiere redis
	assert.Equal(t, "redis", c.Bus.Kind)
	assert.Equal(t, "10s", c.Server.ReadTimeout)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	t.Setenv("AGORA_ADDR", ":7070")
	t.Setenv("AGORA_REDIS_ADDR", "redis.internal:6379")
	t.Setenv("AGORA_JWT_SECRET", "s3cr3t")

	path := writeYAML(t, `
server:
  addr: ":9090"
`)

	c, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", c.Server.Addr)
	assert.Equal(t, "redis.internal:6379", c.Cache.Redis.Addr)
	// el addr de redis también alimenta al bus si no tenía uno propio
	assert.Equal(t, "redis.internal:6379", c.Bus.Redis.Addr)
	assert.Equal(t, "s3cr3t", c.Auth.JWTSecret)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeYAML(t, `
server:
  read_timeout: "not-a-duration"
`)

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}
