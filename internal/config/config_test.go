package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	t.Setenv("CHUNKS_CONFIG", "")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "chunks_save", cfg.Save.Name)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, "CHUNKS", cfg.EventBus.Stream)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
authorized: [Alice, bob]
save:
  path: world.jsonl.zst
redis:
  enabled: true
  addr: redis:6379
  ttl: 30s
eventbus:
  url: nats://127.0.0.1:4222
server:
  status_port: 9000
logging:
  level: debug
telemetry:
  enabled: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "bob"}, cfg.Authorized)
	assert.Equal(t, "world.jsonl.zst", cfg.Save.Path)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "chunks:pos:", cfg.Redis.KeyPrefix, "незаданные поля берутся из Default")
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.EventBus.URL)
	assert.Equal(t, 9000, cfg.Server.GetStatusPort())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Telemetry.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, "authorized: [ops]\n")
	t.Setenv("CHUNKS_CONFIG", path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"ops"}, cfg.Authorized)
}

func TestLoadRejectsInvalid(t *testing.T) {
	_, err := Load(writeConfig(t, "authorized: [\"  \"]\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "save: {name: \"\"}\n"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "save: [broken\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestStatusPortFallback(t *testing.T) {
	s := ServerConfig{}
	t.Setenv("CHUNKS_STATUS_PORT", "")
	assert.Equal(t, 8089, s.GetStatusPort())

	t.Setenv("CHUNKS_STATUS_PORT", "7001")
	assert.Equal(t, 7001, s.GetStatusPort())

	t.Setenv("CHUNKS_STATUS_PORT", "abc")
	assert.Equal(t, 8089, s.GetStatusPort())

	s.StatusPort = 7100
	assert.Equal(t, 7100, s.GetStatusPort())
}

func TestJWTSecretFallback(t *testing.T) {
	t.Setenv("CHUNKS_JWT_SECRET", "from-env")
	s := ServerConfig{}
	assert.Equal(t, "from-env", s.GetJWTSecret())
	s.JWTSecret = "from-file"
	assert.Equal(t, "from-file", s.GetJWTSecret())
}
