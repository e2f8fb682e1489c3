package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
database:
  driver: mysql
  host: db.internal
  port: 3306
  user: app
  password: hunter2
  name: rentroll
minio:
  endpoint: minio.internal:9000
  accessKey: ak
  secretKey: sk
  bucketName: rentrolls
  region: us-east-1
openai:
  apiKey: file-key
  model: gpt-4o
  searchModel: gpt-4o-search-preview
auth:
  apiKeys:
    acme: secret-acme
rateLimit:
  capacity: 10
  refillRate: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.Equal(t, "secret-acme", cfg.Auth.APIKeys["acme"])
	assert.Equal(t, 10, cfg.RateLimit.Capacity)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
openai:
  apiKey: k
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
}

func TestLoadEnvOverridesAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")
	path := writeConfig(t, `
openai:
  apiKey: file-key
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.OpenAI.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "db.internal"
	cfg.Database.Port = 5432
	cfg.Database.User = "app"
	cfg.Database.Password = "pw"
	cfg.Database.Name = "rentroll"

	assert.Equal(t,
		"host=db.internal port=5432 user=app password=pw dbname=rentroll sslmode=disable",
		cfg.PostgresDSN())

	cfg.Database.SSLMode = "require"
	assert.Contains(t, cfg.PostgresDSN(), "sslmode=require")

	cfg.Database.Port = 3306
	assert.Equal(t,
		"app:pw@tcp(db.internal:3306)/rentroll?parseTime=true&charset=utf8mb4&loc=UTC",
		cfg.MySQLDSN())
}
