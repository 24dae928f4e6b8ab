package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hpn/hpn-quill/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvDotenvFile, filepath.Join(dir, "missing.env"))
	t.Setenv("HOME", dir)
	for _, env := range credentialEnv {
		t.Setenv(env, "")
	}
	ResetConfig()
	t.Cleanup(ResetConfig)
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := isolateEnv(t)

	cfg, err := GetConfigWithPath(writeFile(t, dir, "config.yaml", "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, domain.ProviderOpenAI, cfg.DefaultProvider())
	assert.Equal(t, StoreFile, cfg.Store.Backend)
	assert.Equal(t, filepath.Join(dir, ".hpn-quill", "drafts"), cfg.Store.Path)
	assert.Equal(t, 30, cfg.Provider(domain.ProviderGemini).TimeoutSeconds)
	assert.Equal(t, 5*time.Second, cfg.Store.SaveTimeout())
	assert.Empty(t, cfg.Provider(domain.ProviderOpenAI).APIKey)
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	dir := isolateEnv(t)
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9000
providers:
  default: anthropic
  anthropic:
    model: claude-test
store:
  backend: sqlite
  path: ~/data/quill.db
`)
	t.Setenv("HPN_QUILL_SERVER_PORT", "9100")
	t.Setenv("HPN_QUILL_PROVIDERS_GEMINI_MODEL", "gemini-test")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-secret")

	cfg, err := GetConfigWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, domain.ProviderAnthropic, cfg.DefaultProvider())
	assert.Equal(t, "claude-test", cfg.Provider(domain.ProviderAnthropic).Model)
	assert.Equal(t, "sk-ant-secret", cfg.Provider(domain.ProviderAnthropic).APIKey)
	assert.Equal(t, "gemini-test", cfg.Provider(domain.ProviderGemini).Model)
	assert.Equal(t, filepath.Join(dir, "data", "quill.db"), cfg.Store.Path)
}

func TestLoadConfig_Dotenv(t *testing.T) {
	dir := isolateEnv(t)
	t.Setenv(EnvDotenvFile, writeFile(t, dir, "test.env", "GEMINI_API_KEY=from-dotenv\n"))
	t.Cleanup(func() { _ = os.Unsetenv("GEMINI_API_KEY") })
	// isolateEnv set it to empty; godotenv only fills unset variables.
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	cfg, err := GetConfigWithPath(writeFile(t, dir, "config.yaml", "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", cfg.Provider(domain.ProviderGemini).APIKey)
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := isolateEnv(t)
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 70000
providers:
  default: mistral
store:
  backend: redis
  save_timeout_seconds: -1
logging:
  level: verbose
`)

	_, err := GetConfigWithPath(path)

	require.Error(t, err)
	require.True(t, IsValidationError(err))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.HasError("server.port"))
	assert.True(t, ve.HasError("providers.default"))
	assert.True(t, ve.HasError("store.backend"))
	assert.True(t, ve.HasError("store.save_timeout_seconds"))
	assert.True(t, ve.HasError("logging.level"))
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	dir := isolateEnv(t)

	_, err := GetConfigWithPath(writeFile(t, dir, "config.yaml", "server: [unterminated\n"))

	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestValidate_MemoryStoreNeedsNoPath(t *testing.T) {
	cfg := &Configuration{
		Server: ServerConfig{Port: 8080},
		Store:  StoreConfig{Backend: StoreMemory},
	}

	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.Store.SaveTimeout())
}

func TestValidate_FileStoreNeedsPath(t *testing.T) {
	cfg := &Configuration{
		Server: ServerConfig{Port: 8080},
		Store:  StoreConfig{Backend: StoreFile},
	}

	err := cfg.Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.path")
}
