package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Pagination, cfg.Pagination)
	assert.Equal(t, def.Identity.URL, cfg.Identity.URL)
	assert.True(t, cfg.IsConfigured())
}

func TestSaveThenLoad(t *testing.T) {
	t.Chdir(t.TempDir())
	file := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Identity = ServiceConfig{URL: "https://kratos.internal:4434", Token: "kratos-secret"}
	cfg.OAuth2 = ServiceConfig{URL: "https://hydra.internal:4445"}
	cfg.Pagination.PageSize = 100
	cfg.Pagination.PageDelay = 200 * time.Millisecond
	cfg.Cache.Dir = ""
	require.NoError(t, SaveConfig(cfg, file))

	loaded, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, cfg.Identity, loaded.Identity)
	assert.Equal(t, cfg.OAuth2, loaded.OAuth2)
	assert.Equal(t, 100, loaded.Pagination.PageSize)
	assert.Equal(t, 200*time.Millisecond, loaded.Pagination.PageDelay)
	assert.Empty(t, loaded.Cache.Dir)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("WARDEN_IDENTITY_URL", "https://from-env:4434")
	t.Setenv("WARDEN_PAGINATION_MAX_PAGES", "5")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "https://from-env:4434", cfg.Identity.URL)
	assert.Equal(t, 5, cfg.Pagination.MaxPages)
}

func TestSaveToken_KeepsOtherSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	file := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Identity.URL = "https://kratos.internal:4434"
	cfg.Pagination.MaxPages = 7
	require.NoError(t, SaveConfig(cfg, file))

	require.NoError(t, SaveToken(file, "ory_pat_identity", "ory_pat_oauth2"))

	loaded, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "https://kratos.internal:4434", loaded.Identity.URL)
	assert.Equal(t, "ory_pat_identity", loaded.Identity.Token)
	assert.Equal(t, "ory_pat_oauth2", loaded.OAuth2.Token)
	assert.Equal(t, 7, loaded.Pagination.MaxPages)
}
