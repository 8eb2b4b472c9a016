package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", "/data")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Zendesk.Timeout)
	assert.Equal(t, 1, cfg.Zendesk.MaxPages)
	assert.Equal(t, 100, cfg.Zendesk.PerPage)
	assert.Equal(t, 1, cfg.Sync.FetchConcurrency)
	assert.Equal(t, "/data/zdguide/zdguide.db", cfg.Store.Path)
	assert.Equal(t, "127.0.0.1:8080", cfg.HTTP.Addr)
	assert.Equal(t, 12*time.Hour, cfg.Admin.NonceTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Credentials().APIToken)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
zendesk:
  subdomain: acme
  email: ops@acme.test
  api_token: from-file
  max_pages: 0
sync:
  fetch_concurrency: 4
site:
  base_url: https://docs.acme.test
`), 0o600))

	t.Setenv("ZDGUIDE_ZENDESK_API_TOKEN", "from-env")

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	creds := cfg.Credentials()
	assert.Equal(t, "acme", creds.Subdomain)
	assert.Equal(t, "ops@acme.test", creds.Email)
	assert.Equal(t, "from-env", creds.APIToken)
	assert.Equal(t, 0, cfg.Zendesk.MaxPages)
	assert.Equal(t, 4, cfg.Sync.FetchConcurrency)
	assert.Equal(t, "https://docs.acme.test", cfg.Site.BaseURL)
}

func TestBindFlags_OverrideEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ZDGUIDE_LOG_LEVEL", "warn")
	t.Setenv("ZDGUIDE_HTTP_ADDR", "0.0.0.0:9000")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "info", "")
	flags.String("addr", "", "")
	flags.Int("concurrency", 0, "")
	require.NoError(t, flags.Parse([]string{"--log-level=debug", "--concurrency=3"}))

	v := New()
	require.NoError(t, BindFlags(v, flags))
	cfg, err := Load(v, "")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level, "set flag beats env")
	assert.Equal(t, 3, cfg.Sync.FetchConcurrency)
	assert.Equal(t, "0.0.0.0:9000", cfg.HTTP.Addr, "unset flag leaves env in place")
	assert.Equal(t, "", cfg.Log.File, "flags absent from the set are skipped")
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("zendesk: [unclosed"), 0o600))
	_, err := Load(New(), bad)
	assert.Error(t, err)

	negative := filepath.Join(dir, "neg.yaml")
	require.NoError(t, os.WriteFile(negative, []byte("zendesk:\n  max_pages: -1\n"), 0o600))
	_, err = Load(New(), negative)
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFileIsNotAnError(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.NoError(t, err)
}
