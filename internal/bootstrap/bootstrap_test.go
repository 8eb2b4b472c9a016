package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zdguide/internal/adapters/zendesk"
	"zdguide/internal/ports"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestOpen_WiresConfig(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeConfig(t, `
zendesk:
  subdomain: acme
  email: ops@acme.test
  api_token: tok
  timeout: 5s
  max_pages: 0
sync:
  fetch_concurrency: 4
store:
  path: `+filepath.Join(dir, "zd.db")+`
site:
  base_url: https://docs.acme.test
`)

	rt, err := Open(context.Background(), Options{ConfigFile: cfgFile, Interactive: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	assert.Equal(t, ports.Credentials{Subdomain: "acme", Email: "ops@acme.test", APIToken: "tok"}, rt.App.Credentials)
	assert.Equal(t, 4, rt.App.FetchConcurrency)
	assert.Equal(t, "https://docs.acme.test", rt.App.SiteURL)
	assert.Equal(t, zendesk.Factory{Timeout: 5 * time.Second, MaxPages: 0, PerPage: 100}, rt.App.Clients)
	assert.FileExists(t, filepath.Join(dir, "zd.db"))

	nonces := rt.Nonces()
	token, err := nonces.Issue("sync_categories")
	require.NoError(t, err)
	assert.True(t, nonces.Consume("sync_categories", token))
}

func TestOpen_InvalidLogLevel(t *testing.T) {
	cfgFile := writeConfig(t, "log:\n  level: loud\nstore:\n  path: \":memory:\"\n")

	_, err := Open(context.Background(), Options{ConfigFile: cfgFile})

	assert.ErrorContains(t, err, "invalid log level")
}
