package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/repodoc/internal/config"
	"github.com/dshills/repodoc/internal/summarizer"
)

func ollamaServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func baseConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.Output = filepath.Join(t.TempDir(), "documentation.md")
	return cfg
}

func TestProbe_AllAvailable(t *testing.T) {
	srv := ollamaServer(t, `{"models":[{"name":"gemma:2b"},{"name":"llama3:latest"}]}`)
	cfg := baseConfig(t)
	cfg.BackendEndpoint = srv.URL
	cfg.DBPath = filepath.Join(t.TempDir(), "history.db")

	rep := Probe(context.Background(), cfg, t.TempDir())

	assert.True(t, rep.OK(), "%v", rep.Unmet())
	require.Len(t, rep.Capabilities, 4)
	names := []string{}
	for _, c := range rep.Capabilities {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{CapBackend, CapOutput, CapStorage, CapSource}, names)

	backend, ok := rep.Get(CapBackend)
	require.True(t, ok)
	assert.Contains(t, backend.Detail, "gemma:2b")
}

func TestProbe_ModelNotPulled(t *testing.T) {
	srv := ollamaServer(t, `{"models":[{"name":"llama3:latest"}]}`)
	cfg := baseConfig(t)
	cfg.BackendEndpoint = srv.URL

	rep := Probe(context.Background(), cfg, "")
	unmet := rep.Unmet()
	require.Len(t, unmet, 1)
	assert.Equal(t, CapBackend, unmet[0].Name)
	assert.Contains(t, unmet[0].Detail, "not pulled")
}

func TestProbe_UntaggedModelMatchesLatest(t *testing.T) {
	srv := ollamaServer(t, `{"models":[{"name":"llama3:latest"}]}`)
	cfg := baseConfig(t)
	cfg.BackendEndpoint = srv.URL
	cfg.Model = "llama3"

	rep := Probe(context.Background(), cfg, "")
	assert.True(t, rep.OK(), "%v", rep.Unmet())
}

func TestProbe_BackendUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := baseConfig(t)
	cfg.BackendEndpoint = srv.URL

	rep := Probe(context.Background(), cfg, "")
	c, _ := rep.Get(CapBackend)
	assert.False(t, c.Available)
	assert.Contains(t, c.Detail, "unreachable")
}

func TestProbe_GeminiKey(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Provider = summarizer.ProviderGemini
	cfg.Model = summarizer.DefaultGeminiModel

	rep := Probe(context.Background(), cfg, "")
	c, ok := rep.Get(CapAPIKey)
	require.True(t, ok)
	assert.False(t, c.Available)

	cfg.GeminiAPIKey = "secret"
	rep = Probe(context.Background(), cfg, "")
	assert.True(t, rep.OK(), "%v", rep.Unmet())
}

func TestProbe_LocalProviderNeedsNoBackend(t *testing.T) {
	cfg := baseConfig(t)
	cfg.Provider = summarizer.ProviderLocal
	cfg.BackendEndpoint = "http://127.0.0.1:1"

	rep := Probe(context.Background(), cfg, "")
	assert.True(t, rep.OK(), "%v", rep.Unmet())
	_, ok := rep.Get(CapSource)
	assert.False(t, ok)
}

func TestCheckOutput(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		c := checkOutput(filepath.Join(t.TempDir(), "missing", "docs.md"))
		assert.False(t, c.Available)
	})

	t.Run("empty", func(t *testing.T) {
		assert.False(t, checkOutput(" ").Available)
	})

	t.Run("object store", func(t *testing.T) {
		c := checkOutput("s3://docs/run/documentation.md")
		assert.True(t, c.Available)
		assert.Contains(t, c.Detail, "bucket docs")
	})

	t.Run("bad object url", func(t *testing.T) {
		assert.False(t, checkOutput("s3://docs").Available)
	})

	t.Run("scratch file removed", func(t *testing.T) {
		dir := t.TempDir()
		c := checkOutput(filepath.Join(dir, "docs.md"))
		require.True(t, c.Available)
		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}

func TestCheckSource_Missing(t *testing.T) {
	c := checkSource(context.Background(), "file://"+filepath.Join(t.TempDir(), "nope"))
	assert.False(t, c.Available)
	assert.Equal(t, CapSource, c.Name)
}

func TestReport_Unmet(t *testing.T) {
	rep := Report{Capabilities: []Capability{
		{Name: "a", Available: true},
		{Name: "b"},
	}}
	assert.False(t, rep.OK())
	assert.Equal(t, []Capability{{Name: "b"}}, rep.Unmet())
	assert.Contains(t, rep.Capabilities[1].String(), "missing")
}
