// Package probe checks up front that everything a documentation run needs is
// in place, so the run fails fast with a list of unmet capabilities instead of
// failing halfway through.
package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/repodoc/internal/acquire"
	"github.com/dshills/repodoc/internal/config"
	"github.com/dshills/repodoc/internal/report"
	"github.com/dshills/repodoc/internal/storage"
	"github.com/dshills/repodoc/internal/summarizer"
)

// Capability names
const (
	CapBackend = "backend"
	CapAPIKey  = "api key"
	CapOutput  = "output"
	CapStorage = "storage"
	CapSource  = "source"
)

// Capability is the result of one check
type Capability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Detail    string `json:"detail"`
}

func (c Capability) String() string {
	mark := "ok"
	if !c.Available {
		mark = "missing"
	}
	return fmt.Sprintf("%-8s %-8s %s", mark, c.Name, c.Detail)
}

// Report lists the checked capabilities in a fixed order
type Report struct {
	Capabilities []Capability `json:"capabilities"`
}

// Unmet returns the capabilities that are not available
func (r Report) Unmet() []Capability {
	var out []Capability
	for _, c := range r.Capabilities {
		if !c.Available {
			out = append(out, c)
		}
	}
	return out
}

// OK reports whether every capability is available
func (r Report) OK() bool {
	return len(r.Unmet()) == 0
}

// Get returns the capability with the given name
func (r Report) Get(name string) (Capability, bool) {
	for _, c := range r.Capabilities {
		if c.Name == name {
			return c, true
		}
	}
	return Capability{}, false
}

type check func(ctx context.Context) Capability

// Probe runs the checks that apply to cfg concurrently. The source check is
// included only when source is non-empty.
func Probe(ctx context.Context, cfg config.Config, source string) Report {
	checks := []check{
		func(ctx context.Context) Capability { return checkBackend(ctx, cfg) },
		func(ctx context.Context) Capability { return checkOutput(cfg.Output) },
		func(ctx context.Context) Capability { return checkStorage(cfg.DBPath) },
	}
	if cfg.Provider == summarizer.ProviderGemini {
		checks = append(checks, func(ctx context.Context) Capability { return checkAPIKey(cfg.GeminiAPIKey) })
	}
	if strings.TrimSpace(source) != "" {
		checks = append(checks, func(ctx context.Context) Capability { return checkSource(ctx, source) })
	}

	results := make([]Capability, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range checks {
		g.Go(func() error {
			results[i] = c(gctx)
			return nil
		})
	}
	_ = g.Wait()

	return Report{Capabilities: results}
}

func checkBackend(ctx context.Context, cfg config.Config) Capability {
	c := Capability{Name: CapBackend}
	switch cfg.Provider {
	case summarizer.ProviderLocal:
		c.Available = true
		c.Detail = "local extractive provider"
	case summarizer.ProviderGemini:
		c.Available = true
		c.Detail = fmt.Sprintf("gemini model %s", cfg.Model)
	case summarizer.ProviderOllama:
		c.Available, c.Detail = checkOllama(ctx, cfg.BackendEndpoint, cfg.Model)
	default:
		c.Detail = fmt.Sprintf("unknown provider %q", cfg.Provider)
	}
	return c
}

func checkOllama(ctx context.Context, endpoint, model string) (bool, string) {
	p := summarizer.NewOllamaProvider(endpoint, model)
	defer func() {
		_ = p.Close()
	}()

	models, err := p.ListModels(ctx)
	if err != nil {
		return false, fmt.Sprintf("ollama at %s unreachable: %v", p.Endpoint(), err)
	}
	for _, m := range models {
		if modelMatches(m, p.Model()) {
			return true, fmt.Sprintf("ollama at %s serves %s", p.Endpoint(), m)
		}
	}
	return false, fmt.Sprintf("model %s not pulled on %s (%d models available)", p.Model(), p.Endpoint(), len(models))
}

// modelMatches treats an untagged name as the :latest tag
func modelMatches(listed, want string) bool {
	if listed == want {
		return true
	}
	if !strings.Contains(want, ":") {
		return listed == want+":latest"
	}
	return false
}

func checkAPIKey(key string) Capability {
	c := Capability{Name: CapAPIKey}
	if strings.TrimSpace(key) == "" {
		c.Detail = "GEMINI_API_KEY is not set"
		return c
	}
	c.Available = true
	c.Detail = "gemini api key present"
	return c
}

func checkOutput(output string) Capability {
	c := Capability{Name: CapOutput}
	output = strings.TrimSpace(output)
	if output == "" {
		c.Detail = report.ErrEmptyOutput.Error()
		return c
	}
	if strings.HasPrefix(output, "s3://") {
		bucket, key, err := report.ParseObjectURL(output)
		if err != nil {
			c.Detail = err.Error()
			return c
		}
		c.Available = true
		c.Detail = fmt.Sprintf("object store bucket %s key %s", bucket, key)
		return c
	}

	dir := filepath.Dir(output)
	if err := writable(dir); err != nil {
		c.Detail = fmt.Sprintf("%s not writable: %v", dir, err)
		return c
	}
	c.Available = true
	c.Detail = fmt.Sprintf("%s writable", dir)
	return c
}

// writable creates and removes a scratch file in dir
func writable(dir string) error {
	f, err := os.CreateTemp(dir, ".repodoc-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func checkStorage(dbPath string) Capability {
	c := Capability{Name: CapStorage}
	if dbPath == "" {
		c.Available = true
		c.Detail = fmt.Sprintf("history disabled (%s driver, %s build)", storage.DriverName, storage.BuildMode)
		return c
	}
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		c.Detail = fmt.Sprintf("%s: %v", dbPath, err)
		return c
	}
	_ = store.Close()
	c.Available = true
	c.Detail = fmt.Sprintf("%s (%s driver, %s build)", dbPath, storage.DriverName, storage.BuildMode)
	return c
}

func checkSource(ctx context.Context, source string) Capability {
	c := Capability{Name: CapSource}
	detail, err := acquire.CheckSource(ctx, source)
	if err != nil {
		c.Detail = err.Error()
		return c
	}
	c.Available = true
	c.Detail = fmt.Sprintf("%s (%s)", source, detail)
	return c
}
