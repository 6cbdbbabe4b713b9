package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd(newApp(&stdout, &stderr))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func sourceTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.go"), []byte("package main\n\nfunc main() {}\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "node_modules"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "node_modules", "dep.js"), []byte("module.exports = 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "util.py"), []byte("def f():\n    return 1\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("requests\n"), 0644))
	return dir
}

func TestGenerate_LocalProvider(t *testing.T) {
	src := sourceTree(t)
	work := t.TempDir()
	out := filepath.Join(work, "documentation.md")
	db := filepath.Join(work, "history.db")

	stdout, _, err := execute(t, "generate",
		"-r", src,
		"-o", out,
		"-t", filepath.Join(work, "Code_Repository"),
		"--provider", "local",
		"--pacing", "0s",
		"--db", db,
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "[1/2] Summarizing util.py")
	assert.Contains(t, stdout, "[2/2] Summarizing main.go")
	assert.Contains(t, stdout, "[+] Saved documentation to "+out)
	assert.Contains(t, stdout, "[+] Removed temporary clone "+filepath.Join(work, "Code_Repository"))
	assert.NoDirExists(t, filepath.Join(work, "Code_Repository"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "Repository: "+src)
	assert.Contains(t, doc, "requirements.txt (sample):\nrequests")
	assert.Contains(t, doc, "## main.go")
	assert.NotContains(t, doc, "dep.js")

	stdout, _, err = execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "completed")
	assert.Contains(t, stdout, src)
}

func TestGenerate_Keep(t *testing.T) {
	src := sourceTree(t)
	work := t.TempDir()
	tmp := filepath.Join(work, "checkout")

	stdout, _, err := execute(t, "generate",
		"-r", src,
		"-o", filepath.Join(work, "docs.json"),
		"-t", tmp,
		"--keep",
		"--provider", "local",
		"--pacing", "0s",
		"--db", filepath.Join(work, "history.db"),
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[+] Keeping cloned repo at "+tmp)
	assert.DirExists(t, tmp)
	assert.FileExists(t, filepath.Join(work, "docs.json"))
}

func TestGenerate_NoFiles(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "README.md"), []byte("# hi"), 0644))
	work := t.TempDir()

	stdout, _, err := execute(t, "generate",
		"-r", src,
		"-o", filepath.Join(work, "documentation.md"),
		"-t", filepath.Join(work, "w"),
		"--provider", "local",
		"--db", filepath.Join(work, "history.db"),
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "[!] No code files found. Exiting.")
	assert.NoFileExists(t, filepath.Join(work, "documentation.md"))
	assert.NoDirExists(t, filepath.Join(work, "w"))
}

func TestGenerate_UnmetCapabilities(t *testing.T) {
	work := t.TempDir()
	_, stderr, err := execute(t, "generate",
		"-r", t.TempDir(),
		"-o", filepath.Join(work, "missing", "documentation.md"),
		"--provider", "local",
		"--db", filepath.Join(work, "history.db"),
	)
	assert.ErrorIs(t, err, errCapabilitiesUnmet)
	assert.Contains(t, stderr, "Missing capabilities:")
	assert.Contains(t, stderr, "- output:")
}

func TestGenerate_RequiresRepo(t *testing.T) {
	_, _, err := execute(t, "generate", "--provider", "local")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repo")
}

func TestGenerate_InvalidConfig(t *testing.T) {
	_, _, err := execute(t, "generate", "-r", t.TempDir(), "--chunk-size", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestProbeCmd(t *testing.T) {
	work := t.TempDir()
	stdout, _, err := execute(t, "probe",
		"--provider", "local",
		"-o", filepath.Join(work, "docs.md"),
		"--db", filepath.Join(work, "history.db"),
		t.TempDir(),
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "backend")
	assert.Contains(t, stdout, "source")
}

func TestHistory_Empty(t *testing.T) {
	stdout, _, err := execute(t, "history", "--db", filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded.\n", stdout)
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "repodoc "+version)
	assert.Contains(t, stdout, "SQLite Driver:")
}
