package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/tspyc/internal/grammar"
)

func TestDiscoverTS(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.ts", "")
	write(t, root, "a.spec.ts", "")
	write(t, root, "index.ts", "")
	write(t, root, "nested/b.ts", "")
	write(t, root, "nested/index/c.ts", "")
	write(t, root, "notes.md", "")

	files, err := Discover(context.Background(), root, grammar.TS)
	require.NoError(t, err)

	rels := relatives(t, root, files)
	assert.ElementsMatch(t, []string{"a.ts", "nested/b.ts"}, rels)
}

func TestDiscoverJS(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.js", "")
	write(t, root, "a.spec.js", "")
	write(t, root, "index.js", "")
	write(t, root, "types/d.js", "")
	write(t, root, "nested/b.js", "")

	files, err := Discover(context.Background(), root, grammar.JS)
	require.NoError(t, err)

	rels := relatives(t, root, files)
	assert.ElementsMatch(t, []string{"a.js", "nested/b.js"}, rels)
}

func TestOutputPathSnakeCase(t *testing.T) {
	out, err := OutputPath("/in", "/in/someDir/MyFile.ts", "/out", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/out/some_dir/my_file.py"), out)
}

func TestOutputPathNoSnakeCase(t *testing.T) {
	out, err := OutputPath("/in", "/in/someDir/MyFile.ts", "/out", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/out/someDir/MyFile.py"), out)
}

func TestMatchGlobs(t *testing.T) {
	assert.True(t, MatchGlobs("a/b.ts", []string{"**/*.ts"}, nil))
	assert.False(t, MatchGlobs("a/b.ts", []string{"**/*.ts"}, []string{"a/**"}))
	assert.True(t, MatchGlobs("a/b.ts", nil, nil))
}

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func relatives(t *testing.T, root string, files []string) []string {
	t.Helper()
	out := make([]string, len(files))
	for i, f := range files {
		rel, err := filepath.Rel(root, f)
		require.NoError(t, err)
		out[i] = filepath.ToSlash(rel)
	}
	return out
}
