// Package scanner discovers input files and maps them to output paths, per
// spec section 6's file discovery rules and output layout. It generalizes
// the teacher's gitignore-aware directory walk (originally keyed off a
// language provider's file extensions) to this translator's two-dialect
// include/exclude rules.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/oxhq/tspyc/internal/grammar"
	"github.com/oxhq/tspyc/internal/names"
)

// Discover walks root and returns every input file eligible for translation
// under the given dialect's rules, expressed as doublestar include/exclude
// globs and evaluated through MatchGlobs — the same glob-matching surface
// the teacher uses for its own ScanTargets (internal/config/cli.go):
//
//   - TS: include "**/*.ts", exclude "**/*.spec.ts" and any path component
//     named "index" (as a file or a directory).
//   - JS: include "**/*.js", exclude "**/*.spec.js", any path component
//     named "index", or any path component named "types".
func Discover(ctx context.Context, root string, dialect grammar.Dialect) ([]string, error) {
	include, exclude := globsFor(dialect)
	if include == nil {
		return nil, nil
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanner: input path %q: %w", root, err)
	}
	if !info.IsDir() {
		if MatchGlobs(filepath.Base(root), include, exclude) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var out []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if d.IsDir() {
			base := d.Name()
			if base == ".git" || base == "node_modules" || base == "vendor" {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if MatchGlobs(rel, include, exclude) {
			out = append(out, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanner: walking %q: %w", root, err)
	}
	return out, nil
}

// globsFor returns the doublestar include/exclude pattern set for a dialect,
// the glob-expressible form of spec section 6's discovery rules.
func globsFor(dialect grammar.Dialect) (include, exclude []string) {
	switch dialect {
	case grammar.TS:
		return []string{"**/*.ts"}, []string{"**/*.spec.ts", "**/index.ts", "**/index/**"}
	case grammar.JS:
		return []string{"**/*.js"}, []string{
			"**/*.spec.js", "**/index.js", "**/index/**",
			"**/types.js", "**/types/**",
		}
	default:
		return nil, nil
	}
}

// MatchGlobs reports whether relPath matches at least one include pattern
// (doublestar, so "**/*.ts"-style recursive globs work) and no exclude
// pattern — generalizing the teacher's include/exclude flag pair
// (internal/config/cli.go) beyond plain filepath.Match basename globs.
func MatchGlobs(relPath string, include, exclude []string) bool {
	rel := filepath.ToSlash(relPath)
	for _, pat := range exclude {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pat := range include {
		if ok, _ := doublestar.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// OutputPath computes, for an input file at inputRoot/relative/path/name.ext,
// the output path outputRoot/<maybe_snake(relative/path)>/<maybe_snake(name)>.py
// (spec section 6). snakeCase controls whether path components and the file
// stem are snake_cased via the same Name Manager rule used for identifiers.
func OutputPath(inputRoot, inputPath, outputRoot string, snakeCase bool) (string, error) {
	rel, err := filepath.Rel(inputRoot, inputPath)
	if err != nil {
		return "", fmt.Errorf("scanner: computing relative path for %q: %w", inputPath, err)
	}
	rel = filepath.ToSlash(rel)
	dir, file := path.Split(rel)
	stem := strings.TrimSuffix(file, filepath.Ext(file))

	if snakeCase {
		segs := strings.Split(strings.TrimSuffix(dir, "/"), "/")
		for i, s := range segs {
			if s != "" {
				segs[i] = names.ToSnakeCase(s)
			}
		}
		dir = strings.Join(segs, "/")
		stem = names.ToSnakeCase(stem)
	} else {
		dir = strings.TrimSuffix(dir, "/")
	}

	return filepath.Join(outputRoot, filepath.FromSlash(dir), stem+".py"), nil
}
