// Package names is the translator's Name Manager: it hands out fresh
// identifiers for anonymous callbacks and synthetic temporaries, and
// optionally snake-cases identifiers at construction time.
package names

import (
	"strconv"
	"strings"
)

// Manager is per-file state: reset for every translated file, never shared
// across files (section 5's "fresh instances per worker" rule).
type Manager struct {
	snakeCase bool
	callbacks int
	counters  map[string]int
}

func NewManager(snakeCase bool) *Manager {
	return &Manager{snakeCase: snakeCase, counters: make(map[string]int)}
}

// NextCallback yields callback_0, callback_1, ... for anonymous function
// expressions, grounded on _get_func_name in the original transformer.
func (m *Manager) NextCallback() string {
	n := m.callbacks
	m.callbacks++
	return "callback_" + strconv.Itoa(n)
}

// NextTemp yields a fresh synthetic temporary under the given prefix, e.g.
// "tmp_cp" for destructuring copies. Tuple-binder for loops draw no
// temporary from here: they unpack straight into a tuple target.
// Each prefix gets its own monotonic counter so repeated destructuring
// statements in one file don't collide; the bare prefix is used for the
// first occurrence to match the original's unsuffixed tmp_cp.
func (m *Manager) NextTemp(prefix string) string {
	n := m.counters[prefix]
	m.counters[prefix] = n + 1
	if n == 0 {
		return prefix
	}
	return prefix + "_" + strconv.Itoa(n)
}

// Ident applies maybe_snake_case to a source identifier. Snake-casing, when
// enabled, is applied here and only here — never retroactively on an
// already-built Name node.
func (m *Manager) Ident(s string) string {
	if !m.snakeCase {
		return s
	}
	return ToSnakeCase(s)
}

// ToSnakeCase mirrors the original helpers.to_snake_case exactly: an
// all-uppercase identifier (e.g. a constant) passes through unchanged;
// otherwise every uppercase rune gets an underscore inserted before its
// lowercased form, and all leading underscores are stripped.
//
// ToSnakeCase(ToSnakeCase(x)) == ToSnakeCase(x) for all x: once applied,
// no ASCII uppercase rune and no leading underscore is left, so a second
// pass finds nothing to insert or strip.
func ToSnakeCase(s string) string {
	if s == "" {
		return s
	}
	if s == strings.ToUpper(s) {
		return s
	}

	var b strings.Builder
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			b.WriteByte('_')
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}

	return strings.TrimLeft(b.String(), "_")
}
