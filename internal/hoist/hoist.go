// Package hoist implements the Hoist Registry described in spec section 4.7:
// the bookkeeping that lets an anonymous function expression in the source
// dialect become a named statement in the Python output, spliced into the
// nearest enclosing body ahead of whatever first references it.
//
// The registry is an arena of stable integer handles over a few maps, per
// the design note in spec section 9: rather than rely on raw AST-node
// identity as a map key (workable in Go, since pointers are comparable, but
// brittle to reason about across the pipeline), every hoisted definition is
// interned once and referred to by Handle from then on.
package hoist

import "github.com/oxhq/tspyc/internal/pyast"

// Handle is a stable reference to one hoisted definition.
type Handle int

// Registry tracks anonymous function definitions discovered inside
// expressions and the statements that carry a reference to one. One
// Registry is created per translated file and discarded afterward; reusing
// one across files would leak state between otherwise-independent workers.
type Registry struct {
	defs         []pyast.Stmt // handle -> the FunctionDef/AsyncFunctionDef node
	syntheticIDs []string     // handle -> "__definition_of__<name>"
	nameHandle   map[string]Handle
	parentDefs   map[pyast.Stmt]map[Handle]bool // carrier statement -> defs it must carry
	consumed     map[Handle]bool
}

func NewRegistry() *Registry {
	return &Registry{
		nameHandle: make(map[string]Handle),
		parentDefs: make(map[pyast.Stmt]map[Handle]bool),
		consumed:   make(map[Handle]bool),
	}
}

// Register interns a freshly-built anonymous FunctionDef/AsyncFunctionDef
// under funcName (already allocated by the Name Manager) and returns the
// synthetic Name that should appear at the definition's original
// expression position. This is def->name and name->def in one call.
func (r *Registry) Register(def pyast.Stmt, funcName string) *pyast.Name {
	h := Handle(len(r.defs))
	r.defs = append(r.defs, def)
	syntheticID := "__definition_of__" + funcName
	r.syntheticIDs = append(r.syntheticIDs, syntheticID)
	r.nameHandle[syntheticID] = h
	return &pyast.Name{Id: syntheticID}
}

// RecordRefs marks stmt as carrying whichever of the given identifiers name
// a registered hoisted definition (any id that doesn't is simply ignored).
// The transformer calls this once per freshly built statement, after
// scanning that statement's own expression tree for every Name it
// references (spec section 4.7) — so the carrier and its references are
// discovered together in one pass, rather than threaded through every
// handler in the dispatcher.
func (r *Registry) RecordRefs(stmt pyast.Stmt, ids []string) {
	for _, id := range ids {
		h, ok := r.nameHandle[id]
		if !ok {
			continue
		}
		set, ok := r.parentDefs[stmt]
		if !ok {
			set = make(map[Handle]bool)
			r.parentDefs[stmt] = set
		}
		set[h] = true
	}
}

// AdaptBody collects, for every statement in body that carries a hoisted
// definition, that definition, and prepends all of them to the front of
// body, so each one precedes every statement that carries it (the order of
// the prepended definitions among themselves is not fixed); it then
// recurses to a fixpoint (a spliced definition's own body was already scanned when it was
// built, so this only ever needs one more pass to pick up newly-exposed
// carriers at this level). Each definition is consumed at most once
// (invariant I3): once emitted it is removed from the registry and any
// later duplicate carrier reference is skipped.
func (r *Registry) AdaptBody(body []pyast.Stmt) []pyast.Stmt {
	var toAdd []Handle

	for _, stmt := range body {
		set, ok := r.parentDefs[stmt]
		if !ok {
			continue
		}
		delete(r.parentDefs, stmt)
		for h := range set {
			if r.consumed[h] {
				continue
			}
			r.consumed[h] = true
			toAdd = append(toAdd, h)
		}
	}

	if len(toAdd) == 0 {
		return body
	}

	prelude := make([]pyast.Stmt, len(toAdd))
	for i, h := range toAdd {
		prelude[i] = r.defs[h]
	}

	return r.AdaptBody(append(prelude, body...))
}

// Empty reports whether every registered definition has been consumed
// (invariant: after translating a file, no orphan registrations remain).
func (r *Registry) Empty() bool {
	return len(r.consumed) == len(r.defs)
}

// Pending returns the synthetic IDs of definitions that were registered but
// never spliced into any body — a TransformError condition at end of file.
func (r *Registry) Pending() []string {
	var out []string
	for h, id := range r.syntheticIDs {
		if !r.consumed[Handle(h)] {
			out = append(out, id)
		}
	}
	return out
}
