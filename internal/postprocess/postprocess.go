// Package postprocess applies the fixed, ordered textual substitution list
// of spec section 4.9 to serialized Python source. It is the compatibility
// shim between the two ecosystems: purely textual, context-free, and
// therefore able to corrupt a string literal that happens to contain one of
// the search strings — an accepted limitation (spec section 9, Open
// Question (a)), not a bug to fix here.
package postprocess

import "strings"

type substitution struct {
	find    string
	replace string
}

// table is this translator's one and only post-processing contract; the
// order matters (e.g. "this" must not eat the "_this" replacement twice,
// "Error(" must run before anything that could rewrite "Error" itself) and
// must not drift from spec section 4.9.
var table = []substitution{
	{"console.log", "print"},
	{"console.error", "print"},
	{"Error(", "Exception("},
	{"true", "True"},
	{"false", "False"},
	{"JSON.stringify", "json.dumps"},
	{"JSON.parse", "json.loads"},
	{"const _this = this;", ""},
	{"_this", "self"},
	{"this", "self"},
	{" Set", " set"},
	{" Map", " dict"},
	{"toLowerCase", "lower"},
	{"toUpperCase", "upper"},
	{".push(", ".append("},
	{".indexOf(", ".index("},
	{"Array.from", "list"},
	{"null", "None"},
	{`"null"`, "None"},
	{`"undefined"`, "None"},
	{"undefined", "None"},
	{"self = self", ""},
	{"__definition_of__", ""},
	{"@property()", "@property"},
	{".entries()", ".items()"},
	{"${", "{"},
}

// Apply runs every substitution in table, in order, against src.
func Apply(src string) string {
	out := src
	for _, sub := range table {
		out = strings.ReplaceAll(out, sub.find, sub.replace)
	}
	return out
}
