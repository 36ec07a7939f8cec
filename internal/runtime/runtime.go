// Package runtime embeds the Python-side support module that every
// generated file relies on: the ensure-dotted-access helper described in
// spec section 4.4 and the GLOSSARY. It is injected by the CLI, not by the
// translator itself (the translator only ever emits calls to it).
package runtime

import _ "embed"

//go:embed dotted_dict.py
var DottedDictSource string

// FileName is the name the support module is written under alongside a
// batch's generated output, so `from dotted_dict import ensureDottedAccess`
// resolves without a packaging step.
const FileName = "dotted_dict.py"
