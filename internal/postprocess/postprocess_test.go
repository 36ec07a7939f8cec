package postprocess

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"console log", "console.log(x)", "print(x)"},
		{"console error", "console.error(x)", "print(x)"},
		{"error constructor", "raise Error(msg)", "raise Exception(msg)"},
		{"booleans", "a = true\nb = false", "a = True\nb = False"},
		{"json", "JSON.stringify(x)\nJSON.parse(y)", "json.dumps(x)\njson.loads(y)"},
		{"this alias strip", "const _this = this;\n_this.x", "\nself.x"},
		{"bare this", "this.x", "self.x"},
		{"set and map", "a Set b Map", "a set b dict"},
		{"case conversion", "s.toLowerCase()\ns.toUpperCase()", "s.lower()\ns.upper()"},
		{"push and indexOf", "a.push(1)\na.indexOf(1)", "a.append(1)\na.index(1)"},
		{"array from", "Array.from(x)", "list(x)"},
		// The bare "null" rule runs before the quoted one, so a quoted "null"
		// has already become "None" (still quoted) by the time its own rule runs.
		{"null family", "null\n\"null\"\n\"undefined\"\nundefined", "None\n\"None\"\nNone\nNone"},
		{"self assign strip", "self = self\n", "\n"},
		{"definition marker strip", "__definition_of__foo", "foo"},
		{"property call collapse", "@property()\ndef x(self):", "@property\ndef x(self):"},
		{"entries to items", "d.entries()", "d.items()"},
		{"template interpolation", "f\"${x}\"", "f\"{x}\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Apply(tt.in))
		})
	}
}

func TestApplyOrderingPreventsThisFromEatingUnderscoreThis(t *testing.T) {
	// "_this" must resolve to "self" before the bare "this" rule runs,
	// otherwise "_this" would become "_self" instead of "self".
	assert.Equal(t, "self.value", Apply("_this.value"))
}
