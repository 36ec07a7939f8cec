// Package grammar loads the declarative grammar-rule-to-behavior tables
// used by the transformer's default rule dispatch (skip/first/all/custom/
// contains-body, per spec section 4.2). One table per input dialect.
package grammar

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed data/js.rules.json data/ts.rules.json
var embedded embed.FS

// Bucket classifies a grammar rule's default dispatch behavior.
type Bucket int

const (
	BucketCustom Bucket = iota
	BucketSkip
	BucketFirst
	BucketAll
	BucketContainsBody
)

func (b Bucket) String() string {
	switch b {
	case BucketSkip:
		return "skip"
	case BucketFirst:
		return "first"
	case BucketAll:
		return "all"
	case BucketContainsBody:
		return "contains-body"
	default:
		return "custom"
	}
}

// Dialect selects which grammar variant to load.
type Dialect string

const (
	JS Dialect = "js"
	TS Dialect = "ts"
)

type ruleTable struct {
	Dialect      string   `json:"dialect"`
	Skip         []string `json:"skip"`
	First        []string `json:"first"`
	All          []string `json:"all"`
	ContainsBody []string `json:"containsBody"`
}

// Grammar is a materialized rule-name -> Bucket lookup for one dialect.
type Grammar struct {
	Dialect Dialect
	buckets map[string]Bucket
}

// Load reads the declarative rule table for the given dialect and
// materializes a Grammar. This is the "Grammar Loader" of spec section 4.1:
// a pure, file-backed artifact consulted by the parser/transformer, never
// mutated at runtime.
func Load(d Dialect) (*Grammar, error) {
	path := fmt.Sprintf("data/%s.rules.json", d)
	raw, err := embedded.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("grammar: no rule table for dialect %q: %w", d, err)
	}

	var rt ruleTable
	if err := json.Unmarshal(raw, &rt); err != nil {
		return nil, fmt.Errorf("grammar: malformed rule table for dialect %q: %w", d, err)
	}

	buckets := make(map[string]Bucket, len(rt.Skip)+len(rt.First)+len(rt.All)+len(rt.ContainsBody))
	for _, r := range rt.Skip {
		buckets[r] = BucketSkip
	}
	for _, r := range rt.First {
		buckets[r] = BucketFirst
	}
	for _, r := range rt.All {
		buckets[r] = BucketAll
	}
	for _, r := range rt.ContainsBody {
		buckets[r] = BucketContainsBody
	}

	return &Grammar{Dialect: d, buckets: buckets}, nil
}

// Bucket returns the declared bucket for a rule name, or BucketCustom if
// the rule isn't listed in skip/first/all/contains-body (meaning the
// transformer must provide a dedicated handler for it).
func (g *Grammar) Bucket(rule string) Bucket {
	if b, ok := g.buckets[rule]; ok {
		return b
	}
	return BucketCustom
}
