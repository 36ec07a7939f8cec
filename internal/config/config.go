// Package config builds the run configuration from CLI flags (spec section
// 6), generalizing the teacher's pflag-based flag parser (originally
// internal/config/cli.go) to this translator's six-flag surface, with a
// godotenv pass (teacher's env-var config layer, this file, previously
// DB-encryption specific) applied before pflag parses argv so a .env file
// can override defaults.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/oxhq/tspyc/internal/grammar"
	"github.com/oxhq/tspyc/internal/translate"
)

// Config is one CLI invocation's resolved settings.
type Config struct {
	Input            string
	Output           string
	Type             grammar.Dialect
	Debug            bool
	Cores            int
	ConvertSnakeCase bool
	History          string
}

// Load parses args (normally os.Args[1:]) into a Config. A .env file in the
// working directory, if present, is read first and only supplies values for
// variables not already set in the process environment — flags still win
// over both (spec section 6's defaults are the flag defaults; .env only
// moves the floor).
func Load(args []string) (*Config, error) {
	_ = godotenv.Load() // optional; absence is not an error

	fs := pflag.NewFlagSet("tspyc", pflag.ContinueOnError)

	input := fs.String("input", envOr("TSPYC_INPUT", "./"), "A file or directory of input sources.")
	output := fs.String("output", envOr("TSPYC_OUTPUT", "./out/"), "Output root directory.")
	typ := fs.String("type", envOr("TSPYC_TYPE", "ts"), "Input dialect selector: ts or js.")
	debug := fs.Bool("debug", false, "Emit verbose trace logs and dump the Python AST.")
	cores := fs.Int("cores", envOrInt("TSPYC_CORES", 0), "Worker parallelism, clamped to [1, NumCPU]. 0 means the default.")
	snakeCase := fs.Bool("convert_snake_case", false, "Apply snake-casing to identifiers at emit time.")
	history := fs.String("history", "", "Optional path to a SQLite run ledger; disabled when empty.")

	if err := fs.Parse(args); err != nil {
		return nil, &translate.ConfigError{Msg: err.Error()}
	}

	var dialect grammar.Dialect
	switch *typ {
	case "ts":
		dialect = grammar.TS
	case "js":
		dialect = grammar.JS
	default:
		return nil, &translate.ConfigError{Msg: fmt.Sprintf("invalid --type %q: must be ts or js", *typ)}
	}

	if _, err := os.Stat(*input); err != nil {
		return nil, &translate.ConfigError{Msg: fmt.Sprintf("input path %q: %v", *input, err)}
	}

	n := *cores
	if n <= 0 {
		n = runtime.NumCPU() - 2
		if n < 1 {
			n = 1
		}
	}
	if max := runtime.NumCPU(); n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}

	return &Config{
		Input:            *input,
		Output:           *output,
		Type:             dialect,
		Debug:            *debug,
		Cores:            n,
		ConvertSnakeCase: *snakeCase,
		History:          *history,
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
