// Package cli is the worker pool that drives a batch translation run: file
// discovery, per-file translate+write, and run-summary aggregation — a
// generalization of the teacher's jobs-channel + sync.WaitGroup worker pool
// (formerly internal/cli/dispatcher.go) from "N rules over one file" to
// "N files, one pipeline each" (spec section 5/7).
package cli

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oxhq/tspyc/internal/config"
	"github.com/oxhq/tspyc/internal/history"
	"github.com/oxhq/tspyc/internal/logging"
	"github.com/oxhq/tspyc/internal/runtime"
	"github.com/oxhq/tspyc/internal/runtime/verify"
	"github.com/oxhq/tspyc/internal/scanner"
	"github.com/oxhq/tspyc/internal/translate"
)

// FileOutcome is one input file's result.
type FileOutcome struct {
	Path       string
	OutputPath string
	Success    bool
	ErrorCode  string
	Diagnostic string
}

// Summary aggregates a full run, matching the teacher's Output{Results,
// FileErrorCount} aggregate shape (internal/cli/dispatcher.go).
type Summary struct {
	Results        []FileOutcome
	FileErrorCount int
}

// Run discovers input files under cfg.Input, translates each one on a pool
// of cfg.Cores workers, and writes the results under cfg.Output.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (*Summary, error) {
	files, err := scanner.Discover(ctx, cfg.Input, cfg.Type)
	if err != nil {
		return nil, fmt.Errorf("cli: discovering input files: %w", err)
	}
	log.Info("discovered %d input file(s) under %s", len(files), cfg.Input)

	var ledger *history.Ledger
	if cfg.History != "" {
		ledger, err = history.Open(cfg.History)
		if err != nil {
			return nil, err
		}
		defer ledger.Close()
	}

	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return nil, fmt.Errorf("cli: creating output root %q: %w", cfg.Output, err)
	}
	runtimePath := filepath.Join(cfg.Output, runtime.FileName)
	if err := os.WriteFile(runtimePath, []byte(runtime.DottedDictSource), 0o644); err != nil {
		return nil, fmt.Errorf("cli: writing runtime support module: %w", err)
	}

	jobs := make(chan string)
	results := make([]FileOutcome, 0, len(files))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for range cfg.Cores {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				outcome := translateOne(path, cfg, log, ledger)
				mu.Lock()
				results = append(results, outcome)
				mu.Unlock()
			}
		}()
	}

	for _, f := range files {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return nil, ctx.Err()
		case jobs <- f:
		}
	}
	close(jobs)
	wg.Wait()

	summary := &Summary{Results: results}
	for _, r := range results {
		if !r.Success {
			summary.FileErrorCount++
		}
	}
	return summary, nil
}

func translateOne(path string, cfg *config.Config, log *logging.Logger, ledger *history.Ledger) FileOutcome {
	outPath, err := scanner.OutputPath(cfg.Input, path, cfg.Output, cfg.ConvertSnakeCase)
	if err != nil {
		log.Error("%s: %v", path, err)
		return FileOutcome{Path: path, Success: false, ErrorCode: "IOError", Diagnostic: err.Error()}
	}

	src, err := os.ReadFile(path)
	if err != nil {
		log.Error("%s: %v", path, err)
		if ledger != nil {
			_ = ledger.Record(path, "", "", "IOError", false)
		}
		return FileOutcome{Path: path, OutputPath: outPath, Success: false, ErrorCode: "IOError", Diagnostic: err.Error()}
	}

	result, err := translate.File(path, string(src), cfg.Type, cfg.ConvertSnakeCase)
	if err != nil {
		errorCode := "TransformError"
		switch err.(type) {
		case *translate.ParseError:
			errorCode = "ParseError"
		case *translate.ConfigError:
			errorCode = "ConfigError"
		}
		log.Error("%s", err.Error())
		if ledger != nil {
			_ = ledger.Record(path, sha1Hex(src), "", errorCode, false)
		}
		return FileOutcome{Path: path, OutputPath: outPath, Success: false, ErrorCode: errorCode, Diagnostic: err.Error()}
	}

	if cfg.Debug {
		log.Debug("%s", unifiedDiff(string(src), result.Python, path))
		if werr := verify.SmokeCheck([]byte(result.Python)); werr != nil {
			log.Warn("%s: %v", path, werr)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Error("%s: %v", path, err)
		return FileOutcome{Path: path, OutputPath: outPath, Success: false, ErrorCode: "IOError", Diagnostic: err.Error()}
	}
	if err := os.WriteFile(outPath, []byte(result.Python), 0o644); err != nil {
		log.Error("%s: %v", path, err)
		if ledger != nil {
			_ = ledger.Record(path, sha1Hex(src), "", "IOError", false)
		}
		return FileOutcome{Path: path, OutputPath: outPath, Success: false, ErrorCode: "IOError", Diagnostic: err.Error()}
	}

	log.Info("%s -> %s", path, outPath)
	if ledger != nil {
		_ = ledger.Record(path, sha1Hex(src), sha1Hex([]byte(result.Python)), "", true)
	}
	return FileOutcome{Path: path, OutputPath: outPath, Success: true}
}

func sha1Hex(b []byte) string {
	h := sha1.Sum(b)
	return hex.EncodeToString(h[:])
}
