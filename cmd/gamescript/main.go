// Command gamescript runs gamescript programs.
//
// Usage:
//
//	gamescript [flags] [file.gs ...]
//	gamescript -e '(+ 1 2)'
//	gamescript            # interactive REPL
//
// Files are evaluated in order in one evaluator, so bindings made by one file
// are visible to the next. With no file and no -e flag an interactive REPL
// is started.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	gamescript "github.com/k-stachowiak/game-script-sub000"
	"github.com/k-stachowiak/game-script-sub000/pkg/evaluator"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext"
	"github.com/k-stachowiak/game-script-sub000/pkg/ext/extwasm"
	"github.com/k-stachowiak/game-script-sub000/pkg/parser"
)

type config struct {
	expr    string
	debug   bool
	trace   bool
	ext     bool
	wasm    string
	quiet   bool
	timeout time.Duration
	steps   int64
}

func main() {
	var cfg config
	flag.StringVar(&cfg.expr, "e", "", "evaluate `source` and print the result")
	flag.BoolVar(&cfg.debug, "debug", false, "enable debug logging on stderr")
	flag.BoolVar(&cfg.trace, "trace", false, "trace node evaluation on stderr")
	flag.BoolVar(&cfg.ext, "ext", true, "register the extension function packs")
	flag.StringVar(&cfg.wasm, "wasm", "", "expose the numeric exports of a WebAssembly `module`")
	flag.BoolVar(&cfg.quiet, "q", false, "do not print the result of files")
	flag.DurationVar(&cfg.timeout, "timeout", 30*time.Second, "evaluation timeout (0 disables it)")
	flag.Int64Var(&cfg.steps, "max-steps", 0, "limit evaluated nodes per evaluation (0 disables it)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [file.gs ...]\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(cfg, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cfg config, files []string) error {
	ctx := context.Background()

	opts, cleanup, err := evalOptions(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer cleanup()
	ev := gamescript.NewEvaluator(opts...)

	if cfg.expr == "" && len(files) == 0 {
		return runREPL(ctx, ev)
	}

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		res, err := ev.EvalSource(ctx, string(src), parser.WithSourceName(file))
		if err != nil {
			return err
		}
		if !cfg.quiet {
			fmt.Println(res.Text)
		}
	}

	if cfg.expr != "" {
		res, err := ev.EvalSource(ctx, cfg.expr, parser.WithSourceName("<expr>"))
		if err != nil {
			return err
		}
		fmt.Println(res.Text)
	}
	return nil
}

// evalOptions translates the flags into evaluator options. The returned
// cleanup releases the WebAssembly module, if one was loaded.
func evalOptions(ctx context.Context, cfg config, stderr io.Writer) ([]gamescript.EvalOption, func(), error) {
	level := slog.LevelInfo
	if cfg.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := []gamescript.EvalOption{
		gamescript.WithLogger(logger),
		gamescript.WithDebug(cfg.debug),
		gamescript.WithTimeout(cfg.timeout),
		gamescript.WithMaxSteps(cfg.steps),
	}
	if cfg.trace {
		opts = append(opts, gamescript.WithTraceHooks(evaluator.NewIndentTracer(stderr)))
	}
	if cfg.ext {
		opts = append(opts, ext.WithAll())
	}

	cleanup := func() {}
	if cfg.wasm != "" {
		bin, err := os.ReadFile(cfg.wasm)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %s: %w", cfg.wasm, err)
		}
		mod, err := extwasm.Load(ctx, bin)
		if err != nil {
			return nil, nil, err
		}
		for _, name := range mod.Skipped() {
			logger.Warn("wasm export not exposed", "name", name)
		}
		opts = append(opts, gamescript.WithForeignFunctions(mod.Functions()...))
		cleanup = func() { _ = mod.Close(ctx) }
	}
	return opts, cleanup, nil
}
