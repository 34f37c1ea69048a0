package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ymirscript/ymir/internal/compiler"
	"github.com/ymirscript/ymir/internal/config"
	"github.com/ymirscript/ymir/internal/diag"
	"github.com/ymirscript/ymir/internal/parser"
)

var appVersion = "dev"

func main() {
	var (
		showVersion bool
		logLevel    string
		ignoreErr   bool
	)

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&logLevel, "log-level", "warning", "log level: debug, info, warning, error")
	flag.BoolVar(&ignoreErr, "ignore-errors", false, "emit a best-effort build even if diagnostics were recorded")
	flag.Parse()

	if showVersion {
		fmt.Printf("ymir %s\n", appVersion)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ymir [flags] <entry.ymr>")
		os.Exit(2)
	}

	if err := run(flag.Arg(0), logLevel, ignoreErr); err != nil {
		fmt.Fprintf(os.Stderr, "ymir: %v\n", err)
		os.Exit(1)
	}
}

func run(entry, logLevel string, ignoreErr bool) error {
	cfg, err := loadConfig(entry)
	if err != nil {
		return err
	}
	compiler.ConfigureLogging(cfg, logLevel)

	policy := parser.CancelOnFirstError
	if ignoreErr {
		policy = parser.IgnoreErrors
	}

	sink := diag.NewSink()
	artifacts, ok := compiler.Compile(entry, cfg, sink, policy)

	if text := compiler.RenderDiagnostics(sink, cfg.DetailedErrors); text != "" {
		fmt.Fprint(os.Stderr, text)
	}
	if !ok {
		fmt.Fprintln(os.Stderr, "Aborting")
		return fmt.Errorf("compile failed: %s", diag.Summary(sink))
	}

	outDir := cfg.Output
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(filepath.Dir(entry), outDir)
	}
	frontendOutput := ""
	if cfg.Frontend != nil {
		frontendOutput = cfg.Frontend.Output
	}
	if err := compiler.Write(outDir, artifacts, frontendOutput); err != nil {
		return err
	}

	fmt.Printf("ymir: wrote %s (%d java file(s), %d frontend file(s))\n", outDir, len(artifacts.Java), len(artifacts.Frontend))
	return nil
}

// loadConfig reads ymir.json from beside the entry file, falling back to
// config.Default when absent (spec.md §6: "all fields optional").
func loadConfig(entry string) (config.Config, error) {
	path := filepath.Join(filepath.Dir(entry), "ymir.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Default(), nil
		}
		return config.Config{}, fmt.Errorf("ConfigError: cannot read %q: %w", path, err)
	}
	cfg, err := config.Load(raw)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
