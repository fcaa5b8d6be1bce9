// Package asap wires the six components of spec §2 into the single
// entry point external callers (and cmd/asap) use: parse, scan, classify,
// rewrite, plumb and emit a file list in one fail-fast pass.
package asap

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tmakhader/asap-patch/pkg/classify"
	"github.com/tmakhader/asap-patch/pkg/config"
	"github.com/tmakhader/asap-patch/pkg/emit"
	"github.com/tmakhader/asap-patch/pkg/index"
	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/plumb"
	"github.com/tmakhader/asap-patch/pkg/pragma"
	"github.com/tmakhader/asap-patch/pkg/rast"
	"github.com/tmakhader/asap-patch/pkg/rewrite"
)

// Config is the set of identifiers injected at start-up (spec §6
// "Configured identifiers"). The type lives in pkg/config so pkg/rewrite
// and pkg/plumb can depend on it without importing this orchestration
// package.
type Config = config.Config

// DefaultConfig returns the original tool's identifier choices.
func DefaultConfig() Config { return config.Default() }

// Result is the summary of one completed run.
type Result struct {
	// PatchedFiles lists the "<stem>_patch.<ext>" paths written, in the
	// order their source files were parsed.
	PatchedFiles []string
	// RootObserveWidth/RootControlWidth are the top module's aggregate
	// side-channel widths after plumbing.
	RootObserveWidth uint
	RootControlWidth uint
}

// Run executes the full pipeline over filelist (spec §2 data flow):
// parser → AST Index, Pragma Scanner over every indexed file,
// Signal Classifier, Instance Tree Builder, Intra-Module Rewriter,
// Inter-Module Plumber, Emitter Glue. It is single-threaded and
// synchronous (spec §5): the first error aborts the run and no output
// files are written.
func Run(cfg Config, filelist []string, p rast.Parser, e rast.Emitter, log *logrus.Entry) (Result, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	idx, err := index.Build(p, filelist, log)
	if err != nil {
		return Result{}, err
	}

	scanner := pragma.NewScanner(log)
	lineMaps := map[string]pragma.LineMap{}
	anyPragma := false
	for file := range idx.FileToAst {
		lm, err := scanner.ScanFile(file)
		if err != nil {
			return Result{}, err
		}
		lineMaps[file] = lm
		if len(lm) > 0 {
			anyPragma = true
		}
	}
	if !anyPragma {
		return Result{}, &perr.EmptyRun{}
	}

	classifier := classify.NewClassifier(log)
	classifier.ClassifyAll(idx.ModuleToAst, idx.ModuleFile, lineMaps)

	for name, mod := range idx.ModuleToAst {
		for signal := range mod.Control {
			if cfg.Collides(signal) {
				return Result{}, &perr.MalformedPragma{
					File: idx.ModuleFile[name], Line: 0, Token: signal,
					Reason: "signal name collides with a configured side-channel identifier",
				}
			}
		}
		for signal := range mod.Observe {
			if cfg.Collides(signal) {
				return Result{}, &perr.MalformedPragma{
					File: idx.ModuleFile[name], Line: 0, Token: signal,
					Reason: "signal name collides with a configured side-channel identifier",
				}
			}
		}
	}

	tree, err := index.BuildInstanceTree(cfg.TopModule, idx, log)
	if err != nil {
		return Result{}, err
	}

	rewriter := rewrite.NewRewriter(log)
	rewritten := map[string]rewrite.Result{}
	for name, mod := range idx.ModuleToAst {
		res, err := rewriter.RewriteModule(mod, cfg)
		if err != nil {
			return Result{}, err
		}
		rewritten[name] = res
	}

	plumber := plumb.NewPlumber(log)
	rootAgg, err := plumber.Plumb(tree, idx, rewritten, cfg)
	if err != nil {
		return Result{}, err
	}

	writer := emit.NewWriter(e, log)
	var patched []string
	for _, file := range orderedFiles(filelist) {
		f, ok := idx.FileToAst[file]
		if !ok {
			continue
		}
		out, err := writer.Write(f)
		if err != nil {
			return Result{}, err
		}
		log.WithField("file", file).Debug("file emitted")
		patched = append(patched, out)
	}

	return Result{
		PatchedFiles:     patched,
		RootObserveWidth: rootAgg.Obs,
		RootControlWidth: rootAgg.Ctl,
	}, nil
}

// orderedFiles mirrors the whitespace-stripping/blank-filtering index.Build
// applies, so emission walks files in filelist order rather than the
// FileToAst map's nondeterministic iteration order.
func orderedFiles(filelist []string) []string {
	out := make([]string, 0, len(filelist))
	for _, raw := range filelist {
		file := strings.TrimSpace(raw)
		if file != "" {
			out = append(out, file)
		}
	}
	return out
}
