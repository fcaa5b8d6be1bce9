// Package classify implements the Signal Classifier (spec §4.3): a
// pre-order walk of every module definition correlating declaration/port
// line numbers with the pragma map to produce per-module observe/control
// maps.
package classify

import (
	"github.com/sirupsen/logrus"

	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/pragma"
	"github.com/tmakhader/asap-patch/pkg/rast"
)

// Classifier walks module ASTs and a file's pragma line map to populate
// Module.Observe/Module.Control.
type Classifier struct {
	log *logrus.Entry
}

// NewClassifier constructs a Classifier with an injected logger.
func NewClassifier(log *logrus.Entry) *Classifier {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Classifier{log: log}
}

// ClassifyModule populates mod.Observe/mod.Control from lines carrying a
// pragma (spec §4.3). A node qualifies iff it is an Input/Output/Reg/Wire
// declaration or port and its line has a pragma entry.
//
// Open Question decisions (see DESIGN.md):
//   - A declaration line naming multiple signals attributes the pragma to
//     every name declared on that line.
//   - Inout declarations are classified (matching original_source/
//     InsertionTool.py), left for pkg/rewrite to reject as
//     UnsupportedSignalForm when controlled, since §4.4's table has no
//     inout row; an observe-only inout is tapped like any other signal.
//   - When both a port and an internal declaration exist for the same
//     logical name in one module, the port form is canonical and is
//     recorded; re-observing via the declaration is a no-op (idempotent
//     map write), satisfying "counted exactly once".
//
// A pragma line matching no declaration in mod is not silently dropped: it
// is logged as a *perr.PragmaWithoutSignal warning (spec §7), since file
// carries the context that error type needs.
func (c *Classifier) ClassifyModule(mod *rast.Module, file string, lines pragma.LineMap) {
	if mod.Observe == nil {
		mod.Observe = map[string]rast.BitRange{}
	}
	if mod.Control == nil {
		mod.Control = map[string]rast.ControlSpec{}
	}

	consumed := map[int]bool{}

	record := func(names []string, line int) {
		spec, present := lines[line]
		if !present {
			return
		}
		consumed[line] = true
		for _, name := range names {
			// First classification wins: a port-list entry is visited
			// before the matching internal declaration, making the port
			// form canonical when both exist (spec §4.3 edge case).
			if spec.Observe != nil {
				if _, already := mod.Observe[name]; !already {
					mod.Observe[name] = *spec.Observe
					mod.ObserveOrder = append(mod.ObserveOrder, name)
				}
			}
			if spec.Control != nil {
				if _, already := mod.Control[name]; !already {
					mod.Control[name] = rast.ControlSpec{Kind: spec.Control.Kind, Range: spec.Control.Range}
					mod.ControlOrder = append(mod.ControlOrder, name)
				}
			}
		}
		c.log.WithFields(logrus.Fields{
			"module": mod.Name, "line": line, "signals": names,
		}).Debug("classified pragma")
	}

	// Port-list entries first: when a name is both a port and carries a
	// separate internal declaration, the port line is visited first and
	// is canonical (spec §4.3 edge case).
	for _, port := range mod.Ports {
		record([]string{port.Name}, port.Lineno())
	}

	for _, item := range mod.Items {
		switch d := item.(type) {
		case *rast.InputDecl:
			record(d.Names, d.Line)
		case *rast.OutputDecl:
			record(d.Names, d.Line)
		case *rast.InoutDecl:
			record(d.Names, d.Line)
		case *rast.RegDecl:
			record(d.Names, d.Line)
		case *rast.WireDecl:
			record(d.Names, d.Line)
		case *rast.Decl:
			for _, inner := range d.List {
				switch dd := inner.(type) {
				case *rast.RegDecl:
					record(dd.Names, dd.Line)
				case *rast.WireDecl:
					record(dd.Names, dd.Line)
				}
			}
		}
	}

	for line := range lines {
		if consumed[line] {
			continue
		}
		warning := &perr.PragmaWithoutSignal{File: file, Line: line}
		c.log.WithFields(logrus.Fields{
			"module": mod.Name, "file": file, "line": line,
		}).Warn(warning.Error())
	}
}

// ClassifyAll runs ClassifyModule for every module in moduleToAst, using
// each module's originating file's pragma map (fileOf maps module name to
// file name, and files maps file name to its LineMap).
func (c *Classifier) ClassifyAll(moduleToAst map[string]*rast.Module, fileOf map[string]string, files map[string]pragma.LineMap) {
	for name, mod := range moduleToAst {
		file := fileOf[name]
		c.ClassifyModule(mod, file, files[file])
	}
}
