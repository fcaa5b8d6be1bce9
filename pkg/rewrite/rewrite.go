// Package rewrite implements the Intra-Module Rewriter (spec §4.4): for one
// module at a time, divert every controlled signal's driver/load graph
// through a fresh "_controlled" companion, then generate the side-channel
// taps that connect the diversion to the control and observe buses.
package rewrite

import (
	"github.com/sirupsen/logrus"

	"github.com/tmakhader/asap-patch/pkg/config"
	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/rast"
)

// SruTap is one entry of a driverList or loadList: a named wire and the
// bit range of it that the side-channel bus connects to (spec §3 "SruTap").
type SruTap struct {
	Wire  string
	Range rast.BitRange
}

// Result is the pair the Inter-Module Plumber consumes for this module
// (spec §4.4 "Intra-module output").
type Result struct {
	InternalObserveWidth uint
	InternalControlWidth uint
}

// Rewriter applies the §4.4 rewrite table to one module at a time.
type Rewriter struct {
	log *logrus.Entry
}

// NewRewriter constructs a Rewriter with an injected logger.
func NewRewriter(log *logrus.Entry) *Rewriter {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Rewriter{log: log}
}

// declForm is the five-way classification of §4.4's table, plus the two
// forms rewrite always rejects.
type declForm int

const (
	formUndeclared declForm = iota
	formInoutPort
	formInputWire
	formOutputWire
	formOutputReg
	formInternalReg
	formInternalWire
)

func (f declForm) String() string {
	switch f {
	case formInoutPort:
		return "inout"
	case formInputWire:
		return "input wire port"
	case formOutputWire:
		return "output wire port"
	case formOutputReg:
		return "output reg port"
	case formInternalReg:
		return "internal reg"
	case formInternalWire:
		return "internal wire"
	default:
		return "undeclared"
	}
}

// declLocation is what locate found for one signal name: its declared
// form, its full declared bit range, and (when mutation of the existing
// declaration node is required) a pointer back to it.
type declLocation struct {
	form       declForm
	width      rast.BitRange
	line       int
	outputDecl *rast.OutputDecl // formOutputReg: flip Net to Wire
	regDecl    *rast.RegDecl    // formInternalReg: split the name out
}

// RewriteModule applies the full §4.4 algorithm to mod in place. A module
// with no pragmas is left untouched and returns (0, 0), matching
// "Intra-module output ... A module with no pragmas returns (0, 0) and is
// left unchanged."
func (rw *Rewriter) RewriteModule(mod *rast.Module, cfg config.Config) (Result, error) {
	if len(mod.Observe) == 0 && len(mod.Control) == 0 {
		return Result{}, nil
	}

	var driverList, loadList []SruTap
	// driverSideName records, per controlled signal, which of {A,
	// A_controlled} ended up as the driverList entry. The observation
	// rule (§4.4 "Observation taps") taps exactly that name.
	driverSideName := map[string]string{}

	for _, name := range mod.ControlOrder {
		ctrl := mod.Control[name]

		loc, err := locate(mod, name)
		if err != nil {
			return Result{}, err
		}
		if loc.form == formInoutPort || loc.form == formUndeclared {
			return Result{}, &perr.UnsupportedSignalForm{Module: mod.Name, Signal: name, Form: loc.form.String()}
		}

		controlled := name + "_controlled"

		switch loc.form {
		case formInputWire:
			rast.RenameLoad(mod.Items, name, controlled)
			renamePortArgActuals(mod, name, controlled)
			mod.AddItems(&rast.WireDecl{Names: []string{controlled}, W: rast.NewWidth(loc.width), Line: loc.line})
			driverList = append(driverList, SruTap{Wire: name, Range: ctrl.Range})
			loadList = append(loadList, SruTap{Wire: controlled, Range: ctrl.Range})
			driverSideName[name] = name
			addPassthrough(mod, loc.width, ctrl.Range, name, controlled, false, loc.line)

		case formOutputWire:
			rast.RenameDriver(mod.Items, name, controlled)
			mod.AddItems(&rast.WireDecl{Names: []string{controlled}, W: rast.NewWidth(loc.width), Line: loc.line})
			driverList = append(driverList, SruTap{Wire: controlled, Range: ctrl.Range})
			loadList = append(loadList, SruTap{Wire: name, Range: ctrl.Range})
			driverSideName[name] = controlled
			addPassthrough(mod, loc.width, ctrl.Range, name, controlled, true, loc.line)

		case formOutputReg:
			rast.RenameDriver(mod.Items, name, controlled)
			loc.outputDecl.Net = rast.Wire
			mod.AddItems(&rast.RegDecl{Names: []string{controlled}, W: rast.NewWidth(loc.width), Line: loc.line})
			driverList = append(driverList, SruTap{Wire: controlled, Range: ctrl.Range})
			loadList = append(loadList, SruTap{Wire: name, Range: ctrl.Range})
			driverSideName[name] = controlled
			addPassthrough(mod, loc.width, ctrl.Range, name, controlled, true, loc.line)

		case formInternalReg:
			convertRegToWire(mod, loc.regDecl, name)
			rast.RenameDriver(mod.Items, name, controlled)
			mod.AddItems(&rast.RegDecl{Names: []string{controlled}, W: rast.NewWidth(loc.width), Line: loc.line})
			driverList = append(driverList, SruTap{Wire: controlled, Range: ctrl.Range})
			loadList = append(loadList, SruTap{Wire: name, Range: ctrl.Range})
			driverSideName[name] = controlled
			addPassthrough(mod, loc.width, ctrl.Range, name, controlled, true, loc.line)

		case formInternalWire:
			rast.RenameDriver(mod.Items, name, controlled)
			mod.AddItems(&rast.WireDecl{Names: []string{controlled}, W: rast.NewWidth(loc.width), Line: loc.line})
			driverList = append(driverList, SruTap{Wire: controlled, Range: ctrl.Range})
			loadList = append(loadList, SruTap{Wire: name, Range: ctrl.Range})
			driverSideName[name] = controlled
			addPassthrough(mod, loc.width, ctrl.Range, name, controlled, true, loc.line)
		}

		rw.log.WithFields(logrus.Fields{
			"module": mod.Name, "signal": name, "form": loc.form.String(),
		}).Debug("rewrote controlled signal")
	}

	internalControlWidth := sumWidths(driverList)
	if internalControlWidth > 0 {
		busIn := cfg.ControlPortIn + "_int"
		busOut := cfg.ControlPortOut + "_int"
		mod.AddItems(&rast.WireDecl{Names: []string{busIn}, W: rast.NewWidth(rast.BitRange{MSB: internalControlWidth - 1, LSB: 0})})
		mod.AddItems(&rast.WireDecl{Names: []string{busOut}, W: rast.NewWidth(rast.BitRange{MSB: internalControlWidth - 1, LSB: 0})})

		var offset uint
		for _, tap := range driverList {
			slot := rast.BitRange{MSB: offset + tap.Range.Width() - 1, LSB: offset}
			mod.AddItems(&rast.Assign{LHS: sliceRef(busIn, slot), RHS: sliceRef(tap.Wire, tap.Range)})
			offset += tap.Range.Width()
		}
		offset = 0
		for _, tap := range loadList {
			slot := rast.BitRange{MSB: offset + tap.Range.Width() - 1, LSB: offset}
			mod.AddItems(&rast.Assign{LHS: sliceRef(tap.Wire, tap.Range), RHS: sliceRef(busOut, slot)})
			offset += tap.Range.Width()
		}
	}

	var internalObserveWidth uint
	for _, name := range mod.ObserveOrder {
		internalObserveWidth += mod.Observe[name].Width()
	}
	if internalObserveWidth > 0 {
		busObs := cfg.ObservePort + "_int"
		mod.AddItems(&rast.WireDecl{Names: []string{busObs}, W: rast.NewWidth(rast.BitRange{MSB: internalObserveWidth - 1, LSB: 0})})

		var offset uint
		for _, name := range mod.ObserveOrder {
			rng := mod.Observe[name]
			tapName := name
			if _, controlled := mod.Control[name]; controlled {
				tapName = driverSideName[name]
			}
			slot := rast.BitRange{MSB: offset + rng.Width() - 1, LSB: offset}
			mod.AddItems(&rast.Assign{LHS: sliceRef(busObs, slot), RHS: sliceRef(tapName, rng)})
			offset += rng.Width()
		}
	}

	return Result{InternalObserveWidth: internalObserveWidth, InternalControlWidth: internalControlWidth}, nil
}

// locate finds the declaration backing name within mod and classifies its
// §4.4 form. Ports are looked up by scanning mod.Items for the matching
// Input/Output/Inout declaration node (non-ANSI style: the port list only
// fixes direction/name/position, the backing type lives on a separate
// declaration item, per pkg/rast's doc comment on Ioport).
func locate(mod *rast.Module, name string) (*declLocation, error) {
	for _, item := range mod.Items {
		switch d := item.(type) {
		case *rast.InputDecl:
			if contains(d.Names, name) {
				w, ok := d.W.Resolve()
				if !ok {
					return nil, &perr.UnsupportedSignalForm{Module: mod.Name, Signal: name, Form: "unresolvable width"}
				}
				return &declLocation{form: formInputWire, width: w, line: d.Line}, nil
			}
		case *rast.OutputDecl:
			if contains(d.Names, name) {
				w, ok := d.W.Resolve()
				if !ok {
					return nil, &perr.UnsupportedSignalForm{Module: mod.Name, Signal: name, Form: "unresolvable width"}
				}
				if d.Net == rast.Reg {
					return &declLocation{form: formOutputReg, width: w, line: d.Line, outputDecl: d}, nil
				}
				return &declLocation{form: formOutputWire, width: w, line: d.Line, outputDecl: d}, nil
			}
		case *rast.InoutDecl:
			if contains(d.Names, name) {
				return &declLocation{form: formInoutPort}, nil
			}
		case *rast.RegDecl:
			if contains(d.Names, name) {
				w, ok := d.W.Resolve()
				if !ok {
					return nil, &perr.UnsupportedSignalForm{Module: mod.Name, Signal: name, Form: "unresolvable width"}
				}
				return &declLocation{form: formInternalReg, width: w, line: d.Line, regDecl: d}, nil
			}
		case *rast.WireDecl:
			if contains(d.Names, name) {
				w, ok := d.W.Resolve()
				if !ok {
					return nil, &perr.UnsupportedSignalForm{Module: mod.Name, Signal: name, Form: "unresolvable width"}
				}
				return &declLocation{form: formInternalWire, width: w, line: d.Line}, nil
			}
		case *rast.Decl:
			for _, inner := range d.List {
				switch dd := inner.(type) {
				case *rast.RegDecl:
					if contains(dd.Names, name) {
						w, ok := dd.W.Resolve()
						if !ok {
							return nil, &perr.UnsupportedSignalForm{Module: mod.Name, Signal: name, Form: "unresolvable width"}
						}
						return &declLocation{form: formInternalReg, width: w, line: dd.Line, regDecl: dd}, nil
					}
				case *rast.WireDecl:
					if contains(dd.Names, name) {
						w, ok := dd.W.Resolve()
						if !ok {
							return nil, &perr.UnsupportedSignalForm{Module: mod.Name, Signal: name, Form: "unresolvable width"}
						}
						return &declLocation{form: formInternalWire, width: w, line: dd.Line}, nil
					}
				}
			}
		}
	}
	return &declLocation{form: formUndeclared}, nil
}

// renamePortArgActuals redirects every occurrence of name as a port-argument
// actual, across every InstanceList in mod, to controlled: a controlled
// input port's external value is only ever valid before the control mux, so
// any child instance reading it must read the companion instead (spec §4.4
// "Identifier renaming correctness").
func renamePortArgActuals(mod *rast.Module, name, controlled string) {
	for _, item := range mod.Items {
		il, ok := item.(*rast.InstanceList)
		if !ok {
			continue
		}
		rast.RenamePortArgActuals(il.Instances, name, controlled)
	}
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// convertRegToWire implements "Convert existing declaration reg A to wire
// A": A keeps its name but changes net kind, since A becomes the
// plain downstream wire driven by the load-side tap once its driver is
// renamed to A_controlled.
func convertRegToWire(mod *rast.Module, regDecl *rast.RegDecl, name string) {
	remaining := make([]string, 0, len(regDecl.Names))
	for _, n := range regDecl.Names {
		if n != name {
			remaining = append(remaining, n)
		}
	}
	regDecl.Names = remaining
	if len(regDecl.Names) == 0 {
		mod.Items = removeItem(mod.Items, regDecl)
	}
	mod.AddItems(&rast.WireDecl{Names: []string{name}, W: regDecl.W, Line: regDecl.Line})
}

// removeItem drops target (compared by identity) from items, descending
// into Decl wrappers and dropping any that become empty.
func removeItem(items []rast.Node, target rast.Node) []rast.Node {
	out := make([]rast.Node, 0, len(items))
	for _, it := range items {
		if it == target {
			continue
		}
		if d, ok := it.(*rast.Decl); ok {
			d.List = removeItem(d.List, target)
			if len(d.List) == 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// addPassthrough wires the bits of a declared signal that fall outside a
// narrower-than-full-width control range directly between A and
// A_controlled, so those bits behave exactly as if the signal were never
// controlled (spec §9 Open Question: control ranges narrower than the
// declared width are permitted; see DESIGN.md decision #3).
//
// driverRedirected is true for the four forms whose driver was renamed to
// the companion (the companion holds the "real" computed value and the
// leftover bits must flow companion -> A); it is false for the input-port
// form (A holds the real external value and the leftover bits must flow
// A -> companion).
func addPassthrough(mod *rast.Module, full, ctrl rast.BitRange, name, controlled string, driverRedirected bool, line int) {
	for _, r := range remainderRanges(full, ctrl) {
		if driverRedirected {
			mod.AddItems(&rast.Assign{LHS: sliceRef(name, r), RHS: sliceRef(controlled, r), Line: line})
		} else {
			mod.AddItems(&rast.Assign{LHS: sliceRef(controlled, r), RHS: sliceRef(name, r), Line: line})
		}
	}
}

// remainderRanges returns the (at most two) sub-ranges of full lying
// outside sub.
func remainderRanges(full, sub rast.BitRange) []rast.BitRange {
	var out []rast.BitRange
	if full.MSB > sub.MSB {
		out = append(out, rast.BitRange{MSB: full.MSB, LSB: sub.MSB + 1})
	}
	if sub.LSB > full.LSB {
		out = append(out, rast.BitRange{MSB: sub.LSB - 1, LSB: full.LSB})
	}
	return out
}

func sumWidths(taps []SruTap) uint {
	var total uint
	for _, t := range taps {
		total += t.Range.Width()
	}
	return total
}

// sliceRef builds a reference to the absolute [msb:lsb] range r of name.
func sliceRef(name string, r rast.BitRange) rast.Expression {
	return &rast.Partselect{
		Target: &rast.Identifier{Name: name},
		W:      *rast.NewWidth(r),
	}
}
