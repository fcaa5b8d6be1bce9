// Package plumb implements the Inter-Module Plumber (spec §4.5): a
// post-order walk of the instance tree that aggregates observe/control
// widths up through the hierarchy and threads the side-channel buses
// through every instantiation boundary.
package plumb

import (
	"github.com/sirupsen/logrus"

	"github.com/tmakhader/asap-patch/pkg/config"
	"github.com/tmakhader/asap-patch/pkg/index"
	"github.com/tmakhader/asap-patch/pkg/rast"
	"github.com/tmakhader/asap-patch/pkg/rewrite"
)

// Aggregate is the per-module result a visited node contributes to its
// parent: the Σ widths the module and everything beneath it exposes at
// its own port boundary.
type Aggregate struct {
	Obs uint
	Ctl uint
}

// Plumber walks the instance tree and finalizes module port lists and
// concatenation assignments. It memoizes on module name so a module
// instantiated multiple times is rewritten exactly once (spec §4.5
// "Memoization").
type Plumber struct {
	log     *logrus.Entry
	visited map[string]Aggregate
}

// NewPlumber constructs a Plumber with an injected logger.
func NewPlumber(log *logrus.Entry) *Plumber {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Plumber{log: log, visited: map[string]Aggregate{}}
}

// Plumb walks tree post-order starting at its root, finalizing
// idx.ModuleToAst[*] in place (port lists and concatenation assignments
// added) and returning the root's aggregate widths.
func (p *Plumber) Plumb(tree *index.Tree, idx *index.Index, rewritten map[string]rewrite.Result, cfg config.Config) (Aggregate, error) {
	return p.visit(tree, idx, rewritten, cfg)
}

func (p *Plumber) visit(node *index.Tree, idx *index.Index, rewritten map[string]rewrite.Result, cfg config.Config) (Aggregate, error) {
	modName := node.Key.Module

	if agg, done := p.visited[modName]; done {
		return agg, nil
	}

	mod, found := idx.ModuleToAst[modName]
	if !found {
		// Instantiation of an undefined module; index.BuildInstanceTree
		// already treats this as a leaf with no children, so there is
		// nothing to aggregate.
		return Aggregate{}, nil
	}

	// Post-order: children before parent.
	var children []instAggregate
	for _, child := range node.Children {
		agg, err := p.visit(child, idx, rewritten, cfg)
		if err != nil {
			return Aggregate{}, err
		}
		children = append(children, instAggregate{name: child.Key.Instance, agg: agg})
	}

	res := rewritten[modName]
	internalObs, internalCtl := res.InternalObserveWidth, res.InternalControlWidth

	var instanceObs, instanceCtl uint
	// Walk instances in declaration order, appending the per-instance port
	// arguments connecting each child's observe/control slice to this
	// module's "_inst" buses.
	offsetObs, offsetCtl := uint(0), uint(0)
	for _, item := range mod.Items {
		il, ok := item.(*rast.InstanceList)
		if !ok {
			continue
		}
		for _, inst := range il.Instances {
			agg := lookup(children, inst.Name)

			if agg.Obs > 0 {
				slice := sliceExpr(cfg.ObservePort+"_inst", offsetObs, agg.Obs)
				inst.Ports = append(inst.Ports, &rast.PortArg{Formal: cfg.ObservePort, Actual: slice, Line: inst.Line})
				offsetObs += agg.Obs
			}
			if agg.Ctl > 0 {
				sliceIn := sliceExpr(cfg.ControlPortIn+"_inst", offsetCtl, agg.Ctl)
				sliceOut := sliceExpr(cfg.ControlPortOut+"_inst", offsetCtl, agg.Ctl)
				inst.Ports = append(inst.Ports,
					&rast.PortArg{Formal: cfg.ControlPortIn, Actual: sliceIn, Line: inst.Line},
					&rast.PortArg{Formal: cfg.ControlPortOut, Actual: sliceOut, Line: inst.Line},
				)
				offsetCtl += agg.Ctl
			}

			instanceObs += agg.Obs
			instanceCtl += agg.Ctl
		}
	}

	if instanceObs > 0 {
		mod.AddItems(&rast.WireDecl{Names: []string{cfg.ObservePort + "_inst"}, W: rast.NewWidth(rast.BitRange{MSB: instanceObs - 1, LSB: 0})})
	}
	if instanceCtl > 0 {
		mod.AddItems(
			&rast.WireDecl{Names: []string{cfg.ControlPortIn + "_inst"}, W: rast.NewWidth(rast.BitRange{MSB: instanceCtl - 1, LSB: 0})},
			&rast.WireDecl{Names: []string{cfg.ControlPortOut + "_inst"}, W: rast.NewWidth(rast.BitRange{MSB: instanceCtl - 1, LSB: 0})},
		)
	}

	addConcatenation(mod, cfg, internalObs, instanceObs, internalCtl, instanceCtl)
	addExternalPorts(mod, cfg, internalObs+instanceObs, internalCtl+instanceCtl)

	agg := Aggregate{Obs: internalObs + instanceObs, Ctl: internalCtl + instanceCtl}
	p.visited[modName] = agg

	p.log.WithFields(logrus.Fields{
		"module": modName, "aggregateObs": agg.Obs, "aggregateCtl": agg.Ctl,
	}).Info("plumbed module")

	return agg, nil
}

// instAggregate pairs an instance name with the aggregate widths its
// (already-visited) child node contributed.
type instAggregate struct {
	name string
	agg  Aggregate
}

func lookup(children []instAggregate, instName string) Aggregate {
	for _, c := range children {
		if c.name == instName {
			return c.agg
		}
	}
	return Aggregate{}
}

// addConcatenation implements the four-row table of spec §4.5 "Module-level
// concatenation", applied independently to the observe bus and to the
// control bus pair: each bus's own internal/instance non-emptiness decides
// its row, since a module may carry only observed signals, only controlled
// ones, or both in different shapes.
func addConcatenation(mod *rast.Module, cfg config.Config, internalObs, instanceObs, internalCtl, instanceCtl uint) {
	switch {
	case internalObs > 0 && instanceObs > 0:
		mod.AddItems(&rast.Assign{LHS: ident(cfg.ObservePort), RHS: concat(ident(cfg.ObservePort+"_int"), ident(cfg.ObservePort+"_inst"))})
	case internalObs > 0:
		mod.AddItems(&rast.Assign{LHS: ident(cfg.ObservePort), RHS: ident(cfg.ObservePort + "_int")})
	case instanceObs > 0:
		mod.AddItems(&rast.Assign{LHS: ident(cfg.ObservePort), RHS: ident(cfg.ObservePort + "_inst")})
	}

	switch {
	case internalCtl > 0 && instanceCtl > 0:
		mod.AddItems(
			&rast.Assign{LHS: ident(cfg.ControlPortIn), RHS: concat(ident(cfg.ControlPortIn+"_int"), ident(cfg.ControlPortIn+"_inst"))},
			&rast.Assign{LHS: concat(ident(cfg.ControlPortOut+"_int"), ident(cfg.ControlPortOut+"_inst")), RHS: ident(cfg.ControlPortOut)},
		)
	case internalCtl > 0:
		mod.AddItems(
			&rast.Assign{LHS: ident(cfg.ControlPortIn), RHS: ident(cfg.ControlPortIn + "_int")},
			&rast.Assign{LHS: ident(cfg.ControlPortOut + "_int"), RHS: ident(cfg.ControlPortOut)},
		)
	case instanceCtl > 0:
		mod.AddItems(
			&rast.Assign{LHS: ident(cfg.ControlPortIn), RHS: ident(cfg.ControlPortIn + "_inst")},
			&rast.Assign{LHS: ident(cfg.ControlPortOut + "_inst"), RHS: ident(cfg.ControlPortOut)},
		)
	}
}

// addExternalPorts implements spec §4.5 "External port addition".
func addExternalPorts(mod *rast.Module, cfg config.Config, aggregateObs, aggregateCtl uint) {
	if aggregateObs > 0 {
		mod.AddPort(&rast.Ioport{Dir: rast.DirOutput, Name: cfg.ObservePort})
		mod.AddItems(&rast.OutputDecl{Names: []string{cfg.ObservePort}, Net: rast.Wire, W: rast.NewWidth(rast.BitRange{MSB: aggregateObs - 1, LSB: 0})})
	}
	if aggregateCtl > 0 {
		mod.AddPort(&rast.Ioport{Dir: rast.DirOutput, Name: cfg.ControlPortIn})
		mod.AddPort(&rast.Ioport{Dir: rast.DirInput, Name: cfg.ControlPortOut})
		mod.AddItems(
			&rast.OutputDecl{Names: []string{cfg.ControlPortIn}, Net: rast.Wire, W: rast.NewWidth(rast.BitRange{MSB: aggregateCtl - 1, LSB: 0})},
			&rast.InputDecl{Names: []string{cfg.ControlPortOut}, W: rast.NewWidth(rast.BitRange{MSB: aggregateCtl - 1, LSB: 0})},
		)
	}
}

func ident(name string) rast.Expression { return &rast.Identifier{Name: name} }

func concat(items ...rast.Expression) rast.Expression { return &rast.Concat{Items: items} }

func sliceExpr(busName string, offset, width uint) rast.Expression {
	return &rast.Partselect{
		Target: &rast.Identifier{Name: busName},
		W:      *rast.NewWidth(rast.BitRange{MSB: offset + width - 1, LSB: offset}),
	}
}
