// Package refverilog is a minimal, line-oriented Verilog front end
// implementing rast.Parser and rast.Emitter. It stands in for the real
// HDL lexer/parser/pretty-printer, which spec.md keeps explicitly out of
// scope (named as PyVerilog in original_source/InsertionTool.py). Parser
// covers one-line declarations, continuous assignments and one-instance-
// per-line instantiation; it does not parse always/initial blocks or
// procedural assignments (Emitter prints them), and it is not the full
// Verilog-2001 grammar.
package refverilog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tmakhader/asap-patch/pkg/rast"
)

// Parser reads the constrained subset of Verilog this package supports.
type Parser struct{}

// NewParser constructs a Parser.
func NewParser() *Parser { return &Parser{} }

// ParseFile implements rast.Parser.
func (p *Parser) ParseFile(path string) (*rast.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("refverilog: %s: %w", path, err)
		}
		return nil, err
	}
	defer f.Close()

	desc := &rast.Description{}
	var cur *rast.Module

	sc := bufio.NewScanner(f)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := stripComment(sc.Text())
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "module "):
			name := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(trimmed, "module"), ";"))
			name = strings.SplitN(name, "(", 2)[0]
			name = strings.TrimSpace(name)
			cur = &rast.Module{Name: name}

		case trimmed == "endmodule":
			if cur != nil {
				desc.Definitions = append(desc.Definitions, cur)
				cur = nil
			}

		case cur != nil:
			if err := parseItem(cur, trimmed, lineno); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineno, err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return &rast.File{Name: path, Description: desc}, nil
}

func stripComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}

// parseItem dispatches one statement/declaration line into mod.
func parseItem(mod *rast.Module, line string, lineno int) error {
	stmt := strings.TrimSuffix(strings.TrimSpace(line), ";")

	switch {
	case hasKeyword(stmt, "input"):
		names, w, err := parseDecl(stmt, "input")
		if err != nil {
			return err
		}
		mod.AddItems(&rast.InputDecl{Names: names, W: w, Line: lineno})
		for _, n := range names {
			mod.AddPort(&rast.Ioport{Dir: rast.DirInput, Name: n, Line: lineno})
		}

	case hasKeyword(stmt, "output"):
		net := rast.Wire
		rest := stmt
		if afterKw := removeKeyword(stmt, "output"); hasKeyword(afterKw, "reg") {
			net = rast.Reg
			rest = "output " + removeKeyword(afterKw, "reg")
		}
		names, w, err := parseDecl(rest, "output")
		if err != nil {
			return err
		}
		mod.AddItems(&rast.OutputDecl{Names: names, Net: net, W: w, Line: lineno})
		for _, n := range names {
			mod.AddPort(&rast.Ioport{Dir: rast.DirOutput, Name: n, Line: lineno})
		}

	case hasKeyword(stmt, "inout"):
		names, w, err := parseDecl(stmt, "inout")
		if err != nil {
			return err
		}
		mod.AddItems(&rast.InoutDecl{Names: names, W: w, Line: lineno})
		for _, n := range names {
			mod.AddPort(&rast.Ioport{Dir: rast.DirInout, Name: n, Line: lineno})
		}

	case hasKeyword(stmt, "reg"):
		names, w, err := parseDecl(stmt, "reg")
		if err != nil {
			return err
		}
		mod.AddItems(&rast.RegDecl{Names: names, W: w, Line: lineno})

	case hasKeyword(stmt, "wire"):
		names, w, err := parseDecl(stmt, "wire")
		if err != nil {
			return err
		}
		mod.AddItems(&rast.WireDecl{Names: names, W: w, Line: lineno})

	case hasKeyword(stmt, "assign"):
		body := strings.TrimSpace(removeKeyword(stmt, "assign"))
		lhs, rhs, err := splitAssign(body)
		if err != nil {
			return err
		}
		mod.AddItems(&rast.Assign{LHS: parseExpr(lhs, lineno), RHS: parseExpr(rhs, lineno), Line: lineno})

	default:
		// An instance line: "ModuleName instName ( .formal(actual), ... )".
		if inst, ok := parseInstance(stmt, lineno); ok {
			mod.AddItems(inst)
			return nil
		}
		return fmt.Errorf("unrecognized statement: %q", stmt)
	}
	return nil
}

func hasKeyword(s, kw string) bool {
	fields := strings.Fields(s)
	return len(fields) > 0 && fields[0] == kw
}

func removeKeyword(s, kw string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), kw))
}

// parseDecl parses "<kw> [msb:lsb] name1, name2" (the width clause optional)
// after the leading keyword has already been identified.
func parseDecl(stmt, kw string) ([]string, *rast.Width, error) {
	rest := removeKeyword(stmt, kw)
	var w *rast.Width
	if strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end < 0 {
			return nil, nil, fmt.Errorf("unterminated width range in %q", stmt)
		}
		rangeTok := rest[1:end]
		rest = strings.TrimSpace(rest[end+1:])
		parts := strings.SplitN(rangeTok, ":", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("malformed bit range %q", rangeTok)
		}
		msb, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		lsb, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 != nil || err2 != nil {
			return nil, nil, fmt.Errorf("non-numeric bit range %q", rangeTok)
		}
		w = rast.NewWidth(rast.BitRange{MSB: uint(msb), LSB: uint(lsb)})
	}

	var names []string
	for _, n := range strings.Split(rest, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return nil, nil, fmt.Errorf("declaration with no names: %q", stmt)
	}
	return names, w, nil
}

func splitAssign(body string) (lhs, rhs string, err error) {
	i := strings.Index(body, "=")
	if i < 0 {
		return "", "", fmt.Errorf("assign missing '=': %q", body)
	}
	return strings.TrimSpace(body[:i]), strings.TrimSpace(body[i+1:]), nil
}

// parseExpr parses a bare identifier, a part-select "name[msb:lsb]", or a
// concatenation "{a, b, ...}". Good enough for this tool's own output and
// for hand-written fixtures; it does not evaluate arbitrary expressions
// (spec §1 Non-goals).
func parseExpr(s string, lineno int) rast.Expression {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		inner := s[1 : len(s)-1]
		var items []rast.Expression
		for _, part := range strings.Split(inner, ",") {
			items = append(items, parseExpr(part, lineno))
		}
		return &rast.Concat{Items: items, Line: lineno}
	}
	if i := strings.Index(s, "["); i >= 0 && strings.HasSuffix(s, "]") {
		name := s[:i]
		rangeTok := s[i+1 : len(s)-1]
		parts := strings.SplitN(rangeTok, ":", 2)
		var w rast.Width
		if len(parts) == 2 {
			w = *rast.NewWidth(rast.BitRange{MSB: atou(parts[0]), LSB: atou(parts[1])})
		} else {
			b := atou(parts[0])
			w = *rast.NewWidth(rast.BitRange{MSB: b, LSB: b})
		}
		return &rast.Partselect{Target: &rast.Identifier{Name: name, Line: lineno}, W: w, Line: lineno}
	}
	if _, err := strconv.Atoi(s); err == nil {
		return &rast.IntConst{Value: s, Line: lineno}
	}
	return &rast.Identifier{Name: s, Line: lineno}
}

func atou(s string) uint {
	v, _ := strconv.Atoi(strings.TrimSpace(s))
	return uint(v)
}

// parseInstance recognizes "Module inst ( .formal(actual), .formal2(actual2) )".
func parseInstance(stmt string, lineno int) (*rast.InstanceList, bool) {
	open := strings.Index(stmt, "(")
	if open < 0 || !strings.HasSuffix(stmt, ")") {
		return nil, false
	}
	head := strings.Fields(stmt[:open])
	if len(head) != 2 {
		return nil, false
	}
	moduleName, instName := head[0], head[1]

	argsBody := stmt[open+1 : len(stmt)-1]
	var ports []*rast.PortArg
	for _, raw := range strings.Split(argsBody, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.HasPrefix(raw, ".") {
			return nil, false
		}
		rest := raw[1:]
		paren := strings.Index(rest, "(")
		if paren < 0 || !strings.HasSuffix(rest, ")") {
			return nil, false
		}
		formal := strings.TrimSpace(rest[:paren])
		actual := strings.TrimSpace(rest[paren+1 : len(rest)-1])
		ports = append(ports, &rast.PortArg{Formal: formal, Actual: parseExpr(actual, lineno), Line: lineno})
	}

	return &rast.InstanceList{
		Module:    moduleName,
		Instances: []*rast.Instance{{Name: instName, Ports: ports, Line: lineno}},
		Line:      lineno,
	}, true
}
