package patchdsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	pc "github.com/prataprc/goparsec"
)

// ----------------------------------------------------------------------------
// Parser Combinator(s)

// Grammar, grounded on original_source/ASAPCompiler.py's ASAPSmuLexer/
// ASAPSmuParser token set (SEQUENCE_START/END, PATTERN_START/END,
// VARIABLE, COMPARISON, CONST), reimplemented as goparsec combinators.

var ast = pc.NewAST("patchdsl", 0)

var (
	pSequenceList = ast.ManyUntil("seqlist", nil, pSequence, pc.End())

	pSequence = ast.And("sequence", nil,
		pIdent, pc.Atom("{", "{"),
		ast.Many("patterns", nil, pPattern),
		pc.Atom("}", "}"),
	)

	pPattern = ast.And("pattern", nil,
		pc.Atom("(", "("), pVariable, pComparison, pConst, pc.Atom(")", ")"),
	)

	pIdent      = pc.Token(`[a-zA-Z_][a-zA-Z_0-9]*`, "SYMBOL")
	pVariable   = pc.Token(`[a-zA-Z_][a-zA-Z_0-9]*(?:\.[a-zA-Z_][a-zA-Z_0-9]*)*\[[0-9]+:[0-9]+\]`, "VARIABLE")
	pComparison = pc.Token(`[><=]=?`, "COMPARISON")
	pConst      = pc.Token(`[0-9]+'[bB][01]+`, "CONST")
)

// ----------------------------------------------------------------------------
// Parser

// Parser reads an ASAP-SMU patch file (the sequence/pattern grammar above)
// from an io.Reader and produces a SequenceList.
type Parser struct{ reader io.Reader }

// NewParser constructs a Parser around r.
func NewParser(r io.Reader) Parser { return Parser{reader: r} }

// Parse runs the full Text -> raw-AST -> SequenceList pipeline.
func (p Parser) Parse() (SequenceList, error) {
	content, err := io.ReadAll(p.reader)
	if err != nil {
		return SequenceList{}, fmt.Errorf("cannot read from io.Reader: %w", err)
	}

	root, ok := p.fromSource(content)
	if !ok {
		return SequenceList{}, fmt.Errorf("failed to parse patch file")
	}

	return p.fromAST(root)
}

func (p Parser) fromSource(source []byte) (pc.Queryable, bool) {
	root, _ := ast.Parsewith(pSequenceList, pc.NewScanner(source))
	return root, root != nil
}

func (p Parser) fromAST(root pc.Queryable) (SequenceList, error) {
	if root.GetName() != "seqlist" {
		return SequenceList{}, fmt.Errorf("expected node 'seqlist', found %s", root.GetName())
	}

	var list SequenceList
	for _, child := range root.GetChildren() {
		if child.GetName() != "sequence" {
			continue
		}
		seq, err := p.handleSequence(child)
		if err != nil {
			return SequenceList{}, err
		}
		list.Sequences = append(list.Sequences, seq)
	}
	return list, nil
}

func (p Parser) handleSequence(node pc.Queryable) (Sequence, error) {
	children := node.GetChildren()
	if len(children) < 3 {
		return Sequence{}, fmt.Errorf("malformed sequence node")
	}

	seq := Sequence{Name: strings.TrimSpace(children[0].GetValue())}

	patternsNode := children[2]
	for _, pn := range patternsNode.GetChildren() {
		if pn.GetName() != "pattern" {
			continue
		}
		pat, err := p.handlePattern(pn)
		if err != nil {
			return Sequence{}, err
		}
		seq.Patterns = append(seq.Patterns, pat)
	}
	return seq, nil
}

func (p Parser) handlePattern(node pc.Queryable) (Pattern, error) {
	children := node.GetChildren()
	if len(children) != 5 {
		return Pattern{}, fmt.Errorf("malformed pattern node: expected 5 children, got %d", len(children))
	}

	v, err := parseVariable(children[1].GetValue())
	if err != nil {
		return Pattern{}, err
	}
	c, err := parseConst(children[3].GetValue())
	if err != nil {
		return Pattern{}, err
	}

	return Pattern{
		LHS: v,
		Op:  Comparison{Operator: children[2].GetValue()},
		RHS: c,
	}, nil
}

// parseVariable splits "name[msb:lsb]" (name may be dotted hierarchy).
func parseVariable(tok string) (Variable, error) {
	open := strings.IndexByte(tok, '[')
	if open < 0 || !strings.HasSuffix(tok, "]") {
		return Variable{}, fmt.Errorf("malformed variable token %q", tok)
	}
	name := tok[:open]
	rangeTok := tok[open+1 : len(tok)-1]
	parts := strings.SplitN(rangeTok, ":", 2)
	if len(parts) != 2 {
		return Variable{}, fmt.Errorf("malformed variable bit range %q", tok)
	}
	msb, err1 := strconv.Atoi(parts[0])
	lsb, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return Variable{}, fmt.Errorf("non-numeric bit range in variable %q", tok)
	}
	return Variable{Name: name, MSB: msb, LSB: lsb}, nil
}

// parseConst splits "width'b<bits>".
func parseConst(tok string) (Const, error) {
	quote := strings.IndexByte(tok, '\'')
	if quote < 0 || quote+2 >= len(tok) {
		return Const{}, fmt.Errorf("malformed const token %q", tok)
	}
	width, err := strconv.Atoi(tok[:quote])
	if err != nil {
		return Const{}, fmt.Errorf("non-numeric const width in %q", tok)
	}
	return Const{Width: width, Value: tok[quote+2:]}, nil
}
