// Package patchdsl implements the SMU/SRU sequence-matching grammar
// described in original_source/ASAPCompiler.py: a small language for
// describing bit-pattern match sequences against instrumented signals,
// e.g.
//
//	s0 {
//	  (TOP.a[1:0] == 2'b00)
//	  (TOP.inst1.inter[1:0] > 2'b10)
//	}
//
// This grammar is explicitly out of scope for the core AST transformation
// engine (spec §1: "a disjoint optional front-end") and has no import
// from pkg/asap. It exists to describe match conditions over the signals
// the core exposes on observePort/controlPortIn/controlPortOut, for the
// off-chip Signal Manipulation Unit to consume.
package patchdsl

// Const is a sized binary literal, e.g. 2'b00 (width 2, value "00").
type Const struct {
	Width int
	Value string
}

// Variable is a (possibly hierarchical) part-selected signal reference,
// e.g. TOP.inst1.sig[1:0].
type Variable struct {
	Name string
	MSB  int
	LSB  int
}

// Comparison is the operator token the grammar accepts: "==", ">", "<",
// ">=", "<=" or "=".
type Comparison struct {
	Operator string
}

// Pattern is one bit-pattern match condition.
type Pattern struct {
	LHS Variable
	Op  Comparison
	RHS Const
}

// Sequence is a named, ordered list of patterns that together describe
// one observable condition sequence.
type Sequence struct {
	Name     string
	Patterns []Pattern
}

// SequenceList is the root of a parsed patch file.
type SequenceList struct {
	Sequences []Sequence
}
