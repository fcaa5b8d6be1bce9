// Package rast defines the RTL Abstract Syntax Tree node vocabulary this
// tool operates on (spec §6: "Node types required"). The real lexer/parser
// and pretty-printer producing/consuming these trees are external
// collaborators (see Parser and Emitter below); this package only fixes
// the shapes they must agree on.
package rast

// Node is implemented by every declaration and port node. Every such node
// exposes a 1-based line number so the Pragma Scanner's line-keyed map can
// be correlated against it (spec §4.3).
type Node interface {
	Lineno() int
}

// Direction identifies a port's direction.
type Direction uint8

const (
	DirInput Direction = iota
	DirOutput
	DirInout
)

func (d Direction) String() string {
	switch d {
	case DirInput:
		return "input"
	case DirOutput:
		return "output"
	case DirInout:
		return "inout"
	default:
		return "?"
	}
}

// NetKind distinguishes a register-backed from a wire-backed declaration.
type NetKind uint8

const (
	Wire NetKind = iota
	Reg
)

func (k NetKind) String() string {
	if k == Reg {
		return "reg"
	}
	return "wire"
}

// BitRange is an inclusive [MSB:LSB] pair of non-negative integers.
type BitRange struct {
	MSB, LSB uint
}

// Width returns msb-lsb+1.
func (r BitRange) Width() uint { return r.MSB - r.LSB + 1 }

// Width is the AST-level bit-range subtree attached to a declaration. A nil
// *Width means a 1-bit (scalar) signal.
type Width struct {
	MSB, LSB Expression
}

// Resolve folds a Width into a concrete BitRange. Both bounds must be
// IntConst literals; this tool does not evaluate parameters or expressions
// in bit ranges (spec §1 Non-goals).
func (w *Width) Resolve() (BitRange, bool) {
	if w == nil {
		return BitRange{0, 0}, true
	}
	msb, ok1 := w.MSB.(*IntConst)
	lsb, ok2 := w.LSB.(*IntConst)
	if !ok1 || !ok2 {
		return BitRange{}, false
	}
	m, ok1 := msb.Uint()
	l, ok2 := lsb.Uint()
	if !ok1 || !ok2 {
		return BitRange{}, false
	}
	return BitRange{MSB: m, LSB: l}, true
}

// NewWidth constructs a Width from a concrete range, for synthesized
// declarations (e.g. the "_controlled" companion signal).
func NewWidth(r BitRange) *Width {
	return &Width{MSB: &IntConst{Value: uintToDecimal(r.MSB)}, LSB: &IntConst{Value: uintToDecimal(r.LSB)}}
}

// ----------------------------------------------------------------------------
// Expressions

// Expression is implemented by every node that can appear on either side of
// an assignment.
type Expression interface {
	Node
	exprNode()
}

// Identifier references a signal by name.
type Identifier struct {
	Name string
	Line int
}

func (i *Identifier) Lineno() int { return i.Line }
func (i *Identifier) exprNode()   {}

// IntConst is a literal integer (sized or unsized; this tool only inspects
// the decimal value, never the radix/size annotation).
type IntConst struct {
	Value string
	Line  int
}

func (c *IntConst) Lineno() int { return c.Line }
func (c *IntConst) exprNode()   {}

// Uint parses the literal as a plain non-negative decimal integer.
func (c *IntConst) Uint() (uint, bool) {
	return parseUint(c.Value)
}

// Partselect is `Target[MSB:LSB]`.
type Partselect struct {
	Target Expression
	W      Width
	Line   int
}

func (p *Partselect) Lineno() int { return p.Line }
func (p *Partselect) exprNode()   {}

// Concat is `{Items[0], Items[1], ...}`.
type Concat struct {
	Items []Expression
	Line  int
}

func (c *Concat) Lineno() int { return c.Line }
func (c *Concat) exprNode()   {}

// ----------------------------------------------------------------------------
// Declarations

// InputDecl declares one or more input ports sharing a single physical
// line (spec §4.3 "the same declaration line may declare multiple
// signals").
type InputDecl struct {
	Names []string
	W     *Width
	Line  int
}

func (d *InputDecl) Lineno() int { return d.Line }

// OutputDecl declares one or more output ports, backed by either a wire or
// a register.
type OutputDecl struct {
	Names []string
	Net   NetKind
	W     *Width
	Line  int
}

func (d *OutputDecl) Lineno() int { return d.Line }

// InoutDecl declares one or more bidirectional ports. Classification may
// record pragmas against these (spec §9 Open Question #2); rewriting
// rejects a controlled inout since §4.4's table has no inout row, and taps
// an observe-only inout like any other observed signal.
type InoutDecl struct {
	Names []string
	W     *Width
	Line  int
}

func (d *InoutDecl) Lineno() int { return d.Line }

// RegDecl declares one or more internal registers.
type RegDecl struct {
	Names []string
	W     *Width
	Line  int
}

func (d *RegDecl) Lineno() int { return d.Line }

// WireDecl declares one or more internal wires.
type WireDecl struct {
	Names []string
	W     *Width
	Line  int
}

func (d *WireDecl) Lineno() int { return d.Line }

// Decl groups Reg/Wire declarations that were written on a shared line,
// mirroring the external parser's habit of wrapping net declarations in a
// container node (spec §6 lists "Decl" as its own node type, separate from
// "Reg"/"Wire").
type Decl struct {
	List []Node // *RegDecl or *WireDecl entries
	Line int
}

func (d *Decl) Lineno() int { return d.Line }

// ----------------------------------------------------------------------------
// Ports, assignments, procedural blocks

// Ioport is one entry in a module's ordered port list (spec §3). The
// backing wire-or-reg binding lives on the matching declaration item in
// Module.Items; Ioport itself only fixes direction, name and position.
type Ioport struct {
	Dir  Direction
	Name string
	Line int
}

func (p *Ioport) Lineno() int { return p.Line }

// Assign is a continuous assignment `assign LHS = RHS;`. LHS is always the
// driver (lvalue), RHS always the load (rvalue).
type Assign struct {
	LHS, RHS Expression
	Line     int
}

func (a *Assign) Lineno() int { return a.Line }

// ProcAssign is an assignment inside an always/initial block
// (`LHS = RHS;` or `LHS <= RHS;`).
type ProcAssign struct {
	LHS, RHS Expression
	Blocking bool
	Line     int
}

func (a *ProcAssign) Lineno() int { return a.Line }

// AlwaysBlock models `always @(Sensitivity) Body`. Generate-block control
// flow, case/if nesting etc. are out of scope (spec §1 Non-goals); the
// body is a flat statement list, sufficient for driver/load renaming.
type AlwaysBlock struct {
	Sensitivity []Expression
	Body        []Node // *ProcAssign entries
	Line        int
}

func (a *AlwaysBlock) Lineno() int { return a.Line }

// InitialBlock models `initial Body`.
type InitialBlock struct {
	Body []Node // *ProcAssign entries
	Line int
}

func (b *InitialBlock) Lineno() int { return b.Line }

// ----------------------------------------------------------------------------
// Hierarchy

// PortArg connects one formal port name to an actual expression at an
// instantiation site.
type PortArg struct {
	Formal string
	Actual Expression
	Line   int
}

func (a *PortArg) Lineno() int { return a.Line }

// Instance is one instantiation of a module under a given instance name.
type Instance struct {
	Name  string
	Ports []*PortArg
	Line  int
}

func (i *Instance) Lineno() int { return i.Line }

// InstanceList instantiates a single module under one or more instance
// names sharing a declaration (spec §3 "Instance").
type InstanceList struct {
	Module    string
	Instances []*Instance
	Line      int
}

func (l *InstanceList) Lineno() int { return l.Line }

// ----------------------------------------------------------------------------
// Module / Description / File

// Module owns its port list, its item list and the two classification
// maps populated by pkg/classify (spec §3).
type Module struct {
	Name  string
	Ports []*Ioport
	Items []Node

	Observe map[string]BitRange
	Control map[string]ControlSpec
	// ObserveOrder/ControlOrder record the order in which signals were
	// first classified (spec §4.4: tap bit-packing must be "stable
	// (classification order)").
	ObserveOrder []string
	ControlOrder []string
}

// ControlKind is an opaque tag carried from the pragma (e.g. "force",
// "mask"). The core never interprets it (spec §3).
type ControlKind string

// ControlSpec is a control pragma's payload.
type ControlSpec struct {
	Kind  ControlKind
	Range BitRange
}

// AddItems appends declarations/statements to the module body.
func (m *Module) AddItems(items ...Node) {
	m.Items = append(m.Items, items...)
}

// AddPort appends a port to the module's external port list.
func (m *Module) AddPort(p *Ioport) {
	m.Ports = append(m.Ports, p)
}

// Description is the root of one parsed file (mirrors the external
// parser's `description.definitions` iterable, spec §6).
type Description struct {
	Definitions []*Module
}

// File pairs a file name with its parsed AST root.
type File struct {
	Name        string
	Description *Description
}

// ----------------------------------------------------------------------------
// External collaborators (spec §6)

// Parser is the out-of-scope external HDL front end: given a single file
// path, it returns the parsed root AST.
type Parser interface {
	ParseFile(path string) (*File, error)
}

// Emitter is the out-of-scope external pretty-printer: given a root AST,
// it returns source text.
type Emitter interface {
	Emit(f *File) (string, error)
}
