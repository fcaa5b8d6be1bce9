package refverilog

import (
	"fmt"
	"strings"

	"github.com/tmakhader/asap-patch/pkg/rast"
)

// Emitter pretty-prints a rast.File back into the same textual subset
// Parser accepts.
type Emitter struct{}

// NewEmitter constructs an Emitter.
func NewEmitter() *Emitter { return &Emitter{} }

// Emit implements rast.Emitter.
func (e *Emitter) Emit(f *rast.File) (string, error) {
	var b strings.Builder
	for _, mod := range f.Description.Definitions {
		emitModule(&b, mod)
	}
	return b.String(), nil
}

func emitModule(b *strings.Builder, mod *rast.Module) {
	ports := make([]string, len(mod.Ports))
	for i, p := range mod.Ports {
		ports[i] = p.Name
	}
	fmt.Fprintf(b, "module %s (%s);\n", mod.Name, strings.Join(ports, ", "))

	for _, item := range mod.Items {
		emitItem(b, item)
	}

	b.WriteString("endmodule\n")
}

func emitItem(b *strings.Builder, item rast.Node) {
	switch n := item.(type) {
	case *rast.InputDecl:
		fmt.Fprintf(b, "  input %s%s;\n", widthPrefix(n.W), strings.Join(n.Names, ", "))
	case *rast.OutputDecl:
		kw := "output"
		if n.Net == rast.Reg {
			kw = "output reg"
		}
		fmt.Fprintf(b, "  %s %s%s;\n", kw, widthPrefix(n.W), strings.Join(n.Names, ", "))
	case *rast.InoutDecl:
		fmt.Fprintf(b, "  inout %s%s;\n", widthPrefix(n.W), strings.Join(n.Names, ", "))
	case *rast.RegDecl:
		fmt.Fprintf(b, "  reg %s%s;\n", widthPrefix(n.W), strings.Join(n.Names, ", "))
	case *rast.WireDecl:
		fmt.Fprintf(b, "  wire %s%s;\n", widthPrefix(n.W), strings.Join(n.Names, ", "))
	case *rast.Decl:
		for _, inner := range n.List {
			emitItem(b, inner)
		}
	case *rast.Assign:
		fmt.Fprintf(b, "  assign %s = %s;\n", emitExpr(n.LHS), emitExpr(n.RHS))
	case *rast.ProcAssign:
		op := "="
		if !n.Blocking {
			op = "<="
		}
		fmt.Fprintf(b, "    %s %s %s;\n", emitExpr(n.LHS), op, emitExpr(n.RHS))
	case *rast.AlwaysBlock:
		sens := make([]string, len(n.Sensitivity))
		for i, s := range n.Sensitivity {
			sens[i] = emitExpr(s)
		}
		fmt.Fprintf(b, "  always @(%s) begin\n", strings.Join(sens, " or "))
		for _, s := range n.Body {
			emitItem(b, s)
		}
		b.WriteString("  end\n")
	case *rast.InitialBlock:
		b.WriteString("  initial begin\n")
		for _, s := range n.Body {
			emitItem(b, s)
		}
		b.WriteString("  end\n")
	case *rast.InstanceList:
		for _, inst := range n.Instances {
			args := make([]string, len(inst.Ports))
			for i, p := range inst.Ports {
				args[i] = fmt.Sprintf(".%s(%s)", p.Formal, emitExpr(p.Actual))
			}
			fmt.Fprintf(b, "  %s %s (%s);\n", n.Module, inst.Name, strings.Join(args, ", "))
		}
	}
}

func widthPrefix(w *rast.Width) string {
	r, ok := w.Resolve()
	if !ok || (r.MSB == 0 && r.LSB == 0) {
		return ""
	}
	return fmt.Sprintf("[%d:%d] ", r.MSB, r.LSB)
}

func emitExpr(e rast.Expression) string {
	switch v := e.(type) {
	case *rast.Identifier:
		return v.Name
	case *rast.IntConst:
		return v.Value
	case *rast.Partselect:
		r, ok := v.W.Resolve()
		if !ok {
			return emitExpr(v.Target)
		}
		if r.MSB == r.LSB {
			return fmt.Sprintf("%s[%d]", emitExpr(v.Target), r.MSB)
		}
		return fmt.Sprintf("%s[%d:%d]", emitExpr(v.Target), r.MSB, r.LSB)
	case *rast.Concat:
		parts := make([]string, len(v.Items))
		for i, it := range v.Items {
			parts[i] = emitExpr(it)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}
