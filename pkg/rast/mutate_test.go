package rast_test

import (
	"testing"

	"github.com/tmakhader/asap-patch/pkg/rast"
)

func TestRenameDriver(t *testing.T) {
	t.Run("Continuous assignment LHS only", func(t *testing.T) {
		items := []rast.Node{
			&rast.Assign{
				LHS: &rast.Identifier{Name: "a"},
				RHS: &rast.Identifier{Name: "a"}, // same name on RHS must not be touched
			},
		}
		rast.RenameDriver(items, "a", "a_controlled")

		assign := items[0].(*rast.Assign)
		if assign.LHS.(*rast.Identifier).Name != "a_controlled" {
			t.Errorf("LHS = %q, want a_controlled", assign.LHS.(*rast.Identifier).Name)
		}
		if assign.RHS.(*rast.Identifier).Name != "a" {
			t.Errorf("RHS = %q, want unchanged a", assign.RHS.(*rast.Identifier).Name)
		}
	})

	t.Run("Procedural assignment inside always block", func(t *testing.T) {
		items := []rast.Node{
			&rast.AlwaysBlock{
				Sensitivity: []rast.Expression{&rast.Identifier{Name: "clk"}},
				Body: []rast.Node{
					&rast.ProcAssign{LHS: &rast.Identifier{Name: "q"}, RHS: &rast.Identifier{Name: "d"}},
				},
			},
		}
		rast.RenameDriver(items, "q", "q_controlled")

		body := items[0].(*rast.AlwaysBlock).Body
		pa := body[0].(*rast.ProcAssign)
		if pa.LHS.(*rast.Identifier).Name != "q_controlled" {
			t.Errorf("LHS = %q, want q_controlled", pa.LHS.(*rast.Identifier).Name)
		}
	})

	t.Run("Never touches sensitivity list", func(t *testing.T) {
		items := []rast.Node{
			&rast.AlwaysBlock{Sensitivity: []rast.Expression{&rast.Identifier{Name: "a"}}},
		}
		rast.RenameDriver(items, "a", "a_controlled")
		if items[0].(*rast.AlwaysBlock).Sensitivity[0].(*rast.Identifier).Name != "a" {
			t.Error("RenameDriver must not rewrite sensitivity list references")
		}
	})
}

func TestRenameLoad(t *testing.T) {
	t.Run("Continuous assignment RHS only", func(t *testing.T) {
		items := []rast.Node{
			&rast.Assign{LHS: &rast.Identifier{Name: "a"}, RHS: &rast.Identifier{Name: "a"}},
		}
		rast.RenameLoad(items, "a", "a_controlled")

		assign := items[0].(*rast.Assign)
		if assign.RHS.(*rast.Identifier).Name != "a_controlled" {
			t.Errorf("RHS = %q, want a_controlled", assign.RHS.(*rast.Identifier).Name)
		}
		if assign.LHS.(*rast.Identifier).Name != "a" {
			t.Errorf("LHS = %q, want unchanged a", assign.LHS.(*rast.Identifier).Name)
		}
	})

	t.Run("Always-block sensitivity list is a load site", func(t *testing.T) {
		items := []rast.Node{
			&rast.AlwaysBlock{Sensitivity: []rast.Expression{&rast.Identifier{Name: "a"}}},
		}
		rast.RenameLoad(items, "a", "a_controlled")
		if items[0].(*rast.AlwaysBlock).Sensitivity[0].(*rast.Identifier).Name != "a_controlled" {
			t.Error("expected sensitivity list reference renamed")
		}
	})

	t.Run("Descends through part-selects and concatenations", func(t *testing.T) {
		items := []rast.Node{
			&rast.Assign{
				LHS: &rast.Identifier{Name: "y"},
				RHS: &rast.Concat{Items: []rast.Expression{
					&rast.Partselect{Target: &rast.Identifier{Name: "a"}, W: *rast.NewWidth(rast.BitRange{MSB: 1, LSB: 0})},
					&rast.Identifier{Name: "b"},
				}},
			},
		}
		rast.RenameLoad(items, "a", "a_controlled")

		concat := items[0].(*rast.Assign).RHS.(*rast.Concat)
		ps := concat.Items[0].(*rast.Partselect)
		if ps.Target.(*rast.Identifier).Name != "a_controlled" {
			t.Errorf("part-select target = %q, want a_controlled", ps.Target.(*rast.Identifier).Name)
		}
		if concat.Items[1].(*rast.Identifier).Name != "b" {
			t.Error("unrelated concat member must be untouched")
		}
	})
}

func TestRenamePortArgActuals(t *testing.T) {
	instances := []*rast.Instance{
		{Name: "u0", Ports: []*rast.PortArg{
			{Formal: "clk", Actual: &rast.Identifier{Name: "a"}},
			{Formal: "rst", Actual: &rast.Identifier{Name: "b"}},
		}},
	}
	rast.RenamePortArgActuals(instances, "a", "a_controlled")

	if instances[0].Ports[0].Actual.(*rast.Identifier).Name != "a_controlled" {
		t.Error("expected actual renamed")
	}
	if instances[0].Ports[1].Actual.(*rast.Identifier).Name != "b" {
		t.Error("unrelated port arg must be untouched")
	}
}
