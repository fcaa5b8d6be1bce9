package rast_test

import (
	"testing"

	"github.com/tmakhader/asap-patch/pkg/rast"
)

func TestBitRangeWidth(t *testing.T) {
	test := func(r rast.BitRange, want uint) {
		if got := r.Width(); got != want {
			t.Errorf("Width(%+v) = %d, want %d", r, got, want)
		}
	}

	test(rast.BitRange{MSB: 0, LSB: 0}, 1)
	test(rast.BitRange{MSB: 3, LSB: 0}, 4)
	test(rast.BitRange{MSB: 7, LSB: 4}, 4)
	test(rast.BitRange{MSB: 15, LSB: 0}, 16)
}

func TestWidthResolve(t *testing.T) {
	t.Run("Nil width resolves to a scalar", func(t *testing.T) {
		var w *rast.Width
		r, ok := w.Resolve()
		if !ok {
			t.Fatal("expected ok")
		}
		if r != (rast.BitRange{0, 0}) {
			t.Errorf("got %+v, want {0 0}", r)
		}
	})

	t.Run("Concrete literals resolve", func(t *testing.T) {
		w := rast.NewWidth(rast.BitRange{MSB: 7, LSB: 0})
		r, ok := w.Resolve()
		if !ok {
			t.Fatal("expected ok")
		}
		if r != (rast.BitRange{MSB: 7, LSB: 0}) {
			t.Errorf("got %+v, want {7 0}", r)
		}
	})

	t.Run("Non-literal bounds fail to resolve", func(t *testing.T) {
		w := &rast.Width{MSB: &rast.Identifier{Name: "WIDTH"}, LSB: &rast.IntConst{Value: "0"}}
		if _, ok := w.Resolve(); ok {
			t.Fatal("expected resolve to fail on a non-literal bound")
		}
	})
}

func TestIntConstUint(t *testing.T) {
	test := func(value string, want uint, wantOk bool) {
		c := &rast.IntConst{Value: value}
		got, ok := c.Uint()
		if ok != wantOk {
			t.Errorf("Uint(%q) ok = %v, want %v", value, ok, wantOk)
			return
		}
		if ok && got != want {
			t.Errorf("Uint(%q) = %d, want %d", value, got, want)
		}
	}

	test("0", 0, true)
	test("42", 42, true)
	test("-1", 0, false)
	test("not_a_number", 0, false)
}
