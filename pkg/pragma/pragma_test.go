package pragma_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/pragma"
	"github.com/tmakhader/asap-patch/pkg/rast"
)

func TestScanObserve(t *testing.T) {
	scanner := pragma.NewScanner(nil)

	src := "wire [1:0] s; // #pragma observe 1:0\n"
	lines, err := scanner.Scan("fixture.v", strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spec, ok := lines[1]
	if !ok {
		t.Fatal("expected a pragma recorded on line 1")
	}
	if spec.Observe == nil || *spec.Observe != (rast.BitRange{MSB: 1, LSB: 0}) {
		t.Errorf("Observe = %+v, want {1 0}", spec.Observe)
	}
	if spec.Control != nil {
		t.Errorf("Control = %+v, want nil", spec.Control)
	}
}

func TestScanControl(t *testing.T) {
	scanner := pragma.NewScanner(nil)

	src := "input [3:0] a; // #pragma control force 3:0\n"
	lines, err := scanner.Scan("fixture.v", strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spec := lines[1]
	if spec.Control == nil {
		t.Fatal("expected a control spec")
	}
	if spec.Control.Kind != "force" {
		t.Errorf("Kind = %q, want \"force\"", spec.Control.Kind)
	}
	if spec.Control.Range != (rast.BitRange{MSB: 3, LSB: 0}) {
		t.Errorf("Range = %+v, want {3 0}", spec.Control.Range)
	}
}

func TestScanBoth(t *testing.T) {
	scanner := pragma.NewScanner(nil)

	src := "reg [0:0] x; // #pragma observe 0:0 control mask 0:0\n"
	lines, err := scanner.Scan("fixture.v", strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spec := lines[1]
	if spec.Observe == nil || spec.Control == nil {
		t.Fatalf("expected both Observe and Control populated, got %+v", spec)
	}
}

// TestScanMalformed covers spec.md scenario S6: a pragma missing its
// bit-range argument is fatal for the file and surfaces as
// *perr.MalformedPragma, not a parse that silently drops the pragma.
func TestScanMalformed(t *testing.T) {
	scanner := pragma.NewScanner(nil)

	test := func(name, src string) {
		t.Run(name, func(t *testing.T) {
			_, err := scanner.Scan("fixture.v", strings.NewReader(src))
			if err == nil {
				t.Fatal("expected an error")
			}
			var target *perr.MalformedPragma
			if !errors.As(err, &target) {
				t.Fatalf("expected *perr.MalformedPragma, got %T: %v", err, err)
			}
		})
	}

	test("Observe missing range", "// #pragma observe\n")
	test("Control missing kind and range", "// #pragma control\n")
	test("Control missing range", "// #pragma control force\n")
	test("Range missing lsb", "// #pragma observe 3\n")
	test("Non-numeric range", "// #pragma observe a:b\n")
	test("Unrecognized keyword", "// #pragma frobnicate 1:0\n")
	test("Inverted range", "// #pragma observe 0:3\n")
}

func TestScanFileMissing(t *testing.T) {
	scanner := pragma.NewScanner(nil)
	_, err := scanner.ScanFile("does/not/exist.v")
	if err == nil {
		t.Fatal("expected an error")
	}
	var target *perr.MissingFile
	if !errors.As(err, &target) {
		t.Fatalf("expected *perr.MissingFile, got %T: %v", err, err)
	}
}

func TestScanIgnoresLinesWithoutPragma(t *testing.T) {
	scanner := pragma.NewScanner(nil)
	lines, err := scanner.Scan("fixture.v", strings.NewReader("wire a;\nwire b;\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected an empty LineMap, got %+v", lines)
	}
}
