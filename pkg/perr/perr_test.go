package perr_test

import (
	"errors"
	"testing"

	"github.com/tmakhader/asap-patch/pkg/perr"
)

// TestErrorTaxonomy checks every error kind implements the error interface,
// that callers can recover each context-carrying kind with errors.As, and
// that MalformedPragma and EmptyRun produce a non-empty message.
func TestErrorTaxonomy(t *testing.T) {
	t.Run("MalformedPragma", func(t *testing.T) {
		var err error = &perr.MalformedPragma{File: "a.v", Line: 3, Token: "observe", Reason: "missing range"}
		if err.Error() == "" {
			t.Fatal("expected non-empty message")
		}
		var target *perr.MalformedPragma
		if !errors.As(err, &target) {
			t.Fatal("expected errors.As to recover *MalformedPragma")
		}
		if target.Line != 3 {
			t.Errorf("Line = %d, want 3", target.Line)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		var err error = &perr.MissingFile{File: "missing.v"}
		var target *perr.MissingFile
		if !errors.As(err, &target) {
			t.Fatal("expected errors.As to recover *MissingFile")
		}
	})

	t.Run("DuplicateModule", func(t *testing.T) {
		var err error = &perr.DuplicateModule{Module: "M", FirstFile: "a.v", SecondFile: "b.v"}
		var target *perr.DuplicateModule
		if !errors.As(err, &target) {
			t.Fatal("expected errors.As to recover *DuplicateModule")
		}
	})

	t.Run("HierarchyCycle", func(t *testing.T) {
		var err error = &perr.HierarchyCycle{Module: "M", Path: []string{"TOP", "M"}}
		var target *perr.HierarchyCycle
		if !errors.As(err, &target) {
			t.Fatal("expected errors.As to recover *HierarchyCycle")
		}
	})

	t.Run("UnsupportedSignalForm", func(t *testing.T) {
		var err error = &perr.UnsupportedSignalForm{Module: "M", Signal: "a", Form: "inout"}
		var target *perr.UnsupportedSignalForm
		if !errors.As(err, &target) {
			t.Fatal("expected errors.As to recover *UnsupportedSignalForm")
		}
	})

	t.Run("PragmaWithoutSignal", func(t *testing.T) {
		var err error = &perr.PragmaWithoutSignal{File: "a.v", Line: 5}
		var target *perr.PragmaWithoutSignal
		if !errors.As(err, &target) {
			t.Fatal("expected errors.As to recover *PragmaWithoutSignal")
		}
	})

	t.Run("EmptyRun", func(t *testing.T) {
		var err error = &perr.EmptyRun{}
		if err.Error() == "" {
			t.Fatal("expected non-empty message")
		}
	})
}
