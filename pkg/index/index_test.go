package index_test

import (
	"errors"
	"testing"

	"github.com/tmakhader/asap-patch/pkg/index"
	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/rast"
)

// fakeParser maps file paths to pre-built ASTs, standing in for the
// external HDL front end so index tests don't depend on refverilog.
type fakeParser struct {
	files map[string]*rast.File
	err   error
}

func (p *fakeParser) ParseFile(path string) (*rast.File, error) {
	if p.err != nil {
		return nil, p.err
	}
	f, ok := p.files[path]
	if !ok {
		return nil, errors.New("fakeParser: no fixture for " + path)
	}
	return f, nil
}

func moduleFile(name, path string) *rast.File {
	return &rast.File{Name: path, Description: &rast.Description{
		Definitions: []*rast.Module{{Name: name}},
	}}
}

func TestBuildIndex(t *testing.T) {
	p := &fakeParser{files: map[string]*rast.File{
		"a.v": moduleFile("A", "a.v"),
		"b.v": moduleFile("B", "b.v"),
	}}

	idx, err := index.Build(p, []string{"a.v", "b.v"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.FileToAst) != 2 {
		t.Errorf("FileToAst has %d entries, want 2", len(idx.FileToAst))
	}
	if _, ok := idx.ModuleToAst["A"]; !ok {
		t.Error("expected module A indexed")
	}
	if _, ok := idx.ModuleToAst["B"]; !ok {
		t.Error("expected module B indexed")
	}
	if idx.ModuleFile["A"] != "a.v" {
		t.Errorf("ModuleFile[A] = %q, want a.v", idx.ModuleFile["A"])
	}
}

func TestBuildIndexBlankAndWhitespaceLinesSkipped(t *testing.T) {
	p := &fakeParser{files: map[string]*rast.File{"a.v": moduleFile("A", "a.v")}}

	idx, err := index.Build(p, []string{"  a.v  ", "", "   "}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.FileToAst) != 1 {
		t.Errorf("FileToAst has %d entries, want 1", len(idx.FileToAst))
	}
}

func TestBuildIndexDuplicateModule(t *testing.T) {
	p := &fakeParser{files: map[string]*rast.File{
		"a.v": moduleFile("M", "a.v"),
		"b.v": moduleFile("M", "b.v"),
	}}

	_, err := index.Build(p, []string{"a.v", "b.v"}, nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var target *perr.DuplicateModule
	if !errors.As(err, &target) {
		t.Fatalf("expected *perr.DuplicateModule, got %T: %v", err, err)
	}
	if target.Module != "M" {
		t.Errorf("Module = %q, want M", target.Module)
	}
}
