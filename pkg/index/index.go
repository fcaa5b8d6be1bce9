// Package index builds the AST Index (spec §4.2): file-to-AST and
// module-name-to-AST maps produced by invoking the external parser once
// per input file.
package index

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/rast"
)

// Index holds the two maps produced by a single pass over a file set
// (spec §4.2).
type Index struct {
	FileToAst   map[string]*rast.File
	ModuleToAst map[string]*rast.Module
	// ModuleFile tracks which file first defined a module, for
	// DuplicateModule error context.
	ModuleFile map[string]string
}

// Build parses every file in the files slice exactly once, after
// whitespace-stripping each entry and skipping blank ones, and assembles
// the two indices.
// Returns *perr.DuplicateModule if two definitions across the file set
// share a name.
func Build(p rast.Parser, files []string, log *logrus.Entry) (*Index, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}

	idx := &Index{
		FileToAst:   map[string]*rast.File{},
		ModuleToAst: map[string]*rast.Module{},
		ModuleFile:  map[string]string{},
	}

	for _, raw := range files {
		file := strings.TrimSpace(raw)
		if file == "" {
			continue
		}

		f, err := p.ParseFile(file)
		if err != nil {
			return nil, err
		}
		idx.FileToAst[file] = f

		log.WithField("file", file).Info("indexed file")

		for _, mod := range f.Description.Definitions {
			if prior, exists := idx.ModuleFile[mod.Name]; exists {
				return nil, &perr.DuplicateModule{Module: mod.Name, FirstFile: prior, SecondFile: file}
			}
			idx.ModuleToAst[mod.Name] = mod
			idx.ModuleFile[mod.Name] = file
			log.WithFields(logrus.Fields{"module": mod.Name, "file": file}).Debug("indexed module")
		}
	}

	return idx, nil
}
