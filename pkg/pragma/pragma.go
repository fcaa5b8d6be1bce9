// Package pragma implements the Pragma Scanner (spec §4.1): a line-oriented
// text pass per file that recognizes "#pragma observe A:B" and/or
// "#pragma control <kind> A:B" directives.
//
// The scan is intentionally not grammar-driven: a line either contains the
// literal token "#pragma" or it does not, and everything after it is
// whitespace-split and scanned for the two recognized keywords, exactly as
// original_source/InsertionTool.py's pragmaParser does it. See DESIGN.md
// for why this does not reach for the corpus's parser-combinator library.
package pragma

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tmakhader/asap-patch/pkg/perr"
	"github.com/tmakhader/asap-patch/pkg/rast"
)

// Spec is one pragma line's payload (spec §3 "PragmaLine"). At least one
// of Observe/Control is non-nil when present in the map returned by Scan.
type Spec struct {
	Observe *rast.BitRange
	Control *ControlSpec
}

// ControlSpec pairs a control kind with the bit range it covers.
type ControlSpec struct {
	Kind  rast.ControlKind
	Range rast.BitRange
}

// LineMap maps 1-based line numbers to the pragma found there.
type LineMap map[int]Spec

// Scanner scans files for pragma lines. A *logrus.Entry is injected rather
// than relying on package-level logging state (spec §9 "Global state").
type Scanner struct {
	log *logrus.Entry
}

// NewScanner constructs a Scanner. log may be nil, in which case a
// discarding logger is used.
func NewScanner(log *logrus.Entry) *Scanner {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Scanner{log: log}
}

// ScanFile opens and scans a single file, returning its line map. Returns
// *perr.MissingFile if the file does not exist, or *perr.MalformedPragma
// on the first malformed line (fatal for the file, per spec §4.1).
func (s *Scanner) ScanFile(path string) (LineMap, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &perr.MissingFile{File: path}
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	return s.Scan(path, f)
}

// Scan reads r line by line and returns the pragma line map for it. The
// file name is only used for error/log context.
func (s *Scanner) Scan(file string, r io.Reader) (LineMap, error) {
	out := LineMap{}
	scanner := bufio.NewScanner(r)
	lineno := 0

	for scanner.Scan() {
		lineno++
		line := scanner.Text()

		if !strings.Contains(line, "#pragma") {
			continue
		}

		spec, err := s.parseLine(file, lineno, line)
		if err != nil {
			return nil, err
		}

		out[lineno] = spec
		s.log.WithFields(logrus.Fields{"file": file, "line": lineno}).Debug("pragma recognized")
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", file, err)
	}

	return out, nil
}

// parseLine implements the exact recognized forms of spec §4.1: "observe
// A:B", "control <kind> A:B", or both (in either order).
func (s *Scanner) parseLine(file string, lineno int, line string) (Spec, error) {
	rest := strings.SplitN(line, "#pragma", 2)[1]
	tokens := strings.Fields(rest)

	obsIdx, ctrlIdx := -1, -1
	for i, t := range tokens {
		switch t {
		case "observe":
			obsIdx = i
		case "control":
			ctrlIdx = i
		}
	}

	if obsIdx == -1 && ctrlIdx == -1 {
		return Spec{}, &perr.MalformedPragma{
			File: file, Line: lineno, Token: rest,
			Reason: "neither 'observe' nor 'control' found",
		}
	}

	var spec Spec

	if obsIdx != -1 {
		if obsIdx+1 >= len(tokens) {
			return Spec{}, &perr.MalformedPragma{
				File: file, Line: lineno, Token: rest,
				Reason: "'observe' missing its A:B range",
			}
		}
		rng, err := parseRange(tokens[obsIdx+1])
		if err != nil {
			return Spec{}, &perr.MalformedPragma{File: file, Line: lineno, Token: tokens[obsIdx+1], Reason: err.Error()}
		}
		spec.Observe = &rng
	}

	if ctrlIdx != -1 {
		if ctrlIdx+2 >= len(tokens) {
			return Spec{}, &perr.MalformedPragma{
				File: file, Line: lineno, Token: rest,
				Reason: "'control' missing its <kind> A:B arguments",
			}
		}
		kind := tokens[ctrlIdx+1]
		rng, err := parseRange(tokens[ctrlIdx+2])
		if err != nil {
			return Spec{}, &perr.MalformedPragma{File: file, Line: lineno, Token: tokens[ctrlIdx+2], Reason: err.Error()}
		}
		spec.Control = &ControlSpec{Kind: rast.ControlKind(kind), Range: rng}
	}

	return spec, nil
}

// parseRange parses "A:B" into a BitRange, where A is the msb and B the
// lsb, both non-negative decimal integers with A >= B.
func parseRange(tok string) (rast.BitRange, error) {
	parts := strings.SplitN(tok, ":", 2)
	if len(parts) != 2 {
		return rast.BitRange{}, fmt.Errorf("expected 'MSB:LSB', got %q", tok)
	}

	msb, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return rast.BitRange{}, fmt.Errorf("invalid msb %q: %w", parts[0], err)
	}
	lsb, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return rast.BitRange{}, fmt.Errorf("invalid lsb %q: %w", parts[1], err)
	}
	if msb < lsb {
		return rast.BitRange{}, fmt.Errorf("msb %d is less than lsb %d", msb, lsb)
	}

	return rast.BitRange{MSB: uint(msb), LSB: uint(lsb)}, nil
}
