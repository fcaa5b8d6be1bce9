// Package perr defines the closed error taxonomy of spec §7. Every error
// carries file/line/module context so callers can recover the specific
// failure kind with errors.As instead of parsing message strings.
package perr

import "fmt"

// MalformedPragma is returned when a "#pragma" line fails to parse
// (spec §4.1, §7). Fatal for the file.
type MalformedPragma struct {
	File   string
	Line   int
	Token  string
	Reason string
}

func (e *MalformedPragma) Error() string {
	return fmt.Sprintf("%s:%d: malformed pragma near %q: %s", e.File, e.Line, e.Token, e.Reason)
}

// MissingFile is returned when a filelist entry does not exist on disk.
type MissingFile struct {
	File string
}

func (e *MissingFile) Error() string {
	return fmt.Sprintf("missing file listed in filelist: %s", e.File)
}

// DuplicateModule is returned when two definitions across the file set
// share a name (spec §4.2).
type DuplicateModule struct {
	Module     string
	FirstFile  string
	SecondFile string
}

func (e *DuplicateModule) Error() string {
	return fmt.Sprintf("module %q defined in both %s and %s", e.Module, e.FirstFile, e.SecondFile)
}

// HierarchyCycle is returned when the instance tree builder detects
// recursive instantiation (spec §3, §4.2/§4.5).
type HierarchyCycle struct {
	Module string
	Path   []string
}

func (e *HierarchyCycle) Error() string {
	return fmt.Sprintf("recursive instantiation detected at module %q (path: %v)", e.Module, e.Path)
}

// UnsupportedSignalForm is returned when a pragma references a signal
// whose declaration form is not in the §4.4 rewrite table (spec §3, §7).
type UnsupportedSignalForm struct {
	Module string
	Signal string
	Form   string
}

func (e *UnsupportedSignalForm) Error() string {
	return fmt.Sprintf("module %q: signal %q has unsupported declaration form for control (%s)",
		e.Module, e.Signal, e.Form)
}

// PragmaWithoutSignal is a non-fatal warning: a line carries a pragma but
// no recognized declaration resides on that line (spec §7). Callers log
// it and discard the pragma; it is defined as an error type so the same
// file+line+module context machinery applies to warnings too.
type PragmaWithoutSignal struct {
	File string
	Line int
}

func (e *PragmaWithoutSignal) Error() string {
	return fmt.Sprintf("%s:%d: pragma present but no recognized declaration on this line", e.File, e.Line)
}

// EmptyRun indicates no pragmas were found anywhere in the file set. Not
// an error condition: the run completes successfully with no files
// modified (spec §7). Modeled here only so callers can distinguish
// "nothing to do" from "produced output" via a sentinel without
// resorting to a bare bool.
type EmptyRun struct{}

func (e *EmptyRun) Error() string { return "no pragmas found in any input file; nothing to do" }
