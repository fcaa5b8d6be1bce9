// Package emit is the Emitter Glue (spec §4.6): invokes the external
// pretty-printer on a mutated AST and writes the result alongside the
// original file.
package emit

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tmakhader/asap-patch/pkg/rast"
)

// Writer invokes an injected rast.Emitter and writes its output to
// "<stem>_patch.<ext>" in the same directory as the source file (spec
// §4.6). No content-level post-processing is performed on the emitted
// text.
type Writer struct {
	emitter rast.Emitter
	log     *logrus.Entry
}

// NewWriter constructs a Writer around the given emitter and logger.
func NewWriter(emitter rast.Emitter, log *logrus.Entry) *Writer {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &Writer{emitter: emitter, log: log}
}

// Write emits f and writes it to the patch path derived from f.Name,
// returning that path.
func (w *Writer) Write(f *rast.File) (string, error) {
	text, err := w.emitter.Emit(f)
	if err != nil {
		return "", err
	}

	out := patchPath(f.Name)
	if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
		return "", err
	}

	w.log.WithFields(logrus.Fields{"source": f.Name, "output": out}).Info("emitted patch file")
	return out, nil
}

// patchPath derives "<stem>_patch.<ext>" from a source path, preserving
// its directory.
func patchPath(src string) string {
	dir := filepath.Dir(src)
	base := filepath.Base(src)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"_patch"+ext)
}
