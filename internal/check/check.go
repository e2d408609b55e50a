// Package check implements --check: a preflight that loads both exports and
// verifies every configured column is present without writing anything.
package check

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/backmassage/resolve2edl/internal/config"
	"github.com/backmassage/resolve2edl/internal/display"
	"github.com/backmassage/resolve2edl/internal/table"
)

// ErrPreflight is returned by Run when any input failed its checks.
var ErrPreflight = errors.New("preflight failed")

// Logger is the subset of logging.Logger that Run uses.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
	Debug(string, ...interface{})
}

type input struct {
	label    string
	path     string
	enc      config.Encoding
	required []string
}

// Run checks the Media Pool and Edit Index named by cfg: the file exists,
// decodes in its configured encoding and has every required column. It logs
// each result and keeps going after a failure so one run reports
// everything.
func Run(cfg *config.Config, log Logger) error {
	log.Info("=== Preflight ===")

	inputs := []input{
		{"Media Pool", cfg.MediaPath(), cfg.MediaEncoding, cfg.MediaColumns.List()},
		{"Edit Index", cfg.EditPath(), cfg.EditEncoding, cfg.EditColumns.List()},
	}
	failed := 0
	for _, in := range inputs {
		if !checkInput(in, log) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d inputs", ErrPreflight, failed, len(inputs))
	}
	log.Success("Both inputs are ready")
	return nil
}

func checkInput(in input, log Logger) bool {
	if fi, err := os.Stat(in.path); err == nil {
		log.Debug("%s: %s, %s", in.label, in.path, display.FormatBytes(fi.Size()))
	}

	t, err := table.Load(in.path, in.enc)
	if err != nil {
		log.Error("%s: %v", in.label, err)
		return false
	}
	log.Info("%s: %s (%s, %s)", in.label, in.path, in.enc, display.Plural(t.Len(), "row"))
	log.Debug("  columns: %s", strings.Join(t.Columns, ", "))

	if _, err := t.Indexes(in.required...); err != nil {
		log.Error("%s: %v", in.label, err)
		return false
	}
	if t.Len() == 0 {
		log.Warn("%s has a header but no rows", in.label)
	}
	log.Success("%s: all %d required columns present", in.label, len(in.required))
	return true
}
