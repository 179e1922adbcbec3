// Package diag implements the diagnostics sink (C1): an accumulator of
// warnings and errors with source spans that records, through HasErrors,
// whether a fatal error has been pushed; it never stops compilation itself.
// Grounded on the teacher's
// internal/errors/errors.go SentraError, generalized from a single
// panic-carried error into an accumulating, multi-span sink, since the core
// must keep running after a failing subtree (spec §7).
package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	"corec/internal/span"
)

// Severity classifies a Diagnostic. Order matters: Error diagnostics cause
// HasErrors to return true.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Code is a stable diagnostic identifier. Per spec §7, diagnostic messages
// are stable strings consumed by external tooling; the Code lets tooling key
// off something even more stable than the message text.
type Code string

const (
	CodeUnresolvedName              Code = "E0001"
	CodeGenericArityMismatch        Code = "E0002"
	CodeMethodNotFound               Code = "E0003"
	CodeMultipleApplicableItems      Code = "E0004"
	CodeUnsatisfiedBound             Code = "E0005"
	CodeAttributeWrongTarget          Code = "E0006"
	CodeAttributeWrongArity           Code = "E0007"
	CodeAttributeWrongValueType       Code = "E0008"
	CodeInternal                      Code = "E0009"

	CodeDeadCode                      Code = "W0001"
	CodeDeadEnumVariant                Code = "W0002"
	CodeUnreadField                    Code = "W0003"
	CodeUnusedReturnValue               Code = "W0004"
)

// Label is one span in a multi-span diagnostic, with a short annotation
// ("defined here", "used here", ...).
type Label struct {
	Span    span.Span
	Message string
}

// Diagnostic carries at least one source span (spec §7). The ID is a uuid so
// that two diagnostics produced from different ErrorRecovery placeholders are
// never mistaken for the same failure by callers comparing ids.
type Diagnostic struct {
	ID       uuid.UUID
	Severity Severity
	Code     Code
	Message  string
	Primary  span.Span
	Labels   []Label
	Help     string
	Note     string
}

func newDiagnostic(sev Severity, code Code, primary span.Span, msg string, args ...interface{}) Diagnostic {
	return Diagnostic{
		ID:       uuid.New(),
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(msg, args...),
		Primary:  primary,
	}
}

func Errorf(code Code, primary span.Span, msg string, args ...interface{}) Diagnostic {
	return newDiagnostic(SeverityError, code, primary, msg, args...)
}

func Warnf(code Code, primary span.Span, msg string, args ...interface{}) Diagnostic {
	return newDiagnostic(SeverityWarning, code, primary, msg, args...)
}

func (d Diagnostic) WithLabel(sp span.Span, msg string) Diagnostic {
	d.Labels = append(d.Labels, Label{Span: sp, Message: msg})
	return d
}

func (d Diagnostic) WithHelp(msg string) Diagnostic {
	d.Help = msg
	return d
}

func (d Diagnostic) WithNote(msg string) Diagnostic {
	d.Note = msg
	return d
}

// Sink accumulates diagnostics for one compilation. It is passed by shared
// reference (spec §5); every phase runs to completion and appends to it
// rather than aborting.
type Sink struct {
	diagnostics []Diagnostic
	fatal       bool
}

func NewSink() *Sink { return &Sink{} }

func (s *Sink) Push(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
	if d.Severity == SeverityError {
		s.fatal = true
	}
}

// HasErrors reports whether any Error-severity diagnostic has been recorded.
// Callers inspect this between phases to decide whether to proceed (spec §7).
func (s *Sink) HasErrors() bool { return s.fatal }

func (s *Sink) Diagnostics() []Diagnostic {
	sorted := make([]Diagnostic, len(s.diagnostics))
	copy(sorted, s.diagnostics)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Primary, sorted[j].Primary
		if a.Source != b.Source {
			return fmt.Sprintf("%p", a.Source) < fmt.Sprintf("%p", b.Source)
		}
		return a.Start < b.Start
	})
	return sorted
}

// Render writes every diagnostic to w, colorizing severities with ANSI codes
// only when w is a terminal (mirrors the teacher's willingness to print
// decorative banners in cmd/sentra/main.go, but gated on isatty rather than
// unconditional).
func Render(w io.Writer, diags []Diagnostic) {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	for _, d := range diags {
		fmt.Fprintln(w, renderOne(d, color))
	}
}

func renderOne(d Diagnostic, color bool) string {
	var sb strings.Builder
	sevWord := strings.ToUpper(d.Severity.String())
	if color {
		code := "33"
		if d.Severity == SeverityError {
			code = "31"
		}
		fmt.Fprintf(&sb, "\x1b[%sm%s[%s]\x1b[0m: %s", code, sevWord, d.Code, d.Message)
	} else {
		fmt.Fprintf(&sb, "%s[%s]: %s", sevWord, d.Code, d.Message)
	}
	if !d.Primary.IsDummy() {
		fmt.Fprintf(&sb, "\n  --> %s:%d", sourceName(d.Primary), d.Primary.Start)
	}
	for _, l := range d.Labels {
		fmt.Fprintf(&sb, "\n  note: %s (%s:%d)", l.Message, sourceName(l.Span), l.Span.Start)
	}
	if d.Help != "" {
		fmt.Fprintf(&sb, "\n  help: %s", d.Help)
	}
	if d.Note != "" {
		fmt.Fprintf(&sb, "\n  note: %s", d.Note)
	}
	return sb.String()
}

func sourceName(s span.Span) string {
	if s.Source == nil {
		return "<unknown>"
	}
	return s.Source.Name
}
