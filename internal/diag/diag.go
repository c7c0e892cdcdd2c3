// Package diag reports diagnostics anchored to positions inside HDL source
// files, the way the rest of this module expects errors discovered while
// loading or mutating a Verilog/SystemVerilog file to be surfaced.
package diag

import (
	"encoding/json"
	"fmt"
	"io"
)

// Pos identifies a location inside an HDL source file.
type Pos struct {
	File       string
	Line       int
	Col        int
	ByteOffset int
}

func (p Pos) String() string {
	if p.File == "" {
		return "<unknown>"
	}
	if p.Line == 0 {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// Severity classifies a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Diagnostic is a single reported message.
type Diagnostic struct {
	Pos      Pos      `json:"pos"`
	Severity Severity `json:"-"`
	Message  string   `json:"message"`
}

// MarshalJSON renders Severity as its string form.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	type alias struct {
		Pos      Pos    `json:"pos"`
		Severity string `json:"severity"`
		Message  string `json:"message"`
	}
	return json.Marshal(alias{Pos: d.Pos, Severity: d.Severity.String(), Message: d.Message})
}

// Format controls how a Reporter renders its diagnostics.
type Format int

const (
	Text Format = iota
	JSON
)

// Reporter collects diagnostics for a single loading/validation pass.
type Reporter struct {
	diags    []Diagnostic
	errCount int
	format   Format
}

// NewReporter creates a Reporter rendering in the given format.
func NewReporter(format Format) *Reporter {
	return &Reporter{format: format}
}

// Errorf records an error-severity diagnostic at pos.
func (r *Reporter) Errorf(pos Pos, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{Pos: pos, Severity: Error, Message: fmt.Sprintf(format, args...)})
	r.errCount++
}

// Warnf records a warning-severity diagnostic at pos.
func (r *Reporter) Warnf(pos Pos, format string, args ...any) {
	r.diags = append(r.diags, Diagnostic{Pos: pos, Severity: Warning, Message: fmt.Sprintf(format, args...)})
}

// HasErrors reports whether any error-severity diagnostic was recorded.
func (r *Reporter) HasErrors() bool {
	return r.errCount > 0
}

// Diagnostics returns all recorded diagnostics in report order.
func (r *Reporter) Diagnostics() []Diagnostic {
	return r.diags
}

// WriteTo renders the collected diagnostics to w in the Reporter's format.
func (r *Reporter) WriteTo(w io.Writer) error {
	switch r.format {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r.diags)
	default:
		for _, d := range r.diags {
			if _, err := fmt.Fprintf(w, "%s: %s: %s\n", d.Pos, d.Severity, d.Message); err != nil {
				return err
			}
		}
		return nil
	}
}

// Error renders the Reporter as a single error, or nil if it has no errors.
func (r *Reporter) Error() error {
	if !r.HasErrors() {
		return nil
	}
	if len(r.diags) == 1 {
		return fmt.Errorf("%s: %s", r.diags[0].Pos, r.diags[0].Message)
	}
	return fmt.Errorf("%d diagnostics reported (%d errors)", len(r.diags), r.errCount)
}
