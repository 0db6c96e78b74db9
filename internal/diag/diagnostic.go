// Package diag holds the diagnostics produced by validation and reported by
// the analyzers and the CLI.
package diag

import (
	"fmt"
	"go/token"
)

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// TextEdit replaces [Pos, End) with NewText. Pos == End inserts.
type TextEdit struct {
	Pos     token.Pos
	End     token.Pos
	NewText string
}

// Fix is one labeled rewrite offered for a diagnostic.
type Fix struct {
	Title string
	Edits []TextEdit
}

// Diagnostic is an immutable finding. It is recomputed on every pass.
type Diagnostic struct {
	ID       ID
	Severity Severity
	Message  string
	Pos      token.Pos
	End      token.Pos
	Fixes    []Fix
}

// New builds a diagnostic for id using the catalogue severity and format.
func New(id ID, pos, end token.Pos, args ...any) Diagnostic {
	desc := Lookup(id)
	return Diagnostic{
		ID:       id,
		Severity: desc.Severity,
		Message:  fmt.Sprintf(desc.Format, args...),
		Pos:      pos,
		End:      end,
	}
}

// WithFix returns a copy of d carrying f.
func (d Diagnostic) WithFix(f Fix) Diagnostic {
	d.Fixes = append(append([]Fix(nil), d.Fixes...), f)
	return d
}

// String renders the message prefixed with its ID, e.g. "ENH008: ...".
func (d Diagnostic) String() string {
	return string(d.ID) + ": " + d.Message
}

// Position resolves the diagnostic's start against fset.
func (d Diagnostic) Position(fset *token.FileSet) token.Position {
	if fset == nil || !d.Pos.IsValid() {
		return token.Position{}
	}
	return fset.Position(d.Pos)
}
