package generator

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Sentinel errors for common failure cases.
var (
	// ErrLoadFailed indicates that packages could not be loaded.
	ErrLoadFailed = errors.New("collectiongen: load failed")
	// ErrGenerationFailed indicates that output could not be produced or written.
	ErrGenerationFailed = errors.New("collectiongen: generation failed")
	// ErrDiagnostics indicates that error diagnostics were reported.
	ErrDiagnostics = errors.New("collectiongen: error diagnostics reported")
)

// LoadError represents a failure to load the packages of a run.
type LoadError struct {
	Dir   string
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString("collectiongen: load")
	if e.Dir != "" {
		b.WriteString(" ")
		b.WriteString(e.Dir)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoadFailed
}

// GenerationError represents a failure to render or write one package's
// output.
type GenerationError struct {
	Package string
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("collectiongen: generate")
	if e.Package != "" {
		b.WriteString(" ")
		b.WriteString(e.Package)
	}
	if e.File != "" {
		b.WriteString(" (")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}
