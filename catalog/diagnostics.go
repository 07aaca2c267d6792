package catalog

import (
	"fmt"
	"log/slog"
)

// Severity ranks a load diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota // entry skipped, record kept
	SeverityError                   // record or reference dropped
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Kind classifies what a diagnostic affected.
type Kind uint8

const (
	KindDefinition Kind = iota // the record itself
	KindReference              // one nutrient reference of an effect
	KindResolution             // one item entry of an association list
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindResolution:
		return "resolution"
	default:
		return "definition"
	}
}

// Diagnostic is a non-fatal problem found while building a catalog.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Source   string // File the record came from, if known
	Record   string // Nutrient or effect name
	Message  string
}

func (d Diagnostic) String() string {
	if d.Source != "" {
		return fmt.Sprintf("%s: %s (%s): %s", d.Severity, d.Record, d.Source, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Record, d.Message)
}

// Diagnostics is an ordered list of load diagnostics.
type Diagnostics []Diagnostic

func (ds *Diagnostics) add(sev Severity, kind Kind, source, record, format string, args ...any) {
	*ds = append(*ds, Diagnostic{
		Severity: sev,
		Kind:     kind,
		Source:   source,
		Record:   record,
		Message:  fmt.Sprintf(format, args...),
	})
}

// skip reports an association-list entry that was left out.
func (ds *Diagnostics) skip(source, record, format string, args ...any) {
	ds.add(SeverityWarning, KindResolution, source, record, format, args...)
}

// warn reports a record field that fell back to its default.
func (ds *Diagnostics) warn(source, record, format string, args ...any) {
	ds.add(SeverityWarning, KindDefinition, source, record, format, args...)
}

// reject reports a record that was dropped.
func (ds *Diagnostics) reject(source, record, format string, args ...any) {
	ds.add(SeverityError, KindDefinition, source, record, format, args...)
}

// dropRef reports a nutrient reference dropped from a record that still loads.
func (ds *Diagnostics) dropRef(source, record, format string, args ...any) {
	ds.add(SeverityError, KindReference, source, record, format, args...)
}

// Errors counts error-severity diagnostics.
func (ds Diagnostics) Errors() int {
	n := 0
	for _, d := range ds {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

// Log writes every diagnostic to the logger.
func (ds Diagnostics) Log(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, d := range ds {
		attrs := []any{"record", d.Record, "message", d.Message}
		if d.Source != "" {
			attrs = append(attrs, "source", d.Source)
		}
		switch {
		case d.Severity == SeverityError && d.Kind == KindReference:
			logger.Error("catalog reference dropped", attrs...)
		case d.Severity == SeverityError:
			logger.Error("catalog definition rejected", attrs...)
		default:
			logger.Warn("catalog entry skipped", attrs...)
		}
	}
}
