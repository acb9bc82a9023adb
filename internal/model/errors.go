package model

import (
	"fmt"
	"strings"
)

// DataIntegrityError reports an input record that references an unknown
// unit or voice code, or carries a missing/malformed field. It is fatal
// for the affected period: records are never silently skipped or defaulted.
type DataIntegrityError struct {
	Period Period
	Unit   string
	Voice  string
	Field  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	var b strings.Builder
	b.WriteString("data integrity")
	if e.Period != (Period{}) {
		fmt.Fprintf(&b, " [%s]", e.Period)
	}
	if e.Unit != "" {
		fmt.Fprintf(&b, " unit=%s", e.Unit)
	}
	if e.Voice != "" {
		fmt.Fprintf(&b, " voice=%s", e.Voice)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, " field=%s", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// AllocationError reports a headquarters allocation that cannot proceed:
// a zero driver denominator across all eligible units, or an unrecognized
// driver. The offending voice is always identified.
type AllocationError struct {
	Period Period
	Voice  string
	Driver string
	Reason string
}

func (e *AllocationError) Error() string {
	var b strings.Builder
	b.WriteString("allocation")
	if e.Period != (Period{}) {
		fmt.Fprintf(&b, " [%s]", e.Period)
	}
	if e.Voice != "" {
		fmt.Fprintf(&b, " voice=%s", e.Voice)
	}
	if e.Driver != "" {
		fmt.Fprintf(&b, " driver=%s", e.Driver)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// ConfigurationError reports a registry, code-table or threshold entry
// missing for a requested computation. Raised at startup or period load,
// never recovered mid-computation.
type ConfigurationError struct {
	Section string
	Key     string
	Reason  string
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString("configuration")
	if e.Section != "" {
		fmt.Fprintf(&b, " [%s]", e.Section)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, " key=%s", e.Key)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}
