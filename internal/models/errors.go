package models

import "fmt"

// FailureKind classifies why a domain load produced no data.
type FailureKind string

const (
	// IoFailure means the store was unreachable or the sheet is missing.
	IoFailure FailureKind = "IO"
	// ParseFailure means the sheet was read but its contents were unusable.
	ParseFailure FailureKind = "PARSE"
)

// LoadError is a typed, per-domain load failure. The refresh pipeline maps
// any LoadError to an empty result set for that domain only (nothing aborts
// the cycle) but keeps the error on the snapshot so "no data" and "failed to
// load" stay distinguishable for diagnostics.
type LoadError struct {
	Domain string
	Kind   FailureKind
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %s: %v", e.Domain, e.Kind, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// NewLoadError wraps err as a load failure for the given domain.
func NewLoadError(domain string, kind FailureKind, err error) *LoadError {
	return &LoadError{Domain: domain, Kind: kind, Err: err}
}
