package generation

import "fmt"

// FailureKind names why an insight could not be generated.
type FailureKind string

const (
	FailureNetwork      FailureKind = "network"
	FailureStatus       FailureKind = "status"
	FailureDecode       FailureKind = "decode"
	FailureMissingField FailureKind = "missing_field"
)

// Failure is the typed error behind a fallback Insight.
type Failure struct {
	Kind FailureKind
	// StatusCode is set for FailureStatus.
	StatusCode int
	Err        error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
