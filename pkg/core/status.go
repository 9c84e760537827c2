package core

// Status is the terminal state of a scenario
type Status int

const (
	StatusPassed  Status = iota // All assertions held
	StatusFailed                // An assertion or mandatory wait failed
	StatusSkipped               // Scenario does not apply to this app
)

// String returns the string representation of Status
func (s Status) String() string {
	switch s {
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryAssertion                       // Element not found, stale element
	ErrCategoryTimeout                         // A bounded wait expired
	ErrCategoryConnection                      // Automation backend unreachable
	ErrCategoryConfig                          // Invalid configuration, missing required field
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}
