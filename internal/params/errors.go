package params

import (
	"errors"
	"fmt"
)

// ErrValidation is matched by every ValidationError via errors.Is
var ErrValidation = errors.New("invalid arguments")

// Rule identifies which check rejected the arguments
type Rule int

const (
	// RuleSyntax covers flag parsing errors (unknown flag, bad number, stray argument)
	RuleSyntax Rule = iota
	// RuleObservation: --obs must be given iff the problem is landmark-based
	RuleObservation
	// RulePose: exactly one of --se2/--se3
	RulePose
	// RuleLandmarks: exactly one of --lm-2d/--lm-3d, none with --graph-slam
	RuleLandmarks
	// RuleOption covers out-of-range knob values
	RuleOption
)

// String returns the rule name used in logs
func (r Rule) String() string {
	switch r {
	case RuleSyntax:
		return "syntax"
	case RuleObservation:
		return "observation"
	case RulePose:
		return "pose"
	case RuleLandmarks:
		return "landmarks"
	case RuleOption:
		return "option"
	default:
		return "unknown"
	}
}

// usageHint is appended to rule violations the user fixes by picking other flags
const usageHint = "Run with --list-problems or --help to see all the options."

// ValidationError describes the first argument rule that failed
type ValidationError struct {
	Rule    Rule
	Message string
	Hint    string // Optional follow-up line for the user
}

func newValidationError(rule Rule, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Rule:    rule,
		Message: fmt.Sprintf(format, args...),
	}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
