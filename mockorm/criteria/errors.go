package criteria

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCriteria     = errors.New("criteria: invalid criteria")
	ErrUnsupportedCriteria = errors.New("criteria: unsupported criteria")
	ErrUnknownOperator     = errors.New("criteria: unknown operator")
)

// UnknownOperatorError names the offending symbol. It matches
// ErrUnknownOperator with errors.Is.
type UnknownOperatorError struct {
	Field  string
	Symbol string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("criteria: unknown operator '%s' on field %q", e.Symbol, e.Field)
}

func (e *UnknownOperatorError) Is(target error) bool {
	return target == ErrUnknownOperator
}
