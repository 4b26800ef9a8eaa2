package table

import "errors"

var (
	ErrNotAnAssociation   = errors.New("table: attribute is not an association")
	ErrUnsupportedOption  = errors.New("table: unsupported populate option")
	ErrUnknownAssociation = errors.New("table: unknown association")
	ErrDetachedRow        = errors.New("table: row is not bound to a table")
)
