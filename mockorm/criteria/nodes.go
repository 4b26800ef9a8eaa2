package criteria

import (
	"fmt"
)

// Query is a node of the parsed criteria tree.
type Query interface {
	Accept(visitor QueryVisitor) (any, error)
}

type QueryVisitor interface {
	VisitField(q FieldQuery) (any, error)
	VisitAnd(q AndQuery) (any, error)
	VisitOr(q OrQuery) (any, error)
}

// FieldOperator constrains the value of a single field.
type FieldOperator interface {
	AcceptOperator(visitor OperatorVisitor) (any, error)
}

type OperatorVisitor interface {
	VisitEq(op EqOperator) (any, error)
	VisitIn(op InOperator) (any, error)
	VisitComparison(op ComparisonOperator) (any, error)
	VisitLike(op LikeOperator) (any, error)
	VisitAll(op AllOperator) (any, error)
}

// FieldQuery applies Op to record[Field].
type FieldQuery struct {
	Field string
	Op    FieldOperator
}

func (q FieldQuery) Accept(visitor QueryVisitor) (any, error) {
	return visitor.VisitField(q)
}

func (q FieldQuery) String() string {
	return fmt.Sprintf("FieldQuery(%s, %v)", q.Field, q.Op)
}

// AndQuery matches when every operand matches. Top-level keys of a plain
// criteria object are joined with an AndQuery too.
type AndQuery struct {
	Operands []Query
}

func (q AndQuery) Accept(visitor QueryVisitor) (any, error) {
	return visitor.VisitAnd(q)
}

func (q AndQuery) String() string {
	return fmt.Sprintf("AndQuery(%v)", q.Operands)
}

// OrQuery matches when at least one operand matches.
type OrQuery struct {
	Operands []Query
}

func (q OrQuery) Accept(visitor QueryVisitor) (any, error) {
	return visitor.VisitOr(q)
}

func (q OrQuery) String() string {
	return fmt.Sprintf("OrQuery(%v)", q.Operands)
}

// EqOperator is strict equality: {field: value}
type EqOperator struct {
	Value any
}

func (o EqOperator) AcceptOperator(visitor OperatorVisitor) (any, error) {
	return visitor.VisitEq(o)
}

func (o EqOperator) String() string {
	return fmt.Sprintf("EqOperator(%v)", o.Value)
}

// InOperator is a list of alternatives: {field: [v1, v2]}
type InOperator struct {
	Values []any
}

func (o InOperator) AcceptOperator(visitor OperatorVisitor) (any, error) {
	return visitor.VisitIn(o)
}

func (o InOperator) String() string {
	return fmt.Sprintf("InOperator(%v)", o.Values)
}

const (
	OpGreaterThan = ">"
	OpLessThan    = "<"
	OpLike        = "like"
)

// ComparisonOperator is {field: {">": value}} or {field: {"<": value}}.
type ComparisonOperator struct {
	Op    string
	Value any
}

func (o ComparisonOperator) AcceptOperator(visitor OperatorVisitor) (any, error) {
	return visitor.VisitComparison(o)
}

func (o ComparisonOperator) String() string {
	return fmt.Sprintf("ComparisonOperator(%s, %v)", o.Op, o.Value)
}

// LikeOperator is {field: {like: "%pattern%"}}.
type LikeOperator struct {
	Pattern string
}

func (o LikeOperator) AcceptOperator(visitor OperatorVisitor) (any, error) {
	return visitor.VisitLike(o)
}

func (o LikeOperator) String() string {
	return fmt.Sprintf("LikeOperator(%q)", o.Pattern)
}

// AllOperator is an operator object with several symbols; all must hold.
type AllOperator struct {
	Operands []FieldOperator
}

func (o AllOperator) AcceptOperator(visitor OperatorVisitor) (any, error) {
	return visitor.VisitAll(o)
}

func (o AllOperator) String() string {
	return fmt.Sprintf("AllOperator(%v)", o.Operands)
}
