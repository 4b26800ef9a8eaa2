package criteria

import (
	"cmp"
	"math"
	"reflect"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// Predicate reports whether a record matches. Compiled predicates hold no
// mutable state and can be shared across records and tables.
type Predicate func(record map[string]any) bool

// ValuePredicate tests a single field value.
type ValuePredicate func(value any) bool

// Compile turns criteria into a Predicate.
func Compile(raw any) (Predicate, error) {
	q, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	return CompileQuery(q)
}

// MustCompile panics on invalid criteria; meant for fixtures.
func MustCompile(raw any) Predicate {
	pred, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return pred
}

// CompileQuery compiles an already parsed tree.
func CompileQuery(q Query) (Predicate, error) {
	result, err := q.Accept(compileVisitor{})
	if err != nil {
		return nil, err
	}
	return result.(Predicate), nil
}

// Filter returns records matching pred, in their original order.
func Filter[R ~map[string]any](records []R, pred Predicate) []R {
	matched := make([]R, 0, len(records))
	for _, r := range records {
		if pred(r) {
			matched = append(matched, r)
		}
	}
	return matched
}

type compileVisitor struct{}

func (v compileVisitor) VisitField(q FieldQuery) (any, error) {
	result, err := q.Op.AcceptOperator(v)
	if err != nil {
		return nil, err
	}
	valuePred := result.(ValuePredicate)
	field := q.Field
	return Predicate(func(record map[string]any) bool {
		return valuePred(record[field])
	}), nil
}

func (v compileVisitor) compileOperands(operands []Query) ([]Predicate, error) {
	preds := make([]Predicate, len(operands))
	for i, operand := range operands {
		result, err := operand.Accept(v)
		if err != nil {
			return nil, err
		}
		preds[i] = result.(Predicate)
	}
	return preds, nil
}

func (v compileVisitor) VisitAnd(q AndQuery) (any, error) {
	preds, err := v.compileOperands(q.Operands)
	if err != nil {
		return nil, err
	}
	return Predicate(func(record map[string]any) bool {
		for _, pred := range preds {
			if !pred(record) {
				return false
			}
		}
		return true
	}), nil
}

func (v compileVisitor) VisitOr(q OrQuery) (any, error) {
	preds, err := v.compileOperands(q.Operands)
	if err != nil {
		return nil, err
	}
	return Predicate(func(record map[string]any) bool {
		for _, pred := range preds {
			if pred(record) {
				return true
			}
		}
		return false
	}), nil
}

func (v compileVisitor) VisitEq(op EqOperator) (any, error) {
	expected := op.Value
	return ValuePredicate(func(value any) bool {
		return Equal(value, expected)
	}), nil
}

func (v compileVisitor) VisitIn(op InOperator) (any, error) {
	values := op.Values
	return ValuePredicate(func(value any) bool {
		for _, expected := range values {
			if Equal(value, expected) {
				return true
			}
		}
		return false
	}), nil
}

func (v compileVisitor) VisitComparison(op ComparisonOperator) (any, error) {
	expected := op.Value
	switch op.Op {
	case OpGreaterThan:
		return ValuePredicate(func(value any) bool {
			c, ok := compare(value, expected)
			return ok && c > 0
		}), nil
	case OpLessThan:
		return ValuePredicate(func(value any) bool {
			c, ok := compare(value, expected)
			return ok && c < 0
		}), nil
	}
	return nil, &UnknownOperatorError{Symbol: op.Op}
}

func (v compileVisitor) VisitLike(op LikeOperator) (any, error) {
	re, err := LikePattern(op.Pattern)
	if err != nil {
		return nil, err
	}
	return ValuePredicate(func(value any) bool {
		if value == nil {
			return false
		}
		s, err := cast.ToStringE(value)
		if err != nil {
			return false
		}
		return re.MatchString(s)
	}), nil
}

func (v compileVisitor) VisitAll(op AllOperator) (any, error) {
	preds := make([]ValuePredicate, len(op.Operands))
	for i, operand := range op.Operands {
		result, err := operand.AcceptOperator(v)
		if err != nil {
			return nil, err
		}
		preds[i] = result.(ValuePredicate)
	}
	return ValuePredicate(func(value any) bool {
		for _, pred := range preds {
			if !pred(value) {
				return false
			}
		}
		return true
	}), nil
}

// LikePattern translates a like pattern into an unanchored regexp: every %
// becomes .* and the rest is matched literally.
func LikePattern(pattern string) (*regexp.Regexp, error) {
	parts := strings.Split(pattern, "%")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.Compile(strings.Join(parts, ".*"))
}

// Equal is strict equality with numbers compared by value regardless of
// their Go type.
func Equal(actual, expected any) bool {
	if isNumber(actual) && isNumber(expected) {
		c, ok := compareNumbers(actual, expected)
		return ok && c == 0
	}
	return reflect.DeepEqual(actual, expected)
}

// compare orders two values: strings lexicographically, anything numeric
// by value. ok is false when the pair is not comparable.
func compare(actual, expected any) (int, bool) {
	if actual == nil || expected == nil {
		return 0, false
	}
	if a, ok := actual.(string); ok {
		if e, ok := expected.(string); ok {
			return strings.Compare(a, e), true
		}
	}
	return compareNumbers(actual, expected)
}

func compareNumbers(actual, expected any) (int, bool) {
	if isInteger(actual) && isInteger(expected) {
		a, errA := cast.ToInt64E(actual)
		e, errE := cast.ToInt64E(expected)
		if errA == nil && errE == nil {
			return cmp.Compare(a, e), true
		}
	}
	a, err := cast.ToFloat64E(actual)
	if err != nil {
		return 0, false
	}
	e, err := cast.ToFloat64E(expected)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(a) || math.IsNaN(e) {
		return 0, false
	}
	return cmp.Compare(a, e), true
}

func isInteger(v any) bool {
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return true
	}
	return false
}
