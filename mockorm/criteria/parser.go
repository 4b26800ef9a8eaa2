package criteria

import (
	"sort"
	"time"

	"github.com/pkg/errors"
)

// Parser turns normalised criteria into a Query tree. Keys are visited in
// sorted order so trees and error messages are deterministic.
type Parser struct{}

// Parse accepts anything Normalize accepts.
func (p Parser) Parse(raw any) (Query, error) {
	c, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	switch c := c.(type) {
	case ByID:
		return FieldQuery{Field: keyID, Op: EqOperator{Value: c.ID}}, nil
	case Wrapped:
		return p.Parse(c.Where)
	case Plain:
		return p.parsePlain(c)
	}
	return nil, errors.Wrapf(ErrInvalidCriteria, "unsupported criteria %T", c)
}

func (p Parser) parsePlain(c Plain) (Query, error) {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	operands := make([]Query, 0, len(keys))
	for _, key := range keys {
		q, err := p.parseKey(key, c[key])
		if err != nil {
			return nil, err
		}
		operands = append(operands, q)
	}
	return AndQuery{Operands: operands}, nil
}

func (p Parser) parseKey(key string, expected any) (Query, error) {
	if isDate(expected) {
		return nil, errors.Wrapf(ErrUnsupportedCriteria, "date value for %q", key)
	}
	switch key {
	case keyAnd:
		operands, err := p.parseList(key, expected)
		if err != nil {
			return nil, err
		}
		return AndQuery{Operands: operands}, nil
	case keyOr:
		operands, err := p.parseList(key, expected)
		if err != nil {
			return nil, err
		}
		return OrQuery{Operands: operands}, nil
	}
	op, err := p.parseFieldValue(key, expected)
	if err != nil {
		return nil, err
	}
	return FieldQuery{Field: key, Op: op}, nil
}

func (p Parser) parseList(key string, value any) ([]Query, error) {
	list, ok := asSlice(value)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidCriteria, "%q value must be an array, got %T", key, value)
	}
	operands := make([]Query, len(list))
	for i, item := range list {
		q, err := p.Parse(item)
		if err != nil {
			return nil, err
		}
		operands[i] = q
	}
	return operands, nil
}

func (p Parser) parseFieldValue(field string, expected any) (FieldOperator, error) {
	if list, ok := asSlice(expected); ok {
		for _, v := range list {
			if isDate(v) {
				return nil, errors.Wrapf(ErrUnsupportedCriteria, "date value for %q", field)
			}
		}
		values := make([]any, len(list))
		copy(values, list)
		return InOperator{Values: values}, nil
	}
	if ops, ok := asMap(expected); ok {
		return p.parseOperators(field, ops)
	}
	return EqOperator{Value: expected}, nil
}

func (p Parser) parseOperators(field string, ops map[string]any) (FieldOperator, error) {
	symbols := make([]string, 0, len(ops))
	for s := range ops {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	operands := make([]FieldOperator, 0, len(symbols))
	for _, symbol := range symbols {
		op, err := p.parseSingleOperator(field, symbol, ops[symbol])
		if err != nil {
			return nil, err
		}
		operands = append(operands, op)
	}
	if len(operands) == 1 {
		return operands[0], nil
	}
	return AllOperator{Operands: operands}, nil
}

func (p Parser) parseSingleOperator(field, symbol string, value any) (FieldOperator, error) {
	if isDate(value) {
		return nil, errors.Wrapf(ErrUnsupportedCriteria, "date value for %q %s", field, symbol)
	}
	switch symbol {
	case OpGreaterThan, OpLessThan:
		return ComparisonOperator{Op: symbol, Value: value}, nil
	case OpLike:
		pattern, ok := value.(string)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidCriteria, "like pattern for %q must be a string, got %T", field, value)
		}
		return LikeOperator{Pattern: pattern}, nil
	default:
		return nil, &UnknownOperatorError{Field: field, Symbol: symbol}
	}
}

func isDate(v any) bool {
	switch v.(type) {
	case time.Time, *time.Time:
		return true
	}
	return false
}

// Parse is a shortcut for Parser{}.Parse.
func Parse(raw any) (Query, error) {
	return Parser{}.Parse(raw)
}
