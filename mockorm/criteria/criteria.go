package criteria

import (
	"reflect"

	"github.com/pkg/errors"
)

const (
	keyID    = "id"
	keyWhere = "where"
	keyAnd   = "and"
	keyOr    = "or"
)

// Criteria is the normalised shape of a filter: ByID, Wrapped or Plain.
type Criteria interface {
	isCriteria()
}

// ByID is the bare-number shorthand for {id: ID}.
type ByID struct {
	ID any
}

// Wrapped is {where: Where, ...}; sibling keys are dropped.
type Wrapped struct {
	Where any
}

// Plain maps field names (or and/or) to constraints.
type Plain map[string]any

func (ByID) isCriteria()    {}
func (Wrapped) isCriteria() {}
func (Plain) isCriteria()   {}

// Normalize classifies raw criteria once, at the compiler entry point.
func Normalize(raw any) (Criteria, error) {
	if raw == nil {
		return nil, errors.Wrap(ErrInvalidCriteria, "criteria can't be nil")
	}
	if c, ok := raw.(Criteria); ok {
		if _, plain := c.(Plain); !plain {
			return c, nil
		}
	}
	if isNumber(raw) {
		return ByID{ID: raw}, nil
	}
	m, ok := asMap(raw)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidCriteria, "unsupported criteria type %T", raw)
	}
	if where, found := m[keyWhere]; found && where != nil {
		return Wrapped{Where: where}, nil
	}
	return Plain(m), nil
}

// Describe renders normalised criteria back to the map form Normalize
// accepts. Plain criteria are copied.
func Describe(c Criteria) map[string]any {
	switch c := c.(type) {
	case ByID:
		return map[string]any{keyID: c.ID}
	case Wrapped:
		return map[string]any{keyWhere: c.Where}
	case Plain:
		m := make(map[string]any, len(c))
		for k, v := range c {
			m[k] = v
		}
		return m
	}
	return nil
}

// asMap accepts map[string]any and any named map type with string keys.
func asMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	if p, ok := v.(Plain); ok {
		return p, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if rv.IsNil() {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

// asSlice accepts any slice or array except byte strings.
func asSlice(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	s := make([]any, rv.Len())
	for i := range s {
		s[i] = rv.Index(i).Interface()
	}
	return s, true
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
