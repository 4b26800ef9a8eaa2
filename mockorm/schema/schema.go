package schema

import (
	"sort"
	"strings"
)

// Attribute describes one attribute of a collection: a plain value, a
// foreign key, or a has-many reference.
type Attribute interface {
	isAttribute()
}

// Scalar is a plain, non-relational attribute.
type Scalar struct{}

// ForeignKeyRef holds the id of a record in Model.
type ForeignKeyRef struct {
	Model string
}

// HasManyRef is the set of Collection records pointing back through Via.
// When Via is itself a HasManyRef the relation is many-to-many and is
// resolved through a junction collection.
type HasManyRef struct {
	Collection string
	Via        string
}

func (Scalar) isAttribute()        {}
func (ForeignKeyRef) isAttribute() {}
func (HasManyRef) isAttribute()    {}

// Schema is the attribute map of one collection.
type Schema struct {
	Name       string
	Attributes map[string]Attribute
}

func New(name string, attributes map[string]Attribute) Schema {
	if attributes == nil {
		attributes = map[string]Attribute{}
	}
	return Schema{Name: name, Attributes: attributes}
}

// Attribute looks up an attribute by name.
func (s Schema) Attribute(name string) (Attribute, bool) {
	a, ok := s.Attributes[name]
	return a, ok
}

// JunctionToken is the column name a junction collection uses for one side
// of a many-to-many relation: lower(collection + "_" + via).
func JunctionToken(collection, via string) string {
	return strings.ToLower(collection + "_" + via)
}

// JunctionName names the junction collection linking both sides. The two
// tokens are sorted, then joined with "_", the way ORMs name generated join
// tables.
func JunctionName(usToJoin, joinToThem string) string {
	tokens := []string{usToJoin, joinToThem}
	sort.Strings(tokens)
	return strings.Join(tokens, "_")
}
