package table

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/changelog"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/schema"
)

type stubRegistry map[string]*Table

func (r stubRegistry) Resolve(name string) (*Table, error) {
	t, ok := r[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownAssociation, "%q", name)
	}
	return t, nil
}

func (r stubRegistry) add(s schema.Schema, seed []Record, cfg Config) *Table {
	cfg.Registry = r
	t := New(s, seed, cfg)
	r[strings.ToLower(s.Name)] = t
	return t
}

var (
	userSchema = schema.New("user", map[string]schema.Attribute{
		"name":  schema.Scalar{},
		"pets":  schema.HasManyRef{Collection: "pet", Via: "owners"},
		"posts": schema.HasManyRef{Collection: "post", Via: "author"},
	})
	petSchema = schema.New("pet", map[string]schema.Attribute{
		"name":   schema.Scalar{},
		"owners": schema.HasManyRef{Collection: "user", Via: "pets"},
	})
	postSchema = schema.New("post", map[string]schema.Attribute{
		"title":  schema.Scalar{},
		"author": schema.ForeignKeyRef{Model: "user"},
	})
	junctionSchema = schema.New("pet_owners_user_pets", nil)
)

type fixture struct {
	registry stubRegistry
	users    *Table
	pets     *Table
	posts    *Table
	junction *Table
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	strict     bool
	noJunction bool
	clock      changelog.Clock
}

func strict() fixtureOption {
	return func(c *fixtureConfig) { c.strict = true }
}

func withoutJunction() fixtureOption {
	return func(c *fixtureConfig) { c.noJunction = true }
}

func frozenClock(at time.Time) fixtureOption {
	return func(c *fixtureConfig) {
		c.clock = func() time.Time { return at }
	}
}

func newFixture(opts ...fixtureOption) *fixture {
	fc := fixtureConfig{}
	for _, opt := range opts {
		opt(&fc)
	}
	reg := stubRegistry{}
	cfg := Config{
		Sequencer: changelog.NewSequencer(fc.clock),
		Resolver:  NewResolver(reg, ResolverConfig{StrictCollections: fc.strict}),
	}
	f := &fixture{registry: reg}
	f.users = reg.add(userSchema, []Record{
		{"id": 1, "name": "Alice", "age": 31},
		{"id": 2, "name": "Bob", "age": 25},
		{"id": 3, "name": "Carol", "age": 42},
	}, cfg)
	f.pets = reg.add(petSchema, []Record{
		{"id": 1, "name": "Rex", "species": "dog"},
		{"id": 2, "name": "Tom", "species": "cat"},
		{"id": 3, "name": "Nemo", "species": "fish"},
	}, cfg)
	f.posts = reg.add(postSchema, []Record{
		{"id": 1, "title": "Hello", "author": 1},
		{"id": 2, "title": "Again", "author": 1},
		{"id": 3, "title": "Mine", "author": 2},
		{"id": 4, "title": "Orphan", "author": 99},
	}, cfg)
	if !fc.noJunction {
		// pet_owners holds the user id, user_pets the pet id.
		f.junction = reg.add(junctionSchema, []Record{
			{"id": 1, "pet_owners": 1, "user_pets": 1},
			{"id": 2, "pet_owners": 1, "user_pets": 2},
			{"id": 3, "pet_owners": 2, "user_pets": 2},
			{"id": 4, "pet_owners": 2, "user_pets": 7},
		}, cfg)
	}
	return f
}

func rowIDs(rows []*Row) []any {
	ids := make([]any, len(rows))
	for i, r := range rows {
		ids[i] = r.Record.ID()
	}
	return ids
}
