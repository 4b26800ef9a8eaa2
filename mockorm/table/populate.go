package table

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/criteria"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/deferred"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/schema"
)

type PopulateOptions struct {
	// Where filters the populated records of a collection association.
	Where any
}

type PopulateOption func(*PopulateOptions)

func Where(where any) PopulateOption {
	return func(o *PopulateOptions) {
		o.Where = where
	}
}

type ResolverConfig struct {
	// StrictCollections makes collection population failures reject the
	// query. By default they are logged and the records come back
	// unpopulated.
	StrictCollections bool
	Logger            *zerolog.Logger
}

// Resolver attaches associated records to query results.
type Resolver struct {
	registry         CollectionRegistry
	degradeOnFailure bool
	logger           zerolog.Logger
}

func NewResolver(registry CollectionRegistry, cfg ResolverConfig) *Resolver {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	return &Resolver{
		registry:         registry,
		degradeOnFailure: !cfg.StrictCollections,
		logger:           logger.With().Str("component", "resolver").Logger(),
	}
}

func (r *Resolver) DegradesOnFailure() bool {
	return r.degradeOnFailure
}

// Populate resolves attribute for every row of src. The result has the same
// shape as src.
func (r *Resolver) Populate(src Result, attribute string, attr schema.Attribute, opts PopulateOptions) *deferred.DeferredImp[Result] {
	switch a := attr.(type) {
	case schema.HasManyRef:
		out := r.populateCollection(src, attribute, a, opts.Where)
		if !r.degradeOnFailure {
			return out
		}
		return deferred.Catch(out, func(err error) (Result, error) {
			r.logger.Warn().
				Err(err).
				Str("attribute", attribute).
				Str("collection", a.Collection).
				Str("via", a.Via).
				Interface("where", describeWhere(opts.Where)).
				Msg("collection populate failed, records left unpopulated")
			return src, nil
		})
	case schema.ForeignKeyRef:
		if opts.Where != nil {
			return deferred.Rejected[Result](errors.Wrapf(
				ErrUnsupportedOption, "where is not supported when populating %q (model %s)", attribute, a.Model))
		}
		return r.populateModel(src, attribute, a)
	}
	return deferred.Rejected[Result](errors.Wrapf(ErrNotAnAssociation, "attribute %q", attribute))
}

// describeWhere renders a where option for logs; unparseable values are
// logged as given.
func describeWhere(where any) any {
	if where == nil {
		return nil
	}
	c, err := criteria.Normalize(where)
	if err != nil {
		return where
	}
	return criteria.Describe(c)
}

func (r *Resolver) resolve(name string) (*Table, error) {
	if r.registry == nil {
		return nil, errors.Wrapf(ErrUnknownAssociation, "no registry to resolve %q", name)
	}
	t, err := r.registry.Resolve(name)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *Resolver) populateModel(src Result, attribute string, a schema.ForeignKeyRef) *deferred.DeferredImp[Result] {
	target, err := r.resolve(a.Model)
	if err != nil {
		return deferred.Rejected[Result](err)
	}
	rows := deferred.MapAll(src.Rows(), func(row *Row) *deferred.DeferredImp[*Row] {
		return deferred.Map(target.FindOne(Record{idField: row.Get(attribute)}).result, func(res Result) (*Row, error) {
			if found, ok := res.One().Get(); ok {
				return row.detachedWith(attribute, found), nil
			}
			return row.detachedWith(attribute, nil), nil
		})
	})
	return deferred.Map(rows, func(populated []*Row) (Result, error) {
		return src.withRows(populated), nil
	})
}

func (r *Resolver) populateCollection(src Result, attribute string, a schema.HasManyRef, where any) *deferred.DeferredImp[Result] {
	target, err := r.resolve(a.Collection)
	if err != nil {
		return deferred.Rejected[Result](err)
	}
	joinNode, ok := target.Schema().Attribute(a.Via)
	if !ok {
		return deferred.Rejected[Result](errors.Wrapf(
			ErrUnknownAssociation, "%s has no attribute %q", target.Name(), a.Via))
	}

	var perRow func(row *Row) *deferred.DeferredImp[[]*Row]
	switch j := joinNode.(type) {
	case schema.ForeignKeyRef:
		perRow, err = r.oneToMany(target, a, where)
	case schema.HasManyRef:
		perRow, err = r.manyToMany(target, a, j, where)
	default:
		err = errors.Wrapf(ErrUnknownAssociation, "%s.%s is not an association", target.Name(), a.Via)
	}
	if err != nil {
		return deferred.Rejected[Result](err)
	}

	rows := deferred.MapAll(src.Rows(), func(row *Row) *deferred.DeferredImp[*Row] {
		return deferred.Map(perRow(row), func(related []*Row) (*Row, error) {
			return row.detachedWith(attribute, related), nil
		})
	})
	return deferred.Map(rows, func(populated []*Row) (Result, error) {
		return src.withRows(populated), nil
	})
}

// oneToMany finds target records whose via field holds the row id. Where
// keys are merged over the via constraint.
func (r *Resolver) oneToMany(target *Table, a schema.HasManyRef, where any) (func(*Row) *deferred.DeferredImp[[]*Row], error) {
	var extra map[string]any
	if where != nil {
		c, err := criteria.Normalize(where)
		if err != nil {
			return nil, err
		}
		plain, ok := c.(criteria.Plain)
		if !ok {
			return nil, errors.Wrapf(criteria.ErrInvalidCriteria, "where for %q must be a plain criteria object", a.Via)
		}
		extra = plain
	}
	return func(row *Row) *deferred.DeferredImp[[]*Row] {
		c := Record{a.Via: row.Record.ID()}
		for k, v := range extra {
			c[k] = v
		}
		return deferred.Map(target.Find(c).result, func(res Result) ([]*Row, error) {
			return res.Rows(), nil
		})
	}, nil
}

// manyToMany goes through the junction collection named after both sides
// of the relation, then looks every linked target record up by id.
func (r *Resolver) manyToMany(target *Table, a, joinNode schema.HasManyRef, where any) (func(*Row) *deferred.DeferredImp[[]*Row], error) {
	usToJoin := schema.JunctionToken(a.Collection, a.Via)
	joinToThem := schema.JunctionToken(joinNode.Collection, joinNode.Via)
	junction, err := r.resolve(schema.JunctionName(usToJoin, joinToThem))
	if err != nil {
		return nil, err
	}
	filter := criteria.Predicate(func(map[string]any) bool { return true })
	if where != nil {
		filter, err = criteria.Compile(where)
		if err != nil {
			return nil, err
		}
	}
	return func(row *Row) *deferred.DeferredImp[[]*Row] {
		links := deferred.Map(junction.Find(Record{usToJoin: row.Record.ID()}).result, func(res Result) ([]*Row, error) {
			return res.Rows(), nil
		})
		linked := deferred.FlatMap(links, func(links []*Row) *deferred.DeferredImp[[]Result] {
			return deferred.MapAll(links, func(link *Row) *deferred.DeferredImp[Result] {
				return target.FindOne(Record{idField: link.Get(joinToThem)}).result
			})
		})
		return deferred.Map(linked, func(found []Result) ([]*Row, error) {
			related := make([]*Row, 0, len(found))
			for _, res := range found {
				if row, ok := res.One().Get(); ok && filter(row.Record) {
					related = append(related, row)
				}
			}
			return related, nil
		})
	}, nil
}
