package table

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/changelog"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/criteria"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/deferred"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/schema"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/signals"
)

// CollectionRegistry resolves collection names to tables.
type CollectionRegistry interface {
	Resolve(name string) (*Table, error)
}

type Config struct {
	Registry  CollectionRegistry
	Sequencer *changelog.Sequencer
	// Resolver defaults to NewResolver(Registry, ResolverConfig{Logger: Logger}).
	Resolver *Resolver
	Logger   *zerolog.Logger
}

// Table holds the records of one collection in insertion order. All reads
// copy records out; only Create, Update and Destroy touch the backing slice.
//
// Ids are assigned as len(records)+1. After a Destroy this can hand out an
// id that a surviving record already has; callers relying on unique ids
// must not mix destroy and create.
type Table struct {
	schema   schema.Schema
	records  []Record
	log      *changelog.Log
	resolver *Resolver
	logger   zerolog.Logger
}

// New seeds a table with records. The seed slice is copied.
func New(s schema.Schema, seed []Record, cfg Config) *Table {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewResolver(cfg.Registry, ResolverConfig{Logger: &logger})
	}
	records := make([]Record, len(seed))
	for i, r := range seed {
		records[i] = r.Clone()
	}
	return &Table{
		schema:   s,
		records:  records,
		log:      changelog.NewLog(s.Name, cfg.Sequencer),
		resolver: resolver,
		logger:   logger.With().Str("component", "table").Str("collection", s.Name).Logger(),
	}
}

func (t *Table) Name() string {
	return t.schema.Name
}

func (t *Table) Schema() schema.Schema {
	return t.schema
}

// ReadOnly exists for call-site compatibility with ORMs that route reads to
// replicas; there is only one copy here.
func (t *Table) ReadOnly() *Table {
	return t
}

func (t *Table) Len() int {
	return len(t.records)
}

// Records returns copies of the stored records.
func (t *Table) Records() []Record {
	records := make([]Record, len(t.records))
	for i, r := range t.records {
		records[i] = r.Clone()
	}
	return records
}

func (t *Table) Changes() []changelog.Change {
	return t.log.Entries()
}

func (t *Table) OnChanged() signals.Signal[changelog.Change] {
	return t.log.OnAppended()
}

func (t *Table) bind(r Record) *Row {
	return &Row{Record: r.Clone(), table: t}
}

func (t *Table) match(raw any) ([]int, error) {
	pred, err := criteria.Compile(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", t.schema.Name)
	}
	var matched []int
	for i, r := range t.records {
		if pred(r) {
			matched = append(matched, i)
		}
	}
	return matched, nil
}

// Find resolves to every matching record in table order.
func (t *Table) Find(raw any) *Query {
	matched, err := t.match(raw)
	if err != nil {
		return rejectedQuery(t, err)
	}
	rows := make([]*Row, len(matched))
	for i, idx := range matched {
		rows[i] = t.bind(t.records[idx])
	}
	return resolvedQuery(t, Many(rows))
}

// FindOne resolves to the first matching record, or to an absent row.
func (t *Table) FindOne(raw any) *Query {
	matched, err := t.match(raw)
	if err != nil {
		return rejectedQuery(t, err)
	}
	if len(matched) == 0 {
		return resolvedQuery(t, One(nil))
	}
	return resolvedQuery(t, One(t.bind(t.records[matched[0]])))
}

// FindOrCreate looks the criteria up and, when nothing matches, creates a
// record from the criteria map itself, verbatim. It always answers with a
// fresh FindOne, so a criteria that does not match its own attributes
// (operators, a where wrapper) resolves to absent even after creating.
func (t *Table) FindOrCreate(raw any) *Query {
	found := t.FindOne(raw)
	next := deferred.FlatMap(found.result, func(res Result) *deferred.DeferredImp[Result] {
		if res.One().IsNothing() {
			attrs, ok := criteriaAttributes(raw)
			if !ok {
				return deferred.Rejected[Result](errors.Wrapf(
					criteria.ErrInvalidCriteria, "%s: cannot create from criteria %T", t.schema.Name, raw))
			}
			if _, err := t.Create(attrs).Await(); err != nil {
				return deferred.Rejected[Result](err)
			}
		}
		return t.FindOne(raw).result
	})
	return &Query{result: next, table: t}
}

func criteriaAttributes(raw any) (Record, bool) {
	switch c := raw.(type) {
	case Record:
		return c, true
	case map[string]any:
		return Record(c), true
	case criteria.Plain:
		return Record(c), true
	}
	return nil, false
}

// Create appends attrs with the next id, overriding any id given.
func (t *Table) Create(attrs Record) *Query {
	rec := attrs.Clone()
	rec[idField] = len(t.records) + 1
	t.records = append(t.records, rec)
	t.log.Append(changelog.Change{
		Type: changelog.Create,
		Item: rec.Clone(),
	})
	t.logger.Debug().Interface("id", rec.ID()).Msg("record created")
	return resolvedQuery(t, One(t.bind(rec)))
}

// Update replaces every matching record with a shallow merge of itself and
// patch. It resolves to the records as they were before the patch. tag is
// stored on the change log entry.
func (t *Table) Update(raw any, patch Record, tag ...string) *Query {
	matched, err := t.match(raw)
	if err != nil {
		return rejectedQuery(t, err)
	}
	before := make([]*Row, len(matched))
	ids := make([]any, len(matched))
	for i, idx := range matched {
		original := t.records[idx]
		before[i] = t.bind(original)
		ids[i] = original.ID()
		t.records[idx] = original.Merge(patch)
	}
	change := changelog.Change{
		Type:       changelog.Update,
		UpdatedIDs: ids,
		Update:     patch.Clone(),
	}
	if len(tag) > 0 {
		change.Query = tag[0]
	}
	t.log.Append(change)
	t.logger.Debug().Int("matched", len(matched)).Msg("records updated")
	return resolvedQuery(t, Many(before))
}

// Destroy removes every matching record.
func (t *Table) Destroy(raw any) *deferred.DeferredImp[struct{}] {
	matched, err := t.match(raw)
	if err != nil {
		return deferred.Rejected[struct{}](err)
	}
	ids := make([]any, len(matched))
	remove := make(map[int]struct{}, len(matched))
	for i, idx := range matched {
		ids[i] = t.records[idx].ID()
		remove[idx] = struct{}{}
	}
	kept := make([]Record, 0, len(t.records)-len(matched))
	for i, r := range t.records {
		if _, ok := remove[i]; !ok {
			kept = append(kept, r)
		}
	}
	t.records = kept
	t.log.Append(changelog.Change{
		Type:         changelog.Destroy,
		DestroyedIDs: ids,
	})
	t.logger.Debug().Int("matched", len(matched)).Msg("records destroyed")
	return deferred.Resolved(struct{}{})
}
