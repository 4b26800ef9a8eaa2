package registry

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/changelog"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/schema"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/signals"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/table"
)

var ErrCollectionNotFound = errors.Wrap(table.ErrUnknownAssociation, "registry: collection not found")

type Config struct {
	// Clock stamps change log entries. Defaults to time.Now.
	Clock  changelog.Clock
	Logger *zerolog.Logger
	// StrictPopulate makes failed collection population reject queries
	// instead of leaving the records unpopulated.
	StrictPopulate bool
}

// Registry owns the tables of one test scope. Collection names are
// case-insensitive.
type Registry struct {
	tables    map[string]*table.Table
	forwards  map[string]signals.Disposable
	order     []string
	sequencer *changelog.Sequencer
	resolver  *table.Resolver
	onChange  *signals.SignalImp[changelog.Change]
	base      zerolog.Logger
	logger    zerolog.Logger
}

func New(cfg Config) *Registry {
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	r := &Registry{
		tables:    make(map[string]*table.Table),
		forwards:  make(map[string]signals.Disposable),
		sequencer: changelog.NewSequencer(cfg.Clock),
		onChange:  signals.NewSignal[changelog.Change](),
		base:      logger,
		logger:    logger.With().Str("component", "registry").Logger(),
	}
	r.resolver = table.NewResolver(r, table.ResolverConfig{
		StrictCollections: cfg.StrictPopulate,
		Logger:            &logger,
	})
	return r
}

// Register seeds a table for s and makes it resolvable under s.Name. A
// second registration under the same name replaces the first, whose changes
// then no longer reach OnChange.
func (r *Registry) Register(s schema.Schema, records []table.Record) *table.Table {
	key := strings.ToLower(s.Name)
	t := table.New(s, records, table.Config{
		Registry:  r,
		Sequencer: r.sequencer,
		Resolver:  r.resolver,
		Logger:    &r.base,
	})
	if previous, ok := r.forwards[key]; ok {
		previous.Dispose()
	} else {
		r.order = append(r.order, key)
	}
	r.forwards[key] = t.OnChanged().Attach(r.forward, key)
	r.tables[key] = t
	r.logger.Debug().Str("collection", s.Name).Int("records", len(records)).Msg("collection registered")
	return t
}

func (r *Registry) forward(c changelog.Change) {
	r.onChange.Notify(c)
}

func (r *Registry) Resolve(name string) (*table.Table, error) {
	t, ok := r.tables[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(ErrCollectionNotFound, "%q", name)
	}
	return t, nil
}

// MustResolve is Resolve for test setup code.
func (r *Registry) MustResolve(name string) *table.Table {
	t, err := r.Resolve(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Tables returns the registered tables in registration order.
func (r *Registry) Tables() []*table.Table {
	tables := make([]*table.Table, len(r.order))
	for i, key := range r.order {
		tables[i] = r.tables[key]
	}
	return tables
}

// Names returns the registered collection keys, sorted.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// Changes aggregates the change logs of every table, oldest first.
func (r *Registry) Changes() []changelog.Change {
	logs := make([][]changelog.Change, 0, len(r.order))
	for _, t := range r.Tables() {
		logs = append(logs, t.Changes())
	}
	return changelog.Merge(logs...)
}

// OnChange fires for every change appended to any registered table.
func (r *Registry) OnChange() signals.Signal[changelog.Change] {
	return r.onChange
}
