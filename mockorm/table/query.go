package table

import (
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/deferred"
)

// Query is a deferred Result with chainable population. Every Populate
// returns a new Query; the receiver is never modified.
type Query struct {
	result *deferred.DeferredImp[Result]
	table  *Table
}

func resolvedQuery(t *Table, res Result) *Query {
	return &Query{result: deferred.Resolved(res), table: t}
}

func rejectedQuery(t *Table, err error) *Query {
	return &Query{result: deferred.Rejected[Result](err), table: t}
}

// Populate attaches the records associated through attribute once the
// current result is available.
func (q *Query) Populate(attribute string, opts ...PopulateOption) *Query {
	options := PopulateOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	next := deferred.FlatMap(q.result, func(res Result) *deferred.DeferredImp[Result] {
		if q.table == nil {
			return deferred.Rejected[Result](errors.Wrapf(ErrUnknownAssociation, "populate %q without a table", attribute))
		}
		attr, ok := q.table.schema.Attribute(attribute)
		if !ok {
			return deferred.Rejected[Result](errors.Wrapf(
				ErrUnknownAssociation, "%s has no attribute %q", q.table.Name(), attribute))
		}
		return q.table.resolver.Populate(res, attribute, attr, options)
	})
	return &Query{result: next, table: q.table}
}

// Then consumes the query. Rejections reach onError unchanged; a nil
// onError passes them on.
func (q *Query) Then(onSuccess func(Result) (any, error), onError func(error) (any, error)) deferred.Deferred[any] {
	return q.result.Then(onSuccess, onError)
}

func (q *Query) Catch(onError func(error) (any, error)) deferred.Deferred[any] {
	return q.result.Then(nil, onError)
}

// Await returns the settled outcome. In-memory queries settle before the
// method that created them returns, so this never reports pending for a
// query built from Table methods.
func (q *Query) Await() (Result, error) {
	return q.result.Value()
}

// OccurredErr collects the errors returned by handlers attached through Then
// and Catch, and by the handlers chained after them.
func (q *Query) OccurredErr() error {
	return q.result.OccurredErr()
}
