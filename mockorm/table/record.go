package table

import (
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/option"
)

const idField = "id"

// Record is one stored document: field name to value.
type Record map[string]any

// Clone makes a shallow copy.
func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Merge returns a shallow copy of r overlaid with patch.
func (r Record) Merge(patch Record) Record {
	c := r.Clone()
	for k, v := range patch {
		c[k] = v
	}
	return c
}

func (r Record) ID() any {
	return r[idField]
}

// Row is a record copied out of a table. Rows returned by Find, FindOne
// and Create stay bound to their table so they can be saved; rows produced
// by Populate are detached copies.
type Row struct {
	Record Record
	table  *Table
}

func (r *Row) Get(field string) any {
	return r.Record[field]
}

func (r *Row) Set(field string, value any) {
	r.Record[field] = value
}

// Related returns a populated singular association, nil when absent.
func (r *Row) Related(field string) *Row {
	related, _ := r.Record[field].(*Row)
	return related
}

// RelatedMany returns a populated collection association.
func (r *Row) RelatedMany(field string) []*Row {
	related, _ := r.Record[field].([]*Row)
	return related
}

func (r *Row) Table() *Table {
	return r.table
}

// Save writes the row's current attributes back through Update on its
// origin table. The query resolves to the update result, which holds the
// state before the save.
func (r *Row) Save() *Query {
	if r.table == nil {
		return rejectedQuery(nil, ErrDetachedRow)
	}
	return r.table.Update(Record{idField: r.Record.ID()}, r.Record.Clone())
}

// SaveWith saves and reports the first changed row (or the error) to cb.
func (r *Row) SaveWith(cb func(*Row, error)) *Query {
	q := r.Save()
	q.Then(func(res Result) (any, error) {
		cb(res.One().UnwrapOr(nil), nil)
		return nil, nil
	}, func(err error) (any, error) {
		cb(nil, err)
		return nil, nil
	})
	return q
}

// detachedWith copies the row with one field replaced.
func (r *Row) detachedWith(field string, value any) *Row {
	rec := r.Record.Clone()
	rec[field] = value
	return &Row{Record: rec}
}

// Result is what a Query resolves to: a single row that may be absent, or a
// list of rows. Population keeps the shape.
type Result struct {
	rows   []*Row
	single bool
}

// One wraps a single row; nil means absent.
func One(row *Row) Result {
	if row == nil {
		return Result{single: true}
	}
	return Result{rows: []*Row{row}, single: true}
}

func Many(rows []*Row) Result {
	if rows == nil {
		rows = []*Row{}
	}
	return Result{rows: rows}
}

func (r Result) IsSingle() bool {
	return r.single
}

// One returns the single row of a single result, or the first row of a list.
func (r Result) One() option.Option[*Row] {
	if len(r.rows) == 0 {
		return option.Nothing[*Row]()
	}
	return option.Some(r.rows[0])
}

// Rows returns the rows; a single result yields zero or one row.
func (r Result) Rows() []*Row {
	return r.rows
}

func (r Result) Len() int {
	return len(r.rows)
}

// Records returns the rows' records.
func (r Result) Records() []Record {
	records := make([]Record, len(r.rows))
	for i, row := range r.rows {
		records[i] = row.Record
	}
	return records
}

func (r Result) withRows(rows []*Row) Result {
	return Result{rows: rows, single: r.single}
}
