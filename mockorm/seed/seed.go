// Package seed imports fixture records from a PostgreSQL snapshot.
package seed

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/schema"
	"github.com/krew-solutions/ascetic-mockorm-go/mockorm/table"
)

// Querier is satisfied by *pgx.Conn, *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Registrar is the part of a registry the loader needs.
type Registrar interface {
	Register(s schema.Schema, records []table.Record) *table.Table
}

// Load runs query and returns one record per row, keyed by column name.
func Load(ctx context.Context, q Querier, sql string, args ...any) ([]table.Record, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrap(err, "seed: query failed")
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, errors.Wrap(err, "seed: unable to collect rows")
	}
	records := make([]table.Record, len(maps))
	for i, m := range maps {
		records[i] = table.Record(m)
	}
	return records, nil
}

// Snapshot copies a whole database table into a collection named after s.
// The table name defaults to s.Name.
func Snapshot(ctx context.Context, q Querier, r Registrar, s schema.Schema, tableName ...string) (*table.Table, error) {
	name := s.Name
	if len(tableName) > 0 {
		name = tableName[0]
	}
	records, err := Load(ctx, q, "SELECT * FROM "+pgx.Identifier{name}.Sanitize()+" ORDER BY 1")
	if err != nil {
		return nil, errors.Wrapf(err, "snapshot %s", name)
	}
	return r.Register(s, records), nil
}
