package changelog

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type ChangeType string

const (
	Create  ChangeType = "create"
	Update  ChangeType = "update"
	Destroy ChangeType = "destroy"
)

// Change is one mutation recorded by a table.
type Change struct {
	ID         ulid.ULID
	Type       ChangeType
	CreatedAt  time.Time
	Collection string

	// Item is the created record.
	Item map[string]any

	// UpdatedIDs, Update and Query describe an update. Query is the
	// caller-supplied tag, empty when none was given.
	UpdatedIDs []any
	Update     map[string]any
	Query      string

	// DestroyedIDs lists the ids removed by a destroy.
	DestroyedIDs []any
}
