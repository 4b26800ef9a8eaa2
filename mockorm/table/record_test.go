package table

import (
	"testing"

	"github.com/icrowley/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	t.Run("clone is shallow and independent", func(t *testing.T) {
		r := Record{"id": 1, "name": fake.FirstName()}
		c := r.Clone()
		c["name"] = "other"
		assert.NotEqual(t, r["name"], c["name"])
	})

	t.Run("merge overlays the patch", func(t *testing.T) {
		city := fake.City()
		r := Record{"id": 1, "name": "a", "city": "b"}
		merged := r.Merge(Record{"city": city})
		assert.Equal(t, Record{"id": 1, "name": "a", "city": city}, merged)
		assert.Equal(t, "b", r["city"])
	})
}

func TestRowSave(t *testing.T) {
	t.Run("writes the current snapshot", func(t *testing.T) {
		f := newFixture()
		res, err := f.users.FindOne(2).Await()
		require.NoError(t, err)
		row := res.One().Unwrap()
		name := fake.FirstName()
		row.Set("name", name)

		saved, err := row.Save().Await()
		require.NoError(t, err)
		assert.Equal(t, "Bob", saved.Rows()[0].Get("name"))

		after, err := f.users.FindOne(2).Await()
		require.NoError(t, err)
		assert.Equal(t, name, after.One().Unwrap().Get("name"))
		assert.Equal(t, 3, f.users.Len())
	})

	t.Run("save with callback", func(t *testing.T) {
		f := newFixture()
		res, err := f.pets.Create(Record{"name": fake.Word()}).Await()
		require.NoError(t, err)
		row := res.One().Unwrap()
		row.Set("species", "owl")

		var (
			got    *Row
			gotErr error
		)
		row.SaveWith(func(r *Row, err error) {
			got, gotErr = r, err
		})
		require.NoError(t, gotErr)
		require.NotNil(t, got)
		assert.Equal(t, 4, got.Get("id"))
		assert.Nil(t, got.Get("species"))
		assert.Equal(t, []any{4}, findIDs(t, f.pets, map[string]any{"species": "owl"}))
	})

	t.Run("detached row reports the error", func(t *testing.T) {
		row := &Row{Record: Record{"id": 1}}
		var gotErr error
		row.SaveWith(func(_ *Row, err error) {
			gotErr = err
		})
		assert.ErrorIs(t, gotErr, ErrDetachedRow)
	})
}

func TestResult(t *testing.T) {
	row := &Row{Record: Record{"id": 1}}

	t.Run("one", func(t *testing.T) {
		res := One(row)
		assert.True(t, res.IsSingle())
		assert.Same(t, row, res.One().Unwrap())
		assert.Equal(t, []Record{{"id": 1}}, res.Records())
	})

	t.Run("many of none", func(t *testing.T) {
		res := Many(nil)
		assert.False(t, res.IsSingle())
		assert.NotNil(t, res.Rows())
		assert.True(t, res.One().IsNothing())
	})
}
