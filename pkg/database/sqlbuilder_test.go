package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

func TestInsertIgnoringID(t *testing.T) {
	query, args := NewStruct(new(testRow)).InsertIgnoringID("things", testRow{ID: "t1", Name: "Bananas"}).Build()

	assert.Equal(t, "INSERT INTO things (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING", query)
	assert.Equal(t, []any{"t1", "Bananas"}, args)
}

func TestUpsert(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	query, args := NewStruct(new(testRow)).Upsert("things", testRow{ID: "t1", Name: "Bananas"}, []string{"LOWER(name)"}, []string{"name"}, now).Build()

	assert.Contains(t, query, "INSERT INTO things (id, name) VALUES ($1, $2) ON CONFLICT (LOWER(name)) DO UPDATE")
	assert.Contains(t, query, "name = EXCLUDED.name")
	assert.Contains(t, query, "updated_at = $3")
	assert.Equal(t, []any{"t1", "Bananas", now}, args)
}

func TestPatch(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	name := "Oat milk"
	var notes *string

	p := NewPatch("things", now)
	SetIf(p, "name", &name)
	SetIf(p, "notes", notes)

	query, args := p.Build("t1")
	assert.Equal(t, "UPDATE things SET updated_at = $1, name = $2 WHERE id = $3", query)
	assert.Equal(t, []any{now, "Oat milk", "t1"}, args)
}
