package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/huandu/go-sqlbuilder"
)

// Struct maps a row type to PostgreSQL statements through its db tags.
type Struct struct {
	*sqlbuilder.Struct
}

func NewStruct(v any) *Struct {
	return &Struct{sqlbuilder.NewStruct(v).For(sqlbuilder.PostgreSQL)}
}

// InsertIgnoringID inserts row unless a row with the same id exists. Replicas resend
// inserts after a lost acknowledgement, so the second write must change nothing.
func (s *Struct) InsertIgnoringID(table string, row any) *sqlbuilder.InsertBuilder {
	ib := s.InsertInto(table, row)
	ib.SQL("ON CONFLICT (id) DO NOTHING")
	return ib
}

// Upsert inserts row or, on a conflict with target, copies the refresh columns from the
// proposed row and sets updated_at.
func (s *Struct) Upsert(table string, row any, target []string, refresh []string, updatedAt time.Time) *sqlbuilder.InsertBuilder {
	ib := s.InsertInto(table, row)

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	assignments := make([]string, 0, len(refresh)+1)
	for _, column := range refresh {
		assignments = append(assignments, ub.Assign(column, sqlbuilder.Raw("EXCLUDED."+column)))
	}
	assignments = append(assignments, ub.Assign("updated_at", updatedAt))
	ub.Set(assignments...)

	ib.SQL(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE %s", strings.Join(target, ", "), ib.Var(ub)))
	return ib
}

// Patch builds a partial UPDATE of one row by id. updated_at is always written; other
// columns only when set.
type Patch struct {
	ub          *sqlbuilder.UpdateBuilder
	assignments []string
}

func NewPatch(table string, updatedAt time.Time) *Patch {
	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)
	return &Patch{
		ub:          ub,
		assignments: []string{ub.Assign("updated_at", updatedAt)},
	}
}

func (p *Patch) Set(column string, value any) *Patch {
	p.assignments = append(p.assignments, p.ub.Assign(column, value))
	return p
}

// Build returns the statement restricted to id.
func (p *Patch) Build(id string) (string, []any) {
	p.ub.Set(p.assignments...)
	p.ub.Where(p.ub.Equal("id", id))
	return p.ub.Build()
}

// SetIf adds column to p when value is non-nil.
func SetIf[T any](p *Patch, column string, value *T) {
	if value != nil {
		p.Set(column, *value)
	}
}
