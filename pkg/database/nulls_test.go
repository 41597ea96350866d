package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNullString(t *testing.T) {
	assert.False(t, NullString("").Valid)
	assert.Equal(t, sql.NullString{String: "eggs", Valid: true}, NullString("eggs"))

	empty := ""
	assert.True(t, NullStringPtr(&empty).Valid, "an empty but present value is stored")
	assert.False(t, NullStringPtr(nil).Valid)

	assert.Nil(t, StringPtr(sql.NullString{}))
	assert.Equal(t, "eggs", *StringPtr(sql.NullString{String: "eggs", Valid: true}))
}

func TestNullInt64(t *testing.T) {
	cents := int64(499)
	assert.Equal(t, sql.NullInt64{Int64: 499, Valid: true}, NullInt64Ptr(&cents))
	assert.Nil(t, Int64Ptr(NullInt64Ptr(nil)))
	assert.Equal(t, int64(499), *Int64Ptr(NullInt64Ptr(&cents)))
}

func TestNullTime(t *testing.T) {
	assert.False(t, NullTime(time.Time{}).Valid)

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, NullTimePtr(&now).Valid)
	assert.Nil(t, TimePtr(NullTimePtr(nil)))
	assert.True(t, now.Equal(*TimePtr(NullTimePtr(&now))))
}

func TestConstraintErrors(t *testing.T) {
	fk := &pq.Error{Code: "23503"}
	unique := &pq.Error{Code: "23505"}
	tooLong := &pq.Error{Code: "22001"}
	badText := &pq.Error{Code: "22021"}

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsForeignKeyViolation(fmt.Errorf("insert: %w", fk)))

	assert.True(t, IsDataException(tooLong))
	assert.True(t, IsDataException(fmt.Errorf("insert: %w", badText)))
	assert.False(t, IsDataException(fk))
	assert.False(t, IsDataException(errors.New("boom")))
}
