// Package appliedmutation records which mutation ids the server has already applied so a
// replayed push is acknowledged without being applied twice.
package appliedmutation

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/kitchin/pkg/database"
	"github.com/Ramsey-B/kitchin/pkg/models"
	"github.com/Ramsey-B/kitchin/pkg/tracing"
)

const appliedMutationsTable = "applied_mutations"

type AppliedMutationRow struct {
	ID        sql.NullString `db:"id"`
	TableName sql.NullString `db:"table_name"`
	Operation sql.NullString `db:"operation"`
	EntityID  sql.NullString `db:"entity_id"`
	ClientID  sql.NullString `db:"client_id"`
	AppliedAt sql.NullTime   `db:"applied_at"`
}

var appliedMutationStruct = database.NewStruct(new(AppliedMutationRow))

type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Record claims the mutation id. It returns false when the id was already recorded.
func (r *Repository) Record(ctx context.Context, mutation models.Mutation, clientID string) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "AppliedMutationRepository.Record")
	defer span.End()

	query, args := appliedMutationStruct.InsertIgnoringID(appliedMutationsTable, &AppliedMutationRow{
		ID:        database.NullString(mutation.ID),
		TableName: database.NullString(string(mutation.Table)),
		Operation: database.NullString(string(mutation.Operation)),
		EntityID:  database.NullString(mutation.EntityID),
		ClientID:  database.NullString(clientID),
		AppliedAt: database.NullTime(time.Now().UTC()),
	}).Build()

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithField("mutation_id", mutation.ID).Error("Failed to record applied mutation")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to record mutation")
	}

	rowsAffected, _ := result.RowsAffected()
	return rowsAffected > 0, nil
}

// Prune forgets mutation ids applied before olderThan.
func (r *Repository) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "AppliedMutationRepository.Prune")
	defer span.End()

	db := appliedMutationStruct.DeleteFrom(appliedMutationsTable)
	db.Where(db.LessThan("applied_at", olderThan))
	query, args := db.Build()

	result, err := database.QuerierFrom(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to prune applied mutations")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to prune applied mutations")
	}

	return result.RowsAffected()
}
