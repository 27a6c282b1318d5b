// Package rawrecord persists the raw store: one row per record identity
// holding the most recent extraction, whole-row upsert semantics.
package rawrecord

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/aster-data/aster/internal/database"
	"github.com/aster-data/aster/internal/tracing"
	"github.com/aster-data/aster/pkg/models"
)

const table = "raw_records"

// Repository handles raw record persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new raw record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the record keyed by id, overwriting the whole row when the
// id already exists. Returns whether a new row was inserted.
func (r *Repository) Upsert(ctx context.Context, rec *models.RawRecord) (inserted bool, err error) {
	ctx, span := tracing.StartSpan(ctx, "rawrecord.Repository.Upsert")
	defer span.End()

	now := time.Now().UTC()
	rec.UpdatedAt = now
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols("id", "phone_number", "company_name", "physical_address", "email", "website", "source_file", "metadata", "created_at", "updated_at")
	ib.Values(rec.ID, rec.PhoneNumber, rec.CompanyName, rec.PhysicalAddress, rec.Email, rec.Website, rec.SourceFile, database.JSONB[json.RawMessage]{Data: rec.Metadata}, rec.CreatedAt, rec.UpdatedAt)

	query, args := ib.Build()
	query += database.OnConflictUpdate(
		[]string{"id"},
		"phone_number", "company_name", "physical_address", "email", "website", "source_file", "metadata", "updated_at",
	)
	// xmax is zero for freshly inserted tuples, which distinguishes the
	// insert path from the conflict-update path in one round trip.
	query += " RETURNING (xmax = 0) AS inserted"
	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&inserted); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": rec.ID}).Error("Failed to upsert raw record")
		return false, database.ClassifyError("raw.upsert", err)
	}

	return inserted, nil
}

// Get retrieves a raw record by id. Returns nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*models.RawRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "rawrecord.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "phone_number", "company_name", "physical_address", "email", "website", "source_file", "metadata", "created_at", "updated_at")
	sb.From(table)
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var rec models.RawRecord
	if err := r.db.GetContext(ctx, &rec, query, args...); err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id}).Error("Failed to get raw record")
		return nil, database.ClassifyError("raw.get", err)
	}

	return &rec, nil
}

// ListBySourceFile returns every raw record extracted from the given source
// file, ordered by id.
func (r *Repository) ListBySourceFile(ctx context.Context, sourceFile string) ([]*models.RawRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "rawrecord.Repository.ListBySourceFile")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "phone_number", "company_name", "physical_address", "email", "website", "source_file", "metadata", "created_at", "updated_at")
	sb.From(table)
	sb.Where(sb.Equal("source_file", sourceFile))
	sb.OrderBy("id")

	query, args := sb.Build()
	var recs []*models.RawRecord
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"source_file": sourceFile}).Error("Failed to list raw records")
		return nil, database.ClassifyError("raw.list", err)
	}

	return recs, nil
}
