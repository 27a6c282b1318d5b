// Package validatedrecord persists the validated store: one row per
// canonical phone-bearing identity, carrying validation status and merged
// company data.
package validatedrecord

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/aster-data/aster/internal/database"
	"github.com/aster-data/aster/internal/tracing"
	"github.com/aster-data/aster/pkg/models"
)

const table = "validated_records"

var columns = []string{"id", "phone", "status", "company_name", "physical_address", "email", "website", "created_at", "updated_at"}

// email is nullable so blank emails do not collide on the unique index;
// selects coalesce it back to the empty string.
var selectColumns = []string{"id", "phone", "status", "company_name", "physical_address", "COALESCE(email, '') AS email", "website", "created_at", "updated_at"}

// Repository handles validated record persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new validated record repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves a validated record by id. Returns nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*models.ValidatedRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "validatedrecord.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(selectColumns...)
	sb.From(table)
	sb.Where(sb.Equal("id", id))

	return r.getOne(ctx, sb, "validated.get")
}

// GetByIDAndPhone retrieves a validated record by its (id, phone) pair, the
// lookup used by the direct-ingest mode. Returns nil when absent.
func (r *Repository) GetByIDAndPhone(ctx context.Context, id, phone string) (*models.ValidatedRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "validatedrecord.Repository.GetByIDAndPhone")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(selectColumns...)
	sb.From(table)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("phone", phone),
	)

	return r.getOne(ctx, sb, "validated.get_by_id_phone")
}

// FindByEmail returns the validated record holding the given email, or nil.
// Used as the uniqueness guard before a merge would set an email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.ValidatedRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "validatedrecord.Repository.FindByEmail")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(selectColumns...)
	sb.From(table)
	sb.Where(sb.Equal("email", email))

	return r.getOne(ctx, sb, "validated.find_by_email")
}

func (r *Repository) getOne(ctx context.Context, sb *sqlbuilder.SelectBuilder, op string) (*models.ValidatedRecord, error) {
	query, args := sb.Build()
	var rec models.ValidatedRecord
	if err := r.db.GetContext(ctx, &rec, query, args...); err != nil {
		if database.IsNotFound(err) {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to query validated record")
		return nil, database.ClassifyError(op, err)
	}
	return &rec, nil
}

// Insert creates a new validated row. A duplicate email is rejected with
// models.ErrEmailConflict; the caller decides whether to retry without the
// email or surface the conflict.
func (r *Repository) Insert(ctx context.Context, rec *models.ValidatedRecord) error {
	ctx, span := tracing.StartSpan(ctx, "validatedrecord.Repository.Insert")
	defer span.End()

	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	var email any
	if rec.Email != "" {
		email = rec.Email
	}

	ib := sqlbuilder.PostgreSQL.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols(columns...)
	ib.Values(rec.ID, rec.Phone, rec.Status, rec.CompanyName, rec.PhysicalAddress, email, rec.Website, rec.CreatedAt, rec.UpdatedAt)

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "validated_records_email_key") {
			r.logger.WithContext(ctx).WithFields(map[string]any{"id": rec.ID}).Warn("Rejected insert with duplicate email")
			return &models.StoreError{Op: "validated.insert", Retryable: false, Err: models.ErrEmailConflict}
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": rec.ID}).Error("Failed to insert validated record")
		return database.ClassifyError("validated.insert", err)
	}

	return nil
}

// UpdateFields applies a partial company-field patch to the row keyed by
// (id, phone) and refreshes status and updated_at. The caller computes the
// patch; the repository writes exactly what it is given. A patch that would
// duplicate another row's email is rejected with models.ErrEmailConflict.
func (r *Repository) UpdateFields(ctx context.Context, id, phone string, patch models.FieldPatch, status *bool) error {
	ctx, span := tracing.StartSpan(ctx, "validatedrecord.Repository.UpdateFields")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update(table)

	assignments := []string{
		ub.Assign("status", status),
		ub.Assign("updated_at", time.Now().UTC()),
	}
	if patch.CompanyName != nil {
		assignments = append(assignments, ub.Assign("company_name", *patch.CompanyName))
	}
	if patch.PhysicalAddress != nil {
		assignments = append(assignments, ub.Assign("physical_address", *patch.PhysicalAddress))
	}
	if patch.Email != nil {
		assignments = append(assignments, ub.Assign("email", *patch.Email))
	}
	if patch.Website != nil {
		assignments = append(assignments, ub.Assign("website", *patch.Website))
	}
	ub.Set(assignments...)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("phone", phone),
	)

	query, args := ub.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if database.IsUniqueViolation(err, "validated_records_email_key") {
			r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Warn("Rejected update with duplicate email")
			return &models.StoreError{Op: "validated.update_fields", Retryable: false, Err: models.ErrEmailConflict}
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id}).Error("Failed to update validated record")
		return database.ClassifyError("validated.update_fields", err)
	}

	return nil
}

// UpdateCompanyFieldsBatch writes each record's four company attributes and
// refreshes updated_at, all inside one transaction. Used by the
// consolidation pass after an in-memory completeness merge, so a group of
// rows sharing a phone number is never left half-merged.
func (r *Repository) UpdateCompanyFieldsBatch(ctx context.Context, recs []*models.ValidatedRecord) error {
	ctx, span := tracing.StartSpan(ctx, "validatedrecord.Repository.UpdateCompanyFieldsBatch")
	defer span.End()

	if len(recs) == 0 {
		return nil
	}

	// The rollback must see the pre-GetTx context: Rollback treats a context
	// carrying an open transaction as caller-owned and leaves it alone, and
	// this method owns any transaction it begins.
	callerCtx := ctx
	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to start consolidation transaction")
		return database.ClassifyError("validated.update_company", err)
	}
	defer tx.Rollback(callerCtx)

	now := time.Now().UTC()
	for _, rec := range recs {
		var email any
		if rec.Email != "" {
			email = rec.Email
		}

		ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		ub.Update(table)
		ub.Set(
			ub.Assign("company_name", rec.CompanyName),
			ub.Assign("physical_address", rec.PhysicalAddress),
			ub.Assign("email", email),
			ub.Assign("website", rec.Website),
			ub.Assign("updated_at", now),
		)
		ub.Where(ub.Equal("id", rec.ID))

		query, args := ub.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if database.IsUniqueViolation(err, "validated_records_email_key") {
				r.logger.WithContext(ctx).WithFields(map[string]any{"id": rec.ID}).Warn("Rejected consolidation update with duplicate email")
				return &models.StoreError{Op: "validated.update_company", Retryable: false, Err: models.ErrEmailConflict}
			}
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": rec.ID}).Error("Failed to update validated company fields")
			return database.ClassifyError("validated.update_company", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit consolidation transaction")
		return database.ClassifyError("validated.update_company", err)
	}

	return nil
}

// ListSharingPhones returns every validated row whose phone number appears
// on more than one row, ordered by phone then insertion time. This is the
// input to the on-demand consolidation pass.
func (r *Repository) ListSharingPhones(ctx context.Context) ([]*models.ValidatedRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "validatedrecord.Repository.ListSharingPhones")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(selectColumns...)
	sb.From(table)
	sb.Where("phone IN (SELECT phone FROM " + table + " GROUP BY phone HAVING COUNT(*) > 1)")
	sb.OrderBy("phone", "created_at", "id")

	query, args := sb.Build()
	var recs []*models.ValidatedRecord
	if err := r.db.SelectContext(ctx, &recs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list validated records sharing phones")
		return nil, database.ClassifyError("validated.list_sharing", err)
	}

	return recs, nil
}
