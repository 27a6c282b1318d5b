// Package syncer projects reconciled phone records into the raw and
// validated stores. The two writes are independent projections of the same
// record stream, both idempotent, so a crash between them is recovered by
// re-running synchronization.
package syncer

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/aster-data/aster/internal/tracing"
	"github.com/aster-data/aster/pkg/models"
	"github.com/aster-data/aster/pkg/phone"
	"github.com/aster-data/aster/pkg/reconcile"
)

// RawStore is the raw-store surface the syncer consumes.
type RawStore interface {
	Upsert(ctx context.Context, rec *models.RawRecord) (inserted bool, err error)
}

// ValidatedStore is the validated-store surface the syncer consumes.
type ValidatedStore interface {
	Get(ctx context.Context, id string) (*models.ValidatedRecord, error)
	GetByIDAndPhone(ctx context.Context, id, phone string) (*models.ValidatedRecord, error)
	FindByEmail(ctx context.Context, email string) (*models.ValidatedRecord, error)
	Insert(ctx context.Context, rec *models.ValidatedRecord) error
	UpdateFields(ctx context.Context, id, phone string, patch models.FieldPatch, status *bool) error
	UpdateCompanyFieldsBatch(ctx context.Context, recs []*models.ValidatedRecord) error
	ListSharingPhones(ctx context.Context) ([]*models.ValidatedRecord, error)
}

// Result tallies one synchronization pass.
type Result struct {
	RawInserted       int
	RawUpdated        int
	ValidatedInserted int
	ValidatedUpdated  int
	Failures          []models.RecordFailure
}

// Syncer writes reconciled records to both stores in a deterministic,
// sequential order per record, so two writes for the same identifier are
// never interleaved within a run.
type Syncer struct {
	logger     ectologger.Logger
	raw        RawStore
	validated  ValidatedStore
	reconciler *reconcile.Reconciler
	format     phone.Format
	retryCount int

	// DirectIngest switches the validated-store lookup to the (id, phone)
	// pair instead of id alone.
	DirectIngest bool
}

func NewSyncer(
	logger ectologger.Logger,
	raw RawStore,
	validated ValidatedStore,
	format phone.Format,
	retryCount int,
) *Syncer {
	return &Syncer{
		logger:     logger,
		raw:        raw,
		validated:  validated,
		reconciler: reconcile.NewReconciler(logger),
		format:     format,
		retryCount: retryCount,
	}
}

// SyncBatch writes every record to the raw store and promotes it into the
// validated store. Per-record failures are collected, never propagated as a
// batch failure: N records with M failures still commit N-M successes.
func (s *Syncer) SyncBatch(ctx context.Context, records []*models.PhoneRecord, sourceFile string) Result {
	ctx, span := tracing.StartSpan(ctx, "syncer.Syncer.SyncBatch")
	defer span.End()

	var res Result
	for _, rec := range records {
		s.syncRaw(ctx, rec, sourceFile, &res)
		s.syncValidated(ctx, rec, &res)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"records":            len(records),
		"raw_inserted":       res.RawInserted,
		"validated_inserted": res.ValidatedInserted,
		"failures":           len(res.Failures),
	}).Info("Synchronized batch")

	return res
}

func (s *Syncer) syncRaw(ctx context.Context, rec *models.PhoneRecord, sourceFile string, res *Result) {
	raw := &models.RawRecord{
		ID:              rec.ID,
		PhoneNumber:     rec.PhoneNumber,
		CompanyName:     rec.CompanyName,
		PhysicalAddress: rec.PhysicalAddress,
		Email:           rec.Email,
		Website:         rec.Website,
		SourceFile:      sourceFile,
		Metadata:        rec.Metadata(),
	}

	var inserted bool
	err := s.withRetry(ctx, func() error {
		var err error
		inserted, err = s.raw.Upsert(ctx, raw)
		return err
	})
	if err != nil {
		res.Failures = append(res.Failures, failure(rec, "raw.upsert", err))
		return
	}

	if inserted {
		res.RawInserted++
	} else {
		res.RawUpdated++
	}
}

func (s *Syncer) syncValidated(ctx context.Context, rec *models.PhoneRecord, res *Result) {
	var existing *models.ValidatedRecord
	err := s.withRetry(ctx, func() error {
		var err error
		if s.DirectIngest {
			existing, err = s.validated.GetByIDAndPhone(ctx, rec.ID, rec.PhoneNumber)
		} else {
			existing, err = s.validated.Get(ctx, rec.ID)
		}
		return err
	})
	if err != nil {
		res.Failures = append(res.Failures, failure(rec, "validated.lookup", err))
		return
	}

	if existing == nil {
		s.insertValidated(ctx, rec, res)
		return
	}

	s.updateValidated(ctx, rec, existing, res)
}

func (s *Syncer) insertValidated(ctx context.Context, rec *models.PhoneRecord, res *Result) {
	status := s.format.IsValid(rec.PhoneNumber)
	row := &models.ValidatedRecord{
		ID:              rec.ID,
		Phone:           rec.PhoneNumber,
		Status:          &status,
		CompanyName:     rec.CompanyName,
		PhysicalAddress: rec.PhysicalAddress,
		Email:           rec.Email,
		Website:         rec.Website,
	}

	err := s.withRetry(ctx, func() error {
		return s.validated.Insert(ctx, row)
	})
	if err != nil {
		res.Failures = append(res.Failures, failure(rec, "validated.insert", err))
		return
	}

	res.ValidatedInserted++
}

// updateValidated applies the field-union policy: new non-blank values fill
// blanks only, and status is recomputed from the stored phone on every
// write, never carried over.
func (s *Syncer) updateValidated(ctx context.Context, rec *models.PhoneRecord, existing *models.ValidatedRecord, res *Result) {
	patch := reconcile.UnionPatch(existing, rec)

	if patch.Email != nil {
		holder, err := s.findEmailHolder(ctx, *patch.Email)
		if err != nil {
			res.Failures = append(res.Failures, failure(rec, "validated.email_lookup", err))
			return
		}
		if holder != nil && holder.ID != existing.ID {
			// The email belongs to another row. The email fill is
			// rejected; the rest of the patch still applies.
			res.Failures = append(res.Failures, failure(rec, "validated.email_conflict", models.ErrEmailConflict))
			patch.Email = nil
		}
	}

	status := s.format.IsValid(existing.Phone)

	err := s.withRetry(ctx, func() error {
		return s.validated.UpdateFields(ctx, existing.ID, existing.Phone, patch, &status)
	})
	if err != nil {
		res.Failures = append(res.Failures, failure(rec, "validated.update", err))
		return
	}

	res.ValidatedUpdated++
}

func (s *Syncer) findEmailHolder(ctx context.Context, email string) (*models.ValidatedRecord, error) {
	var holder *models.ValidatedRecord
	err := s.withRetry(ctx, func() error {
		var err error
		holder, err = s.validated.FindByEmail(ctx, email)
		return err
	})
	return holder, err
}

// Consolidate runs the completeness merge over every stored group of
// validated rows sharing a phone number and writes back the members that
// changed. Exposed for on-demand use; SyncBatch does not need it because
// per-record promotion already unions fields.
func (s *Syncer) Consolidate(ctx context.Context) (int, []models.RecordFailure, error) {
	ctx, span := tracing.StartSpan(ctx, "syncer.Syncer.Consolidate")
	defer span.End()

	rows, err := s.validated.ListSharingPhones(ctx)
	if err != nil {
		return 0, nil, err
	}

	merged := 0
	var failures []models.RecordFailure
	for _, group := range reconcile.GroupByPhone(rows) {
		changed := s.reconciler.CompletenessMerge(group)
		if len(changed) == 0 {
			continue
		}
		writeErr := s.withRetry(ctx, func() error {
			return s.validated.UpdateCompanyFieldsBatch(ctx, changed)
		})
		if writeErr != nil {
			for _, rec := range changed {
				failures = append(failures, models.RecordFailure{
					ID:    rec.ID,
					Phone: rec.Phone,
					Op:    "validated.consolidate",
					Err:   writeErr.Error(),
				})
			}
			continue
		}
		merged += len(changed)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"rows_sharing": len(rows),
		"merged":       merged,
		"failures":     len(failures),
	}).Info("Consolidated validated store")

	return merged, failures, nil
}

// withRetry retries op for retryable store errors only, up to the
// configured bound, keeping each record's failure isolated.
func (s *Syncer) withRetry(ctx context.Context, op func() error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = op()
		if err == nil || !models.IsRetryable(err) || attempt >= s.retryCount {
			return err
		}
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"attempt": attempt + 1}).Warn("Retrying store operation")
	}
}

func failure(rec *models.PhoneRecord, op string, err error) models.RecordFailure {
	return models.RecordFailure{
		ID:    rec.ID,
		Phone: rec.PhoneNumber,
		Op:    op,
		Err:   err.Error(),
	}
}
