// Package processor orchestrates one workbook run end to end: decode,
// structure detection, column-role inference, row expansion, batch
// reconciliation, and two-store synchronization.
package processor

import (
	"context"
	"io"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/aster-data/aster/internal/tracing"
	"github.com/aster-data/aster/pkg/columns"
	"github.com/aster-data/aster/pkg/extractor"
	"github.com/aster-data/aster/pkg/models"
	"github.com/aster-data/aster/pkg/reconcile"
	"github.com/aster-data/aster/pkg/sheet"
	"github.com/aster-data/aster/pkg/syncer"
)

// Input is one workbook to process. SourceFile is the label persisted with
// every raw record from this run; it is usually the uploaded file name.
type Input struct {
	Reader     io.Reader `validate:"required"`
	SourceFile string    `validate:"required"`
}

// Processor runs the ingestion pipeline. All stages before synchronization
// are pure; nothing is written until the batch is fully reconciled, so a
// workbook that yields no records leaves both stores untouched.
type Processor struct {
	logger     ectologger.Logger
	validate   *validator.Validate
	decoder    sheet.Decoder
	inferrer   *columns.Inferrer
	roleCache  *columns.Cache
	extractor  *extractor.Extractor
	reconciler *reconcile.Reconciler
	syncer     *syncer.Syncer
	scanRows   int
}

func NewProcessor(
	logger ectologger.Logger,
	decoder sheet.Decoder,
	inferrer *columns.Inferrer,
	roleCache *columns.Cache,
	ext *extractor.Extractor,
	sync *syncer.Syncer,
	scanRows int,
) *Processor {
	return &Processor{
		logger:     logger,
		validate:   validator.New(),
		decoder:    decoder,
		inferrer:   inferrer,
		roleCache:  roleCache,
		extractor:  ext,
		reconciler: reconcile.NewReconciler(logger),
		syncer:     sync,
		scanRows:   scanRows,
	}
}

// ProcessWorkbook ingests one workbook and returns a report of everything
// the run decided and wrote. A workbook from which no records could be
// extracted returns models.ErrNoExtractableData and writes nothing.
func (p *Processor) ProcessWorkbook(ctx context.Context, input Input) (*models.ProcessingReport, error) {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.ProcessWorkbook")
	defer span.End()

	if err := p.validate.Struct(input); err != nil {
		return nil, errors.Wrap(err, "invalid processing input")
	}

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"source_file": input.SourceFile,
	})

	report := &models.ProcessingReport{
		RunID:      uuid.New().String(),
		TraceID:    tracing.GetTraceID(ctx),
		SpanID:     tracing.GetSpanID(ctx),
		SourceFile: input.SourceFile,
		StartedAt:  time.Now().UTC(),
	}

	sheets, err := p.decoder.Decode(ctx, input.Reader)
	if err != nil {
		log.WithError(err).Error("Failed to decode workbook")
		return nil, err
	}

	var batch []*models.PhoneRecord
	for _, sh := range sheets {
		records, sheetReport := p.processSheet(ctx, sh)
		report.Sheets = append(report.Sheets, sheetReport)
		batch = append(batch, records...)
	}

	if len(batch) == 0 {
		log.Warn("No extractable data in workbook")
		report.FinishedAt = time.Now().UTC()
		// The report still describes what was inspected; nothing was
		// written.
		return report, models.ErrNoExtractableData
	}

	// TotalRecords counts everything extracted; dedupe survivors are
	// TotalRecords - DuplicateCount.
	report.TotalRecords = len(batch)
	kept, duplicates := p.reconciler.DedupeBatch(batch)
	report.Duplicates = duplicates
	report.DuplicateCount = len(duplicates)
	for _, rec := range kept {
		if rec.IsValidNumber {
			report.ValidCount++
		} else {
			report.InvalidCount++
		}
	}

	res := p.syncer.SyncBatch(ctx, kept, input.SourceFile)
	report.RawInserted = res.RawInserted
	report.RawUpdated = res.RawUpdated
	report.ValidatedInserted = res.ValidatedInserted
	report.ValidatedUpdated = res.ValidatedUpdated
	report.Failures = res.Failures
	report.FinishedAt = time.Now().UTC()

	log.WithFields(map[string]any{
		"run_id":     report.RunID,
		"sheets":     len(report.Sheets),
		"records":    report.TotalRecords,
		"duplicates": report.DuplicateCount,
		"failures":   len(report.Failures),
	}).Info("Processed workbook")

	return report, nil
}

// processSheet runs the record-producing stages for one sheet. A sheet with
// no detectable phone column contributes zero records, never an error.
func (p *Processor) processSheet(ctx context.Context, sh sheet.Sheet) ([]*models.PhoneRecord, models.SheetReport) {
	structure := sheet.DetectStructure(sh.Grid, p.scanRows)
	roles := p.roleCache.Infer(p.inferrer, structure)

	sheetReport := models.SheetReport{
		Name:           sh.Name,
		HeaderRowIndex: structure.HeaderIndex,
		Roles:          roles,
	}

	if !roles.HasPhoneColumns() {
		p.logger.WithContext(ctx).WithFields(map[string]any{
			"sheet": sh.Name,
		}).Warn("No phone column detected, skipping sheet")
		return nil, sheetReport
	}

	records, rowErrs := p.extractor.ExpandSheet(sh.Name, structure, roles)
	sheetReport.RecordCount = len(records)
	sheetReport.SkippedRows = len(rowErrs)

	for _, rowErr := range rowErrs {
		p.logger.WithContext(ctx).WithError(rowErr).WithFields(map[string]any{
			"sheet": rowErr.Sheet,
			"row":   rowErr.Row,
		}).Debug("Skipped row")
	}

	return records, sheetReport
}
