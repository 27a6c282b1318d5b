// Package extractor expands data rows into phone records using a sheet's
// column role map.
package extractor

import (
	"errors"
	"fmt"

	"github.com/aster-data/aster/pkg/models"
	"github.com/aster-data/aster/pkg/normalizers"
	"github.com/aster-data/aster/pkg/phone"
	"github.com/aster-data/aster/pkg/sheet"
)

// ErrNoPhoneDigits marks a data row whose phone cells held no digits at all.
// Fully blank rows never reach the extractor; a row failing with this error
// carried data the sheet's phone columns could not account for.
var ErrNoPhoneDigits = errors.New("no usable phone digits in row")

// Extractor turns rows into phone records. One record is emitted per phone
// column whose cleaned value is non-blank.
type Extractor struct {
	format phone.Format
}

func New(format phone.Format) *Extractor {
	return &Extractor{format: format}
}

type phoneTuple struct {
	digits string
	column int
	valid  bool
}

// ExpandRow emits the records for one data row.
//
// Identity follows the cross-upload reconciliation rule: a genuine
// identifier value when the sheet has an identifier column, suffixed
// "{base}_{n}" when the row carries several numbers, and the cleaned phone
// number itself when no identifier column exists. The phone-number fallback
// is deliberate: it keeps the identity stable across repeated uploads of the
// same contact.
func (e *Extractor) ExpandRow(sheetName string, row []string, rowIndex int, roles models.ColumnRoleMap) ([]*models.PhoneRecord, error) {
	tuples := make([]phoneTuple, 0, len(roles.PhoneColumns))
	for _, col := range roles.PhoneColumns {
		raw := cellAt(row, col)
		digits := e.format.Clean(raw)
		if digits == "" {
			continue
		}
		// Duplicate numbers across phone columns of the same row are both
		// kept: they are different cells.
		tuples = append(tuples, phoneTuple{
			digits: digits,
			column: col,
			valid:  e.format.IsValid(digits),
		})
	}

	if len(tuples) == 0 {
		return nil, ErrNoPhoneDigits
	}

	baseID := ""
	if roles.HasIdentifier() {
		baseID = normalizers.ScrubPlaceholder(cellAt(row, roles.IdentifierColumn))
	}

	records := make([]*models.PhoneRecord, 0, len(tuples))
	for i, t := range tuples {
		rec := &models.PhoneRecord{
			PhoneNumber:   t.digits,
			SourceSheet:   sheetName,
			IsValidNumber: t.valid,
			RowIndex:      rowIndex,
			ColumnIndex:   t.column,
		}
		rec.ID = recordID(baseID, t.digits, i, len(tuples))
		if len(tuples) > 1 {
			rec.BaseID = baseOf(baseID, t.digits)
			rec.SiblingPosition = i + 1
		}
		e.applyAttributes(rec, row, roles)
		records = append(records, rec)
	}

	if len(records) > 1 {
		ids := make([]string, len(records))
		for i, rec := range records {
			ids[i] = rec.ID
		}
		for i, rec := range records {
			rec.SiblingIDs = siblingsExcept(ids, i)
		}
	}

	return records, nil
}

func (e *Extractor) applyAttributes(rec *models.PhoneRecord, row []string, roles models.ColumnRoleMap) {
	for kind, col := range roles.AttributeColumns {
		value := cellAt(row, col)
		switch kind {
		case models.AttributeCompanyName:
			rec.CompanyName = normalizers.CleanCompanyField(value)
		case models.AttributePhysicalAddress:
			rec.PhysicalAddress = normalizers.CleanCompanyField(value)
		case models.AttributeEmail:
			rec.Email = normalizers.NormalizeEmail(normalizers.ScrubPlaceholder(value))
		case models.AttributeWebsite:
			rec.Website = normalizers.NormalizeWebsite(normalizers.ScrubPlaceholder(value))
		}
	}
}

// recordID applies the identity rule for one tuple.
func recordID(baseID, digits string, index, total int) string {
	base := baseOf(baseID, digits)
	if total == 1 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, index+1)
}

// baseOf falls back to the cleaned phone number when the sheet has no
// identifier value for the row.
func baseOf(baseID, digits string) string {
	if baseID != "" {
		return baseID
	}
	return digits
}

func siblingsExcept(ids []string, skip int) []string {
	out := make([]string, 0, len(ids)-1)
	for i, id := range ids {
		if i == skip {
			continue
		}
		out = append(out, id)
	}
	return out
}

func cellAt(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}

// ExpandSheet expands every data row of a detected structure, collecting
// per-row failures without stopping the sheet.
func (e *Extractor) ExpandSheet(sheetName string, structure sheet.Structure, roles models.ColumnRoleMap) ([]*models.PhoneRecord, []*models.RowError) {
	var records []*models.PhoneRecord
	var rowErrs []*models.RowError

	if !roles.HasPhoneColumns() {
		return nil, nil
	}

	for i, row := range structure.DataRows {
		rowIndex := i
		if i < len(structure.DataRowIndexes) {
			rowIndex = structure.DataRowIndexes[i]
		}
		recs, err := e.ExpandRow(sheetName, row, rowIndex, roles)
		if err != nil {
			rowErrs = append(rowErrs, &models.RowError{Sheet: sheetName, Row: rowIndex, Err: err})
			continue
		}
		records = append(records, recs...)
	}

	return records, rowErrs
}
