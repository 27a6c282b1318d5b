// Package xlsx decodes Excel workbooks into cell grids.
package xlsx

import (
	"context"
	"io"

	"github.com/Gobusters/ectologger"
	"github.com/xuri/excelize/v2"

	"github.com/aster-data/aster/internal/tracing"
	"github.com/aster-data/aster/pkg/models"
	"github.com/aster-data/aster/pkg/sheet"
)

// Decoder reads xlsx workbooks with excelize. It implements sheet.Decoder.
type Decoder struct {
	logger ectologger.Logger
}

func NewDecoder(logger ectologger.Logger) *Decoder {
	return &Decoder{logger: logger}
}

// Decode returns the workbook's sheets in workbook order. Corrupt,
// encrypted, or non-xlsx input fails with *models.DecodeError and nothing is
// returned.
func (d *Decoder) Decode(ctx context.Context, r io.Reader) ([]sheet.Sheet, error) {
	ctx, span := tracing.StartSpan(ctx, "xlsx.Decoder.Decode")
	defer span.End()

	f, err := excelize.OpenReader(r)
	if err != nil {
		d.logger.WithContext(ctx).WithError(err).Warn("Failed to open workbook")
		return nil, &models.DecodeError{Reason: "unreadable workbook", Err: err}
	}
	defer f.Close()

	names := f.GetSheetList()
	sheets := make([]sheet.Sheet, 0, len(names))
	for _, name := range names {
		rows, err := f.GetRows(name)
		if err != nil {
			d.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"sheet": name}).Warn("Failed to read sheet")
			return nil, &models.DecodeError{Reason: "unreadable sheet " + name, Err: err}
		}
		sheets = append(sheets, sheet.Sheet{Name: name, Grid: rows})
	}

	d.logger.WithContext(ctx).WithFields(map[string]any{"sheets": len(sheets)}).Debug("Decoded workbook")
	return sheets, nil
}
