// Package columns infers which columns of a sheet hold phone numbers, a
// record identifier, and company attributes. Inference is an ordered list of
// strategies per role kind: header-synonym matching first, statistical
// sampling of cell contents as the fallback.
package columns

import (
	"strings"

	"github.com/Gobusters/ectologger"

	"github.com/aster-data/aster/pkg/models"
	"github.com/aster-data/aster/pkg/phone"
	"github.com/aster-data/aster/pkg/sheet"
)

// Config bounds the statistical fallback strategies.
type Config struct {
	// SampleRows is the number of data rows sampled per column.
	SampleRows int
	// PhoneThreshold is the fraction of sampled non-blank cells that must
	// clean to a valid national number for a column to qualify as a phone
	// column. Above half tolerates occasional garbage in a real phone
	// column while rejecting columns with a few numeric-looking values.
	PhoneThreshold float64
	// MinIDSamples is the minimum count of non-blank sampled values before
	// a column can qualify as a candidate identifier key.
	MinIDSamples int
}

// DefaultConfig returns the default inference bounds.
func DefaultConfig() Config {
	return Config{
		SampleRows:     10,
		PhoneThreshold: 0.5,
		MinIDSamples:   3,
	}
}

// Inferrer builds column role maps for sheets.
type Inferrer struct {
	logger ectologger.Logger
	format phone.Format
	config Config
}

func NewInferrer(logger ectologger.Logger, format phone.Format, config Config) *Inferrer {
	return &Inferrer{
		logger: logger,
		format: format,
		config: config,
	}
}

// Infer builds the role map for one sheet from its detected structure. A
// result with no phone columns means the sheet yields zero records, which is
// a legitimate outcome, not an error.
func (inf *Inferrer) Infer(structure sheet.Structure) models.ColumnRoleMap {
	roles := models.NewColumnRoleMap()
	width := gridWidth(structure)

	claimed := make(map[int]bool)

	// Header matching. Phone keeps every matching column; identifier and
	// each attribute kind keep the first match left to right.
	if structure.HeaderIndex >= 0 {
		for col := 0; col < len(structure.Header); col++ {
			if headerMatches(structure.Header[col], phoneSynonyms) {
				roles.PhoneColumns = append(roles.PhoneColumns, col)
				claimed[col] = true
			}
		}

		for _, kind := range models.AttributeKinds {
			for col := 0; col < len(structure.Header); col++ {
				if claimed[col] {
					continue
				}
				if headerMatches(structure.Header[col], attributeSynonyms[kind]) {
					roles.AttributeColumns[kind] = col
					claimed[col] = true
					break
				}
			}
		}

		for col := 0; col < len(structure.Header); col++ {
			if claimed[col] {
				continue
			}
			if headerMatches(structure.Header[col], identifierSynonyms) {
				roles.IdentifierColumn = col
				claimed[col] = true
				break
			}
		}
	}

	// Pattern fallbacks, applied only when header matching found nothing
	// for the kind.
	if len(roles.PhoneColumns) == 0 {
		for col := 0; col < width; col++ {
			if inf.phoneColumnByPattern(structure.DataRows, col) {
				roles.PhoneColumns = append(roles.PhoneColumns, col)
				claimed[col] = true
			}
		}
	}

	if !roles.HasIdentifier() {
		for col := 0; col < width; col++ {
			if claimed[col] {
				continue
			}
			if inf.identifierColumnByPattern(structure.DataRows, col) {
				roles.IdentifierColumn = col
				break
			}
		}
	}

	inf.logger.WithFields(map[string]any{
		"phone_columns": roles.PhoneColumns,
		"identifier":    roles.IdentifierColumn,
		"attributes":    roles.AttributeColumns,
	}).Debug("Inferred column roles")

	return roles
}

// phoneColumnByPattern samples the column and qualifies it when the valid
// fraction of non-blank cells exceeds the threshold.
func (inf *Inferrer) phoneColumnByPattern(rows sheet.CellGrid, col int) bool {
	sampled := 0
	valid := 0
	for i := 0; i < len(rows) && i < inf.config.SampleRows; i++ {
		value := cellAt(rows[i], col)
		if value == "" {
			continue
		}
		sampled++
		if _, ok := inf.format.CleanAndValidate(value); ok {
			valid++
		}
	}

	if sampled == 0 {
		return false
	}
	return float64(valid)/float64(sampled) > inf.config.PhoneThreshold
}

// identifierColumnByPattern qualifies a column as a candidate key: enough
// non-blank samples and every sampled value unique.
func (inf *Inferrer) identifierColumnByPattern(rows sheet.CellGrid, col int) bool {
	seen := make(map[string]bool)
	for i := 0; i < len(rows) && i < inf.config.SampleRows; i++ {
		value := cellAt(rows[i], col)
		if value == "" {
			continue
		}
		if seen[value] {
			return false
		}
		seen[value] = true
	}
	return len(seen) >= inf.config.MinIDSamples
}

func gridWidth(structure sheet.Structure) int {
	width := len(structure.Header)
	for _, row := range structure.DataRows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
