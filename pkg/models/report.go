package models

import "time"

// SheetReport records what the pipeline decided and produced for one sheet.
type SheetReport struct {
	Name           string        `json:"name"`
	HeaderRowIndex int           `json:"header_row_index"` // -1 for headerless sheets
	Roles          ColumnRoleMap `json:"roles"`
	RecordCount    int           `json:"record_count"`
	SkippedRows    int           `json:"skipped_rows"`
}

// DuplicateInfo identifies a record dropped from a batch because another
// record with the same phone number preceded it. The dropped record's data
// is still available for the completeness merge; it is never silently lost.
type DuplicateInfo struct {
	ID          string `json:"id"`
	PhoneNumber string `json:"phone_number"`
	KeptID      string `json:"kept_id"`
}

// RecordFailure is a per-record persistence failure. A batch of N records
// where M fail still reports N-M successes.
type RecordFailure struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Op    string `json:"op"`
	Err   string `json:"error"`
}

// ProcessingReport summarizes one workbook run.
type ProcessingReport struct {
	RunID      string    `json:"run_id"`
	TraceID    string    `json:"trace_id,omitempty"`
	SpanID     string    `json:"span_id,omitempty"`
	SourceFile string    `json:"source_file"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Sheets       []SheetReport `json:"sheets"`
	TotalRecords int           `json:"total_records"`

	Duplicates     []DuplicateInfo `json:"duplicates,omitempty"`
	DuplicateCount int             `json:"duplicate_count"`

	ValidCount   int `json:"valid_count"`
	InvalidCount int `json:"invalid_count"`

	RawInserted       int `json:"raw_inserted"`
	RawUpdated        int `json:"raw_updated"`
	ValidatedInserted int `json:"validated_inserted"`
	ValidatedUpdated  int `json:"validated_updated"`

	Failures []RecordFailure `json:"failures,omitempty"`
}
