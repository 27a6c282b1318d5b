package models

import (
	"encoding/json"
	"time"
)

// PhoneRecord is one extracted contact-phone entity. It is created by the
// row expander and mutated only by the reconciler (company fields) and the
// syncer (validation status recompute).
type PhoneRecord struct {
	ID              string `json:"id"`
	PhoneNumber     string `json:"phone_number"`
	SourceSheet     string `json:"source_sheet"`
	CompanyName     string `json:"company_name,omitempty"`
	PhysicalAddress string `json:"physical_address,omitempty"`
	Email           string `json:"email,omitempty"`
	Website         string `json:"website,omitempty"`
	IsValidNumber   bool   `json:"is_valid_number"`

	// Row context. SiblingIDs and SiblingPosition are populated only when
	// the source row contributed more than one phone number.
	RowIndex        int      `json:"row_index"`
	ColumnIndex     int      `json:"column_index"`
	BaseID          string   `json:"base_id,omitempty"`
	SiblingIDs      []string `json:"sibling_ids,omitempty"`
	SiblingPosition int      `json:"sibling_position,omitempty"`
}

// CompanyFields returns the four company attributes in a fixed order:
// company name, physical address, email, website.
func (r *PhoneRecord) CompanyFields() [4]string {
	return [4]string{r.CompanyName, r.PhysicalAddress, r.Email, r.Website}
}

// Completeness counts how many company attributes are non-blank. It is the
// donor score used by the completeness merge.
func (r *PhoneRecord) Completeness() int {
	count := 0
	for _, f := range r.CompanyFields() {
		if f != "" {
			count++
		}
	}
	return count
}

// Metadata is the row-context blob persisted alongside a raw record.
func (r *PhoneRecord) Metadata() json.RawMessage {
	b, _ := json.Marshal(map[string]any{
		"source_sheet":     r.SourceSheet,
		"row_index":        r.RowIndex,
		"column_index":     r.ColumnIndex,
		"base_id":          r.BaseID,
		"sibling_ids":      r.SiblingIDs,
		"sibling_position": r.SiblingPosition,
	})
	return b
}

// RawRecord is one row of the raw store: the most recent extraction for an
// identifier, keyed by id with whole-row upsert semantics.
type RawRecord struct {
	ID              string          `json:"id" db:"id"`
	PhoneNumber     string          `json:"phone_number" db:"phone_number"`
	CompanyName     string          `json:"company_name,omitempty" db:"company_name"`
	PhysicalAddress string          `json:"physical_address,omitempty" db:"physical_address"`
	Email           string          `json:"email,omitempty" db:"email"`
	Website         string          `json:"website,omitempty" db:"website"`
	SourceFile      string          `json:"source_file" db:"source_file"`
	Metadata        json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// ValidatedRecord is one row of the validated store: one row per canonical
// phone-bearing identity. Status is recomputed from the phone value on every
// write, never carried over from a previous upload.
type ValidatedRecord struct {
	ID              string     `json:"id" db:"id"`
	Phone           string     `json:"phone" db:"phone"`
	Status          *bool      `json:"status" db:"status"`
	CompanyName     string     `json:"company_name,omitempty" db:"company_name"`
	PhysicalAddress string     `json:"physical_address,omitempty" db:"physical_address"`
	Email           string     `json:"email,omitempty" db:"email"`
	Website         string     `json:"website,omitempty" db:"website"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// Completeness counts the non-blank company attributes of a validated row.
func (v *ValidatedRecord) Completeness() int {
	count := 0
	for _, f := range []string{v.CompanyName, v.PhysicalAddress, v.Email, v.Website} {
		if f != "" {
			count++
		}
	}
	return count
}

// FieldPatch is a partial update of a validated row's company attributes.
// Nil pointers leave the column untouched.
type FieldPatch struct {
	CompanyName     *string
	PhysicalAddress *string
	Email           *string
	Website         *string
}

// IsEmpty reports whether the patch carries no field changes.
func (p FieldPatch) IsEmpty() bool {
	return p.CompanyName == nil && p.PhysicalAddress == nil && p.Email == nil && p.Website == nil
}
