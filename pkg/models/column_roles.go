package models

// AttributeKind is a company attribute a column can be mapped to.
type AttributeKind string

const (
	AttributeCompanyName     AttributeKind = "company_name"
	AttributePhysicalAddress AttributeKind = "physical_address"
	AttributeEmail           AttributeKind = "email"
	AttributeWebsite         AttributeKind = "website"
)

// AttributeKinds lists the company attribute kinds in a stable order.
var AttributeKinds = []AttributeKind{
	AttributeCompanyName,
	AttributePhysicalAddress,
	AttributeEmail,
	AttributeWebsite,
}

// ColumnRoleMap assigns semantic roles to the columns of one sheet. It is
// built once per sheet and never mutated afterward. A sheet may have several
// phone columns but at most one identifier column and at most one column per
// attribute kind.
type ColumnRoleMap struct {
	PhoneColumns     []int                 `json:"phone_columns"`
	IdentifierColumn int                   `json:"identifier_column"` // -1 when absent
	AttributeColumns map[AttributeKind]int `json:"attribute_columns"`
}

// NewColumnRoleMap returns an empty role map with no identifier column.
func NewColumnRoleMap() ColumnRoleMap {
	return ColumnRoleMap{
		IdentifierColumn: -1,
		AttributeColumns: make(map[AttributeKind]int),
	}
}

// HasPhoneColumns reports whether any phone-bearing column was found. A
// sheet without phone columns yields zero records, which is not an error.
func (m ColumnRoleMap) HasPhoneColumns() bool {
	return len(m.PhoneColumns) > 0
}

// HasIdentifier reports whether a genuine identifier column was found.
func (m ColumnRoleMap) HasIdentifier() bool {
	return m.IdentifierColumn >= 0
}
