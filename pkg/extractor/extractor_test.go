package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aster-data/aster/pkg/models"
	"github.com/aster-data/aster/pkg/phone"
	"github.com/aster-data/aster/pkg/sheet"
)

func rolesWith(mutate func(*models.ColumnRoleMap)) models.ColumnRoleMap {
	roles := models.NewColumnRoleMap()
	mutate(&roles)
	return roles
}

func TestExpandRow_SinglePhone(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.IdentifierColumn = 0
		r.PhoneColumns = []int{1}
		r.AttributeColumns[models.AttributeCompanyName] = 2
		r.AttributeColumns[models.AttributeEmail] = 3
	})

	records, err := e.ExpandRow("Sheet1", []string{"C-42", "+65 9123 4567", " Acme  Pte Ltd ", "Ops@Acme.SG"}, 5, roles)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "C-42", rec.ID)
	assert.Equal(t, "91234567", rec.PhoneNumber)
	assert.True(t, rec.IsValidNumber)
	assert.Equal(t, "Sheet1", rec.SourceSheet)
	assert.Equal(t, 5, rec.RowIndex)
	assert.Equal(t, 1, rec.ColumnIndex)
	assert.Equal(t, "Acme Pte Ltd", rec.CompanyName)
	assert.Equal(t, "ops@acme.sg", rec.Email)
	assert.Empty(t, rec.BaseID)
	assert.Empty(t, rec.SiblingIDs)
}

func TestExpandRow_MultiplePhones(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.IdentifierColumn = 0
		r.PhoneColumns = []int{1, 2}
	})

	records, err := e.ExpandRow("Sheet1", []string{"C-42", "91234567", "6123 4567"}, 0, roles)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "C-42_1", records[0].ID)
	assert.Equal(t, "C-42_2", records[1].ID)
	assert.Equal(t, "C-42", records[0].BaseID)
	assert.Equal(t, 1, records[0].SiblingPosition)
	assert.Equal(t, 2, records[1].SiblingPosition)
	assert.Equal(t, []string{"C-42_2"}, records[0].SiblingIDs)
	assert.Equal(t, []string{"C-42_1"}, records[1].SiblingIDs)
}

func TestExpandRow_PhoneAsIdentityFallback(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.PhoneColumns = []int{0}
	})

	records, err := e.ExpandRow("Sheet1", []string{"+65 8123 4567"}, 0, roles)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "81234567", records[0].ID)
}

func TestExpandRow_BlankIdentifierFallsBack(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.IdentifierColumn = 0
		r.PhoneColumns = []int{1}
	})

	records, err := e.ExpandRow("Sheet1", []string{"N/A", "91234567"}, 0, roles)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "91234567", records[0].ID)
}

func TestExpandRow_InvalidNumberKept(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.PhoneColumns = []int{0}
	})

	records, err := e.ExpandRow("Sheet1", []string{"12345"}, 0, roles)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "12345", records[0].PhoneNumber)
	assert.False(t, records[0].IsValidNumber)
}

func TestExpandRow_NoDigitsIsRowError(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.PhoneColumns = []int{0}
	})

	records, err := e.ExpandRow("Sheet1", []string{"call us"}, 0, roles)
	require.ErrorIs(t, err, ErrNoPhoneDigits)
	assert.Empty(t, records)
}

func TestExpandRow_DuplicateNumberAcrossColumns(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.IdentifierColumn = 0
		r.PhoneColumns = []int{1, 2}
	})

	records, err := e.ExpandRow("Sheet1", []string{"C-1", "91234567", "9123-4567"}, 0, roles)
	require.NoError(t, err)
	// Both cells survive expansion; batch dedupe decides later.
	require.Len(t, records, 2)
	assert.Equal(t, records[0].PhoneNumber, records[1].PhoneNumber)
}

func TestExpandRow_PlaceholderAttributesScrubbed(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.PhoneColumns = []int{0}
		r.AttributeColumns[models.AttributeCompanyName] = 1
		r.AttributeColumns[models.AttributeWebsite] = 2
	})

	records, err := e.ExpandRow("Sheet1", []string{"91234567", "-", "N/A"}, 0, roles)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].CompanyName)
	assert.Empty(t, records[0].Website)
}

func TestExpandSheet(t *testing.T) {
	e := New(phone.DefaultFormat())
	roles := rolesWith(func(r *models.ColumnRoleMap) {
		r.IdentifierColumn = 0
		r.PhoneColumns = []int{1}
	})

	structure := sheet.DetectStructure(sheet.CellGrid{
		{"ID", "Phone"},
		{"C-1", "91234567"},
		{"C-2", "nothing here"},
		{"C-3", "81234567"},
	}, 10)

	records, rowErrs := e.ExpandSheet("Sheet1", structure, roles)
	require.Len(t, records, 2)
	assert.Equal(t, "C-1", records[0].ID)
	assert.Equal(t, "C-3", records[1].ID)
	// Row indexes refer to the original grid.
	assert.Equal(t, 1, records[0].RowIndex)
	assert.Equal(t, 3, records[1].RowIndex)

	// The digitless row is reported, not silently dropped.
	require.Len(t, rowErrs, 1)
	assert.Equal(t, "Sheet1", rowErrs[0].Sheet)
	assert.Equal(t, 2, rowErrs[0].Row)
	assert.ErrorIs(t, rowErrs[0].Err, ErrNoPhoneDigits)
}

func TestExpandSheet_NoPhoneColumns(t *testing.T) {
	e := New(phone.DefaultFormat())

	structure := sheet.DetectStructure(sheet.CellGrid{
		{"Name", "Address"},
		{"Acme", "1 Raffles Pl"},
	}, 10)

	records, rowErrs := e.ExpandSheet("Sheet1", structure, models.NewColumnRoleMap())
	assert.Nil(t, records)
	assert.Nil(t, rowErrs)
}
