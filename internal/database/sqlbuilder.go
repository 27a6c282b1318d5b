package database

import (
	"fmt"
	"strings"
)

// Excluded references a column of the EXCLUDED pseudo-row inside an
// ON CONFLICT DO UPDATE clause.
func Excluded(column string) string {
	return fmt.Sprintf("EXCLUDED.%s", column)
}

// ExcludedAssignments renders a SET list that takes every given column from
// the EXCLUDED pseudo-row. Appended to a built insert, after the sqlbuilder
// step, the way upsert queries are assembled throughout the repositories.
func ExcludedAssignments(columns ...string) string {
	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = fmt.Sprintf("%s = %s", col, Excluded(col))
	}
	return strings.Join(assignments, ", ")
}

// OnConflictUpdate renders an ON CONFLICT (keys) DO UPDATE SET clause
// updating the given columns from EXCLUDED.
func OnConflictUpdate(conflictColumns []string, updateColumns ...string) string {
	return fmt.Sprintf(
		" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(conflictColumns, ", "),
		ExcludedAssignments(updateColumns...),
	)
}
