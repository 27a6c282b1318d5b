// Package reconcile groups phone records sharing a number and merges company
// data between them. Merging is a field-level union: blanks are filled,
// non-blank values are never overwritten, so information arriving in any one
// upload eventually propagates to every stored record sharing the number
// without destroying previously captured data.
package reconcile

import (
	"github.com/Gobusters/ectologger"

	"github.com/aster-data/aster/pkg/models"
)

// Reconciler implements intra-batch deduplication and the cross-record
// completeness merge.
type Reconciler struct {
	logger ectologger.Logger
}

func NewReconciler(logger ectologger.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// DedupeBatch groups the batch by phone number and keeps the first
// occurrence of each. Later occurrences are reported as duplicates, and
// their company data is unioned into the kept record first, so nothing is
// silently dropped.
func (r *Reconciler) DedupeBatch(records []*models.PhoneRecord) ([]*models.PhoneRecord, []models.DuplicateInfo) {
	survivors := make([]*models.PhoneRecord, 0, len(records))
	firstByPhone := make(map[string]*models.PhoneRecord)
	var duplicates []models.DuplicateInfo

	for _, rec := range records {
		first, seen := firstByPhone[rec.PhoneNumber]
		if !seen {
			firstByPhone[rec.PhoneNumber] = rec
			survivors = append(survivors, rec)
			continue
		}

		FillBlankFields(first, rec)
		duplicates = append(duplicates, models.DuplicateInfo{
			ID:          rec.ID,
			PhoneNumber: rec.PhoneNumber,
			KeptID:      first.ID,
		})
	}

	if len(duplicates) > 0 {
		r.logger.WithFields(map[string]any{
			"batch_size": len(records),
			"duplicates": len(duplicates),
		}).Info("Deduplicated batch")
	}

	return survivors, duplicates
}

// GroupByPhone buckets validated rows by phone number, preserving member
// order within each group. Only groups of size >1 are returned.
func GroupByPhone(rows []*models.ValidatedRecord) [][]*models.ValidatedRecord {
	order := make([]string, 0)
	byPhone := make(map[string][]*models.ValidatedRecord)
	for _, row := range rows {
		if _, ok := byPhone[row.Phone]; !ok {
			order = append(order, row.Phone)
		}
		byPhone[row.Phone] = append(byPhone[row.Phone], row)
	}

	var groups [][]*models.ValidatedRecord
	for _, p := range order {
		if len(byPhone[p]) > 1 {
			groups = append(groups, byPhone[p])
		}
	}
	return groups
}

// CompletenessMerge runs the donor merge over one group of validated rows
// sharing a phone number: the most complete member donates into every other
// member's blank name, address, and website fields. Ties on completeness go
// to the earlier-inserted member. It returns the members that changed.
func (r *Reconciler) CompletenessMerge(group []*models.ValidatedRecord) []*models.ValidatedRecord {
	if len(group) < 2 {
		return nil
	}

	donor := group[0]
	for _, member := range group[1:] {
		// strict: equal scores keep the earlier member
		if member.Completeness() > donor.Completeness() {
			donor = member
		}
	}

	var changed []*models.ValidatedRecord
	for _, member := range group {
		if member == donor {
			continue
		}
		if fillValidatedBlanks(member, donor) {
			changed = append(changed, member)
		}
	}

	return changed
}

// FillBlankFields unions src's company fields into dst's blanks. Non-blank
// dst fields are left untouched.
func FillBlankFields(dst, src *models.PhoneRecord) bool {
	changed := false
	if dst.CompanyName == "" && src.CompanyName != "" {
		dst.CompanyName = src.CompanyName
		changed = true
	}
	if dst.PhysicalAddress == "" && src.PhysicalAddress != "" {
		dst.PhysicalAddress = src.PhysicalAddress
		changed = true
	}
	if dst.Email == "" && src.Email != "" {
		dst.Email = src.Email
		changed = true
	}
	if dst.Website == "" && src.Website != "" {
		dst.Website = src.Website
		changed = true
	}
	return changed
}

// fillValidatedBlanks unions src's company fields into dst's blanks. Email is
// never copied between stored rows: the donor keeps its email, so a copy
// would put the same address on two validated rows and the store holds email
// unique.
func fillValidatedBlanks(dst, src *models.ValidatedRecord) bool {
	changed := false
	if dst.CompanyName == "" && src.CompanyName != "" {
		dst.CompanyName = src.CompanyName
		changed = true
	}
	if dst.PhysicalAddress == "" && src.PhysicalAddress != "" {
		dst.PhysicalAddress = src.PhysicalAddress
		changed = true
	}
	if dst.Website == "" && src.Website != "" {
		dst.Website = src.Website
		changed = true
	}
	return changed
}

// UnionPatch computes the field patch that fills existing's blanks from
// incoming. An empty patch means the row already holds everything incoming
// carries.
func UnionPatch(existing *models.ValidatedRecord, incoming *models.PhoneRecord) models.FieldPatch {
	var patch models.FieldPatch
	if existing.CompanyName == "" && incoming.CompanyName != "" {
		v := incoming.CompanyName
		patch.CompanyName = &v
	}
	if existing.PhysicalAddress == "" && incoming.PhysicalAddress != "" {
		v := incoming.PhysicalAddress
		patch.PhysicalAddress = &v
	}
	if existing.Email == "" && incoming.Email != "" {
		v := incoming.Email
		patch.Email = &v
	}
	if existing.Website == "" && incoming.Website != "" {
		v := incoming.Website
		patch.Website = &v
	}
	return patch
}
