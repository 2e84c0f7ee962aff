// Package dedupe merges Lead Records that refer to the same person when a
// lead was contacted through multiple campaigns or providers in one pass.
package dedupe

import (
	"strconv"

	"github.com/sells-group/outreach-sync/internal/model"
)

// Merge reduces records by Contact Key. Records sharing a key collapse to a
// single survivor under a "most informative response wins" rule:
//
//   - a record with a reply beats one without,
//   - between two replied records, the later response date wins,
//   - otherwise the incumbent (first seen) is kept.
//
// The losing record is discarded whole; there is no field-level merging.
// Unaddressable records (no email, no profile URL) pass through untouched
// and are never merged. Input order of keyed records does not affect which
// record survives when exactly one of them has responded.
func Merge(records []*model.LeadRecord) []*model.LeadRecord {
	seen := make(map[string]*model.LeadRecord)
	var keyOrder []string
	var unaddressable []*model.LeadRecord

	for _, record := range records {
		if !record.Addressable() {
			unaddressable = append(unaddressable, record)
			continue
		}

		key := record.ContactKey()
		incumbent, ok := seen[key]
		if !ok {
			seen[key] = record
			keyOrder = append(keyOrder, key)
			continue
		}
		if moreInformative(record, incumbent) {
			seen[key] = record
		}
	}

	merged := make([]*model.LeadRecord, 0, len(keyOrder)+len(unaddressable))
	for _, key := range keyOrder {
		merged = append(merged, seen[key])
	}
	return append(merged, unaddressable...)
}

// moreInformative reports whether candidate should replace incumbent.
func moreInformative(candidate, incumbent *model.LeadRecord) bool {
	if candidate.Responded() && !incumbent.Responded() {
		return true
	}
	if candidate.Responded() && incumbent.Responded() {
		return responseMillis(candidate) > responseMillis(incumbent)
	}
	return false
}

// responseMillis parses the normalized millisecond response date for
// comparison. Parsing instead of comparing strings keeps "latest wins"
// correct even if the store format ever loses its fixed width.
func responseMillis(r *model.LeadRecord) int64 {
	ms, err := strconv.ParseInt(r.LatestResponseDate, 10, 64)
	if err != nil {
		return 0
	}
	return ms
}
