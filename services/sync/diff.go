package sync

import (
	"crypto/sha256"
	"encoding/hex"

	"rostersync-backend/lib/sis"
)

// contentHash fingerprints the synced subset of a record. The field
// order is fixed: the hash is a content fingerprint, and reordering
// fields would falsely mark every record as changed.
func contentHash(r sis.Record) string {
	parts := []string{
		r.SourcedID,
		r.FirstName,
		r.LastName,
		r.GradeLevel,
		r.HomeRoom,
		r.EnrollStatus,
		r.Email,
		r.SchoolID,
	}

	h := sha256.New()
	for _, part := range parts {
		h.Write([]byte(part))
		// separator so ("ab","c") and ("a","bc") hash differently
		h.Write([]byte{0x1f})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Diff returns the records whose content changed since the prior index
// was built, plus the replacement index. A record counts as changed
// when its id is new or its hash differs. The returned index covers
// every input record and nothing else, so ids that disappeared from
// the source drop out of it. It stores only hex digests, never record
// content.
func Diff(records []sis.Record, prior map[string]string) (changed []sis.Record, next map[string]string) {
	next = make(map[string]string, len(records))
	for _, r := range records {
		hash := contentHash(r)
		next[r.SourcedID] = hash
		if old, ok := prior[r.SourcedID]; !ok || old != hash {
			changed = append(changed, r)
		}
	}
	return changed, next
}
