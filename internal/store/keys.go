// Package store wraps the shared Redis instance behind the handful of
// primitives the moderation core needs: atomic increments, set membership,
// ordered lists and plain records.
package store

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	warnKeyPattern      = "warns:%s:%d"
	sanctionsKeyPattern = "sanctions:%d"
	caseKeyPattern      = "moderation:case:%d"
	notesKeyPattern     = "context:%d"

	// CaseCounterKey is the dedicated counter every case id is drawn from.
	CaseCounterKey = "moderation:case_id"

	// StaffKey holds the set of staff identities with moderation authority.
	StaffKey = "staff:members"

	// SanctionsScanPattern matches every member's sanction list.
	SanctionsScanPattern = "sanctions:*"
)

func WarnKey(category string, memberID int64) string {
	return fmt.Sprintf(warnKeyPattern, category, memberID)
}

func SanctionsKey(memberID int64) string {
	return fmt.Sprintf(sanctionsKeyPattern, memberID)
}

func CaseKey(caseID int64) string {
	return fmt.Sprintf(caseKeyPattern, caseID)
}

func NotesKey(memberID int64) string {
	return fmt.Sprintf(notesKeyPattern, memberID)
}

// MemberFromSanctionsKey recovers the member id from a sanctions list key.
func MemberFromSanctionsKey(key string) (int64, error) {
	raw, ok := strings.CutPrefix(key, "sanctions:")
	if !ok {
		return 0, fmt.Errorf("not a sanctions key: %s", key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse member id from key %s: %w", key, err)
	}
	return id, nil
}
