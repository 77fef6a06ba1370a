package moderation

import (
	"strconv"
	"strings"
	"time"
)

// Kind discriminates sanction records. The wire names match what earlier
// deployments already stored, so old lists keep parsing.
type Kind string

const (
	KindCategoryBan    Kind = "ban-role"
	KindGlobalBan      Kind = "all-ban"
	KindTimeout        Kind = "timeout"
	KindAuctionWarning Kind = "warn-auction"
	KindGeneralWarning Kind = "warn-general"
)

// Sanction is one punitive action applied to a member. Records are
// immutable once written; the reconciler removes them, it never edits them.
type Sanction struct {
	Kind      Kind      `json:"type"`
	Category  Category  `json:"category,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Moderator int64     `json:"moderator"`
	IssuedAt  time.Time `json:"timestamp"`
	// Duration is the human-entered span ("2 days", "30 min"). Empty
	// means permanent.
	Duration string `json:"duration,omitempty"`
	// Count carries the post-increment warning count on warning records.
	Count int64 `json:"count,omitempty"`
}

// Deadline reports when the sanction lapses. ok is false for permanent
// records and for durations that do not parse; those are never expired.
func (s Sanction) Deadline() (time.Time, bool) {
	span, ok := ParseSpan(s.Duration)
	if !ok {
		return time.Time{}, false
	}
	return s.IssuedAt.Add(span), true
}

// ParseSpan parses the human-entered duration formats staff actually type:
// "30 min", "2 hours", "12h", "2 days", "3d".
func ParseSpan(raw string) (time.Duration, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	switch {
	case strings.Contains(s, "min"):
		n, ok := leadingInt(s)
		if !ok {
			return 0, false
		}
		return time.Duration(n) * time.Minute, true
	case strings.Contains(s, "hour"), strings.HasSuffix(s, "h"):
		n, ok := leadingInt(strings.TrimSuffix(s, "h"))
		if !ok {
			return 0, false
		}
		return time.Duration(n) * time.Hour, true
	case strings.Contains(s, "day"), strings.HasSuffix(s, "d"):
		n, ok := leadingInt(strings.TrimSuffix(s, "d"))
		if !ok {
			return 0, false
		}
		return time.Duration(n) * 24 * time.Hour, true
	}
	return 0, false
}

func leadingInt(s string) (int64, bool) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
