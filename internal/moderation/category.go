// Package moderation implements the sanction lifecycle: authorization,
// warning counters, the sanction record store, the case ledger and the
// background expiry reconciler.
package moderation

import (
	"fmt"
	"strings"

	apperr "github.com/wardenbot/warden/internal/errors"
)

// Category is the closed set of sanctionable community areas. Unknown
// values are rejected at the boundary, not deep in the operations.
type Category string

const (
	CategoryAuction    Category = "Auction"
	CategoryCrosstrade Category = "Crosstrade"
	CategoryMarket     Category = "Market"
	CategoryPricing    Category = "Pricing"
	CategorySpawn      Category = "Spawn"
)

var categories = []Category{
	CategoryAuction,
	CategoryCrosstrade,
	CategoryMarket,
	CategoryPricing,
	CategorySpawn,
}

func ParseCategory(raw string) (Category, error) {
	for _, c := range categories {
		if strings.EqualFold(raw, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q: %w", raw, apperr.ErrInvalidInput)
}

// WarnCategory is the closed set of warning ledgers kept per member.
type WarnCategory string

const (
	WarnAuction WarnCategory = "Auction"
	WarnGeneral WarnCategory = "General"
)

func ParseWarnCategory(raw string) (WarnCategory, error) {
	switch {
	case strings.EqualFold(raw, string(WarnAuction)):
		return WarnAuction, nil
	case strings.EqualFold(raw, string(WarnGeneral)):
		return WarnGeneral, nil
	}
	return "", fmt.Errorf("unknown warning category %q: %w", raw, apperr.ErrInvalidInput)
}
