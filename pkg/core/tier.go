package core

import (
	"fmt"
	"strings"
)

// Tier classifies a relation by data-entry origin or structural role.
type Tier int

// Tier constants. The zero value is deliberately invalid so an unset tier
// is caught at definition time.
const (
	TierUnknown Tier = iota
	TierManual
	TierLookup
	TierImported
	TierComputed
	TierPart
)

var tierNames = map[Tier]string{
	TierManual:   "manual",
	TierLookup:   "lookup",
	TierImported: "imported",
	TierComputed: "computed",
	TierPart:     "part",
}

// String returns the lowercase tier name.
func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// IsValid reports whether t is one of the five defined tiers.
func (t Tier) IsValid() bool {
	_, ok := tierNames[t]
	return ok
}

// CanBeMaster reports whether a relation of this tier may own Part relations.
func (t Tier) CanBeMaster() bool {
	switch t {
	case TierManual, TierLookup, TierImported, TierComputed:
		return true
	default:
		return false
	}
}

// RequiresPopulator reports whether relations of this tier are filled by a
// population routine rather than by direct inserts.
func (t Tier) RequiresPopulator() bool {
	return t == TierImported || t == TierComputed
}

// ParseTier converts a case-insensitive tier name to a Tier.
func ParseTier(s string) (Tier, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for t, name := range tierNames {
		if name == want {
			return t, nil
		}
	}
	return TierUnknown, fmt.Errorf("unknown tier %q (expected one of manual, lookup, imported, computed, part)", s)
}

// AllTiers returns the defined tiers in declaration order.
func AllTiers() []Tier {
	return []Tier{TierManual, TierLookup, TierImported, TierComputed, TierPart}
}
