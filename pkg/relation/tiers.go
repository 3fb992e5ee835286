package relation

import (
	"fmt"
	"regexp"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/naming"
)

// TierDefinition holds the fixed naming rules of one tier.
type TierDefinition struct {
	Tier   core.Tier
	Prefix string
	// Pattern matches complete table names of this tier.
	Pattern *regexp.Regexp
	// RequiresPopulator is true for tiers whose rows come from a population routine.
	RequiresPopulator bool

	// group is the named-group form of the pattern, without anchors.
	group string
}

// TierRegistry holds the tier definitions and derives table names from them.
// It is immutable after construction and safe for concurrent use.
type TierRegistry struct {
	defs map[core.Tier]*TierDefinition
	part *TierDefinition
}

// DefaultTiers is the registry used by relations that don't supply their own.
var DefaultTiers = NewTierRegistry()

// masterTiers lists the tiers that may own Part relations, in the order they
// appear in the Part pattern's master alternation.
var masterTiers = []core.Tier{core.TierManual, core.TierImported, core.TierComputed, core.TierLookup}

// NewTierRegistry builds the five tier definitions.
func NewTierRegistry() *TierRegistry {
	r := &TierRegistry{defs: make(map[core.Tier]*TierDefinition, 5)}

	for _, def := range []struct {
		tier   core.Tier
		prefix string
	}{
		{core.TierManual, ""},
		{core.TierLookup, "#"},
		{core.TierImported, "_"},
		{core.TierComputed, "__"},
	} {
		group := fmt.Sprintf(`(?P<%s>%s%s)`, def.tier, regexp.QuoteMeta(def.prefix), naming.BasePattern)
		r.defs[def.tier] = &TierDefinition{
			Tier:              def.tier,
			Prefix:            def.prefix,
			Pattern:           regexp.MustCompile(`^` + group + `$`),
			RequiresPopulator: def.tier.RequiresPopulator(),
			group:             group,
		}
	}

	masters := ""
	for i, t := range masterTiers {
		if i > 0 {
			masters += "|"
		}
		masters += r.defs[t].group
	}
	partGroup := `(?P<master>` + masters + `){1,1}__(?P<part>` + naming.BasePattern + `)`
	r.part = &TierDefinition{
		Tier:    core.TierPart,
		Pattern: regexp.MustCompile(`^` + partGroup + `$`),
		group:   partGroup,
	}
	r.defs[core.TierPart] = r.part

	return r
}

// Definition returns the definition of a tier.
func (r *TierRegistry) Definition(t core.Tier) (*TierDefinition, bool) {
	def, ok := r.defs[t]
	return def, ok
}

// Prefix returns the storage prefix of a tier ("" for Manual and Part).
func (r *TierRegistry) Prefix(t core.Tier) string {
	if def, ok := r.defs[t]; ok {
		return def.Prefix
	}
	return ""
}

// TableNameFor derives the table name of a non-Part relation.
// Part relations must go through TableNameForPart.
func (r *TierRegistry) TableNameFor(t core.Tier, identifier string) (string, error) {
	if t == core.TierPart {
		return "", &core.UnboundMasterError{Part: identifier}
	}
	def, ok := r.defs[t]
	if !ok {
		return "", &core.NamingError{Identifier: identifier, Reason: fmt.Sprintf("unknown tier %s", t)}
	}

	base, err := naming.ToStorageName(identifier)
	if err != nil {
		return "", err
	}

	name := def.Prefix + base
	if !def.Pattern.MatchString(name) {
		return "", &core.NamingError{
			Identifier: identifier,
			Name:       name,
			Reason:     fmt.Sprintf("does not match %s pattern", t),
		}
	}
	return name, nil
}
