package relation

import (
	"github.com/leapstack-labs/tiersql/pkg/core"
)

// Classification is the result of parsing a storage name back into its tier.
type Classification struct {
	Name string
	Tier core.Tier

	// Set for Part names only.
	Master     string
	MasterTier core.Tier
	Part       string
}

// Classify determines the tier of a storage name using the tier patterns.
// Names that match no tier yield a NamingError.
func (r *TierRegistry) Classify(name string) (Classification, error) {
	if m := r.part.Pattern.FindStringSubmatch(name); m != nil {
		c := Classification{
			Name:   name,
			Tier:   core.TierPart,
			Master: m[r.part.Pattern.SubexpIndex("master")],
			Part:   m[r.part.Pattern.SubexpIndex("part")],
		}
		for _, t := range masterTiers {
			if idx := r.part.Pattern.SubexpIndex(t.String()); idx >= 0 && m[idx] != "" {
				c.MasterTier = t
				break
			}
		}
		return c, nil
	}

	for _, t := range masterTiers {
		if r.defs[t].Pattern.MatchString(name) {
			return Classification{Name: name, Tier: t}, nil
		}
	}

	return Classification{}, &core.NamingError{Identifier: name, Name: name, Reason: "does not match any tier pattern"}
}

// Classify classifies name with DefaultTiers.
func Classify(name string) (Classification, error) {
	return DefaultTiers.Classify(name)
}
