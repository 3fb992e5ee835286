package relation

import (
	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/naming"
)

// partSeparator joins a master table name and a part's own name.
const partSeparator = "__"

// TableNameForPart derives the table name of a Part relation owned by master.
// The master must be bound and must belong to a tier that can own parts.
func (r *TierRegistry) TableNameForPart(identifier string, master *Relation) (string, error) {
	if master == nil {
		return "", &core.UnboundMasterError{Part: identifier}
	}
	if !master.Tier().CanBeMaster() {
		return "", &core.UnboundMasterError{Part: identifier, MasterTier: master.Tier()}
	}

	masterName, err := master.TableName()
	if err != nil {
		return "", err
	}
	own, err := naming.ToStorageName(identifier)
	if err != nil {
		return "", err
	}

	name := masterName + partSeparator + own
	if !r.part.Pattern.MatchString(name) {
		return "", &core.NamingError{
			Identifier: identifier,
			Name:       name,
			Reason:     "does not match part pattern",
		}
	}
	return name, nil
}

// PartPattern returns the composite pattern matched by Part table names:
// exactly one master segment, a literal double underscore, one base segment.
func (r *TierRegistry) PartPattern() string {
	return r.part.Pattern.String()
}
