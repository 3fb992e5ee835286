package relation

import (
	"fmt"
	"sync/atomic"

	"github.com/leapstack-labs/tiersql/pkg/core"
	"github.com/leapstack-labs/tiersql/pkg/naming"
)

// Row is one tuple of a relation, keyed by attribute name.
type Row map[string]any

// Relation is the descriptor of one relation type.
//
// Identifier, tier and prefix are fixed at construction. The master slot of a
// Part relation is written once by BindMaster. The table name is derived on
// first successful access and cached; concurrent first readers may derive it
// more than once but always store the same value.
type Relation struct {
	identifier string
	tier       core.Tier
	tiers      *TierRegistry
	populator  Populator
	contents   []Row

	master    atomic.Pointer[Relation]
	tableName atomic.Pointer[string]
}

// Option configures a Relation at definition time.
type Option func(*Relation)

// WithPopulator attaches the population capability required by Imported and
// Computed relations.
func WithPopulator(p Populator) Option {
	return func(r *Relation) { r.populator = p }
}

// WithContents attaches the rows a Lookup relation is pre-filled with.
func WithContents(rows []Row) Option {
	return func(r *Relation) { r.contents = rows }
}

// WithTierRegistry overrides DefaultTiers.
func WithTierRegistry(tiers *TierRegistry) Option {
	return func(r *Relation) { r.tiers = tiers }
}

// New defines a relation type. Identifier problems are reported here, at
// definition time, rather than on first table name access.
func New(identifier string, tier core.Tier, opts ...Option) (*Relation, error) {
	if !tier.IsValid() {
		return nil, fmt.Errorf("relation %q: invalid tier %s", identifier, tier)
	}
	if _, err := naming.ToStorageName(identifier); err != nil {
		return nil, err
	}

	r := &Relation{identifier: identifier, tier: tier, tiers: DefaultTiers}
	for _, opt := range opts {
		opt(r)
	}

	switch {
	case tier.RequiresPopulator() && r.populator == nil:
		return nil, fmt.Errorf("relation %q: %s relations require a populator", identifier, tier)
	case !tier.RequiresPopulator() && r.populator != nil:
		return nil, fmt.Errorf("relation %q: %s relations cannot have a populator", identifier, tier)
	case tier != core.TierLookup && len(r.contents) > 0:
		return nil, fmt.Errorf("relation %q: only lookup relations have contents", identifier)
	}

	return r, nil
}

// MustNew is like New but panics on error. Intended for package-level
// relation definitions.
func MustNew(identifier string, tier core.Tier, opts ...Option) *Relation {
	r, err := New(identifier, tier, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Identifier returns the declared identifier, e.g. "MySession".
func (r *Relation) Identifier() string { return r.identifier }

// Tier returns the relation's tier.
func (r *Relation) Tier() core.Tier { return r.tier }

// Prefix returns the tier prefix. Part relations carry no prefix of their own.
func (r *Relation) Prefix() string { return r.tiers.Prefix(r.tier) }

// Populator returns the population capability, nil unless Imported or Computed.
func (r *Relation) Populator() Populator { return r.populator }

// HasPopulator reports whether the relation is filled by a population routine.
func (r *Relation) HasPopulator() bool { return r.populator != nil }

// Contents returns the rows of a Lookup relation.
func (r *Relation) Contents() []Row { return r.contents }

// Master returns the bound master of a Part relation, or nil.
func (r *Relation) Master() *Relation { return r.master.Load() }

// BindMaster binds the owning relation of a Part relation. It must be called
// exactly once, before the first TableName access.
func (r *Relation) BindMaster(master *Relation) error {
	if r.tier != core.TierPart {
		return fmt.Errorf("relation %q is %s: only part relations take a master", r.identifier, r.tier)
	}
	if master == nil {
		return &core.UnboundMasterError{Part: r.identifier}
	}
	if !master.Tier().CanBeMaster() {
		return &core.UnboundMasterError{Part: r.identifier, MasterTier: master.Tier()}
	}
	if !r.master.CompareAndSwap(nil, master) {
		return fmt.Errorf("relation %q: %w", r.identifier, core.ErrMasterAlreadyBound)
	}
	return nil
}

// TableName returns the storage name, deriving and caching it on first use.
func (r *Relation) TableName() (string, error) {
	if cached := r.tableName.Load(); cached != nil {
		return *cached, nil
	}

	var (
		name string
		err  error
	)
	if r.tier == core.TierPart {
		name, err = r.tiers.TableNameForPart(r.identifier, r.master.Load())
	} else {
		name, err = r.tiers.TableNameFor(r.tier, r.identifier)
	}
	if err != nil {
		return "", err
	}

	r.tableName.Store(&name)
	return name, nil
}

// FullTableName returns the database-qualified name: `database`.`table_name`.
func (r *Relation) FullTableName(database string) (string, error) {
	if database == "" {
		return "", fmt.Errorf("relation %q: %w", r.identifier, core.ErrEmptyDatabase)
	}
	name, err := r.TableName()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("`%s`.`%s`", database, name), nil
}

func (r *Relation) String() string {
	return fmt.Sprintf("%s(%s)", r.identifier, r.tier)
}
