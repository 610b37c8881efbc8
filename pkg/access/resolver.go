package access

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/propdocs/propdocs/pkg/identity"
)

const (
	defaultUnitCacheSize = 1024
	defaultUnitCacheTTL  = 30 * time.Second
)

// Resolver computes the set of buildings and units a principal may act on.
//
// Access is the union of four sources: direct grants, grants inherited from
// the principal's organization, contractor blanket access, and admin blanket
// access. Unit access additionally derives from building access: every unit
// of an accessible building is accessible, evaluated by a join at read time
// so that units added after a grant are covered with no further writes.
type Resolver struct {
	grants GrantStore
	dir    ResourceDirectory

	// unitCache memoizes units-of-building lookups for a short TTL. The
	// derived containment rule makes this the hottest query on the read
	// path; a stale entry only delays visibility of a brand-new unit by the
	// TTL, it can never grant access that was not already implied.
	unitCache *lru.LRU[string, []string]

	// checkExistence excludes grants whose building no longer exists.
	checkExistence bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithExistenceCheck makes the resolver drop grants referencing buildings
// the directory no longer knows about.
func WithExistenceCheck() ResolverOption {
	return func(r *Resolver) { r.checkExistence = true }
}

// WithUnitCacheTTL overrides the units-of-building cache TTL. A zero or
// negative TTL disables the cache.
func WithUnitCacheTTL(ttl time.Duration) ResolverOption {
	return func(r *Resolver) {
		if ttl <= 0 {
			r.unitCache = nil
			return
		}
		r.unitCache = lru.NewLRU[string, []string](defaultUnitCacheSize, nil, ttl)
	}
}

// NewResolver creates a resolver over the given grant store and directory.
func NewResolver(grants GrantStore, dir ResourceDirectory, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		grants:    grants,
		dir:       dir,
		unitCache: lru.NewLRU[string, []string](defaultUnitCacheSize, nil, defaultUnitCacheTTL),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAccessibleBuildings returns every building the principal can act
// on. Principals with no grants and no organization resolve to the empty
// set; that is a normal answer, not an error.
func (r *Resolver) ResolveAccessibleBuildings(ctx context.Context, p *identity.Principal) (IDSet, error) {
	set := IDSet{}
	if p == nil {
		return set, nil
	}

	if p.Role.IsAdmin() || p.Role.IsContractor() {
		ids, err := r.dir.ListBuildingIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list buildings: %w", err)
		}
		for _, id := range ids {
			set.Add(id)
		}
		return set, nil
	}

	direct, err := r.grants.ListDirectGrants(ctx, p.ID, ResourceBuilding)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct building grants: %w", err)
	}
	for _, id := range direct {
		set.Add(id)
	}

	if p.Organization != nil {
		orgGrants, err := r.grants.ListOrgGrants(ctx, *p.Organization, ResourceBuilding)
		if err != nil {
			return nil, fmt.Errorf("failed to list organization building grants: %w", err)
		}
		for _, id := range orgGrants {
			set.Add(id)
		}
	}

	if r.checkExistence {
		for id := range set {
			exists, err := r.dir.BuildingExists(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("failed to check building existence: %w", err)
			}
			if !exists {
				delete(set, id)
			}
		}
	}

	return set, nil
}

// ResolveAccessibleUnits returns every unit the principal can act on,
// including units derived from accessible buildings.
func (r *Resolver) ResolveAccessibleUnits(ctx context.Context, p *identity.Principal) (IDSet, error) {
	set := IDSet{}
	if p == nil {
		return set, nil
	}

	if p.Role.IsAdmin() || p.Role.IsContractor() {
		ids, err := r.dir.ListUnitIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list units: %w", err)
		}
		for _, id := range ids {
			set.Add(id)
		}
		return set, nil
	}

	direct, err := r.grants.ListDirectGrants(ctx, p.ID, ResourceUnit)
	if err != nil {
		return nil, fmt.Errorf("failed to list direct unit grants: %w", err)
	}
	for _, id := range direct {
		set.Add(id)
	}

	if p.Organization != nil {
		orgGrants, err := r.grants.ListOrgGrants(ctx, *p.Organization, ResourceUnit)
		if err != nil {
			return nil, fmt.Errorf("failed to list organization unit grants: %w", err)
		}
		for _, id := range orgGrants {
			set.Add(id)
		}
	}

	buildings, err := r.ResolveAccessibleBuildings(ctx, p)
	if err != nil {
		return nil, err
	}
	for buildingID := range buildings {
		units, err := r.unitsOfBuilding(ctx, buildingID)
		if err != nil {
			return nil, err
		}
		for _, id := range units {
			set.Add(id)
		}
	}

	return set, nil
}

// CanAccessBuilding reports whether the principal can act on one building.
// It never materializes the full accessible set: only the principal's own
// grant rows are consulted.
func (r *Resolver) CanAccessBuilding(ctx context.Context, p *identity.Principal, buildingID string) (bool, error) {
	if p == nil || buildingID == "" {
		return false, nil
	}
	if p.Role.IsAdmin() || p.Role.IsContractor() {
		return true, nil
	}

	if r.checkExistence {
		exists, err := r.dir.BuildingExists(ctx, buildingID)
		if err != nil {
			return false, fmt.Errorf("failed to check building existence: %w", err)
		}
		if !exists {
			return false, nil
		}
	}

	direct, err := r.grants.ListDirectGrants(ctx, p.ID, ResourceBuilding)
	if err != nil {
		return false, fmt.Errorf("failed to list direct building grants: %w", err)
	}
	for _, id := range direct {
		if id == buildingID {
			return true, nil
		}
	}

	if p.Organization != nil {
		orgGrants, err := r.grants.ListOrgGrants(ctx, *p.Organization, ResourceBuilding)
		if err != nil {
			return false, fmt.Errorf("failed to list organization building grants: %w", err)
		}
		for _, id := range orgGrants {
			if id == buildingID {
				return true, nil
			}
		}
	}

	return false, nil
}

// CanAccessUnit reports whether the principal can act on one unit, either
// through a unit-level grant or through access to the unit's building.
func (r *Resolver) CanAccessUnit(ctx context.Context, p *identity.Principal, unitID string) (bool, error) {
	if p == nil || unitID == "" {
		return false, nil
	}
	if p.Role.IsAdmin() || p.Role.IsContractor() {
		return true, nil
	}

	direct, err := r.grants.ListDirectGrants(ctx, p.ID, ResourceUnit)
	if err != nil {
		return false, fmt.Errorf("failed to list direct unit grants: %w", err)
	}
	for _, id := range direct {
		if id == unitID {
			return true, nil
		}
	}

	if p.Organization != nil {
		orgGrants, err := r.grants.ListOrgGrants(ctx, *p.Organization, ResourceUnit)
		if err != nil {
			return false, fmt.Errorf("failed to list organization unit grants: %w", err)
		}
		for _, id := range orgGrants {
			if id == unitID {
				return true, nil
			}
		}
	}

	// Derived access: unit inherits from its building.
	buildingID, err := r.dir.BuildingOfUnit(ctx, unitID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve building of unit: %w", err)
	}
	if buildingID == "" {
		return false, nil
	}
	return r.CanAccessBuilding(ctx, p, buildingID)
}

func (r *Resolver) unitsOfBuilding(ctx context.Context, buildingID string) ([]string, error) {
	if r.unitCache != nil {
		if units, ok := r.unitCache.Get(buildingID); ok {
			return units, nil
		}
	}
	units, err := r.dir.ListUnitsOfBuilding(ctx, buildingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list units of building: %w", err)
	}
	if r.unitCache != nil {
		r.unitCache.Add(buildingID, units)
	}
	return units, nil
}
