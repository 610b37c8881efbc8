package access

import (
	"context"
	"sort"
	"time"

	"github.com/propdocs/propdocs/pkg/identity"
)

// ResourceKind identifies the kind of resource an access grant covers.
type ResourceKind string

const (
	ResourceBuilding ResourceKind = "building"
	ResourceUnit     ResourceKind = "unit"
)

// Grant is an explicit per-principal access grant.
type Grant struct {
	ID          string       `json:"id"`
	PrincipalID string       `json:"principal_id"`
	Kind        ResourceKind `json:"resource_kind"`
	ResourceID  string       `json:"resource_id"`
	GrantedBy   *string      `json:"granted_by,omitempty"`
	GrantedAt   time.Time    `json:"granted_at"`
}

// OrgGrant is an access grant held by an organization and inherited by every
// principal linked to it. A building-level org grant covers all units of
// that building; the containment is evaluated at read time, never stored.
type OrgGrant struct {
	ID         string                   `json:"id"`
	Org        identity.OrganizationRef `json:"organization"`
	Kind       ResourceKind             `json:"resource_kind"`
	ResourceID string                   `json:"resource_id"`
	GrantedBy  *string                  `json:"granted_by,omitempty"`
	GrantedAt  time.Time                `json:"granted_at"`
}

// IDSet is a set of resource IDs.
type IDSet map[string]struct{}

// Contains reports set membership.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts an ID into the set.
func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

// Slice returns the set as a sorted slice.
func (s IDSet) Slice() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GrantStore lists access grants. Implementations are read paths over the
// grant tables; the resolver never mutates grants.
type GrantStore interface {
	// ListDirectGrants returns the resource IDs of the given kind granted
	// directly to a principal.
	ListDirectGrants(ctx context.Context, principalID string, kind ResourceKind) ([]string, error)

	// ListOrgGrants returns the resource IDs of the given kind granted to an
	// organization.
	ListOrgGrants(ctx context.Context, org identity.OrganizationRef, kind ResourceKind) ([]string, error)
}

// ResourceDirectory answers structural questions about buildings and units.
// It is the source of truth for the building-contains-unit relation and for
// blanket-access resolution.
type ResourceDirectory interface {
	// ListBuildingIDs returns every building ID.
	ListBuildingIDs(ctx context.Context) ([]string, error)

	// ListUnitIDs returns every unit ID.
	ListUnitIDs(ctx context.Context) ([]string, error)

	// ListUnitsOfBuilding returns the unit IDs belonging to a building.
	ListUnitsOfBuilding(ctx context.Context, buildingID string) ([]string, error)

	// BuildingOfUnit returns the building a unit belongs to, or "" if the
	// unit is unknown.
	BuildingOfUnit(ctx context.Context, unitID string) (string, error)

	// BuildingExists reports whether a building currently exists. Used to
	// exclude grants referencing deleted buildings at read time.
	BuildingExists(ctx context.Context, buildingID string) (bool, error)
}
