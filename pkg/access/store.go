package access

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/propdocs/propdocs/pkg/identity"
)

// Store persists access grants and answers directory queries using a SQL
// database. It implements both GrantStore and ResourceDirectory.
type Store struct {
	db *sql.DB
}

// NewStore creates a new access store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// ListDirectGrants returns the resource IDs granted directly to a principal.
func (s *Store) ListDirectGrants(ctx context.Context, principalID string, kind ResourceKind) ([]string, error) {
	query := `
		SELECT resource_id
		FROM access_grants
		WHERE principal_id = $1 AND resource_kind = $2
	`
	return s.queryIDs(ctx, query, principalID, string(kind))
}

// ListOrgGrants returns the resource IDs granted to an organization.
func (s *Store) ListOrgGrants(ctx context.Context, org identity.OrganizationRef, kind ResourceKind) ([]string, error) {
	query := `
		SELECT resource_id
		FROM org_access_grants
		WHERE org_kind = $1 AND org_ref = $2 AND resource_kind = $3
	`
	return s.queryIDs(ctx, query, string(org.Kind), org.ID, string(kind))
}

// CreateGrant records a direct access grant for a principal.
func (s *Store) CreateGrant(ctx context.Context, grant *Grant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO access_grants (id, principal_id, resource_kind, resource_id, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (principal_id, resource_kind, resource_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		grant.ID, grant.PrincipalID, string(grant.Kind), grant.ResourceID, grant.GrantedBy, grant.GrantedAt)
	if err != nil {
		return fmt.Errorf("failed to create grant: %w", err)
	}
	return nil
}

// RevokeGrant removes a direct access grant.
func (s *Store) RevokeGrant(ctx context.Context, principalID string, kind ResourceKind, resourceID string) error {
	query := `
		DELETE FROM access_grants
		WHERE principal_id = $1 AND resource_kind = $2 AND resource_id = $3
	`
	if _, err := s.db.ExecContext(ctx, query, principalID, string(kind), resourceID); err != nil {
		return fmt.Errorf("failed to revoke grant: %w", err)
	}
	return nil
}

// CreateOrgGrant records an access grant for an organization.
func (s *Store) CreateOrgGrant(ctx context.Context, grant *OrgGrant) error {
	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	if grant.GrantedAt.IsZero() {
		grant.GrantedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO org_access_grants (id, org_kind, org_ref, resource_kind, resource_id, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (org_kind, org_ref, resource_kind, resource_id) DO NOTHING
	`
	_, err := s.db.ExecContext(ctx, query,
		grant.ID, string(grant.Org.Kind), grant.Org.ID, string(grant.Kind), grant.ResourceID, grant.GrantedBy, grant.GrantedAt)
	if err != nil {
		return fmt.Errorf("failed to create org grant: %w", err)
	}
	return nil
}

// RevokeOrgGrant removes an organization access grant.
func (s *Store) RevokeOrgGrant(ctx context.Context, org identity.OrganizationRef, kind ResourceKind, resourceID string) error {
	query := `
		DELETE FROM org_access_grants
		WHERE org_kind = $1 AND org_ref = $2 AND resource_kind = $3 AND resource_id = $4
	`
	if _, err := s.db.ExecContext(ctx, query, string(org.Kind), org.ID, string(kind), resourceID); err != nil {
		return fmt.Errorf("failed to revoke org grant: %w", err)
	}
	return nil
}

// ListBuildingIDs returns every building ID.
func (s *Store) ListBuildingIDs(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM buildings`)
}

// ListUnitIDs returns every unit ID.
func (s *Store) ListUnitIDs(ctx context.Context) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM units`)
}

// ListUnitsOfBuilding returns the unit IDs belonging to a building.
func (s *Store) ListUnitsOfBuilding(ctx context.Context, buildingID string) ([]string, error) {
	return s.queryIDs(ctx, `SELECT id FROM units WHERE building_id = $1`, buildingID)
}

// BuildingOfUnit returns the building a unit belongs to, or "" if unknown.
func (s *Store) BuildingOfUnit(ctx context.Context, unitID string) (string, error) {
	var buildingID string
	err := s.db.QueryRowContext(ctx, `SELECT building_id FROM units WHERE id = $1`, unitID).Scan(&buildingID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get building of unit: %w", err)
	}
	return buildingID, nil
}

// BuildingExists reports whether a building row exists.
func (s *Store) BuildingExists(ctx context.Context, buildingID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM buildings WHERE id = $1`, buildingID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check building: %w", err)
	}
	return true, nil
}

func (s *Store) queryIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
