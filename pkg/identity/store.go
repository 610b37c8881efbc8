package identity

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrPrincipalNotFound indicates no identity row exists for the given ID.
var ErrPrincipalNotFound = errors.New("principal not found")

// Store loads principals from the identity records.
type Store interface {
	// GetPrincipal returns the principal for the given user ID, including
	// role, organization membership, and custom permission overrides.
	GetPrincipal(ctx context.Context, id string) (*Principal, error)
}

// PostgresStore implements Store using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetPrincipal returns the principal for the given user ID.
func (s *PostgresStore) GetPrincipal(ctx context.Context, id string) (*Principal, error) {
	query := `
		SELECT id, email, full_name, role, aoao_organization_id, pm_company_id, contractor_id,
		       custom_permissions, is_active, created_at, updated_at, last_login_at
		FROM users
		WHERE id = $1
	`

	p := &Principal{}
	var email, fullName sql.NullString
	var aoaoID, pmID, contractorID sql.NullString
	var permsJSON []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &email, &fullName, &p.Role, &aoaoID, &pmID, &contractorID,
		&permsJSON, &p.IsActive, &p.CreatedAt, &p.UpdatedAt, &p.LastLoginAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get principal: %w", err)
	}

	if email.Valid {
		p.Email = email.String
	}
	if fullName.Valid {
		p.FullName = fullName.String
	}

	// The legacy rows store membership as three nullable columns; collapse
	// them into the single tagged reference. If more than one is set the
	// first in kind order wins, matching how grants are resolved.
	switch {
	case aoaoID.Valid && aoaoID.String != "":
		p.Organization = AOAO(aoaoID.String)
	case pmID.Valid && pmID.String != "":
		p.Organization = PMCompany(pmID.String)
	case contractorID.Valid && contractorID.String != "":
		p.Organization = Contractor(contractorID.String)
	}

	if len(permsJSON) > 0 {
		if err := json.Unmarshal(permsJSON, &p.CustomPermissions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal custom permissions: %w", err)
		}
	}

	return p, nil
}
