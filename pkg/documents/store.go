package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDocumentNotFound is returned when no document exists with the
// requested ID.
var ErrDocumentNotFound = errors.New("document not found")

// PostgresStore loads documents from the documents table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new document store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetDocument loads one document with its resource associations.
func (s *PostgresStore) GetDocument(ctx context.Context, id string) (*Document, error) {
	query := `
		SELECT id, title, is_public, owner_id, building_id,
		       unit_ids, contractor_ids, s3_key, content_type, size_bytes,
		       created_at, updated_at
		FROM documents
		WHERE id = $1
	`
	doc := &Document{}
	var buildingID, s3Key, contentType sql.NullString
	var sizeBytes sql.NullInt64
	var unitIDs, contractorIDs []byte

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Title, &doc.IsPublic, &doc.OwnerID, &buildingID,
		&unitIDs, &contractorIDs, &s3Key, &contentType, &sizeBytes,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.BuildingID = buildingID.String
	doc.S3Key = s3Key.String
	doc.ContentType = contentType.String
	doc.SizeBytes = sizeBytes.Int64

	if len(unitIDs) > 0 {
		if err := json.Unmarshal(unitIDs, &doc.UnitIDs); err != nil {
			return nil, fmt.Errorf("failed to parse unit associations: %w", err)
		}
	}
	if len(contractorIDs) > 0 {
		if err := json.Unmarshal(contractorIDs, &doc.ContractorIDs); err != nil {
			return nil, fmt.Errorf("failed to parse contractor associations: %w", err)
		}
	}
	return doc, nil
}
