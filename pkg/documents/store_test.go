package documents

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func setupDocumentDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		is_public BOOLEAN NOT NULL DEFAULT 0,
		owner_id TEXT NOT NULL,
		building_id TEXT,
		unit_ids TEXT,
		contractor_ids TEXT,
		s3_key TEXT,
		content_type TEXT,
		size_bytes INTEGER,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

func TestPostgresStore_GetDocument(t *testing.T) {
	db := setupDocumentDB(t)
	store := NewPostgresStore(db)

	_, err := db.Exec(`
		INSERT INTO documents (id, title, is_public, owner_id, building_id, unit_ids, contractor_ids, s3_key, content_type, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		"doc-1", "Meeting minutes", false, "owner-1", "bldg-1",
		`["unit-1","unit-2"]`, `["contractor-1"]`, "docs/doc-1.pdf", "application/pdf", 2048)
	if err != nil {
		t.Fatalf("failed to seed document: %v", err)
	}

	doc, err := store.GetDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("failed to get document: %v", err)
	}
	if doc.Title != "Meeting minutes" || doc.IsPublic || doc.OwnerID != "owner-1" {
		t.Errorf("unexpected document: %+v", doc)
	}
	if doc.BuildingID != "bldg-1" {
		t.Errorf("expected building association, got %q", doc.BuildingID)
	}
	if len(doc.UnitIDs) != 2 || doc.UnitIDs[0] != "unit-1" {
		t.Errorf("unexpected unit associations: %v", doc.UnitIDs)
	}
	if len(doc.ContractorIDs) != 1 || doc.ContractorIDs[0] != "contractor-1" {
		t.Errorf("unexpected contractor associations: %v", doc.ContractorIDs)
	}
	if doc.S3Key != "docs/doc-1.pdf" || doc.SizeBytes != 2048 {
		t.Errorf("unexpected storage fields: %+v", doc)
	}
}

func TestPostgresStore_GetDocument_NullAssociations(t *testing.T) {
	db := setupDocumentDB(t)
	store := NewPostgresStore(db)

	_, err := db.Exec(`
		INSERT INTO documents (id, title, is_public, owner_id)
		VALUES ($1, $2, $3, $4)`,
		"doc-2", "Public notice", true, "owner-1")
	if err != nil {
		t.Fatalf("failed to seed document: %v", err)
	}

	doc, err := store.GetDocument(context.Background(), "doc-2")
	if err != nil {
		t.Fatalf("failed to get document: %v", err)
	}
	if !doc.IsPublic {
		t.Error("expected public document")
	}
	if doc.BuildingID != "" || doc.UnitIDs != nil || doc.ContractorIDs != nil {
		t.Errorf("expected empty associations, got %+v", doc)
	}
}

func TestPostgresStore_GetDocument_NotFound(t *testing.T) {
	store := NewPostgresStore(setupDocumentDB(t))

	_, err := store.GetDocument(context.Background(), "doc-missing")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}
