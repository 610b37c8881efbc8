package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var principalColumns = []string{
	"id", "email", "full_name", "role",
	"aoao_organization_id", "pm_company_id", "contractor_id",
	"custom_permissions", "is_active", "created_at", "updated_at", "last_login_at",
}

func TestGetPrincipal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, email, full_name, role").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows(principalColumns).
			AddRow("user-1", "a@example.com", "Ana Lima", "aoao_staff",
				"org-7", nil, nil,
				[]byte(`["requests:approve"]`), true, now, now, nil))

	p, err := NewPostgresStore(db).GetPrincipal(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetPrincipal: %v", err)
	}
	if p.Role != RoleAOAOStaff {
		t.Errorf("role = %s", p.Role)
	}
	if p.Organization == nil || p.Organization.Kind != OrgKindAOAO || p.Organization.ID != "org-7" {
		t.Errorf("organization = %+v", p.Organization)
	}
	if len(p.CustomPermissions) != 1 || p.CustomPermissions[0] != "requests:approve" {
		t.Errorf("custom permissions = %v", p.CustomPermissions)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGetPrincipalCollapsesMembershipInKindOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	// Both PM company and contractor set: AOAO > PM company > contractor.
	mock.ExpectQuery("SELECT id, email, full_name, role").
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows(principalColumns).
			AddRow("user-2", nil, nil, "property_manager",
				nil, "pm-1", "con-1",
				nil, true, now, now, nil))

	p, err := NewPostgresStore(db).GetPrincipal(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("GetPrincipal: %v", err)
	}
	if p.Organization == nil || p.Organization.Kind != OrgKindPMCompany {
		t.Errorf("organization = %+v, want pm_company", p.Organization)
	}
}

func TestGetPrincipalNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, email, full_name, role").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(principalColumns))

	_, err = NewPostgresStore(db).GetPrincipal(context.Background(), "missing")
	if !errors.Is(err, ErrPrincipalNotFound) {
		t.Fatalf("err = %v, want ErrPrincipalNotFound", err)
	}
}

func TestGetPrincipalQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id, email, full_name, role").
		WithArgs("user-1").
		WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresStore(db).GetPrincipal(context.Background(), "user-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrPrincipalNotFound) {
		t.Fatal("query error must not read as not-found")
	}
}
