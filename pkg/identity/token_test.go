package identity

import (
	"testing"
	"time"
)

func newTestTokenManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager([]byte("0123456789abcdef0123456789abcdef"), ttl)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tm
}

func TestTokenRoundTrip(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	p := &Principal{
		ID:                "user-1",
		Role:              RoleContractorStaff,
		Organization:      Contractor("con-3"),
		CustomPermissions: []string{"documents:write"},
	}

	token, err := tm.IssueToken(p)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	got, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got.ID != "user-1" || got.Role != RoleContractorStaff {
		t.Errorf("principal = %+v", got)
	}
	if got.Organization == nil || got.Organization.Kind != OrgKindContractor || got.Organization.ID != "con-3" {
		t.Errorf("organization = %+v", got.Organization)
	}
	if len(got.CustomPermissions) != 1 || got.CustomPermissions[0] != "documents:write" {
		t.Errorf("custom permissions = %v", got.CustomPermissions)
	}
}

func TestTokenWithoutOrganization(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	token, err := tm.IssueToken(&Principal{ID: "user-1", Role: RoleOwner})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	got, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got.Organization != nil {
		t.Errorf("organization = %+v, want nil", got.Organization)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	tm.ttl = -time.Minute
	token, err := tm.IssueToken(&Principal{ID: "user-1", Role: RoleOwner})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := tm.ValidateToken(token); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	other, err := NewTokenManager([]byte("another-secret-another-secret-12"), time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, err := tm.IssueToken(&Principal{ID: "user-1", Role: RoleOwner})
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := other.ValidateToken(token); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	for _, tok := range []string{"", "  ", "not-a-jwt", "a.b.c"} {
		if _, err := tm.ValidateToken(tok); err != ErrInvalidToken {
			t.Errorf("ValidateToken(%q) err = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestIssueRequiresPrincipal(t *testing.T) {
	tm := newTestTokenManager(t, time.Hour)
	if _, err := tm.IssueToken(nil); err == nil {
		t.Error("expected error for nil principal")
	}
	if _, err := tm.IssueToken(&Principal{}); err == nil {
		t.Error("expected error for empty ID")
	}
}

func TestNewTokenManagerValidation(t *testing.T) {
	if _, err := NewTokenManager(nil, time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	tm, err := NewTokenManager([]byte("secret"), 0)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	if tm.ttl != 24*time.Hour {
		t.Errorf("default ttl = %v", tm.ttl)
	}
}
