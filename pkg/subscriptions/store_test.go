package subscriptions

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/propdocs/propdocs/pkg/identity"
)

func setupSubscriptionDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `
	CREATE TABLE subscriptions (
		id TEXT PRIMARY KEY,
		subject_kind TEXT NOT NULL,
		subject_ref TEXT NOT NULL,
		role TEXT NOT NULL,
		tier TEXT NOT NULL,
		status TEXT NOT NULL,
		is_trial BOOLEAN NOT NULL DEFAULT 0,
		trial_started_at TIMESTAMP,
		trial_ends_at TIMESTAMP,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE (subject_kind, subject_ref, role)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	return db
}

func trialRow(subject Subject, role identity.Role, now time.Time, days int) *Subscription {
	endsAt := now.Add(time.Duration(days) * 24 * time.Hour)
	return &Subscription{
		ID:             "sub-" + subject.Ref + "-" + string(role),
		Subject:        subject,
		Role:           role,
		Tier:           TierPaid,
		Status:         StatusTrialing,
		IsTrial:        true,
		TrialStartedAt: &now,
		TrialEndsAt:    &endsAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestPostgresStore_GetMissing(t *testing.T) {
	store := NewPostgresStore(setupSubscriptionDB(t))

	sub, err := store.GetSubscription(context.Background(), UserSubject("u1"), identity.RoleOwner)
	if err != nil {
		t.Fatalf("missing row should not error: %v", err)
	}
	if sub != nil {
		t.Errorf("expected nil subscription, got %+v", sub)
	}
}

func TestPostgresStore_UpsertAndGet(t *testing.T) {
	store := NewPostgresStore(setupSubscriptionDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.UpsertTrial(ctx, trialRow(UserSubject("u1"), identity.RoleOwner, now, 7)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	sub, err := store.GetSubscription(ctx, UserSubject("u1"), identity.RoleOwner)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if sub == nil {
		t.Fatal("expected subscription")
	}
	if sub.Tier != TierPaid || sub.Status != StatusTrialing || !sub.IsTrial {
		t.Errorf("unexpected row: %+v", sub)
	}
	if !sub.TrialEndsAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Errorf("unexpected trial end: %v", sub.TrialEndsAt)
	}

	// Same subject under a different role is a separate row.
	other, err := store.GetSubscription(ctx, UserSubject("u1"), identity.RoleAOAO)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if other != nil {
		t.Errorf("role must partition subscriptions, got %+v", other)
	}
}

func TestPostgresStore_UpsertReplacesRow(t *testing.T) {
	store := NewPostgresStore(setupSubscriptionDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.UpsertTrial(ctx, trialRow(UserSubject("u1"), identity.RoleOwner, now, 7)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	later := now.Add(30 * 24 * time.Hour)
	regrant := trialRow(UserSubject("u1"), identity.RoleOwner, later, 14)
	if err := store.UpsertTrial(ctx, regrant); err != nil {
		t.Fatalf("re-grant upsert should not conflict: %v", err)
	}

	sub, err := store.GetSubscription(ctx, UserSubject("u1"), identity.RoleOwner)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if !sub.TrialEndsAt.Equal(later.Add(14 * 24 * time.Hour)) {
		t.Errorf("expected replaced trial end, got %v", sub.TrialEndsAt)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM subscriptions`).Scan(&count); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("expected a single row per subject and role, got %d", count)
	}
}

func TestPostgresStore_ExpireTrials(t *testing.T) {
	store := NewPostgresStore(setupSubscriptionDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if err := store.UpsertTrial(ctx, trialRow(UserSubject("u1"), identity.RoleOwner, now, 7)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}
	if err := store.UpsertTrial(ctx, trialRow(UserSubject("u2"), identity.RoleOwner, now, 60)); err != nil {
		t.Fatalf("failed to upsert: %v", err)
	}

	n, err := store.ExpireTrials(ctx, now.Add(10*24*time.Hour))
	if err != nil {
		t.Fatalf("failed to expire trials: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired trial, got %d", n)
	}

	sub, err := store.GetSubscription(ctx, UserSubject("u1"), identity.RoleOwner)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if sub.Status != StatusCanceled {
		t.Errorf("expected canceled, got %s", sub.Status)
	}

	sub, err = store.GetSubscription(ctx, UserSubject("u2"), identity.RoleOwner)
	if err != nil {
		t.Fatalf("failed to get: %v", err)
	}
	if sub.Status != StatusTrialing {
		t.Errorf("unexpired trial should stay trialing, got %s", sub.Status)
	}
}
