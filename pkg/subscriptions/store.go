package subscriptions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/propdocs/propdocs/pkg/identity"
)

// PostgresStore persists subscriptions in the subscriptions table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new subscription store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// GetSubscription loads the subscription for a subject and role. A missing
// row returns nil with no error.
func (s *PostgresStore) GetSubscription(ctx context.Context, subject Subject, role identity.Role) (*Subscription, error) {
	query := `
		SELECT id, subject_kind, subject_ref, role, tier, status, is_trial,
		       trial_started_at, trial_ends_at, created_at, updated_at
		FROM subscriptions
		WHERE subject_kind = $1 AND subject_ref = $2 AND role = $3
	`
	sub := &Subscription{}
	err := s.db.QueryRowContext(ctx, query, string(subject.Kind), subject.Ref, string(role)).Scan(
		&sub.ID, &sub.Subject.Kind, &sub.Subject.Ref, &sub.Role, &sub.Tier, &sub.Status,
		&sub.IsTrial, &sub.TrialStartedAt, &sub.TrialEndsAt, &sub.CreatedAt, &sub.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return sub, nil
}

// UpsertTrial writes a trial subscription in one atomic statement keyed by
// (subject_kind, subject_ref, role). Two racing trial starts cannot both
// insert; the second resolves to an update of the same row.
func (s *PostgresStore) UpsertTrial(ctx context.Context, sub *Subscription) error {
	query := `
		INSERT INTO subscriptions (id, subject_kind, subject_ref, role, tier, status,
		                           is_trial, trial_started_at, trial_ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (subject_kind, subject_ref, role) DO UPDATE SET
			tier = EXCLUDED.tier,
			status = EXCLUDED.status,
			is_trial = EXCLUDED.is_trial,
			trial_started_at = EXCLUDED.trial_started_at,
			trial_ends_at = EXCLUDED.trial_ends_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		sub.ID, string(sub.Subject.Kind), sub.Subject.Ref, string(sub.Role),
		string(sub.Tier), string(sub.Status), sub.IsTrial,
		sub.TrialStartedAt, sub.TrialEndsAt, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

// ExpireTrials marks trialing rows whose trial end has passed as canceled.
// Entitlement is already evaluated lazily against trial_ends_at; this sweep
// only keeps the status column honest for reporting.
func (s *PostgresStore) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE subscriptions
		SET status = $1, updated_at = $2
		WHERE is_trial = $3 AND status = $4 AND trial_ends_at <= $5
	`
	res, err := s.db.ExecContext(ctx, query,
		string(StatusCanceled), now, true, string(StatusTrialing), now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire trials: %w", err)
	}
	return res.RowsAffected()
}
