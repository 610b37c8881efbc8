package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestSafeGoRunsTask(t *testing.T) {
	var ran atomic.Bool
	SafeGo(context.Background(), nil, time.Second, "test", func(ctx context.Context) error {
		ran.Store(true)
		return nil
	})
	waitFor(t, ran.Load)
}

func TestSafeGoRecoversPanic(t *testing.T) {
	var after atomic.Bool
	SafeGo(context.Background(), nil, time.Second, "panicking", func(ctx context.Context) error {
		panic("boom")
	})
	// A panic in one task must not prevent later tasks from running.
	SafeGo(context.Background(), nil, time.Second, "follow-up", func(ctx context.Context) error {
		after.Store(true)
		return nil
	})
	waitFor(t, after.Load)
}

func TestSafeGoSurvivesParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cancel()

	var sawCancel atomic.Bool
	var ran atomic.Bool
	SafeGo(parent, nil, time.Second, "detached", func(ctx context.Context) error {
		if ctx.Err() != nil {
			sawCancel.Store(true)
		}
		ran.Store(true)
		return errors.New("logged, not propagated")
	})
	waitFor(t, ran.Load)
	if sawCancel.Load() {
		t.Error("background context should not inherit parent cancellation")
	}
}
