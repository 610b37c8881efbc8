package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type fakeExpirer struct {
	calls int64
}

func (f *fakeExpirer) ExpireTrials(context.Context, time.Time) (int64, error) {
	atomic.AddInt64(&f.calls, 1)
	return 0, nil
}

func TestScheduler_StartStop(t *testing.T) {
	expirer := &fakeExpirer{}
	s := NewScheduler(expirer, nil, nil)

	if err := s.Start(); err != nil {
		t.Fatalf("failed to start scheduler: %v", err)
	}
	s.Stop()
}

func TestScheduler_ExpireTrialsJob(t *testing.T) {
	expirer := &fakeExpirer{}
	s := NewScheduler(expirer, nil, nil)

	s.expireTrials()
	if atomic.LoadInt64(&expirer.calls) != 1 {
		t.Error("expected the sweep to call the expirer")
	}
}
