package observability

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	_ "github.com/mattn/go-sqlite3"
)

func TestLivenessAlwaysOK(t *testing.T) {
	checker := NewHealthChecker(nil, nil)
	rec := httptest.NewRecorder()
	checker.Liveness(rec, httptest.NewRequest("GET", "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness status = %d", rec.Code)
	}
}

func TestCheckHealthyDatabase(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	defer db.Close()

	status := NewHealthChecker(db, nil).Check(context.Background())
	if status.Status != StatusHealthy {
		t.Errorf("status = %s, want healthy", status.Status)
	}
	if status.Dependencies["database"].Status != StatusHealthy {
		t.Errorf("database status = %s", status.Dependencies["database"].Status)
	}
}

func TestCheckUnhealthyDatabase(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	db.Close()

	status := NewHealthChecker(db, nil).Check(context.Background())
	if status.Status != StatusUnhealthy {
		t.Errorf("status = %s, want unhealthy", status.Status)
	}
}

func TestRedisDownOnlyDegrades(t *testing.T) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	defer db.Close()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	checker := NewHealthChecker(db, client)
	if status := checker.Check(context.Background()); status.Status != StatusHealthy {
		t.Fatalf("status with redis up = %s", status.Status)
	}

	mr.Close()
	status := checker.Check(context.Background())
	if status.Status != StatusDegraded {
		t.Errorf("status with redis down = %s, want degraded", status.Status)
	}

	rec := httptest.NewRecorder()
	checker.Readiness(rec, httptest.NewRequest("GET", "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded readiness should still answer 200, got %d", rec.Code)
	}
}
