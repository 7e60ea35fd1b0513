package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockCatalog struct {
	n int
}

func (m *mockCatalog) Len() int { return m.n }

type mockCachePinger struct {
	err error
}

func (m *mockCachePinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockCatalog{n: 100}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["catalog"] != CheckOK {
		t.Errorf("expected catalog %q, got %q", CheckOK, r.Checks["catalog"])
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
}

func TestCheck_EmptyCatalog(t *testing.T) {
	svc := New(&mockCatalog{}, &mockCachePinger{})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["catalog"] != CheckError {
		t.Errorf("expected catalog %q, got %q", CheckError, r.Checks["catalog"])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockCatalog{n: 100}, &mockCachePinger{err: errors.New("conn refused")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["catalog"] != CheckOK {
		t.Errorf("expected catalog %q, got %q", CheckOK, r.Checks["catalog"])
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
}

func TestCheck_NilCache(t *testing.T) {
	svc := New(&mockCatalog{n: 100}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["cache"]; ok {
		t.Error("cache check should be absent when no cache is configured")
	}
}
