package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clubify/internal/adapters/http/perf"
)

func TestTiming(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		handler    http.HandlerFunc
		wantStatus int
		wantPath   string // empty means nothing recorded
	}{
		{
			name:       "records created player",
			method:     "POST",
			path:       "/api/clubs/c1/players",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) },
			wantStatus: http.StatusCreated,
			wantPath:   "POST /api/clubs/c1/players",
		},
		{
			name:       "implicit 200 on body write",
			method:     "GET",
			path:       "/api/clubs/c1/payments",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("[]")) },
			wantStatus: http.StatusOK,
			wantPath:   "GET /api/clubs/c1/payments",
		},
		{
			name:       "not found still recorded",
			method:     "GET",
			path:       "/api/teams/missing/sessions",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantStatus: http.StatusNotFound,
			wantPath:   "GET /api/teams/missing/sessions",
		},
		{
			name:       "health probe skipped",
			method:     "GET",
			path:       "/healthz",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := perf.NewCollector(10)
			rr := httptest.NewRecorder()
			Timing(collector, 0)(tt.handler).ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantPath == "" {
				if n := collector.TotalRecorded(); n != 0 {
					t.Errorf("TotalRecorded = %d, want 0", n)
				}
				return
			}
			snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
			if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Path != tt.wantPath {
				t.Fatalf("SlowestPaths = %+v, want one entry for %q", snap.SlowestPaths, tt.wantPath)
			}
			if snap.SlowestPaths[0].AvgMs < 0 {
				t.Errorf("AvgMs = %v, want >= 0", snap.SlowestPaths[0].AvgMs)
			}
		})
	}
}

func TestTiming_NilCollector(t *testing.T) {
	rr := httptest.NewRecorder()
	Timing(nil, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})).ServeHTTP(rr, httptest.NewRequest("GET", "/api/me", nil))
	if rr.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202", rr.Code)
	}
}

// A panicking handler still gets its timing recorded before the panic reaches Recoverer.
func TestTiming_HandlerPanic(t *testing.T) {
	collector := perf.NewCollector(10)
	handler := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate")
		}
		if n := collector.TotalRecorded(); n != 1 {
			t.Errorf("TotalRecorded = %d, want 1", n)
		}
	}()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/clubs", nil))
}

// Pooled writers must not carry a status from one request into the next.
func TestTiming_PooledWriterReset(t *testing.T) {
	collector := perf.NewCollector(10)
	failing := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	silent := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	failing.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/clubs/c1/audit", nil))
	silent.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/me", nil))

	snap := collector.Snapshot(time.Now().Add(-time.Minute), 10)
	if snap.ServerErrors != 1 {
		t.Errorf("ServerErrors = %d, want 1", snap.ServerErrors)
	}
}

func BenchmarkTiming(b *testing.B) {
	collector := perf.NewCollector(perf.DefaultRingSize)
	handler := Timing(collector, 0)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/teams/t1/matches", nil))
		}
	})
}
