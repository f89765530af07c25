package offline_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/WasteWatch/WW-Client/internal/offline"
)

// TestWatcherDetectsOutage verifies an unreachable probe target is reported
// as an offline transition.
func TestWatcherDetectsOutage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close() // the address is now dead

	transitions := make(chan bool, 4)
	w := offline.NewWatcher(srv.URL+"/api/health", 50*time.Millisecond, func(online bool) {
		transitions <- online
	})
	w.Start()
	t.Cleanup(w.Stop)

	select {
	case online := <-transitions:
		if online {
			t.Fatal("expected the first transition to be offline")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reported the outage")
	}
}

// TestWatcherStaysQuietWhileHealthy verifies no transition is reported while
// the backend keeps answering, even with an error status, which still proves
// connectivity.
func TestWatcherStaysQuietWhileHealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	transitions := make(chan bool, 4)
	w := offline.NewWatcher(srv.URL+"/api/health", 30*time.Millisecond, func(online bool) {
		transitions <- online
	})
	w.Start()
	t.Cleanup(w.Stop)

	select {
	case online := <-transitions:
		t.Fatalf("unexpected transition to online=%v", online)
	case <-time.After(300 * time.Millisecond):
		// several probe cycles passed with no state change
	}
}
