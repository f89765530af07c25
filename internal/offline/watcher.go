package offline

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Watcher supplies the connectivity signal the browser's online/offline
// events provided: it probes the backend health endpoint on an interval and
// reports transitions to a sink (normally Queue.SetOnline).
type Watcher struct {
	probeURL string
	interval time.Duration
	client   *http.Client
	sink     func(online bool)

	mu      sync.Mutex
	online  bool
	started bool
	stop    chan struct{}
	done    chan struct{}
}

// NewWatcher creates a Watcher that HEADs probeURL every interval.
func NewWatcher(probeURL string, interval time.Duration, sink func(online bool)) *Watcher {
	return &Watcher{
		probeURL: probeURL,
		interval: interval,
		client:   &http.Client{Timeout: 5 * time.Second},
		sink:     sink,
		online:   true,
	}
}

// Start launches the probe loop. The first probe runs immediately so the
// client does not spend a full interval with a stale assumption.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.stop = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.loop()
}

// Stop terminates the probe loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	close(w.stop)
	done := w.done
	w.mu.Unlock()

	<-done
}

func (w *Watcher) loop() {
	defer close(w.done)

	w.report(w.probe())

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.report(w.probe())
		}
	}
}

func (w *Watcher) report(online bool) {
	w.mu.Lock()
	changed := w.online != online
	w.online = online
	w.mu.Unlock()

	if changed && w.sink != nil {
		w.sink(online)
	}
}

// probe considers any HTTP response, even an error status, proof of
// connectivity; only transport failures count as offline.
func (w *Watcher) probe() bool {
	ctx, cancel := context.WithTimeout(context.Background(), w.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, w.probeURL, nil)
	if err != nil {
		return false
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
