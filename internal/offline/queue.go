package offline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Poster delivers a pre-serialized POST to the backend. *api.Client
// satisfies it; tests substitute their own.
type Poster interface {
	PostRaw(ctx context.Context, endpoint, contentType string, body []byte, headers map[string]string) error
}

// Queue guarantees field submissions are never lost to transient
// connectivity loss. Online submits go straight through (failures surface to
// the caller); offline submits are persisted and replayed when connectivity
// returns. Replay is at-least-once: entries are only removed after the
// backend accepts them, and a failed entry waits for the next sync trigger.
type Queue struct {
	api     Poster
	store   *QueueStore
	limiter *rate.Limiter

	mu     sync.Mutex
	online bool

	// syncMu serializes sync passes; submissions within a pass are still
	// independent of each other.
	syncMu sync.Mutex

	// OnStatus, if set, is told about connectivity transitions so the
	// presentation layer can show an offline banner.
	OnStatus func(online bool)
}

// NewQueue creates a Queue. online seeds the connectivity flag until the
// watcher reports.
func NewQueue(poster Poster, store *QueueStore, online bool) *Queue {
	return &Queue{
		api:   poster,
		store: store,
		// Replay politely: a burst of queued field work should not hammer a
		// backend that just came back.
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		online:  online,
	}
}

// IsOnline reflects the current connectivity signal.
func (q *Queue) IsOnline() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

// SetOnline records a connectivity transition. Coming back online kicks off
// a background sync pass; going offline only flips the flag.
func (q *Queue) SetOnline(online bool) {
	q.mu.Lock()
	changed := q.online != online
	q.online = online
	q.mu.Unlock()

	if !changed {
		return
	}

	if q.OnStatus != nil {
		q.OnStatus(online)
	}

	if online {
		log.Printf("[offline] connectivity restored, syncing queued submissions")
		go func() {
			if err := q.SyncPending(context.Background()); err != nil {
				log.Printf("[offline] sync pass failed: %v", err)
			}
		}()
	} else {
		log.Printf("[offline] connectivity lost")
	}
}

// Result reports how a submission was handled.
type Result struct {
	// Cached is true when the submission was queued locally instead of
	// delivered.
	Cached bool
	// RequestID is the generated identity of a cached submission.
	RequestID string
}

// Submit delivers body to endpoint if online, or persists it for replay if
// not. Offline submits never fail on network grounds: the caller gets
// Cached=true and should reflect the entry as pending_sync immediately.
// Online failures are returned (as *api.SubmissionError) for the caller to
// retry manually; there is no automatic retry of a failed online submit.
func (q *Queue) Submit(ctx context.Context, endpoint, contentType string, body []byte) (Result, error) {
	if q.IsOnline() {
		if err := q.api.PostRaw(ctx, endpoint, contentType, body, nil); err != nil {
			return Result{}, err
		}
		return Result{Cached: false}, nil
	}

	sub := &Submission{
		ID:          uuid.NewString(),
		Endpoint:    endpoint,
		ContentType: contentType,
		Payload:     body,
		EnqueuedAt:  time.Now().UTC(),
		Status:      StatusPendingSync,
	}
	if err := q.store.Put(sub); err != nil {
		return Result{}, fmt.Errorf("cache offline submission: %w", err)
	}

	log.Printf("[offline] cached submission %s for %s (%d bytes)",
		sub.ID, endpoint, len(body))
	return Result{Cached: true, RequestID: sub.ID}, nil
}

// SyncPending replays every queued submission. Entries are independent: one
// failure is logged and left queued without blocking the rest. Successful
// entries are removed, which is the pending_sync to submitted transition.
func (q *Queue) SyncPending(ctx context.Context) error {
	q.syncMu.Lock()
	defer q.syncMu.Unlock()

	pending, err := q.store.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	log.Printf("[offline] replaying %d queued submissions", len(pending))

	for _, sub := range pending {
		if err := q.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("sync interrupted: %w", err)
		}

		headers := map[string]string{"X-Request-Id": sub.ID}
		if err := q.api.PostRaw(ctx, sub.Endpoint, sub.ContentType, sub.Payload, headers); err != nil {
			// Left queued for the next online transition or explicit sync.
			log.Printf("[offline] replay of %s failed, keeping queued: %v", sub.ID, err)
			continue
		}

		if err := q.store.Remove(sub.ID); err != nil {
			log.Printf("[offline] removing replayed submission %s: %v", sub.ID, err)
			continue
		}
		log.Printf("[offline] submission %s delivered", sub.ID)
	}
	return nil
}

// Pending exposes the queued submissions so the presentation layer can show
// them (and a stuck entry is at least visible; there is no dead-letter
// policy).
func (q *Queue) Pending() ([]Submission, error) {
	return q.store.Pending()
}
