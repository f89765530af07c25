package offline

import "time"

// Submission statuses. pending_sync rows live in the local store; a
// submission becomes submitted only when the backend accepts it, at which
// point the row is removed; submitted is terminal and never stored.
const (
	StatusPendingSync = "pending_sync"
	StatusSubmitted   = "submitted"
)

// Submission is one unit of field work awaiting network: the exact request
// that would have been sent, plus bookkeeping. ID is the generated request
// identity; it rides along on replay as X-Request-Id so the backend can
// dedupe if it chooses to.
type Submission struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Endpoint    string    `gorm:"not null" json:"endpoint"`
	ContentType string    `json:"contentType"`
	Payload     []byte    `gorm:"not null" json:"-"`
	EnqueuedAt  time.Time `gorm:"not null" json:"enqueuedAt"`
	Status      string    `gorm:"not null;default:'pending_sync'" json:"status"`
}

func (Submission) TableName() string { return "offline_submissions" }
