package state

import (
	"sync"

	"github.com/nutrisync/nutrisync-bot/internal/ingest"
)

// Uploads tracks each user's pending attachment batches while they assemble
// a submission. Attachment bytes are kept in process memory regardless of
// the state backend; only the lightweight conversation state goes to Redis.
type Uploads struct {
	mu      sync.Mutex
	reports map[int64]*ingest.Batch
	foods   map[int64]*ingest.Batch
}

// NewUploads creates an empty upload tracker
func NewUploads() *Uploads {
	return &Uploads{
		reports: make(map[int64]*ingest.Batch),
		foods:   make(map[int64]*ingest.Batch),
	}
}

// Reports returns the user's lab-report batch, creating it on first use
func (u *Uploads) Reports(userID int64) *ingest.Batch {
	u.mu.Lock()
	defer u.mu.Unlock()

	b, ok := u.reports[userID]
	if !ok {
		b = ingest.NewBatch(ingest.ReportMediaTypes...)
		u.reports[userID] = b
	}
	return b
}

// Foods returns the user's food batch, creating it on first use
func (u *Uploads) Foods(userID int64) *ingest.Batch {
	u.mu.Lock()
	defer u.mu.Unlock()

	b, ok := u.foods[userID]
	if !ok {
		b = ingest.NewBatch(ingest.FoodMediaTypes...)
		u.foods[userID] = b
	}
	return b
}

// Clear discards both batches for the user
func (u *Uploads) Clear(userID int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.reports, userID)
	delete(u.foods, userID)
}
