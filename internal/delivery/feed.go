package delivery

import (
	"sync"

	"github.com/anonto42/insyd/backend/internal/models"
)

// Feed is the client-side view of one recipient's notification stream.
// It is safe for concurrent use.
type Feed struct {
	mu          sync.Mutex
	recipientID uint
	watermark   uint64
	items       []models.Notification
}

// NewFeed creates an empty feed for recipientID
func NewFeed(recipientID uint) *Feed {
	return &Feed{recipientID: recipientID}
}

// RecipientID returns the recipient the feed currently follows
func (f *Feed) RecipientID() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipientID
}

// Watermark is the since id to send on the next fetch
func (f *Feed) Watermark() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.watermark
}

// Items returns a copy of the accumulated notifications, newest first
func (f *Feed) Items() []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Apply merges a newest-first batch ahead of the items already held and
// returns the records that were new to the feed. Records at or below the
// watermark, or addressed to another recipient, are dropped.
func (f *Feed) Apply(batch []models.Notification) []models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	fresh := make([]models.Notification, 0, len(batch))
	for _, n := range batch {
		if n.ID <= f.watermark || n.RecipientID != f.recipientID {
			continue
		}
		fresh = append(fresh, n)
	}
	if len(fresh) == 0 {
		return fresh
	}

	items := make([]models.Notification, 0, len(fresh)+len(f.items))
	items = append(append(items, fresh...), f.items...)
	f.items = items
	f.watermark = Advance(f.watermark, fresh)
	return fresh
}

// MarkRead flips the local read flag of the given ids
func (f *Feed) MarkRead(ids []uint64) {
	want := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if _, ok := want[f.items[i].ID]; ok {
			f.items[i].IsRead = true
		}
	}
}

// Switch points the feed at another recipient. The watermark resets to 0
// and accumulated items are discarded; switching to the current recipient
// is a no-op.
func (f *Feed) Switch(recipientID uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if recipientID == f.recipientID {
		return
	}
	f.recipientID = recipientID
	f.watermark = 0
	f.items = nil
}
