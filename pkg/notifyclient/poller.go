package notifyclient

import (
	"context"
	"time"

	"github.com/anonto42/insyd/backend/internal/delivery"
	"github.com/anonto42/insyd/backend/internal/models"
)

// DefaultInterval is how often a Poller fetches when no interval is given
const DefaultInterval = 5 * time.Second

// Fetcher retrieves one page of a recipient's notifications. *Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, recipientID uint, sinceID uint64) (delivery.Page, error)
}

// Poller repeatedly fetches into a Feed, sending each fetch the feed's watermark.
type Poller struct {
	fetcher  Fetcher
	feed     *delivery.Feed
	interval time.Duration

	// OnBatch receives the records each poll added to the feed, newest first.
	OnBatch func(batch []models.Notification)
	// OnError receives fetch errors; polling continues afterwards.
	OnError func(err error)
}

// NewPoller creates a Poller. A non-positive interval means DefaultInterval.
func NewPoller(fetcher Fetcher, feed *delivery.Feed, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{fetcher: fetcher, feed: feed, interval: interval}
}

// Poll performs one fetch and applies it to the feed
func (p *Poller) Poll(ctx context.Context) ([]models.Notification, error) {
	recipientID := p.feed.RecipientID()
	page, err := p.fetcher.Fetch(ctx, recipientID, p.feed.Watermark())
	if err != nil {
		return nil, err
	}
	// The recipient may have been switched while the request was in flight.
	if p.feed.RecipientID() != recipientID {
		return nil, nil
	}
	return p.feed.Apply(page.Notifications), nil
}

// Run polls immediately and then every interval until ctx is done
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		batch, err := p.Poll(ctx)
		switch {
		case err != nil && ctx.Err() == nil:
			if p.OnError != nil {
				p.OnError(err)
			}
		case len(batch) > 0 && p.OnBatch != nil:
			p.OnBatch(batch)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
