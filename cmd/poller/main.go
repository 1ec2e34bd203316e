// Command poller tails one user's notifications from the API.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/insyd/backend/internal/delivery"
	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/pkg/notifyclient"
)

func main() {
	apiBase := flag.String("api", envOr("API_BASE", "http://localhost:4000"), "API base URL")
	userID := flag.Uint("user", 1, "recipient user ID")
	interval := flag.Duration("interval", notifyclient.DefaultInterval, "poll interval")
	markRead := flag.Bool("mark-read", false, "acknowledge notifications as they arrive")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := notifyclient.New(*apiBase)
	feed := delivery.NewFeed(*userID)
	poller := notifyclient.NewPoller(client, feed, *interval)
	poller.OnError = func(err error) {
		log.Printf("Poll failed: %v", err)
	}
	poller.OnBatch = func(batch []models.Notification) {
		ids := make([]uint64, 0, len(batch))
		for i := len(batch) - 1; i >= 0; i-- {
			n := batch[i]
			fmt.Printf("#%d %s %s %s\n", n.ID, n.CreatedAt.Format(time.RFC3339), n.Verb, n.Message)
			ids = append(ids, n.ID)
		}
		if *markRead {
			if err := client.MarkRead(ctx, feed.RecipientID(), ids); err != nil {
				log.Printf("Mark read failed: %v", err)
				return
			}
			feed.MarkRead(ids)
		}
	}

	log.Printf("Polling notifications for user %d every %s", *userID, *interval)
	if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("Poller stopped: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
