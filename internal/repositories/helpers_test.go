package repositories

import (
	"testing"

	"github.com/anonto42/insyd/backend/internal/models"
	"github.com/anonto42/insyd/backend/pkg/config"
	"gorm.io/gorm"
)

// newTestDB opens a migrated in-memory SQLite database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.OpenSQL("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func record(recipientID, actorID uint, verb models.Verb) models.Notification {
	return models.Notification{
		RecipientID: recipientID,
		ActorID:     actorID,
		Verb:        verb,
		SubjectType: models.SubjectPost,
		SubjectID:   "post-1",
		Message:     "someone did something",
	}
}

func ids(notifications []models.Notification) []uint64 {
	out := make([]uint64, len(notifications))
	for i, n := range notifications {
		out[i] = n.ID
	}
	return out
}
