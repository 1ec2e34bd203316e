package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/insyd/backend/internal/models"
	"gorm.io/gorm"
)

const (
	// DefaultPageSize bounds a bootstrap fetch made without a cursor
	DefaultPageSize = 50
	// MaxPageSize is the largest bootstrap page a caller may ask for
	MaxPageSize = 200

	appendChunkSize = 200
	// Key for pg_advisory_xact_lock; any constant shared by all writers works.
	notificationLogLockKey int64 = 0x6e6f7469667921
)

// NotificationLog is the append-only, per-recipient ordered notification store.
// Ids are assigned by the log and are the only ordering exposed to readers.
type NotificationLog interface {
	// AppendBatch writes all records or none and returns their ids in append order.
	AppendBatch(ctx context.Context, records []models.Notification) ([]uint64, error)
	// QueryInitial returns the newest limit records of recipientID, newest first.
	QueryInitial(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error)
	// QueryIncremental returns every record of recipientID with id > sinceID, newest first.
	QueryIncremental(ctx context.Context, recipientID uint, sinceID uint64) ([]models.Notification, error)
	// MarkRead flags the given ids read; ids owned by other recipients are ignored.
	MarkRead(ctx context.Context, recipientID uint, ids []uint64) error
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

// NormalizeLimit clamps a requested bootstrap page size to (0, MaxPageSize]
func NormalizeLimit(limit int) int {
	if limit < 1 || limit > MaxPageSize {
		return DefaultPageSize
	}
	return limit
}

// prepare copies records and strips anything the caller must not control.
func prepare(records []models.Notification, now time.Time) []models.Notification {
	rows := make([]models.Notification, len(records))
	copy(rows, records)
	for i := range rows {
		rows[i].ID = 0
		rows[i].IsRead = false
		rows[i].CreatedAt = now
	}
	return rows
}

// PostgresNotificationLog implements NotificationLog on GORM (PostgreSQL or SQLite)
type PostgresNotificationLog struct {
	db  *gorm.DB
	mu  sync.Mutex
	now func() time.Time
}

// NewPostgresNotificationLog creates a new PostgresNotificationLog
func NewPostgresNotificationLog(db *gorm.DB) *PostgresNotificationLog {
	return &PostgresNotificationLog{db: db, now: time.Now}
}

// AppendBatch inserts the batch in one transaction. Id assignment and commit are
// serialized so a reader holding cursor N can never later observe an id below N appear.
func (r *PostgresNotificationLog) AppendBatch(ctx context.Context, records []models.Notification) ([]uint64, error) {
	if len(records) == 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rows := prepare(records, r.now())
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", notificationLogLockKey).Error; err != nil {
				return err
			}
		}
		return tx.CreateInBatches(&rows, appendChunkSize).Error
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	return ids, nil
}

func (r *PostgresNotificationLog) QueryInitial(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("id DESC").
		Limit(NormalizeLimit(limit)).
		Find(&notifications).Error
	return notifications, err
}

// QueryIncremental is intentionally unbounded: a client holding a cursor must never skip a record.
func (r *PostgresNotificationLog) QueryIncremental(ctx context.Context, recipientID uint, sinceID uint64) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ? AND id > ?", recipientID, sinceID).
		Order("id DESC").
		Find(&notifications).Error
	return notifications, err
}

func (r *PostgresNotificationLog) MarkRead(ctx context.Context, recipientID uint, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND id IN ?", recipientID, ids).
		Update("is_read", true).Error
}

func (r *PostgresNotificationLog) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MemoryNotificationLog keeps the log in process memory. Records are held in id order.
type MemoryNotificationLog struct {
	mu      sync.RWMutex
	records []models.Notification
	lastID  uint64
	now     func() time.Time
}

// NewMemoryNotificationLog creates an empty in-memory log
func NewMemoryNotificationLog() *MemoryNotificationLog {
	return &MemoryNotificationLog{now: time.Now}
}

func (m *MemoryNotificationLog) AppendBatch(ctx context.Context, records []models.Notification) ([]uint64, error) {
	if len(records) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows := prepare(records, m.now())
	ids := make([]uint64, len(rows))
	for i := range rows {
		m.lastID++
		rows[i].ID = m.lastID
		ids[i] = m.lastID
	}
	m.records = append(m.records, rows...)
	return ids, nil
}

func (m *MemoryNotificationLog) QueryInitial(ctx context.Context, recipientID uint, limit int) ([]models.Notification, error) {
	limit = NormalizeLimit(limit)
	return m.scan(recipientID, 0, limit), nil
}

func (m *MemoryNotificationLog) QueryIncremental(ctx context.Context, recipientID uint, sinceID uint64) ([]models.Notification, error) {
	return m.scan(recipientID, sinceID, 0), nil
}

// scan walks newest to oldest; limit 0 means no limit.
func (m *MemoryNotificationLog) scan(recipientID uint, sinceID uint64, limit int) []models.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []models.Notification{}
	for i := len(m.records) - 1; i >= 0; i-- {
		n := m.records[i]
		if n.ID <= sinceID {
			break
		}
		if n.RecipientID != recipientID {
			continue
		}
		out = append(out, n)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (m *MemoryNotificationLog) MarkRead(ctx context.Context, recipientID uint, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	want := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.records {
		if _, ok := want[m.records[i].ID]; ok && m.records[i].RecipientID == recipientID {
			m.records[i].IsRead = true
		}
	}
	return nil
}

func (m *MemoryNotificationLog) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, n := range m.records {
		if n.RecipientID == recipientID && !n.IsRead {
			count++
		}
	}
	return count, nil
}
