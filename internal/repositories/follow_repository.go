package repositories

import (
	"context"

	"github.com/anonto42/insyd/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	CreateFollow(ctx context.Context, follow *models.Follow) error
	FollowersOf(ctx context.Context, userID uint) ([]uint, error)
}

// PostgresFollowRepository implements FollowRepository on any GORM dialect
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateFollow inserts a follow edge; a duplicate edge returns ErrConflict
func (r *PostgresFollowRepository) CreateFollow(ctx context.Context, follow *models.Follow) error {
	return translate(r.db.WithContext(ctx).Create(follow).Error)
}

// FollowersOf returns the distinct ids of users following userID
func (r *PostgresFollowRepository) FollowersOf(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("following_id = ?", userID).
		Distinct().
		Order("follower_id").
		Pluck("follower_id", &ids).Error
	return ids, err
}
