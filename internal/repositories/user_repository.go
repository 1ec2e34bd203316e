package repositories

import (
	"context"
	"fmt"

	"github.com/anonto42/insyd/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUsers(ctx context.Context) ([]models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	DisplayNameOf(ctx context.Context, id uint) (string, error)
}

// PostgresUserRepository implements UserRepository on any GORM dialect
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user
func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// GetUserByID retrieves a user by ID
func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetUsers retrieves all users ordered by ID
func (r *PostgresUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// CountUsers returns the number of users
func (r *PostgresUserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// DisplayNameOf returns the user's current name, ErrNotFound if the user does not exist
func (r *PostgresUserRepository) DisplayNameOf(ctx context.Context, id uint) (string, error) {
	user, err := r.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	return user.Name, nil
}

// SeedUsers inserts the given names when the users table is empty
func SeedUsers(ctx context.Context, repo UserRepository, names ...string) error {
	count, err := repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}
	for _, name := range names {
		if err := repo.CreateUser(ctx, &models.User{Name: name}); err != nil {
			return fmt.Errorf("seed user %q: %w", name, err)
		}
	}
	return nil
}
