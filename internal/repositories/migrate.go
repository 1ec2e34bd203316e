package repositories

import (
	"github.com/anonto42/insyd/backend/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates every GORM-managed table
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	)
}
