package repositories

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced row or document does not exist
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique pair (follow, like) already exists
	ErrConflict = errors.New("record already exists")
)

// translate maps driver errors onto the package sentinels.
// GORM must be opened with TranslateError so duplicate keys surface as gorm.ErrDuplicatedKey.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	}
	return err
}
