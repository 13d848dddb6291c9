package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Typed outcomes of persistence calls. Callers test with errors.Is and never look at
// driver-specific codes.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("uniqueness violation")
	ErrReferenced = errors.New("record is still referenced")
)

// translate maps GORM's translated errors (gorm.Config.TranslateError) onto the typed outcomes.
// Anything else is returned unchanged.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrReferenced
	default:
		return err
	}
}

// affected turns a zero-row update/delete into ErrNotFound.
func affected(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
