package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrIntegrityConflict = errors.New("integrity conflict")
	ErrInvalidInput      = errors.New("invalid input")
)

// translate maps driver level constraint errors onto service errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return errors.Join(ErrIntegrityConflict, err)
	default:
		return err
	}
}
