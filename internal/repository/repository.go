package repository

import (
	"errors"
	"math"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when no record matches the lookup.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique index rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrStockTooLow is returned when a conditional decrement finds less stock than requested.
	ErrStockTooLow = errors.New("stock too low")
	// ErrStockOverflow is returned when an increment would push stock past MaxStock.
	ErrStockOverflow = errors.New("stock limit exceeded")
	// ErrConstraint is returned when a storage level check constraint rejects a write.
	ErrConstraint = errors.New("constraint violated")
)

// MaxStock is the largest quantity a sweet can hold.
const MaxStock = math.MaxInt

// translate maps driver errors onto the repository sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicateKey
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return ErrConstraint
	}
	return err
}
