package repository

import (
	"errors"

	"gorm.io/gorm"

	"taskflow/internal/apperrors"
)

// translateError maps driver failures into the stable store error taxonomy.
// gorm.ErrRecordNotFound passes through untouched so callers can keep using
// errors.Is on it; everything else is wrapped exactly once, here.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.NewStoreError(apperrors.StoreCodeUniqueViolation, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.NewStoreError(apperrors.StoreCodeForeignKeyViolation, err)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return apperrors.NewStoreError(apperrors.StoreCodeRequiredRelation, err)
	default:
		return apperrors.NewStoreError(apperrors.StoreCodeGeneric, err)
	}
}
