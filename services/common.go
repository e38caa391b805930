package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/smartserve/utils"
	"gorm.io/gorm"
)

// notFound wraps gorm.ErrRecordNotFound with the entity that was looked up.
func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, gorm.ErrRecordNotFound)
}

// IsNotFound reports whether err comes from a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// exists runs a COUNT over model restricted by query.
func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// first loads dest by primary key and maps a missing row onto notFound.
func first(tx *gorm.DB, dest interface{}, entity string, id uint) error {
	err := tx.First(dest, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return err
}

// inTx runs fn in one transaction and translates storage level constraint
// failures that escaped validation.
func inTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	err := db.WithContext(ctx).Transaction(fn)
	if _, ok := utils.AsValidationError(err); ok {
		return err
	}
	return utils.TranslateDBError(err)
}

// referenceError is added when a foreign key id does not point at a row.
func referenceError(verr *utils.ValidationError, field string, id uint) {
	verr.Add(field, fmt.Sprintf("Select a valid choice. %d is not one of the available choices.", id), utils.CodeInvalid)
}
