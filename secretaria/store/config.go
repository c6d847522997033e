package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (q *Queries) GetConfig(ctx context.Context, key string) (string, bool, error) {
	var entry ConfigEntry
	err := q.db.WithContext(ctx).Where("config_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.WithMessage(err, "get config error")
	}
	return entry.Value, true, nil
}

// SetConfig writes a config key. Keys are unique; a second write for the
// same key overwrites the value.
func (q *Queries) SetConfig(ctx context.Context, key, value string) error {
	entry := &ConfigEntry{
		Key:   key,
		Value: value,
	}
	err := q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "config_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"config_value"}),
	}).Create(entry).Error
	return errors.WithMessage(err, "set config error")
}
