package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"buckler-tracker/internal/db"

	"github.com/rs/zerolog"
)

type SettingsRepository struct {
	queries *db.Queries
	logger  zerolog.Logger
}

func NewSettingsRepository(queries *db.Queries, logger zerolog.Logger) *SettingsRepository {
	return &SettingsRepository{queries: queries, logger: logger}
}

// Get reports whether the key exists alongside its value.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.queries.GetSetting(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	r.logger.Debug().Str("key", key).Str("value", value).Msg("saving setting")
	return r.queries.UpsertSetting(ctx, db.UpsertSettingParams{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	})
}
