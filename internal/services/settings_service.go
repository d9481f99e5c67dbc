package services

import (
	"context"

	"bilancio/internal/core"
	"bilancio/internal/log"
	"bilancio/internal/storage"
)

// SettingsService serves per-user display settings.
type SettingsService struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewSettingsService(storage *storage.SQLiteRepository, logger *log.Logger) *SettingsService {
	return &SettingsService{
		storage: storage,
		logger:  logger.WithComponent(log.ComponentSettings),
	}
}

// Get returns the user's settings, creating them with the default currency
// on first access.
func (s *SettingsService) Get(ctx context.Context, userID string) Result {
	settings, err := s.storage.GetOrCreateUserSettings(ctx, userID)
	if err != nil {
		return failForError(ctx, s.logger, "get_settings", err, "settings not found")
	}
	return OK(settings)
}

// UpdateCurrency changes the user's display currency. The currency must be
// in the fixed supported set.
func (s *SettingsService) UpdateCurrency(ctx context.Context, userID string, in core.CurrencyInput) Result {
	if err := in.Validate(); err != nil {
		return failForError(ctx, s.logger, "update_currency", err, "")
	}

	settings, err := s.storage.UpdateUserCurrency(ctx, userID, in.Currency)
	if err != nil {
		return failForError(ctx, s.logger, "update_currency", err, "settings not found")
	}

	s.logger.InfoContext(ctx, "Currency updated",
		log.FieldUserID, userID,
		log.FieldCurrency, in.Currency)
	return OK(settings)
}
