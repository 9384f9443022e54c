package services

import (
	"ClinicQueue/models"
	"context"
	"encoding/json"
	"fmt"
)

// SettingStore is the clinic settings surface. Implemented by
// repositories.SettingRepository.
type SettingStore interface {
	Get(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, key, value string) error
}

type SettingService struct {
	store SettingStore
}

func NewSettingService(store SettingStore) *SettingService {
	return &SettingService{store: store}
}

// Get returns the raw JSON document for a settings key.
func (s *SettingService) Get(ctx context.Context, key string) (string, error) {
	return s.store.Get(ctx, key)
}

// Update validates that value is a JSON object and stores it.
func (s *SettingService) Update(ctx context.Context, key, value string) error {
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(value), &doc); err != nil {
		return fmt.Errorf("setting value must be a JSON object: %w", err)
	}
	return s.store.Update(ctx, key, value)
}

// ReminderSettings loads and parses the reminder_settings document.
func (s *SettingService) ReminderSettings(ctx context.Context) (*models.ReminderSettings, error) {
	raw, err := s.store.Get(ctx, models.SettingKeyReminders)
	if err != nil {
		return nil, err
	}
	var settings models.ReminderSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return nil, fmt.Errorf("failed to parse reminder settings: %w", err)
	}
	return &settings, nil
}
