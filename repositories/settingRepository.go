package repositories

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/cache"
	"ClinicQueue/database"
	"ClinicQueue/models"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const (
	SettingCacheExpiry = time.Hour
)

type SettingRepository struct {
	cache *cache.Cache
}

func NewSettingRepository(cache *cache.Cache) *SettingRepository {
	return &SettingRepository{cache: cache}
}

// Get returns the raw JSON document stored under key.
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	cacheKey := r.settingCacheKey(key)
	cached, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		return cached, nil
	} else if err != redis.Nil {
		log.Printf("Failed to get setting from cache: %v", err)
	}

	var setting models.ClinicSetting
	err = database.DB.WithContext(ctx).First(&setting, "setting_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrNotFound
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, setting.SettingValue, SettingCacheExpiry); err != nil {
		log.Printf("Failed to set setting in cache: %v", err)
	}
	return setting.SettingValue, nil
}

// Update replaces the JSON document stored under key.
func (r *SettingRepository) Update(ctx context.Context, key, value string) error {
	result := database.DB.WithContext(ctx).
		Model(&models.ClinicSetting{}).
		Where("setting_key = ?", key).
		Update("setting_value", value)
	if result.Error != nil {
		return fmt.Errorf("failed to update setting: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	if err := r.cache.Delete(ctx, r.settingCacheKey(key)); err != nil {
		log.Printf("Failed to delete setting cache: %v", err)
	}
	return nil
}

func (r *SettingRepository) settingCacheKey(key string) string {
	return fmt.Sprintf("setting_cache:%s", key)
}
