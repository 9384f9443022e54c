package repositories

import (
	"ClinicQueue/cache"
	"ClinicQueue/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	StaffCacheExpiry = 7 * 24 * time.Hour
)

type StaffRepository interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	GetByUsername(ctx context.Context, username string) (*models.Staff, error)
	GetByEmail(ctx context.Context, email string) (*models.Staff, error)
	GetByID(ctx context.Context, id int64) (*models.Staff, error)
	Create(ctx context.Context, staff *models.Staff) error
	Authenticate(ctx context.Context, username, password string) (*models.Staff, error)
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
	DeleteCache(ctx context.Context, identifier string) error
}

type staffRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewStaffRepository(db *gorm.DB, cache *cache.Cache) StaffRepository {
	return &staffRepository{db: db, cache: cache}
}

func (r *staffRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Staff{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

func (r *staffRepository) GetByUsername(ctx context.Context, username string) (*models.Staff, error) {
	return r.getByField(ctx, "username", username)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*models.Staff, error) {
	return r.getByField(ctx, "email", email)
}

func (r *staffRepository) getByField(ctx context.Context, field, value string) (*models.Staff, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.staffCacheKey(value)
	cached, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var staff models.Staff
		if err := json.Unmarshal([]byte(cached), &staff); err == nil {
			return &staff, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get staff from cache: %v", err)
	}

	var staff models.Staff
	err = r.db.WithContext(ctx).
		Select("id, username, email, role_id, created_at").
		Preload("Role", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, name, description")
		}).
		Where(fmt.Sprintf("%s = ?", field), value).
		First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if payload, err := json.Marshal(staff); err == nil {
		if err := r.cache.Set(ctx, cacheKey, payload, StaffCacheExpiry); err != nil {
			log.Printf("Failed to set staff in cache: %v", err)
		}
	}

	return &staff, nil
}

func (r *staffRepository) GetByID(ctx context.Context, id int64) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Select("id, username, email, role_id, created_at").
		Preload("Role").
		First(&staff, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &staff, nil
}

func (r *staffRepository) Create(ctx context.Context, staff *models.Staff) error {
	if err := r.db.WithContext(ctx).Create(staff).Error; err != nil {
		return fmt.Errorf("failed to create staff account: %w", err)
	}
	return nil
}

// Authenticate verifies the password against the stored bcrypt hash.
func (r *staffRepository) Authenticate(ctx context.Context, username, password string) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("username = ?", username).
		First(&staff).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("invalid username or password")
		}
		return nil, fmt.Errorf("failed to authenticate: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)); err != nil {
		return nil, errors.New("invalid username or password")
	}

	staff.Password = ""
	return &staff, nil
}

func (r *staffRepository) UpdatePassword(ctx context.Context, id int64, hashedPassword string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Staff{}).
		Where("id = ?", id).
		Update("password", hashedPassword).Error
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (r *staffRepository) DeleteCache(ctx context.Context, identifier string) error {
	return r.cache.Delete(ctx, r.staffCacheKey(identifier))
}

func (r *staffRepository) staffCacheKey(identifier string) string {
	return fmt.Sprintf("staff_cache:%s", identifier)
}
