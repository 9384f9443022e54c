package repositories

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/cache"
	"ClinicQueue/database"
	"ClinicQueue/events"
	"ClinicQueue/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PatientCacheExpiry = 7 * 24 * time.Hour
)

type PatientRepository struct {
	cache *cache.Cache
	feed  *events.Feed
}

func NewPatientRepository(cache *cache.Cache, feed *events.Feed) *PatientRepository {
	return &PatientRepository{cache: cache, feed: feed}
}

// Insert persists a new patient, assigning its id.
func (r *PatientRepository) Insert(ctx context.Context, patient *models.Patient) error {
	if patient.ID == "" {
		patient.ID = uuid.New().String()
	}
	if patient.Gender == "" {
		patient.Gender = "unknown"
	}

	lockKey := fmt.Sprintf("patient_lock:%s_%s", patient.Name, patient.Phone)
	err := withLock(ctx, lockKey, func() error {
		if err := database.DB.WithContext(ctx).Create(patient).Error; err != nil {
			return fmt.Errorf("failed to create patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, patient.ID)
	r.feed.Publish(ctx, events.TopicPatients)
	return nil
}

// GetByID loads one patient, cache-aside.
func (r *PatientRepository) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.patientCacheKey(id)
	cached, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var patient models.Patient
		if err := json.Unmarshal([]byte(cached), &patient); err == nil {
			return &patient, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get patient from cache: %v", err)
	}

	var patient models.Patient
	err = database.DB.WithContext(ctx).First(&patient, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}

	if payload, err := json.Marshal(patient); err == nil {
		if err := r.cache.Set(ctx, cacheKey, payload, PatientCacheExpiry); err != nil {
			log.Printf("Failed to set patient in cache: %v", err)
		}
	}

	return &patient, nil
}

// FindByPhone returns the patient with the exact phone number, or nil when
// no such patient exists.
func (r *PatientRepository) FindByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	if phone == "" {
		return nil, nil
	}

	var patient models.Patient
	err := database.DB.WithContext(ctx).First(&patient, "phone = ?", phone).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find patient by phone: %w", err)
	}
	return &patient, nil
}

// List returns all patients, most recently registered first.
func (r *PatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	var patients []models.Patient
	err := database.DB.WithContext(ctx).
		Order("created_at DESC").
		Find(&patients).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// Update saves the patient record as given.
func (r *PatientRepository) Update(ctx context.Context, patient *models.Patient) error {
	lockKey := fmt.Sprintf("patient_lock:%s", patient.ID)
	err := withLock(ctx, lockKey, func() error {
		if err := database.DB.WithContext(ctx).Save(patient).Error; err != nil {
			return fmt.Errorf("failed to update patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, patient.ID)
	r.feed.Publish(ctx, events.TopicPatients)
	return nil
}

func (r *PatientRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, r.patientCacheKey(id)); err != nil {
		log.Printf("Failed to delete patient cache: %v", err)
	}
	if err := r.cache.DeleteAll(ctx, "patients_cache*"); err != nil {
		log.Printf("Failed to delete patients list cache: %v", err)
	}
}

func (r *PatientRepository) patientCacheKey(id string) string {
	return fmt.Sprintf("patient_cache:%s", id)
}
