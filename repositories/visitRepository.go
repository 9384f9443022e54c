package repositories

import (
	"ClinicQueue/cache"
	"ClinicQueue/database"
	"ClinicQueue/models"
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitRepository struct {
	cache *cache.Cache
}

func NewVisitRepository(cache *cache.Cache) *VisitRepository {
	return &VisitRepository{cache: cache}
}

// CreateWithPrescriptions persists a visit and its prescriptions in one
// transaction; either the whole consultation record lands or none of it.
func (r *VisitRepository) CreateWithPrescriptions(ctx context.Context, visit *models.Visit, prescriptions []models.Prescription) error {
	if visit.ID == "" {
		visit.ID = uuid.New().String()
	}

	err := database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(visit).Error; err != nil {
			return fmt.Errorf("failed to create visit: %w", err)
		}
		for i := range prescriptions {
			prescriptions[i].ID = uuid.New().String()
			prescriptions[i].VisitID = visit.ID
		}
		if len(prescriptions) > 0 {
			if err := tx.Create(&prescriptions).Error; err != nil {
				return fmt.Errorf("failed to create prescriptions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := r.cache.DeleteAll(ctx, fmt.Sprintf("visits_cache:%s*", visit.PatientID)); err != nil {
		log.Printf("Failed to delete visits cache: %v", err)
	}
	return nil
}

// ListByPatient returns a patient's visits, newest first, with their
// prescriptions preloaded.
func (r *VisitRepository) ListByPatient(ctx context.Context, patientID string) ([]models.Visit, error) {
	var visits []models.Visit
	err := database.DB.WithContext(ctx).
		Preload("Prescriptions").
		Where("patient_id = ?", patientID).
		Order("visit_date DESC").
		Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list visits: %w", err)
	}
	return visits, nil
}
