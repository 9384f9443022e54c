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
	AppointmentCacheExpiry = 24 * time.Hour

	// consultationLockKey serializes the ensure-patient plus status-flip
	// sequence of StartConsultation across all request handlers.
	consultationLockKey = "lock:active_consultation"
)

// ErrSlotTaken is returned when an insert loses the race for a slot. The
// partial unique index on (scheduled_time) over blocking statuses is the
// authority; this error is its translation.
var ErrSlotTaken = errors.New("slot already taken by another appointment")

type AppointmentRepository struct {
	cache *cache.Cache
	feed  *events.Feed
}

func NewAppointmentRepository(cache *cache.Cache, feed *events.Feed) *AppointmentRepository {
	return &AppointmentRepository{cache: cache, feed: feed}
}

// Insert persists a new appointment, assigning its id. A duplicate-key
// failure on the active-slot index comes back as ErrSlotTaken.
func (r *AppointmentRepository) Insert(ctx context.Context, appointment *models.Appointment) error {
	if !models.IsValidStatus(appointment.Status) {
		return fmt.Errorf("invalid status value: %q", appointment.Status)
	}
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}

	lockKey := fmt.Sprintf("appointment_lock:slot_%d", appointment.ScheduledTime.Unix())
	err := withLock(ctx, lockKey, func() error {
		if err := database.DB.WithContext(ctx).Create(appointment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrSlotTaken
			}
			return fmt.Errorf("failed to create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidate(ctx, appointment.ID)
	r.feed.Publish(ctx, events.TopicAppointments)
	return nil
}

// GetByID loads one appointment, cache-aside.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cacheKey := r.appointmentCacheKey(id)
	cached, err := r.cache.Get(ctx, cacheKey)
	if err == nil {
		var appointment models.Appointment
		if err := json.Unmarshal([]byte(cached), &appointment); err == nil {
			return &appointment, nil
		}
	} else if err != redis.Nil {
		log.Printf("Failed to get appointment from cache: %v", err)
	}

	var appointment models.Appointment
	err = database.DB.WithContext(ctx).First(&appointment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if payload, err := json.Marshal(appointment); err == nil {
		if err := r.cache.Set(ctx, cacheKey, payload, AppointmentCacheExpiry); err != nil {
			log.Printf("Failed to set appointment in cache: %v", err)
		}
	}

	return &appointment, nil
}

// ListByRange returns appointments scheduled in [start, end), ascending.
func (r *AppointmentRepository) ListByRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := database.DB.WithContext(ctx).
		Where("scheduled_time >= ? AND scheduled_time < ?", start, end).
		Order("scheduled_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments by range: %w", err)
	}
	return appointments, nil
}

// ListByStatus returns appointments whose status is in statuses, ascending
// by scheduled time.
func (r *AppointmentRepository) ListByStatus(ctx context.Context, statuses []string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := database.DB.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("scheduled_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments by status: %w", err)
	}
	return appointments, nil
}

// ListDueReminders returns booked, not-yet-reminded appointments scheduled
// inside [start, end], with their patient preloaded for the phone number.
func (r *AppointmentRepository) ListDueReminders(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := database.DB.WithContext(ctx).
		Preload("Patient").
		Where("status = ? AND reminder_sent = false", models.StatusBooked).
		Where("scheduled_time >= ? AND scheduled_time <= ?", start, end).
		Order("scheduled_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return appointments, nil
}

// UpdateStatusFrom flips status to the given value only when the current
// status is in allowedFrom, applying extra column updates atomically.
// It reports whether a row was changed.
func (r *AppointmentRepository) UpdateStatusFrom(ctx context.Context, id string, allowedFrom []string, to string, extra map[string]interface{}) (bool, error) {
	if !models.IsValidStatus(to) {
		return false, fmt.Errorf("invalid status value: %q", to)
	}

	fields := map[string]interface{}{"status": to}
	for column, value := range extra {
		fields[column] = value
	}

	result := database.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, allowedFrom).
		Updates(fields)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update appointment status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	r.invalidate(ctx, id)
	r.feed.Publish(ctx, events.TopicAppointments)
	return true, nil
}

// StartConsultation flips an arrived appointment to in-consultation, but
// only when no other appointment currently holds that status. The guard
// and the write are one conditional UPDATE, so two concurrent callers
// cannot both succeed; the single-consultation index backstops it.
func (r *AppointmentRepository) StartConsultation(ctx context.Context, id string) (bool, error) {
	result := database.DB.WithContext(ctx).Exec(
		`UPDATE appointment SET status = ?, updated_at = NOW()
		 WHERE id = ? AND status = ?
		 AND NOT EXISTS (
			 SELECT 1 FROM appointment other
			 WHERE other.status = ? AND other.id <> appointment.id
		 )`,
		models.StatusInConsultation, id, models.StatusArrived, models.StatusInConsultation,
	)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to start consultation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	r.invalidate(ctx, id)
	r.feed.Publish(ctx, events.TopicAppointments)
	return true, nil
}

// WithConsultationLock runs fn under the cross-process consultation mutex.
func (r *AppointmentRepository) WithConsultationLock(ctx context.Context, fn func() error) error {
	return withLock(ctx, consultationLockKey, fn)
}

// LinkPatient persists the patient linkage on an appointment. The link is
// kept even if a later status write fails; retries see it and skip the
// patient creation.
func (r *AppointmentRepository) LinkPatient(ctx context.Context, id, patientID string) error {
	result := database.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("patient_id", patientID)
	if result.Error != nil {
		return fmt.Errorf("failed to link patient: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}

	r.invalidate(ctx, id)
	r.feed.Publish(ctx, events.TopicAppointments)
	return nil
}

// MarkReminderSent records that a reminder went out for the appointment.
func (r *AppointmentRepository) MarkReminderSent(ctx context.Context, id string) error {
	err := database.DB.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *AppointmentRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Delete(ctx, r.appointmentCacheKey(id)); err != nil {
		log.Printf("Failed to delete appointment cache: %v", err)
	}
	if err := r.cache.DeleteAll(ctx, "appointments_cache*"); err != nil {
		log.Printf("Failed to delete appointments list cache: %v", err)
	}
}

func (r *AppointmentRepository) appointmentCacheKey(id string) string {
	return fmt.Sprintf("appointment_cache:%s", id)
}
