package services

import (
	"ClinicQueue/database"
	"ClinicQueue/models"
	"ClinicQueue/repositories"
	"ClinicQueue/utils"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

type StaffService interface {
	ValidateAndCreateStaff(ctx context.Context, staff *models.Staff) error
	AuthenticateStaff(ctx context.Context, username, password string) (*models.Staff, error)
	GetStaffByID(ctx context.Context, id int64) (*models.Staff, error)
	GetStaffByUsername(ctx context.Context, username string) (*models.Staff, error)
	GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
	UpdateStaffPassword(ctx context.Context, id int64, newPassword string) error
}

type staffService struct {
	staffRepo repositories.StaffRepository
}

func NewStaffService(staffRepo repositories.StaffRepository) StaffService {
	return &staffService{staffRepo: staffRepo}
}

func (s *staffService) ValidateAndCreateStaff(ctx context.Context, staff *models.Staff) error {
	lockKey := fmt.Sprintf("staff_lock:%s", staff.Email)
	lockValue := uuid.New().String()
	locked, err := database.NewLock(ctx, lockKey, lockValue, time.Minute)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return errors.New("failed to acquire lock")
	}
	defer func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}()

	if err := utils.ValidateStaffData(*staff); err != nil {
		return fmt.Errorf("invalid staff data: %w", err)
	}

	if exists, err := s.staffRepo.EmailExists(ctx, staff.Email); err != nil || exists {
		return errors.New("email already registered")
	}

	hashedPassword, err := utils.HashPassword(staff.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	staff.Password = hashedPassword

	return s.staffRepo.Create(ctx, staff)
}

func (s *staffService) AuthenticateStaff(ctx context.Context, username, password string) (*models.Staff, error) {
	staff, err := s.staffRepo.Authenticate(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}
	return staff, nil
}

func (s *staffService) GetStaffByID(ctx context.Context, id int64) (*models.Staff, error) {
	return s.staffRepo.GetByID(ctx, id)
}

func (s *staffService) GetStaffByUsername(ctx context.Context, username string) (*models.Staff, error) {
	return s.staffRepo.GetByUsername(ctx, username)
}

func (s *staffService) GetStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	return s.staffRepo.GetByEmail(ctx, email)
}

func (s *staffService) UpdateStaffPassword(ctx context.Context, id int64, newPassword string) error {
	lockKey := fmt.Sprintf("staff_lock:%d", id)
	lockValue := uuid.New().String()
	locked, err := database.NewLock(ctx, lockKey, lockValue, time.Minute)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return errors.New("failed to acquire lock")
	}
	defer func() {
		if err := database.ReleaseLock(ctx, lockKey, lockValue); err != nil {
			log.Printf("Failed to release lock: %v", err)
		}
	}()

	hashedPassword, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.staffRepo.UpdatePassword(ctx, id, hashedPassword); err != nil {
		return fmt.Errorf("failed to update staff password: %w", err)
	}

	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get staff by ID: %w", err)
	}
	if staff == nil {
		return errors.New("staff not found")
	}

	return s.staffRepo.DeleteCache(ctx, staff.Username)
}
