package services

import (
	"ClinicQueue/models"
	"ClinicQueue/repositories"
	"context"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidatePatient checks a patient payload before persisting it.
func ValidatePatient(patient models.Patient) error {
	return validation.ValidateStruct(&patient,
		validation.Field(&patient.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&patient.Age, validation.Min(0), validation.Max(130)),
		validation.Field(&patient.Gender, validation.In("male", "female", "unknown")),
		validation.Field(&patient.Phone, validation.When(patient.Phone != "", validation.Match(phonePattern).Error("must be a phone number"))),
	)
}

type PatientService struct {
	repository *repositories.PatientRepository
}

func NewPatientService(repository *repositories.PatientRepository) *PatientService {
	return &PatientService{repository: repository}
}

func (s *PatientService) Create(ctx context.Context, patient *models.Patient) error {
	if err := ValidatePatient(*patient); err != nil {
		return err
	}
	return s.repository.Insert(ctx, patient)
}

func (s *PatientService) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	return s.repository.GetByID(ctx, id)
}

func (s *PatientService) FindByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	return s.repository.FindByPhone(ctx, phone)
}

func (s *PatientService) List(ctx context.Context) ([]models.Patient, error) {
	return s.repository.List(ctx)
}

func (s *PatientService) Update(ctx context.Context, patient *models.Patient) error {
	if err := ValidatePatient(*patient); err != nil {
		return err
	}
	return s.repository.Update(ctx, patient)
}
