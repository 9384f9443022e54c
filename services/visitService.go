package services

import (
	"ClinicQueue/models"
	"ClinicQueue/repositories"
	"context"
	"time"
)

// ConsultationData is what the doctor saves at the end of a consultation.
type ConsultationData struct {
	ChiefComplaint string                `json:"chief_complaint"`
	Diagnosis      string                `json:"diagnosis"`
	Notes          string                `json:"notes"`
	BPSystolic     *int                  `json:"bp_systolic"`
	BPDiastolic    *int                  `json:"bp_diastolic"`
	Weight         *float64              `json:"weight"`
	Temperature    *float64              `json:"temperature"`
	HeartRate      *int                  `json:"heart_rate"`
	Prescriptions  []models.Prescription `json:"prescriptions"`
}

type VisitService struct {
	repository *repositories.VisitRepository
}

func NewVisitService(repository *repositories.VisitRepository) *VisitService {
	return &VisitService{repository: repository}
}

// SaveConsultation writes the visit record and its prescriptions for a
// patient in one transaction and returns the stored visit.
func (s *VisitService) SaveConsultation(ctx context.Context, patientID string, data ConsultationData, now time.Time) (*models.Visit, error) {
	visit := &models.Visit{
		PatientID:      patientID,
		VisitDate:      now,
		ChiefComplaint: data.ChiefComplaint,
		Diagnosis:      data.Diagnosis,
		Notes:          data.Notes,
		BPSystolic:     data.BPSystolic,
		BPDiastolic:    data.BPDiastolic,
		Weight:         data.Weight,
		Temperature:    data.Temperature,
		HeartRate:      data.HeartRate,
		Status:         "completed",
	}
	if err := s.repository.CreateWithPrescriptions(ctx, visit, data.Prescriptions); err != nil {
		return nil, err
	}
	visit.Prescriptions = data.Prescriptions
	return visit, nil
}

// ListByPatient returns a patient's visit history, newest first.
func (s *VisitService) ListByPatient(ctx context.Context, patientID string) ([]models.Visit, error) {
	return s.repository.ListByPatient(ctx, patientID)
}
