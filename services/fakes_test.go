package services

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/models"
	"context"
	"time"

	"github.com/google/uuid"
)

// fakeAppointmentStore is an in-memory AppointmentStore with the same
// guarded-update semantics as the real repository.
type fakeAppointmentStore struct {
	byID      map[string]*models.Appointment
	inserted  []*models.Appointment
	insertErr error
	linkErr   error
	lockErr   error
	lockCalls int
}

func newFakeAppointmentStore(appointments ...*models.Appointment) *fakeAppointmentStore {
	store := &fakeAppointmentStore{byID: make(map[string]*models.Appointment)}
	for _, appointment := range appointments {
		if appointment.ID == "" {
			appointment.ID = uuid.New().String()
		}
		store.byID[appointment.ID] = appointment
	}
	return store
}

func (f *fakeAppointmentStore) Insert(ctx context.Context, appointment *models.Appointment) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if appointment.ID == "" {
		appointment.ID = uuid.New().String()
	}
	stored := *appointment
	f.byID[appointment.ID] = &stored
	f.inserted = append(f.inserted, &stored)
	return nil
}

func (f *fakeAppointmentStore) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *appointment
	return &copied, nil
}

func (f *fakeAppointmentStore) ListByRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appointment := range f.byID {
		if !appointment.ScheduledTime.Before(start) && appointment.ScheduledTime.Before(end) {
			out = append(out, *appointment)
		}
	}
	return out, nil
}

func (f *fakeAppointmentStore) ListByStatus(ctx context.Context, statuses []string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appointment := range f.byID {
		for _, status := range statuses {
			if appointment.Status == status {
				out = append(out, *appointment)
			}
		}
	}
	return out, nil
}

func (f *fakeAppointmentStore) UpdateStatusFrom(ctx context.Context, id string, allowedFrom []string, to string, extra map[string]interface{}) (bool, error) {
	appointment, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	allowed := false
	for _, status := range allowedFrom {
		if appointment.Status == status {
			allowed = true
		}
	}
	if !allowed {
		return false, nil
	}
	appointment.Status = to
	if arrival, ok := extra["arrival_time"].(time.Time); ok {
		appointment.ArrivalTime = &arrival
	}
	return true, nil
}

func (f *fakeAppointmentStore) StartConsultation(ctx context.Context, id string) (bool, error) {
	appointment, ok := f.byID[id]
	if !ok || appointment.Status != models.StatusArrived {
		return false, nil
	}
	for _, other := range f.byID {
		if other.ID != id && other.Status == models.StatusInConsultation {
			return false, nil
		}
	}
	appointment.Status = models.StatusInConsultation
	return true, nil
}

func (f *fakeAppointmentStore) WithConsultationLock(ctx context.Context, fn func() error) error {
	f.lockCalls++
	if f.lockErr != nil {
		return f.lockErr
	}
	return fn()
}

func (f *fakeAppointmentStore) LinkPatient(ctx context.Context, id, patientID string) error {
	if f.linkErr != nil {
		return f.linkErr
	}
	appointment, ok := f.byID[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	appointment.PatientID = &patientID
	return nil
}

// fakePatientStore is an in-memory PatientStore.
type fakePatientStore struct {
	byID      map[string]*models.Patient
	byPhone   map[string]*models.Patient
	insertErr error
	inserts   int
}

func newFakePatientStore() *fakePatientStore {
	return &fakePatientStore{
		byID:    make(map[string]*models.Patient),
		byPhone: make(map[string]*models.Patient),
	}
}

func (f *fakePatientStore) Insert(ctx context.Context, patient *models.Patient) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if patient.ID == "" {
		patient.ID = uuid.New().String()
	}
	stored := *patient
	f.byID[patient.ID] = &stored
	if patient.Phone != "" {
		f.byPhone[patient.Phone] = &stored
	}
	f.inserts++
	return nil
}

func (f *fakePatientStore) GetByID(ctx context.Context, id string) (*models.Patient, error) {
	patient, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *patient
	return &copied, nil
}

func (f *fakePatientStore) FindByPhone(ctx context.Context, phone string) (*models.Patient, error) {
	patient, ok := f.byPhone[phone]
	if !ok {
		return nil, nil
	}
	copied := *patient
	return &copied, nil
}
