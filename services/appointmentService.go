package services

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/models"
	"context"
	"time"
)

// AppointmentStore is the persistence surface the lifecycle rules need.
// Implemented by repositories.AppointmentRepository.
type AppointmentStore interface {
	Insert(ctx context.Context, appointment *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error)
	ListByStatus(ctx context.Context, statuses []string) ([]models.Appointment, error)
	UpdateStatusFrom(ctx context.Context, id string, allowedFrom []string, to string, extra map[string]interface{}) (bool, error)
	StartConsultation(ctx context.Context, id string) (bool, error)
	WithConsultationLock(ctx context.Context, fn func() error) error
	LinkPatient(ctx context.Context, id, patientID string) error
}

// PatientStore is the patient persistence surface used for resolve-or-create.
// Implemented by repositories.PatientRepository.
type PatientStore interface {
	Insert(ctx context.Context, patient *models.Patient) error
	GetByID(ctx context.Context, id string) (*models.Patient, error)
	FindByPhone(ctx context.Context, phone string) (*models.Patient, error)
}

// AppointmentService enforces the appointment lifecycle:
// booked -> arrived -> in-consultation -> completed, with no-show reachable
// from booked/arrived, and completed/no-show terminal. At most one
// appointment may be in-consultation at any time.
type AppointmentService struct {
	appointments AppointmentStore
	patients     PatientStore
	calculator   *SlotCalculator
}

func NewAppointmentService(appointments AppointmentStore, patients PatientStore, calculator *SlotCalculator) *AppointmentService {
	return &AppointmentService{appointments: appointments, patients: patients, calculator: calculator}
}

// GetByID loads one appointment.
func (s *AppointmentService) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// Queue returns today's queue: every appointment of the day except
// no-shows, in scheduled order.
func (s *AppointmentService) Queue(ctx context.Context, now time.Time) ([]models.Appointment, error) {
	start, end := s.calculator.DayBounds(now)
	appointments, err := s.appointments.ListByRange(ctx, start, end)
	if err != nil {
		return nil, apperrors.Persistence("list queue", err)
	}

	queue := make([]models.Appointment, 0, len(appointments))
	for _, appointment := range appointments {
		if appointment.Status == models.StatusNoShow {
			continue
		}
		queue = append(queue, appointment)
	}
	return queue, nil
}

// ListByRange returns appointments scheduled in [start, end).
func (s *AppointmentService) ListByRange(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	appointments, err := s.appointments.ListByRange(ctx, start, end)
	if err != nil {
		return nil, apperrors.Persistence("list appointments", err)
	}
	return appointments, nil
}

// CheckIn marks a booked (or late) appointment as arrived and stamps the
// arrival time.
func (s *AppointmentService) CheckIn(ctx context.Context, id string, now time.Time) (*models.Appointment, error) {
	changed, err := s.appointments.UpdateStatusFrom(ctx, id,
		[]string{models.StatusBooked, models.StatusLate},
		models.StatusArrived,
		map[string]interface{}{"arrival_time": now})
	if err != nil {
		return nil, apperrors.Persistence("check in", err)
	}
	if !changed {
		return nil, s.transitionFailure(ctx, id, models.StatusArrived)
	}
	return s.appointments.GetByID(ctx, id)
}

// StartConsultation moves an arrived appointment into consultation.
// The whole sequence runs under the consultation mutex: if the appointment
// has no linked patient yet, exactly one minimal patient record is created
// and linked before the status flips, so a consultation always has a
// durable patient to attach visit data to. If any other appointment is
// already in consultation the caller gets a ConflictError and nothing
// changes. If patient creation fails the transition does not happen.
func (s *AppointmentService) StartConsultation(ctx context.Context, id string) (*models.Appointment, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appointment.Status != models.StatusArrived {
		return nil, &apperrors.InvalidTransitionError{From: appointment.Status, To: models.StatusInConsultation}
	}

	var opErr error
	lockErr := s.appointments.WithConsultationLock(ctx, func() error {
		if appointment.PatientID == nil {
			if _, err := s.ensurePatient(ctx, appointment); err != nil {
				opErr = err
				return nil
			}
		}

		changed, err := s.appointments.StartConsultation(ctx, id)
		if err != nil {
			opErr = apperrors.Persistence("start consultation", err)
			return nil
		}
		if !changed {
			opErr = s.startFailure(ctx, id)
		}
		return nil
	})
	if lockErr != nil {
		return nil, apperrors.Persistence("start consultation", lockErr)
	}
	if opErr != nil {
		return nil, opErr
	}

	return s.appointments.GetByID(ctx, id)
}

// EndConsultation completes an in-consultation appointment. Visit and
// prescription writes are a separate concern handled by the visit service.
func (s *AppointmentService) EndConsultation(ctx context.Context, id string) (*models.Appointment, error) {
	changed, err := s.appointments.UpdateStatusFrom(ctx, id,
		[]string{models.StatusInConsultation},
		models.StatusCompleted, nil)
	if err != nil {
		return nil, apperrors.Persistence("end consultation", err)
	}
	if !changed {
		return nil, s.transitionFailure(ctx, id, models.StatusCompleted)
	}
	return s.appointments.GetByID(ctx, id)
}

// MarkNoShow marks a waiting appointment as a no-show, freeing its slot.
func (s *AppointmentService) MarkNoShow(ctx context.Context, id string) (*models.Appointment, error) {
	changed, err := s.appointments.UpdateStatusFrom(ctx, id,
		[]string{models.StatusBooked, models.StatusArrived, models.StatusLate},
		models.StatusNoShow, nil)
	if err != nil {
		return nil, apperrors.Persistence("mark no-show", err)
	}
	if !changed {
		return nil, s.transitionFailure(ctx, id, models.StatusNoShow)
	}
	return s.appointments.GetByID(ctx, id)
}

// MarkLate flags a booked appointment as late. Display-only: a late
// appointment still checks in and no-shows like a booked one.
func (s *AppointmentService) MarkLate(ctx context.Context, id string) (*models.Appointment, error) {
	changed, err := s.appointments.UpdateStatusFrom(ctx, id,
		[]string{models.StatusBooked},
		models.StatusLate, nil)
	if err != nil {
		return nil, apperrors.Persistence("mark late", err)
	}
	if !changed {
		return nil, s.transitionFailure(ctx, id, models.StatusLate)
	}
	return s.appointments.GetByID(ctx, id)
}

// EnsurePatient resolves the patient linked to an appointment, creating and
// linking a minimal record when none exists yet. Returns the patient id.
func (s *AppointmentService) EnsurePatient(ctx context.Context, id string) (string, error) {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if appointment.PatientID != nil {
		return *appointment.PatientID, nil
	}
	return s.ensurePatient(ctx, appointment)
}

// ensurePatient creates a minimal patient from the appointment display name
// and persists the linkage. The link survives later failures on purpose:
// a retry of start-consultation sees patient_id populated and skips the
// creation, so exactly one patient record ever results.
func (s *AppointmentService) ensurePatient(ctx context.Context, appointment *models.Appointment) (string, error) {
	patient := &models.Patient{Name: appointment.PatientName}
	if err := s.patients.Insert(ctx, patient); err != nil {
		return "", apperrors.Persistence("failed to start consultation: create patient", err)
	}
	if err := s.appointments.LinkPatient(ctx, appointment.ID, patient.ID); err != nil {
		return "", apperrors.Persistence("failed to start consultation: link patient", err)
	}
	appointment.PatientID = &patient.ID
	return patient.ID, nil
}

// startFailure figures out why the conditional start-consultation update
// changed no rows: either someone else holds the consultation, or the
// appointment left the arrived state underneath us.
func (s *AppointmentService) startFailure(ctx context.Context, id string) error {
	active, err := s.appointments.ListByStatus(ctx, []string{models.StatusInConsultation})
	if err == nil {
		for _, other := range active {
			if other.ID != id {
				return &apperrors.ConflictError{}
			}
		}
	}
	return s.transitionFailure(ctx, id, models.StatusInConsultation)
}

// transitionFailure reconstructs the rejection reason after a guarded
// update changed no rows.
func (s *AppointmentService) transitionFailure(ctx context.Context, id, attempted string) error {
	appointment, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return &apperrors.InvalidTransitionError{From: appointment.Status, To: attempted}
}
