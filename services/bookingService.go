package services

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/models"
	"ClinicQueue/repositories"
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var timeOfDayPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// BookingRequest is a booking attempt from the desk form or the assistant.
type BookingRequest struct {
	Time           string `json:"time"` // HH:MM, 24-hour
	PatientName    string `json:"patient_name"`
	Phone          string `json:"phone"`
	ChiefComplaint string `json:"chief_complaint"`
	IsFastTrack    bool   `json:"is_fast_track"`
}

// Validate checks the request shape before any store work.
func (r BookingRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Time, validation.Required, validation.Match(timeOfDayPattern).Error("must be HH:MM, 24-hour")),
		validation.Field(&r.PatientName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Phone, validation.Length(0, 20)),
	)
}

// BookingService turns validated requests into appointments. Same-day only:
// the requested time must be in the calculator's current output for today,
// re-checked immediately before the insert.
type BookingService struct {
	appointments AppointmentStore
	patients     PatientStore
	calculator   *SlotCalculator
}

func NewBookingService(appointments AppointmentStore, patients PatientStore, calculator *SlotCalculator) *BookingService {
	return &BookingService{appointments: appointments, patients: patients, calculator: calculator}
}

// AvailableSlots computes today's open slots from the live appointment list.
func (s *BookingService) AvailableSlots(ctx context.Context, now time.Time) ([]time.Time, error) {
	start, end := s.calculator.DayBounds(now)
	appointments, err := s.appointments.ListByRange(ctx, start, end)
	if err != nil {
		return nil, apperrors.Persistence("list appointments for slots", err)
	}
	return s.calculator.AvailableSlots(now, appointments), nil
}

// Book validates the requested slot, resolves or creates the patient, and
// inserts the appointment with status booked. An unavailable slot comes
// back as a SlotUnavailableError carrying the currently free slots, so the
// caller can re-offer valid choices.
func (s *BookingService) Book(ctx context.Context, req BookingRequest, now time.Time) (*models.Appointment, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var hour, minute int
	if _, err := fmt.Sscanf(req.Time, "%d:%d", &hour, &minute); err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", req.Time, err)
	}
	scheduled := s.calculator.SlotFor(now, hour, minute)

	// First availability check, against the slots the caller was shown.
	slots, err := s.AvailableSlots(ctx, now)
	if err != nil {
		return nil, err
	}
	if !containsSlot(slots, scheduled) {
		return nil, &apperrors.SlotUnavailableError{Requested: scheduled, Available: slots}
	}

	patientID, err := s.resolvePatient(ctx, req)
	if err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		PatientName:   req.PatientName,
		PatientID:     patientID,
		ScheduledTime: scheduled,
		Status:        models.StatusBooked,
		IsFastTrack:   req.IsFastTrack,
	}

	// The insert is the second, authoritative check: the unique index on
	// active slots rejects the loser of a race, who gets a fresh slot list.
	if err := s.appointments.Insert(ctx, appointment); err != nil {
		if errors.Is(err, repositories.ErrSlotTaken) {
			slots, slotsErr := s.AvailableSlots(ctx, now)
			if slotsErr != nil {
				return nil, slotsErr
			}
			return nil, &apperrors.SlotUnavailableError{Requested: scheduled, Available: slots}
		}
		return nil, apperrors.Persistence("create appointment", err)
	}

	return appointment, nil
}

// resolvePatient reuses an existing patient on an exact phone match and
// otherwise creates one, folding the chief complaint into the chronic
// conditions as a free-text intake note. With no phone at all the
// appointment stays unlinked until ensure-patient runs.
func (s *BookingService) resolvePatient(ctx context.Context, req BookingRequest) (*string, error) {
	if req.Phone == "" {
		return nil, nil
	}

	existing, err := s.patients.FindByPhone(ctx, req.Phone)
	if err != nil {
		return nil, apperrors.Persistence("find patient by phone", err)
	}
	if existing != nil {
		return &existing.ID, nil
	}

	patient := &models.Patient{
		Name:  req.PatientName,
		Phone: req.Phone,
	}
	if req.ChiefComplaint != "" {
		patient.ChronicConditions = []string{fmt.Sprintf("intake note: %s", req.ChiefComplaint)}
	}
	if err := s.patients.Insert(ctx, patient); err != nil {
		return nil, apperrors.Persistence("create patient", err)
	}
	return &patient.ID, nil
}

func containsSlot(slots []time.Time, t time.Time) bool {
	for _, slot := range slots {
		if slot.Equal(t) {
			return true
		}
	}
	return false
}
