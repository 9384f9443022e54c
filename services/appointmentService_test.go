package services

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/models"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAppointmentService(appointments *fakeAppointmentStore, patients *fakePatientStore) *AppointmentService {
	return NewAppointmentService(appointments, patients, NewSlotCalculator())
}

func TestCheckIn_BookedBecomesArrived(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", PatientName: "Sara", ScheduledTime: at(14, 0), Status: models.StatusBooked},
	)
	service := newAppointmentService(store, newFakePatientStore())

	appointment, err := service.CheckIn(context.Background(), "a1", at(13, 55))

	require.NoError(t, err)
	assert.Equal(t, models.StatusArrived, appointment.Status)
	require.NotNil(t, appointment.ArrivalTime)
	assert.Equal(t, at(13, 55), *appointment.ArrivalTime)
}

func TestCheckIn_LateStillChecksIn(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", ScheduledTime: at(14, 0), Status: models.StatusLate},
	)
	service := newAppointmentService(store, newFakePatientStore())

	appointment, err := service.CheckIn(context.Background(), "a1", at(14, 20))

	require.NoError(t, err)
	assert.Equal(t, models.StatusArrived, appointment.Status)
}

func TestCheckIn_TerminalStateRejected(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", ScheduledTime: at(14, 0), Status: models.StatusCompleted},
	)
	service := newAppointmentService(store, newFakePatientStore())

	_, err := service.CheckIn(context.Background(), "a1", at(14, 20))

	var transitionErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusCompleted, transitionErr.From)
	assert.Equal(t, models.StatusArrived, transitionErr.To)
}

func TestStartConsultation_CreatesAndLinksPatientOnce(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", PatientName: "Omar", ScheduledTime: at(14, 0), Status: models.StatusArrived},
	)
	patients := newFakePatientStore()
	service := newAppointmentService(store, patients)

	appointment, err := service.StartConsultation(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusInConsultation, appointment.Status)
	require.NotNil(t, appointment.PatientID)
	assert.Equal(t, 1, patients.inserts)

	created, err := patients.GetByID(context.Background(), *appointment.PatientID)
	require.NoError(t, err)
	assert.Equal(t, "Omar", created.Name)
	assert.Equal(t, 1, store.lockCalls)
}

func TestStartConsultation_KeepsExistingPatientLink(t *testing.T) {
	patientID := "p1"
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", PatientID: &patientID, ScheduledTime: at(14, 0), Status: models.StatusArrived},
	)
	patients := newFakePatientStore()
	service := newAppointmentService(store, patients)

	appointment, err := service.StartConsultation(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusInConsultation, appointment.Status)
	assert.Equal(t, 0, patients.inserts)
	assert.Equal(t, &patientID, appointment.PatientID)
}

func TestStartConsultation_ConflictWhenAnotherActive(t *testing.T) {
	patientID := "p1"
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", PatientID: &patientID, ScheduledTime: at(14, 0), Status: models.StatusArrived},
		&models.Appointment{ID: "a2", PatientID: &patientID, ScheduledTime: at(13, 30), Status: models.StatusInConsultation},
	)
	service := newAppointmentService(store, newFakePatientStore())

	_, err := service.StartConsultation(context.Background(), "a1")

	var conflictErr *apperrors.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	// Nothing changed for either appointment.
	a1, _ := store.GetByID(context.Background(), "a1")
	assert.Equal(t, models.StatusArrived, a1.Status)
}

func TestStartConsultation_RequiresArrived(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", ScheduledTime: at(14, 0), Status: models.StatusBooked},
	)
	service := newAppointmentService(store, newFakePatientStore())

	_, err := service.StartConsultation(context.Background(), "a1")

	var transitionErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusBooked, transitionErr.From)
	assert.Equal(t, 0, store.lockCalls)
}

func TestStartConsultation_PatientCreationFailureAbortsTransition(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", PatientName: "Omar", ScheduledTime: at(14, 0), Status: models.StatusArrived},
	)
	patients := newFakePatientStore()
	patients.insertErr = errors.New("connection reset")
	service := newAppointmentService(store, patients)

	_, err := service.StartConsultation(context.Background(), "a1")

	var persistenceErr *apperrors.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)

	appointment, _ := store.GetByID(context.Background(), "a1")
	assert.Equal(t, models.StatusArrived, appointment.Status)
	assert.Nil(t, appointment.PatientID)
}

func TestStartConsultation_RetryAfterLinkSkipsCreation(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", PatientName: "Omar", ScheduledTime: at(14, 0), Status: models.StatusArrived},
	)
	patients := newFakePatientStore()
	service := newAppointmentService(store, patients)

	// First attempt links the patient but fails to flip the status.
	store.byID["a2"] = &models.Appointment{ID: "a2", ScheduledTime: at(13, 30), Status: models.StatusInConsultation}
	_, err := service.StartConsultation(context.Background(), "a1")
	require.Error(t, err)
	assert.Equal(t, 1, patients.inserts)

	appointment, _ := store.GetByID(context.Background(), "a1")
	require.NotNil(t, appointment.PatientID)

	// The blocker finishes; the retry must not create a second patient.
	store.byID["a2"].Status = models.StatusCompleted
	retried, err := service.StartConsultation(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInConsultation, retried.Status)
	assert.Equal(t, 1, patients.inserts)
}

func TestEndConsultation_Completes(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", ScheduledTime: at(14, 0), Status: models.StatusInConsultation},
	)
	service := newAppointmentService(store, newFakePatientStore())

	appointment, err := service.EndConsultation(context.Background(), "a1")

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, appointment.Status)
}

func TestEndConsultation_RejectsNonActive(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", ScheduledTime: at(14, 0), Status: models.StatusArrived},
	)
	service := newAppointmentService(store, newFakePatientStore())

	_, err := service.EndConsultation(context.Background(), "a1")

	var transitionErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestMarkNoShow_FromBookedAndArrived(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", ScheduledTime: at(14, 0), Status: models.StatusBooked},
		&models.Appointment{ID: "a2", ScheduledTime: at(14, 30), Status: models.StatusArrived},
	)
	service := newAppointmentService(store, newFakePatientStore())

	for _, id := range []string{"a1", "a2"} {
		appointment, err := service.MarkNoShow(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusNoShow, appointment.Status)
	}
}

func TestMarkNoShow_TerminalRejected(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", ScheduledTime: at(14, 0), Status: models.StatusNoShow},
	)
	service := newAppointmentService(store, newFakePatientStore())

	_, err := service.MarkNoShow(context.Background(), "a1")

	var transitionErr *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestEnsurePatient_Idempotent(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", PatientName: "Nour", ScheduledTime: at(14, 0), Status: models.StatusBooked},
	)
	patients := newFakePatientStore()
	service := newAppointmentService(store, patients)

	first, err := service.EnsurePatient(context.Background(), "a1")
	require.NoError(t, err)

	second, err := service.EnsurePatient(context.Background(), "a1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, patients.inserts)
}

func TestQueue_ExcludesNoShows(t *testing.T) {
	store := newFakeAppointmentStore(
		&models.Appointment{ID: "a1", ScheduledTime: at(14, 0), Status: models.StatusBooked},
		&models.Appointment{ID: "a2", ScheduledTime: at(14, 30), Status: models.StatusNoShow},
		&models.Appointment{ID: "a3", ScheduledTime: at(15, 0), Status: models.StatusCompleted},
	)
	service := newAppointmentService(store, newFakePatientStore())

	queue, err := service.Queue(context.Background(), at(16, 0))

	require.NoError(t, err)
	ids := make([]string, 0, len(queue))
	for _, appointment := range queue {
		ids = append(ids, appointment.ID)
	}
	assert.ElementsMatch(t, []string{"a1", "a3"}, ids)
}

func TestGetByID_NotFound(t *testing.T) {
	service := newAppointmentService(newFakeAppointmentStore(), newFakePatientStore())

	_, err := service.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
