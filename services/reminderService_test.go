package services

import (
	"ClinicQueue/models"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReminderStore struct {
	due         []models.Appointment
	listErr     error
	windowStart time.Time
	windowEnd   time.Time
	marked      []string
	markErr     error
}

func (f *fakeReminderStore) ListDueReminders(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	f.windowStart, f.windowEnd = start, end
	return f.due, f.listErr
}

func (f *fakeReminderStore) MarkReminderSent(ctx context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

type fakeSettingsSource struct {
	settings *models.ReminderSettings
	err      error
}

func (f *fakeSettingsSource) ReminderSettings(ctx context.Context) (*models.ReminderSettings, error) {
	return f.settings, f.err
}

type fakeSMSSender struct {
	sent map[string]string
	err  error
}

func newFakeSMSSender() *fakeSMSSender {
	return &fakeSMSSender{sent: make(map[string]string)}
}

func (f *fakeSMSSender) SendSMS(ctx context.Context, to, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent[to] = body
	return nil
}

func enabledSettings(minutesBefore int) *fakeSettingsSource {
	return &fakeSettingsSource{settings: &models.ReminderSettings{
		Enabled:       true,
		SMSEnabled:    true,
		MinutesBefore: minutesBefore,
	}}
}

func dueAppointment(id, phone string) models.Appointment {
	return models.Appointment{
		ID:            id,
		PatientName:   "Sara",
		ScheduledTime: at(15, 0),
		Status:        models.StatusBooked,
		Patient:       &models.Patient{Name: "Sara", Phone: phone},
	}
}

func TestReminderRun_DisabledSkipsEverything(t *testing.T) {
	store := &fakeReminderStore{}
	sender := newFakeSMSSender()
	service := NewReminderService(store, &fakeSettingsSource{settings: &models.ReminderSettings{Enabled: false}}, sender)

	report, err := service.Run(context.Background(), at(14, 0))

	require.NoError(t, err)
	assert.Equal(t, "Reminders are disabled", report.Message)
	assert.Empty(t, sender.sent)
}

func TestReminderRun_NoChannelsEnabled(t *testing.T) {
	settings := &fakeSettingsSource{settings: &models.ReminderSettings{Enabled: true, MinutesBefore: 60}}
	service := NewReminderService(&fakeReminderStore{}, settings, newFakeSMSSender())

	report, err := service.Run(context.Background(), at(14, 0))

	require.NoError(t, err)
	assert.Equal(t, "No notification channels enabled", report.Message)
}

func TestReminderRun_WindowIsLeadTimePlusMinusSlack(t *testing.T) {
	store := &fakeReminderStore{}
	service := NewReminderService(store, enabledSettings(60), newFakeSMSSender())

	now := at(14, 0)
	_, err := service.Run(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, now.Add(55*time.Minute), store.windowStart)
	assert.Equal(t, now.Add(65*time.Minute), store.windowEnd)
}

func TestReminderRun_SendsAndMarks(t *testing.T) {
	store := &fakeReminderStore{due: []models.Appointment{dueAppointment("a1", "01012345678")}}
	sender := newFakeSMSSender()
	service := NewReminderService(store, enabledSettings(60), sender)

	report, err := service.Run(context.Background(), at(14, 0))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Successful)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Success)

	body, ok := sender.sent["+201012345678"]
	require.True(t, ok, "SMS should go to the normalized number")
	assert.Contains(t, body, "Sara")
	assert.Contains(t, body, "15:00")
	assert.Equal(t, []string{"a1"}, store.marked)
}

func TestReminderRun_MissingPhoneCountedAsFailure(t *testing.T) {
	appointment := dueAppointment("a1", "")
	appointment.Patient = nil
	store := &fakeReminderStore{due: []models.Appointment{appointment}}
	sender := newFakeSMSSender()
	service := NewReminderService(store, enabledSettings(60), sender)

	report, err := service.Run(context.Background(), at(14, 0))

	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 0, report.Successful)
	assert.Equal(t, "No phone number", report.Results[0].Error)
	assert.Empty(t, store.marked)
}

func TestReminderRun_SendFailureNotMarked(t *testing.T) {
	store := &fakeReminderStore{due: []models.Appointment{dueAppointment("a1", "01012345678")}}
	sender := newFakeSMSSender()
	sender.err = errors.New("carrier unreachable")
	service := NewReminderService(store, enabledSettings(60), sender)

	report, err := service.Run(context.Background(), at(14, 0))

	require.NoError(t, err)
	assert.Equal(t, 0, report.Successful)
	assert.Empty(t, store.marked)
}

func TestReminderRun_ArabicNamePreferred(t *testing.T) {
	appointment := dueAppointment("a1", "01012345678")
	appointment.Patient.NameAr = "سارة"
	store := &fakeReminderStore{due: []models.Appointment{appointment}}
	sender := newFakeSMSSender()
	service := NewReminderService(store, enabledSettings(60), sender)

	_, err := service.Run(context.Background(), at(14, 0))

	require.NoError(t, err)
	assert.Contains(t, sender.sent["+201012345678"], "سارة")
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"+201012345678":  "+201012345678",
		"01012345678":    "+201012345678",
		"1012345678":     "+201012345678",
		"010 1234 5678":  "+201012345678",
		"+1 415 5550100": "+14155550100",
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizePhone(input), "input %q", input)
	}
}
