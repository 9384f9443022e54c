package services

import (
	"ClinicQueue/apperrors"
	"ClinicQueue/models"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettingStore struct {
	values map[string]string
}

func (f *fakeSettingStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := f.values[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return value, nil
}

func (f *fakeSettingStore) Update(ctx context.Context, key, value string) error {
	f.values[key] = value
	return nil
}

func TestSettingUpdate_RejectsNonObject(t *testing.T) {
	store := &fakeSettingStore{values: map[string]string{}}
	service := NewSettingService(store)

	assert.Error(t, service.Update(context.Background(), "k", `"just a string"`))
	assert.Error(t, service.Update(context.Background(), "k", `not json`))
	assert.NoError(t, service.Update(context.Background(), "k", `{"enabled":true}`))
}

func TestReminderSettings_Parsed(t *testing.T) {
	store := &fakeSettingStore{values: map[string]string{
		models.SettingKeyReminders: `{"enabled":true,"sms_enabled":true,"whatsapp_enabled":false,"minutes_before":90}`,
	}}
	service := NewSettingService(store)

	settings, err := service.ReminderSettings(context.Background())

	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.True(t, settings.SMSEnabled)
	assert.False(t, settings.WhatsAppEnabled)
	assert.Equal(t, 90, settings.MinutesBefore)
}

func TestReminderSettings_MissingKey(t *testing.T) {
	service := NewSettingService(&fakeSettingStore{values: map[string]string{}})

	_, err := service.ReminderSettings(context.Background())

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestValidatePatient(t *testing.T) {
	assert.NoError(t, ValidatePatient(models.Patient{Name: "Sara", Age: 30, Gender: "female", Phone: "+201012345678"}))
	assert.NoError(t, ValidatePatient(models.Patient{Name: "Sara"}))
	assert.Error(t, ValidatePatient(models.Patient{}))
	assert.Error(t, ValidatePatient(models.Patient{Name: "Sara", Age: 200}))
	assert.Error(t, ValidatePatient(models.Patient{Name: "Sara", Gender: "other"}))
	assert.Error(t, ValidatePatient(models.Patient{Name: "Sara", Phone: "not-a-phone"}))
}
