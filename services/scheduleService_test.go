package services

import (
	"ClinicQueue/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 8, 28, hour, minute, 0, 0, time.UTC)
}

func TestAvailableSlots_EmptyDayBeforeOpening(t *testing.T) {
	calculator := NewSlotCalculator()

	slots := calculator.AvailableSlots(at(9, 0), nil)

	require.Len(t, slots, 20)
	assert.Equal(t, at(10, 0), slots[0])
	assert.Equal(t, at(19, 30), slots[len(slots)-1])
}

func TestAvailableSlots_DropsPastSlots(t *testing.T) {
	calculator := NewSlotCalculator()

	slots := calculator.AvailableSlots(at(13, 10), nil)

	require.NotEmpty(t, slots)
	assert.Equal(t, at(13, 30), slots[0])
	assert.Len(t, slots, 13)
}

func TestAvailableSlots_AfterClosing(t *testing.T) {
	calculator := NewSlotCalculator()

	slots := calculator.AvailableSlots(at(20, 0), nil)

	assert.Empty(t, slots)
}

func TestAvailableSlots_ExactSlotBoundaryStillOpen(t *testing.T) {
	calculator := NewSlotCalculator()

	slots := calculator.AvailableSlots(at(14, 0), nil)

	require.NotEmpty(t, slots)
	assert.Equal(t, at(14, 0), slots[0])
}

func TestAvailableSlots_BlockingStatusesOccupy(t *testing.T) {
	calculator := NewSlotCalculator()
	appointments := []models.Appointment{
		{ScheduledTime: at(14, 0), Status: models.StatusBooked},
		{ScheduledTime: at(14, 30), Status: models.StatusArrived},
		{ScheduledTime: at(15, 0), Status: models.StatusInConsultation},
	}

	slots := calculator.AvailableSlots(at(9, 0), appointments)

	assert.NotContains(t, slots, at(14, 0))
	assert.NotContains(t, slots, at(14, 30))
	assert.NotContains(t, slots, at(15, 0))
	assert.Len(t, slots, 17)
}

func TestAvailableSlots_TerminalStatusesFreeTheirSlot(t *testing.T) {
	calculator := NewSlotCalculator()
	appointments := []models.Appointment{
		{ScheduledTime: at(16, 0), Status: models.StatusCompleted},
		{ScheduledTime: at(16, 30), Status: models.StatusNoShow},
	}

	slots := calculator.AvailableSlots(at(9, 0), appointments)

	assert.Contains(t, slots, at(16, 0))
	assert.Contains(t, slots, at(16, 30))
	assert.Len(t, slots, 20)
}

func TestAvailableSlots_OffBoundaryAppointmentBlocksItsSlot(t *testing.T) {
	calculator := NewSlotCalculator()
	appointments := []models.Appointment{
		{ScheduledTime: at(14, 10), Status: models.StatusBooked},
	}

	slots := calculator.AvailableSlots(at(9, 0), appointments)

	assert.NotContains(t, slots, at(14, 0))
	assert.Contains(t, slots, at(14, 30))
}

func TestDayBounds(t *testing.T) {
	calculator := NewSlotCalculator()

	start, end := calculator.DayBounds(at(15, 45))

	assert.Equal(t, at(0, 0), start)
	assert.Equal(t, at(0, 0).AddDate(0, 0, 1), end)
}

func TestSlotFor(t *testing.T) {
	calculator := NewSlotCalculator()

	assert.Equal(t, at(14, 30), calculator.SlotFor(at(9, 0), 14, 30))
}
