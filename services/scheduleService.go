package services

import (
	"ClinicQueue/models"
	"time"
)

// Clinic working hours. Slots run every SlotInterval from OpenHour up to
// but excluding CloseHour, local time.
const (
	OpenHour     = 10
	CloseHour    = 20
	SlotInterval = 30 * time.Minute
)

// SlotCalculator computes the bookable slots of a day. It is pure: all
// inputs arrive as arguments, nothing is read from a store.
type SlotCalculator struct {
	Open     int
	Close    int
	Interval time.Duration
}

// NewSlotCalculator returns a calculator with the clinic defaults.
func NewSlotCalculator() *SlotCalculator {
	return &SlotCalculator{Open: OpenHour, Close: CloseHour, Interval: SlotInterval}
}

// DayBounds returns the [start, end) of the calendar day containing t.
func (c *SlotCalculator) DayBounds(t time.Time) (time.Time, time.Time) {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// AvailableSlots returns the open slots for the day containing now, in
// ascending order. A slot is open when it has not passed yet and no
// appointment with a blocking status occupies it. An empty result means
// "no slots available today" and is not an error. Terminal appointments
// (completed, no-show) never block a slot.
func (c *SlotCalculator) AvailableSlots(now time.Time, appointments []models.Appointment) []time.Time {
	occupied := make(map[int64]bool)
	for _, appointment := range appointments {
		if !isBlocking(appointment.Status) {
			continue
		}
		occupied[c.slotKey(appointment.ScheduledTime)] = true
	}

	year, month, day := now.Date()
	opening := time.Date(year, month, day, c.Open, 0, 0, 0, now.Location())
	closing := time.Date(year, month, day, c.Close, 0, 0, 0, now.Location())

	slots := []time.Time{}
	for slot := opening; slot.Before(closing); slot = slot.Add(c.Interval) {
		if slot.Before(now) {
			continue
		}
		if occupied[c.slotKey(slot)] {
			continue
		}
		slots = append(slots, slot)
	}
	return slots
}

// SlotFor maps a requested time onto its slot boundary within the day of
// now, preserving the location.
func (c *SlotCalculator) SlotFor(now time.Time, hour, minute int) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, hour, minute, 0, 0, now.Location())
}

// slotKey buckets a timestamp into its slot at the calculator granularity.
func (c *SlotCalculator) slotKey(t time.Time) int64 {
	return t.Truncate(c.Interval).Unix()
}

func isBlocking(status string) bool {
	for _, blocking := range models.BlockingStatuses() {
		if status == blocking {
			return true
		}
	}
	return false
}
