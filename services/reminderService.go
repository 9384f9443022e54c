package services

import (
	"ClinicQueue/models"
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// The sweep window is minutes_before ± this slack, so a cron firing every
// few minutes never misses an appointment and never reminds twice.
const reminderWindowSlack = 5 * time.Minute

// SMSSender delivers one text message. Implemented by clients.TwilioClient.
type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// ReminderStore is the appointment surface the sweep needs. Implemented by
// repositories.AppointmentRepository.
type ReminderStore interface {
	ListDueReminders(ctx context.Context, start, end time.Time) ([]models.Appointment, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// ReminderSettingsSource loads the parsed reminder settings. Implemented by
// SettingService.
type ReminderSettingsSource interface {
	ReminderSettings(ctx context.Context) (*models.ReminderSettings, error)
}

// ReminderResult records the outcome for one appointment in a sweep.
type ReminderResult struct {
	AppointmentID string `json:"appointment_id"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// ReminderReport summarizes one sweep.
type ReminderReport struct {
	Message    string           `json:"message"`
	Results    []ReminderResult `json:"results"`
	Processed  int              `json:"total_processed"`
	Successful int              `json:"successful"`
}

// ReminderService sends the pre-appointment SMS. It runs only when an
// external scheduler calls it; there is no in-process timer.
type ReminderService struct {
	appointments ReminderStore
	settings     ReminderSettingsSource
	sms          SMSSender
}

func NewReminderService(appointments ReminderStore, settings ReminderSettingsSource, sms SMSSender) *ReminderService {
	return &ReminderService{appointments: appointments, settings: settings, sms: sms}
}

// Run performs one reminder sweep. Appointments already reminded are
// excluded by the reminder_sent flag, which is set right after a send
// succeeds, so a rerun never texts the same patient twice.
func (s *ReminderService) Run(ctx context.Context, now time.Time) (*ReminderReport, error) {
	settings, err := s.settings.ReminderSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder settings: %w", err)
	}

	if !settings.Enabled {
		return &ReminderReport{Message: "Reminders are disabled"}, nil
	}
	if !settings.SMSEnabled && !settings.WhatsAppEnabled {
		return &ReminderReport{Message: "No notification channels enabled"}, nil
	}

	lead := time.Duration(settings.MinutesBefore) * time.Minute
	windowStart := now.Add(lead - reminderWindowSlack)
	windowEnd := now.Add(lead + reminderWindowSlack)

	appointments, err := s.appointments.ListDueReminders(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}

	report := &ReminderReport{Message: "Reminder check complete"}
	for _, appointment := range appointments {
		result := s.remind(ctx, appointment)
		report.Results = append(report.Results, result)
		report.Processed++
		if result.Success {
			report.Successful++
		}
	}
	return report, nil
}

func (s *ReminderService) remind(ctx context.Context, appointment models.Appointment) ReminderResult {
	if appointment.Patient == nil || appointment.Patient.Phone == "" {
		return ReminderResult{AppointmentID: appointment.ID, Error: "No phone number"}
	}

	name := appointment.Patient.NameAr
	if name == "" {
		name = appointment.PatientName
	}
	body := fmt.Sprintf("مرحباً %s! تذكير: موعدك في العيادة الساعة %s. نستناك!",
		name, appointment.ScheduledTime.Format("15:04"))

	phone := NormalizePhone(appointment.Patient.Phone)
	if err := s.sms.SendSMS(ctx, phone, body); err != nil {
		log.Printf("Failed to send reminder for appointment %s: %v", appointment.ID, err)
		return ReminderResult{AppointmentID: appointment.ID, Error: err.Error()}
	}

	if err := s.appointments.MarkReminderSent(ctx, appointment.ID); err != nil {
		// The SMS went out; surface the flag failure but count the send.
		log.Printf("Failed to mark reminder sent for appointment %s: %v", appointment.ID, err)
	}

	return ReminderResult{AppointmentID: appointment.ID, Success: true}
}

// NormalizePhone puts a local Egyptian number into E.164 form.
func NormalizePhone(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	if strings.HasPrefix(phone, "+") {
		return phone
	}
	if strings.HasPrefix(phone, "0") {
		return "+2" + phone
	}
	return "+20" + phone
}
