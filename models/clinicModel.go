package models

import (
	"time"
)

// Appointment status values. "late" is a display-only flag set by the
// front desk and is not part of the lifecycle machine.
const (
	StatusBooked         = "booked"
	StatusArrived        = "arrived"
	StatusInConsultation = "in-consultation"
	StatusCompleted      = "completed"
	StatusNoShow         = "no-show"
	StatusLate           = "late"
)

// BlockingStatuses are the statuses that keep a slot occupied. Terminal
// statuses free their slot for rebooking.
func BlockingStatuses() []string {
	return []string{StatusBooked, StatusArrived, StatusInConsultation}
}

// TerminalStatuses returns the statuses that permit no further transitions.
func TerminalStatuses() []string {
	return []string{StatusCompleted, StatusNoShow}
}

// IsTerminalStatus reports whether status permits no further transitions.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusNoShow
}

// IsValidStatus reports whether status is one of the known appointment statuses.
func IsValidStatus(status string) bool {
	switch status {
	case StatusBooked, StatusArrived, StatusInConsultation, StatusCompleted, StatusNoShow, StatusLate:
		return true
	}
	return false
}

// Appointment model
type Appointment struct {
	ID            string     `gorm:"primaryKey;column:id" json:"id"`
	PatientName   string     `gorm:"column:patient_name;not null" json:"patient_name"`
	PatientID     *string    `gorm:"column:patient_id;index" json:"patient_id"`
	ScheduledTime time.Time  `gorm:"column:scheduled_time;not null;index" json:"scheduled_time"`
	Status        string     `gorm:"column:status;check:status IN ('booked', 'arrived', 'in-consultation', 'completed', 'no-show', 'late');not null;default:'booked';index" json:"status"`
	IsFastTrack   bool       `gorm:"column:is_fast_track;not null;default:false" json:"is_fast_track"`
	ArrivalTime   *time.Time `gorm:"column:arrival_time" json:"arrival_time"`
	ReminderSent  bool       `gorm:"column:reminder_sent;not null;default:false" json:"reminder_sent"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Patient       *Patient   `gorm:"foreignKey:PatientID;references:ID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointment"
}

// Patient model
type Patient struct {
	ID                string    `gorm:"primaryKey;column:id" json:"id"`
	Name              string    `gorm:"column:name;not null;index" json:"name"`
	NameAr            string    `gorm:"column:name_ar" json:"name_ar"`
	Age               int       `gorm:"column:age;not null;default:0" json:"age"`
	Gender            string    `gorm:"column:gender;check:gender IN ('male', 'female', 'unknown');not null;default:'unknown'" json:"gender"`
	Phone             string    `gorm:"column:phone;index" json:"phone"`
	BloodType         string    `gorm:"column:blood_type" json:"blood_type"`
	ChronicConditions []string  `gorm:"column:chronic_conditions;serializer:json;type:jsonb" json:"chronic_conditions"`
	Allergies         []string  `gorm:"column:allergies;serializer:json;type:jsonb" json:"allergies"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Visits            []Visit   `gorm:"foreignKey:PatientID;references:ID" json:"-"`
}

func (Patient) TableName() string {
	return "patient"
}

// Visit is the record written when a consultation is saved.
type Visit struct {
	ID             string         `gorm:"primaryKey;column:id" json:"id"`
	PatientID      string         `gorm:"column:patient_id;not null;index" json:"patient_id"`
	VisitDate      time.Time      `gorm:"column:visit_date;not null;index" json:"visit_date"`
	ChiefComplaint string         `gorm:"column:chief_complaint" json:"chief_complaint"`
	Diagnosis      string         `gorm:"column:diagnosis" json:"diagnosis"`
	Notes          string         `gorm:"column:notes" json:"notes"`
	BPSystolic     *int           `gorm:"column:bp_systolic" json:"bp_systolic"`
	BPDiastolic    *int           `gorm:"column:bp_diastolic" json:"bp_diastolic"`
	Weight         *float64       `gorm:"column:weight" json:"weight"`
	Temperature    *float64       `gorm:"column:temperature" json:"temperature"`
	HeartRate      *int           `gorm:"column:heart_rate" json:"heart_rate"`
	Status         string         `gorm:"column:status;not null;default:'completed'" json:"status"`
	CreatedAt      time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Patient        Patient        `gorm:"foreignKey:PatientID;references:ID" json:"-"`
	Prescriptions  []Prescription `gorm:"foreignKey:VisitID;references:ID" json:"prescriptions"`
}

func (Visit) TableName() string {
	return "visit"
}

// Prescription model
type Prescription struct {
	ID         string    `gorm:"primaryKey;column:id" json:"id"`
	VisitID    string    `gorm:"column:visit_id;not null;index" json:"visit_id"`
	DrugName   string    `gorm:"column:drug_name;not null" json:"drug_name"`
	DrugNameAr string    `gorm:"column:drug_name_ar" json:"drug_name_ar"`
	Dosage     string    `gorm:"column:dosage;not null" json:"dosage"`
	Frequency  string    `gorm:"column:frequency;not null" json:"frequency"`
	Duration   string    `gorm:"column:duration" json:"duration"`
	Notes      string    `gorm:"column:notes" json:"notes"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Visit      Visit     `gorm:"foreignKey:VisitID;references:ID" json:"-"`
}

func (Prescription) TableName() string {
	return "prescription"
}

// Conversation is one inbox thread with a patient.
type Conversation struct {
	ID              string     `gorm:"primaryKey;column:id" json:"id"`
	PatientName     string     `gorm:"column:patient_name;not null" json:"patient_name"`
	PatientPhone    string     `gorm:"column:patient_phone;index" json:"patient_phone"`
	Source          string     `gorm:"column:source;not null;default:'whatsapp'" json:"source"`
	IsAIHandled     bool       `gorm:"column:is_ai_handled;not null;default:true" json:"is_ai_handled"`
	LastMessage     string     `gorm:"column:last_message" json:"last_message"`
	LastMessageTime *time.Time `gorm:"column:last_message_time" json:"last_message_time"`
	UnreadCount     int        `gorm:"column:unread_count;not null;default:0" json:"unread_count"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	Messages        []Message  `gorm:"foreignKey:ConversationID;references:ID" json:"-"`
}

func (Conversation) TableName() string {
	return "conversation"
}

// Message senders.
const (
	SenderPatient = "patient"
	SenderAI      = "ai"
	SenderDoctor  = "doctor"
)

// Message model
type Message struct {
	ID             string       `gorm:"primaryKey;column:id" json:"id"`
	ConversationID string       `gorm:"column:conversation_id;not null;index" json:"conversation_id"`
	Sender         string       `gorm:"column:sender;check:sender IN ('patient', 'ai', 'doctor');not null" json:"sender"`
	Content        string       `gorm:"column:content;not null" json:"content"`
	CreatedAt      time.Time    `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	Conversation   Conversation `gorm:"foreignKey:ConversationID;references:ID" json:"-"`
}

func (Message) TableName() string {
	return "message"
}

// ClinicSetting stores one JSON settings document per key.
type ClinicSetting struct {
	ID           string    `gorm:"primaryKey;column:id" json:"id"`
	SettingKey   string    `gorm:"column:setting_key;unique;not null" json:"setting_key"`
	SettingValue string    `gorm:"column:setting_value;type:jsonb;not null" json:"setting_value"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ClinicSetting) TableName() string {
	return "clinic_setting"
}

// Setting keys seeded at migration time.
const (
	SettingKeyReminders = "reminder_settings"
	SettingKeyDeposit   = "consultation_deposit"
)

// ReminderSettings is the parsed reminder_settings document.
type ReminderSettings struct {
	Enabled         bool `json:"enabled"`
	SMSEnabled      bool `json:"sms_enabled"`
	WhatsAppEnabled bool `json:"whatsapp_enabled"`
	MinutesBefore   int  `json:"minutes_before"`
}

// DepositSettings is the parsed consultation_deposit document.
type DepositSettings struct {
	Enabled bool    `json:"enabled"`
	Amount  float64 `json:"amount"`
}
