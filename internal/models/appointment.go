package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// allowedTransitions maps each status to the statuses it may move to.
var allowedTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled:  {StatusConfirmed, StatusInProgress, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether an appointment may move from one status to another.
func CanTransition(from, to AppointmentStatus) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Appointment represents a scheduled visit slot for a doctor and patient.
// Date holds the calendar day and Time the slot start in 24-hour "HH:MM".
type Appointment struct {
	BaseModel
	ClinicID        string            `gorm:"size:36;index" json:"clinicId"`
	DoctorID        string            `gorm:"size:36;index:idx_appointments_slot,priority:1" json:"doctorId"`
	PatientID       string            `gorm:"size:36;index" json:"patientId"`
	Date            time.Time         `gorm:"type:date;index:idx_appointments_slot,priority:2" json:"date"`
	Time            string            `gorm:"size:5;index:idx_appointments_slot,priority:3" json:"time"`
	DurationMinutes int               `gorm:"default:30" json:"durationMinutes"`
	Status          AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Reason          string            `gorm:"size:255" json:"reason"`
	Notes           string            `gorm:"type:text" json:"notes"`
	IsFollowUp      bool              `gorm:"default:false" json:"isFollowUp"`

	// Relations
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  User    `gorm:"foreignKey:DoctorID" json:"-"`
}
