package models

import (
	"time"
)

// PaymentStatus represents the billing state of a visit
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// VisitRecord documents a completed consultation for an appointment,
// including vitals and billing fields. Saving a visit marks the
// appointment completed and may book a follow-up appointment.
type VisitRecord struct {
	BaseModel
	AppointmentID string `gorm:"size:36;uniqueIndex" json:"appointmentId"`
	ClinicID      string `gorm:"size:36;index" json:"clinicId"`
	PatientID     string `gorm:"size:36;index" json:"patientId"`
	DoctorID      string `gorm:"size:36;index" json:"doctorId"`

	Symptoms     string `gorm:"type:text" json:"symptoms,omitempty"`
	Diagnosis    string `gorm:"type:text" json:"diagnosis,omitempty"`
	Prescription string `gorm:"type:text" json:"prescription,omitempty"`
	Notes        string `gorm:"type:text" json:"notes,omitempty"`

	// Vitals
	HeightCm           float64    `json:"heightCm,omitempty"`
	WeightKg           float64    `json:"weightKg,omitempty"`
	BloodPressure      string     `gorm:"size:20" json:"bloodPressure,omitempty"`
	TemperatureC       float64    `json:"temperatureC,omitempty"`
	PregnancyStartDate *time.Time `gorm:"type:date" json:"pregnancyStartDate,omitempty"`

	// Next visit request; the follow-up appointment itself is booked best-effort.
	FollowUpDate *time.Time `gorm:"type:date" json:"followUpDate,omitempty"`
	FollowUpTime string     `gorm:"size:5" json:"followUpTime,omitempty"`

	// Billing
	ConsultationFee float64       `json:"consultationFee"`
	PaidAmount      float64       `json:"paidAmount"`
	PaymentStatus   PaymentStatus `gorm:"size:20;default:'unpaid'" json:"paymentStatus"`

	// Relations
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	Patient     Patient     `gorm:"foreignKey:PatientID" json:"-"`
	Doctor      User        `gorm:"foreignKey:DoctorID" json:"-"`
}
