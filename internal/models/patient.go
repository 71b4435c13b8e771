package models

import (
	"time"
)

// Patient represents a clinic-scoped patient record.
type Patient struct {
	BaseModel
	ClinicID       string     `gorm:"size:36;index;not null" json:"clinicId"`
	FirstName      string     `gorm:"size:100;not null" json:"firstName"`
	LastName       string     `gorm:"size:100" json:"lastName"`
	Gender         string     `gorm:"size:10" json:"gender,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber    string     `gorm:"size:30" json:"phoneNumber,omitempty"`
	CNIC           string     `gorm:"size:20;index" json:"cnic,omitempty"`
	Address        string     `gorm:"size:255" json:"address,omitempty"`
	BloodGroup     string     `gorm:"size:5" json:"bloodGroup,omitempty"`
	Allergies      string     `gorm:"type:text" json:"allergies,omitempty"`
	MedicalHistory string     `gorm:"type:text" json:"medicalHistory,omitempty"`

	// Relations
	Clinic       Clinic            `gorm:"foreignKey:ClinicID" json:"-"`
	Appointments []Appointment     `gorm:"foreignKey:PatientID" json:"-"`
	Documents    []PatientDocument `gorm:"foreignKey:PatientID" json:"documents,omitempty"`
}

// PatientDocument represents a medical document attached to a patient.
// The file itself lives in blob storage under StorageKey; viewing goes
// through a time-limited signed URL.
type PatientDocument struct {
	BaseModel
	PatientID  string `gorm:"size:36;index;not null" json:"patientId"`
	ClinicID   string `gorm:"size:36;index" json:"clinicId"`
	FileName   string `gorm:"size:255;not null" json:"fileName"`
	FileType   string `gorm:"size:100;not null" json:"fileType"`
	StorageKey string `gorm:"size:512;not null" json:"-"`
	UploadedBy string `gorm:"size:36" json:"uploadedBy"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
}
