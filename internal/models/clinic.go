package models

import (
	"time"
)

// ClinicStatus represents the activation state of a clinic account
type ClinicStatus string

const (
	ClinicStatusActive   ClinicStatus = "active"
	ClinicStatusInactive ClinicStatus = "inactive"
)

// ApprovalStatus represents the admin review state of a doctor profile
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Clinic represents a tenant: one clinic account owning patients, doctors and appointments.
type Clinic struct {
	BaseModel
	Name        string       `gorm:"size:255;not null" json:"name"`
	OwnerID     string       `gorm:"size:36;index" json:"ownerId"`
	PhoneNumber string       `gorm:"size:30" json:"phoneNumber,omitempty"`
	Address     string       `gorm:"size:255" json:"address,omitempty"`
	Status      ClinicStatus `gorm:"size:20;default:'active'" json:"status"`
	// ReferralCode is this clinic's own shareable code; ReferredBy records the
	// code entered at signup, if any.
	ReferralCode string    `gorm:"uniqueIndex;size:10" json:"referralCode"`
	ReferredBy   string    `gorm:"size:10" json:"referredBy,omitempty"`
	TrialEndsAt  time.Time `json:"trialEndsAt"`
	Subscribed   bool      `gorm:"default:false" json:"subscribed"`

	// Relations
	Owner    User            `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Doctors  []DoctorProfile `gorm:"foreignKey:ClinicID" json:"-"`
	Patients []Patient       `gorm:"foreignKey:ClinicID" json:"-"`
}

// TrialExpired reports whether the clinic's trial window has lapsed without a subscription.
func (cl *Clinic) TrialExpired(now time.Time) bool {
	return !cl.Subscribed && now.After(cl.TrialEndsAt)
}

// DoctorProfile holds the clinic-facing details of a doctor account.
type DoctorProfile struct {
	BaseModel
	UserID          string         `gorm:"size:36;uniqueIndex" json:"userId"`
	ClinicID        string         `gorm:"size:36;index" json:"clinicId"`
	Specialty       string         `gorm:"size:100" json:"specialty"`
	LicenseNumber   string         `gorm:"size:50" json:"licenseNumber,omitempty"`
	ConsultationFee float64        `json:"consultationFee"`
	ApprovalStatus  ApprovalStatus `gorm:"size:20;default:'pending'" json:"approvalStatus"`

	// Relations
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Clinic Clinic `gorm:"foreignKey:ClinicID" json:"-"`
}
