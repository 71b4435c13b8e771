package models

import (
	"time"
)

// DoctorSchedule holds a doctor's working window for one weekday.
// Times are 24-hour "HH:MM"; DayOfWeek follows time.Weekday (0 = Sunday).
type DoctorSchedule struct {
	BaseModel
	DoctorID  string `gorm:"size:36;uniqueIndex:idx_schedule_doctor_day,priority:1" json:"doctorId"`
	DayOfWeek int    `gorm:"uniqueIndex:idx_schedule_doctor_day,priority:2" json:"dayOfWeek"`
	StartTime string `gorm:"size:5" json:"startTime"`
	EndTime   string `gorm:"size:5" json:"endTime"`
	IsWorkDay bool   `gorm:"default:true" json:"isWorkDay"`

	Doctor User `gorm:"foreignKey:DoctorID" json:"-"`
}

// LeaveType represents the kind of doctor leave
type LeaveType string

const (
	LeaveFullDay LeaveType = "full_day"
	LeavePartial LeaveType = "partial"
)

// DoctorLeave represents a doctor's declared unavailability for a date.
// StartTime/EndTime are only meaningful for partial leaves.
type DoctorLeave struct {
	BaseModel
	DoctorID  string    `gorm:"size:36;index:idx_leaves_doctor_date,priority:1" json:"doctorId"`
	Date      time.Time `gorm:"type:date;index:idx_leaves_doctor_date,priority:2" json:"date"`
	LeaveType LeaveType `gorm:"size:20;not null" json:"leaveType"`
	StartTime string    `gorm:"size:5" json:"startTime,omitempty"`
	EndTime   string    `gorm:"size:5" json:"endTime,omitempty"`
	Reason    string    `gorm:"size:255" json:"reason,omitempty"`

	Doctor User `gorm:"foreignKey:DoctorID" json:"-"`
}
