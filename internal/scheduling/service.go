package scheduling

import (
	"errors"
	"time"

	"clinic-management-server/internal/models"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Service answers slot-availability questions for a doctor and date.
// All methods are pure reads; booking lives in booking.go.
type Service struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewService creates a scheduling Service.
func NewService(db *gorm.DB, log zerolog.Logger) *Service {
	return &Service{db: db, log: log}
}

// SlotResult is the outcome of slot generation for a doctor/date.
type SlotResult struct {
	Slots       []Slot           `json:"slots"`
	OnLeave     bool             `json:"onLeave"`
	LeaveType   models.LeaveType `json:"leaveType,omitempty"`
	LeaveReason string           `json:"leaveReason,omitempty"`
}

// SlotsForDoctor produces the bookable slots for a doctor on a date.
// A full-day leave suppresses every slot and flags the result as on-leave.
// A partial leave is reported but does not narrow the window. Slots held
// by non-cancelled appointments are removed.
func (s *Service) SlotsForDoctor(doctorID string, date time.Time) (SlotResult, error) {
	leave, err := s.LeaveFor(doctorID, date)
	if err != nil {
		s.log.Error().Err(err).Str("doctor_id", doctorID).Msg("leave lookup failed")
		return SlotResult{}, err
	}

	result := SlotResult{}
	if leave != nil {
		result.LeaveType = leave.LeaveType
		result.LeaveReason = leave.Reason
		if leave.LeaveType == models.LeaveFullDay {
			result.OnLeave = true
			result.Slots = []Slot{}
			return result, nil
		}
	}

	slots, err := s.windowSlots(doctorID, date.Weekday())
	if err != nil {
		s.log.Error().Err(err).Str("doctor_id", doctorID).Msg("schedule lookup failed")
		return SlotResult{}, err
	}

	booked, err := s.bookedTimes(doctorID, date)
	if err != nil {
		s.log.Error().Err(err).Str("doctor_id", doctorID).Msg("booked-slot lookup failed")
		return SlotResult{}, err
	}

	result.Slots = ExcludeBooked(slots, booked)
	return result, nil
}

// IsSlotAvailable reports whether the exact (doctor, date, time) slot is free:
// available means no appointment at that tuple has a status other than
// cancelled. This is the fast-path check consulted before booking; the
// race-free guarantee is the conditional insert in Book.
func (s *Service) IsSlotAvailable(doctorID string, date time.Time, timeOfDay string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ? AND status <> ?",
			doctorID, DateOnly(date), timeOfDay, models.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count == 0, nil
}

// LeaveFor returns the doctor's leave record for a date, or nil when none exists.
func (s *Service) LeaveFor(doctorID string, date time.Time) (*models.DoctorLeave, error) {
	var leave models.DoctorLeave
	err := s.db.Where("doctor_id = ? AND date = ?", doctorID, DateOnly(date)).First(&leave).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &leave, nil
}

// windowSlots generates the raw cadence for the doctor's working window on a
// weekday, the full-day default when no window is configured, and no slots at
// all on a configured non-workday.
func (s *Service) windowSlots(doctorID string, weekday time.Weekday) ([]Slot, error) {
	var schedule models.DoctorSchedule
	err := s.db.Where("doctor_id = ? AND day_of_week = ?", doctorID, int(weekday)).First(&schedule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return DefaultSlots(), nil
	}
	if err != nil {
		return nil, err
	}
	if !schedule.IsWorkDay {
		return []Slot{}, nil
	}
	return SlotsInWindow(schedule.StartTime, schedule.EndTime), nil
}

// bookedTimes returns the set of times held by non-cancelled appointments.
func (s *Service) bookedTimes(doctorID string, date time.Time) (map[string]struct{}, error) {
	var times []string
	err := s.db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND status <> ?", doctorID, DateOnly(date), models.StatusCancelled).
		Pluck("time", &times).Error
	if err != nil {
		return nil, err
	}
	booked := make(map[string]struct{}, len(times))
	for _, t := range times {
		booked[t] = struct{}{}
	}
	return booked, nil
}

// DateOnly truncates a timestamp to its calendar day, matching the DATE column type.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
