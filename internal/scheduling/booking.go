package scheduling

import (
	"errors"
	"time"

	"clinic-management-server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrSlotTaken is returned when the requested slot is already held by a
// non-cancelled appointment.
var ErrSlotTaken = errors.New("slot already booked")

// BookingParams describes a booking request.
type BookingParams struct {
	ClinicID        string
	DoctorID        string
	PatientID       string
	Date            time.Time
	Time            string
	DurationMinutes int
	Reason          string
	Notes           string
	IsFollowUp      bool
}

// Book creates an appointment if and only if the slot is free, inside a
// single transaction. The conflicting tuple is read under a row lock so two
// concurrent bookings for the same (doctor, date, time) cannot both pass the
// check; the earlier availability read in the UI flow is only a fast path.
func (s *Service) Book(p BookingParams) (*models.Appointment, error) {
	if _, err := ParseTimeOfDay(p.Time); err != nil {
		return nil, err
	}
	if p.DurationMinutes <= 0 {
		p.DurationMinutes = SlotIntervalMinutes
	}

	var appointment models.Appointment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Appointment{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("doctor_id = ? AND date = ? AND time = ? AND status <> ?",
				p.DoctorID, DateOnly(p.Date), p.Time, models.StatusCancelled).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrSlotTaken
		}

		appointment = models.Appointment{
			ClinicID:        p.ClinicID,
			DoctorID:        p.DoctorID,
			PatientID:       p.PatientID,
			Date:            DateOnly(p.Date),
			Time:            p.Time,
			DurationMinutes: p.DurationMinutes,
			Status:          models.StatusScheduled,
			Reason:          p.Reason,
			Notes:           p.Notes,
			IsFollowUp:      p.IsFollowUp,
		}
		return tx.Create(&appointment).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("doctor_id", p.DoctorID).
		Str("date", DateOnly(p.Date).Format("2006-01-02")).
		Str("time", p.Time).
		Bool("follow_up", p.IsFollowUp).
		Msg("appointment booked")
	return &appointment, nil
}
