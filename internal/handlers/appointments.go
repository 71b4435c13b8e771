package handlers

import (
	"errors"
	"time"

	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB        *gorm.DB
	Scheduler *scheduling.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, scheduler *scheduling.Service) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Scheduler: scheduler}
}

// GetSlots handles producing the bookable slots for a doctor and date.
// Without both query params the full-day default cadence is returned, so the
// picker has something to show before a doctor/date is chosen.
func (h *AppointmentHandler) GetSlots(c *gin.Context) {
	doctorID := c.Query("doctorId")
	dateStr := c.Query("date")

	if doctorID == "" || dateStr == "" {
		utils.Success(c, "Default slots", scheduling.SlotResult{Slots: scheduling.DefaultSlots()})
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
		return
	}

	result, err := h.Scheduler.SlotsForDoctor(doctorID, date)
	if err != nil {
		utils.InternalServerError(c, "Failed to compute slots: "+err.Error())
		return
	}

	utils.Success(c, "Slots fetched successfully", result)
}

// CheckAvailability handles the standalone conflict check consulted right
// before submitting a booking.
func (h *AppointmentHandler) CheckAvailability(c *gin.Context) {
	doctorID := c.Query("doctorId")
	dateStr := c.Query("date")
	timeOfDay := c.Query("time")
	if doctorID == "" || dateStr == "" || timeOfDay == "" {
		utils.BadRequest(c, "doctorId, date and time are required")
		return
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
		return
	}

	available, err := h.Scheduler.IsSlotAvailable(doctorID, date, timeOfDay)
	if err != nil {
		utils.InternalServerError(c, "Failed to check availability: "+err.Error())
		return
	}

	utils.Success(c, "Availability checked", gin.H{"available": available})
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	DoctorID        string `json:"doctorId" binding:"required,uuid"`
	PatientID       string `json:"patientId" binding:"required,uuid"`
	Date            string `json:"date" binding:"required"` // YYYY-MM-DD
	Time            string `json:"time" binding:"required"` // HH:MM
	DurationMinutes int    `json:"durationMinutes"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
}

// CreateAppointment handles booking a new appointment (including walk-ins).
// The slot check and insert happen atomically in the scheduler.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	clinicID, ok := clinicScope(c)
	if !ok {
		utils.Forbidden(c, "No clinic associated with this account")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
		return
	}
	today := scheduling.DateOnly(time.Now())
	if date.Before(today) {
		utils.BadRequest(c, "Appointment date cannot be in the past.")
		return
	}

	// Verify the doctor is an approved member of the clinic.
	var profile models.DoctorProfile
	if err := h.DB.Where("user_id = ? AND approval_status = ?", req.DoctorID, models.ApprovalApproved).
		First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found or not approved")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}
	if clinicID != "" && profile.ClinicID != clinicID {
		utils.Forbidden(c, "This doctor belongs to a different clinic.")
		return
	}

	// Verify the patient belongs to the same clinic.
	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error verifying patient: "+err.Error())
		}
		return
	}
	if patient.ClinicID != profile.ClinicID {
		utils.BadRequest(c, "Patient and doctor belong to different clinics.")
		return
	}

	appointment, err := h.Scheduler.Book(scheduling.BookingParams{
		ClinicID:        profile.ClinicID,
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		Date:            date,
		Time:            req.Time,
		DurationMinutes: req.DurationMinutes,
		Reason:          req.Reason,
		Notes:           req.Notes,
	})
	if err != nil {
		if errors.Is(err, scheduling.ErrSlotTaken) {
			utils.Conflict(c, "This slot has just been booked. Please pick another time.")
		} else {
			utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		}
		return
	}

	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments handles listing appointments scoped to the caller's role,
// with optional doctorId, date and status filters.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	role, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Order("date asc, time asc")

	switch role {
	case models.RoleDoctor:
		query = query.Where("doctor_id = ?", userID)
	case models.RoleClinic, models.RoleReceptionist:
		clinicID, _ := middleware.GetClinicIDFromContext(c)
		query = query.Where("clinic_id = ?", clinicID)
	case models.RoleAdmin:
		// Admins see everything, optionally narrowed below.
		if clinicID := c.Query("clinicId"); clinicID != "" {
			query = query.Where("clinic_id = ?", clinicID)
		}
	default:
		utils.Forbidden(c, "User role not permitted to view appointments.")
		return
	}

	if doctorID := c.Query("doctorId"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}
	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
			return
		}
		query = query.Where("date = ?", scheduling.DateOnly(date))
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// getScopedAppointment loads an appointment and verifies the caller may act on it.
func (h *AppointmentHandler) getScopedAppointment(c *gin.Context, appointmentID string) (*models.Appointment, bool) {
	var appointment models.Appointment
	if err := h.DB.Preload("Patient").First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	clinicID, _ := middleware.GetClinicIDFromContext(c)

	switch role {
	case models.RoleAdmin:
	case models.RoleDoctor:
		if appointment.DoctorID != userID {
			utils.Forbidden(c, "You are not the doctor for this appointment.")
			return nil, false
		}
	default:
		if appointment.ClinicID != clinicID {
			utils.Forbidden(c, "This appointment belongs to a different clinic.")
			return nil, false
		}
	}

	return &appointment, true
}

// GetAppointmentByID handles fetching a single appointment by its ID.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment, ok := h.getScopedAppointment(c, c.Param("id"))
	if !ok {
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for a status change.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=scheduled confirmed in_progress completed cancelled no_show"`
	Notes  string                   `json:"notes"` // Optional notes for the change (e.g. cancellation reason)
}

// UpdateAppointmentStatus handles status transitions (confirm, start,
// complete, cancel, no-show) against the allowed-transition table.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, ok := h.getScopedAppointment(c, c.Param("id"))
	if !ok {
		return
	}

	if !models.CanTransition(appointment.Status, req.Status) {
		utils.BadRequest(c, "Cannot move appointment from '"+string(appointment.Status)+"' to '"+string(req.Status)+"'.")
		return
	}

	appointment.Status = req.Status
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}

	if err := h.DB.Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// RescheduleAppointmentRequest represents the request body for rescheduling.
type RescheduleAppointmentRequest struct {
	Date  string `json:"date" binding:"required"` // YYYY-MM-DD
	Time  string `json:"time" binding:"required"` // HH:MM
	Notes string `json:"notes"`
}

// RescheduleAppointment handles moving an appointment to a new slot. The old
// slot is released by cancelling the row and the new one is booked through
// the same conflict-checked path as a fresh booking.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment, ok := h.getScopedAppointment(c, c.Param("id"))
	if !ok {
		return
	}

	if appointment.Status != models.StatusScheduled && appointment.Status != models.StatusConfirmed {
		utils.BadRequest(c, "Only scheduled or confirmed appointments can be rescheduled.")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
		return
	}
	if date.Before(scheduling.DateOnly(time.Now())) {
		utils.BadRequest(c, "New appointment date cannot be in the past.")
		return
	}

	replacement, err := h.Scheduler.Book(scheduling.BookingParams{
		ClinicID:        appointment.ClinicID,
		DoctorID:        appointment.DoctorID,
		PatientID:       appointment.PatientID,
		Date:            date,
		Time:            req.Time,
		DurationMinutes: appointment.DurationMinutes,
		Reason:          appointment.Reason,
		Notes:           req.Notes,
		IsFollowUp:      appointment.IsFollowUp,
	})
	if err != nil {
		if errors.Is(err, scheduling.ErrSlotTaken) {
			utils.Conflict(c, "The requested slot is already booked. Please pick another time.")
		} else {
			utils.InternalServerError(c, "Failed to reschedule appointment: "+err.Error())
		}
		return
	}

	appointment.Status = models.StatusCancelled
	if err := h.DB.Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to release previous slot: "+err.Error())
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", replacement)
}
