package handlers

import (
	"time"

	"clinic-management-server/internal/clinical"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FollowUpBooker books the next-visit appointment when a visit is saved.
// Satisfied by *scheduling.Service; tests substitute a stub.
type FollowUpBooker interface {
	Book(p scheduling.BookingParams) (*models.Appointment, error)
}

// VisitHandler handles visit documentation requests.
type VisitHandler struct {
	DB     *gorm.DB
	Booker FollowUpBooker
}

// NewVisitHandler creates a new VisitHandler.
func NewVisitHandler(db *gorm.DB, booker FollowUpBooker) *VisitHandler {
	return &VisitHandler{DB: db, Booker: booker}
}

// CreateVisitRequest represents the request body for documenting a visit.
type CreateVisitRequest struct {
	AppointmentID string `json:"appointmentId" binding:"required,uuid"`

	Symptoms     string `json:"symptoms"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`

	HeightCm           float64 `json:"heightCm"`
	WeightKg           float64 `json:"weightKg"`
	BloodPressure      string  `json:"bloodPressure"`
	TemperatureC       float64 `json:"temperatureC"`
	PregnancyStartDate string  `json:"pregnancyStartDate"` // YYYY-MM-DD

	FollowUpDate string `json:"followUpDate"` // YYYY-MM-DD
	FollowUpTime string `json:"followUpTime"` // HH:MM

	ConsultationFee float64              `json:"consultationFee"`
	PaidAmount      float64              `json:"paidAmount"`
	PaymentStatus   models.PaymentStatus `json:"paymentStatus" binding:"omitempty,oneof=unpaid partial paid"`
}

// CreateVisit handles saving a visit record. The appointment is marked
// completed in the same transaction. The follow-up appointment, when
// requested, is booked best-effort afterwards: a taken slot or a booking
// failure never fails the visit save, it only adds a warning to the response.
func (h *VisitHandler) CreateVisit(c *gin.Context) {
	var req CreateVisitRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", req.AppointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RoleDoctor && appointment.DoctorID != userID {
		utils.Forbidden(c, "You are not the doctor for this appointment.")
		return
	}
	if role != models.RoleAdmin && role != models.RoleDoctor {
		clinicID, _ := middleware.GetClinicIDFromContext(c)
		if appointment.ClinicID != clinicID {
			utils.Forbidden(c, "This appointment belongs to a different clinic.")
			return
		}
	}

	if appointment.Status == models.StatusCancelled || appointment.Status == models.StatusCompleted {
		utils.BadRequest(c, "Cannot document a '"+string(appointment.Status)+"' appointment.")
		return
	}

	visit := models.VisitRecord{
		AppointmentID:   appointment.ID,
		ClinicID:        appointment.ClinicID,
		PatientID:       appointment.PatientID,
		DoctorID:        appointment.DoctorID,
		Symptoms:        req.Symptoms,
		Diagnosis:       req.Diagnosis,
		Prescription:    req.Prescription,
		Notes:           req.Notes,
		HeightCm:        req.HeightCm,
		WeightKg:        req.WeightKg,
		BloodPressure:   req.BloodPressure,
		TemperatureC:    req.TemperatureC,
		FollowUpTime:    req.FollowUpTime,
		ConsultationFee: req.ConsultationFee,
		PaidAmount:      req.PaidAmount,
		PaymentStatus:   req.PaymentStatus,
	}
	if visit.PaymentStatus == "" {
		visit.PaymentStatus = models.PaymentUnpaid
	}

	if req.PregnancyStartDate != "" {
		start, err := time.Parse("2006-01-02", req.PregnancyStartDate)
		if err != nil {
			utils.BadRequest(c, "Invalid pregnancyStartDate format. Use YYYY-MM-DD.")
			return
		}
		visit.PregnancyStartDate = &start
	}

	var followUpDate *time.Time
	if req.FollowUpDate != "" {
		d, err := time.Parse("2006-01-02", req.FollowUpDate)
		if err != nil {
			utils.BadRequest(c, "Invalid followUpDate format. Use YYYY-MM-DD.")
			return
		}
		followUpDate = &d
		visit.FollowUpDate = &d
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&visit).Error; err != nil {
			return err
		}
		return tx.Model(&models.Appointment{}).
			Where("id = ?", appointment.ID).
			Update("status", models.StatusCompleted).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to save visit record: "+err.Error())
		return
	}

	// Follow-up booking is deliberately outside the transaction: the visit is
	// already saved, and a lost slot must not undo it.
	var warnings []string
	if followUpDate != nil && req.FollowUpTime != "" {
		_, err := h.Booker.Book(scheduling.BookingParams{
			ClinicID:        appointment.ClinicID,
			DoctorID:        appointment.DoctorID,
			PatientID:       appointment.PatientID,
			Date:            *followUpDate,
			Time:            req.FollowUpTime,
			DurationMinutes: appointment.DurationMinutes,
			Reason:          "Follow-up",
			IsFollowUp:      true,
		})
		if err != nil {
			warnings = append(warnings,
				"Follow-up slot is no longer available. Please schedule the follow-up manually.")
		}
	}

	utils.CreatedWithWarnings(c, "Visit record saved successfully", visit, warnings)
}

// GetVisitsForPatient handles listing a patient's visit history.
func (h *VisitHandler) GetVisitsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	if role != models.RoleAdmin {
		clinicID, _ := middleware.GetClinicIDFromContext(c)
		if patient.ClinicID != clinicID {
			utils.Forbidden(c, "This patient belongs to a different clinic.")
			return
		}
	}

	var visits []models.VisitRecord
	if err := h.DB.Where("patient_id = ?", patientID).
		Order("created_at desc").Find(&visits).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch visits: "+err.Error())
		return
	}

	utils.Success(c, "Visits fetched successfully", visits)
}

// UpdateVisitRequest represents the request body for amending a visit record.
type UpdateVisitRequest struct {
	Symptoms     string `json:"symptoms"`
	Diagnosis    string `json:"diagnosis"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`

	PaidAmount    float64              `json:"paidAmount"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus" binding:"omitempty,oneof=unpaid partial paid"`
}

// UpdateVisit handles amending an existing visit record. Only the
// documenting doctor or an admin may edit clinical fields.
func (h *VisitHandler) UpdateVisit(c *gin.Context) {
	visitID := c.Param("id")

	var req UpdateVisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var visit models.VisitRecord
	if err := h.DB.First(&visit, "id = ?", visitID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Visit record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)
	switch role {
	case models.RoleAdmin:
	case models.RoleDoctor:
		if visit.DoctorID != userID {
			utils.Forbidden(c, "You are not the doctor for this visit.")
			return
		}
	default:
		// Receptionists and owners may settle payments but not edit clinical fields.
		clinicID, _ := middleware.GetClinicIDFromContext(c)
		if visit.ClinicID != clinicID {
			utils.Forbidden(c, "This visit belongs to a different clinic.")
			return
		}
		if req.Symptoms != "" || req.Diagnosis != "" || req.Prescription != "" || req.Notes != "" {
			utils.Forbidden(c, "Only the doctor can edit clinical fields.")
			return
		}
	}

	if req.Symptoms != "" {
		visit.Symptoms = req.Symptoms
	}
	if req.Diagnosis != "" {
		visit.Diagnosis = req.Diagnosis
	}
	if req.Prescription != "" {
		visit.Prescription = req.Prescription
	}
	if req.Notes != "" {
		visit.Notes = req.Notes
	}
	if req.PaidAmount > 0 {
		visit.PaidAmount = req.PaidAmount
	}
	if req.PaymentStatus != "" {
		visit.PaymentStatus = req.PaymentStatus
	}

	if err := h.DB.Save(&visit).Error; err != nil {
		utils.InternalServerError(c, "Failed to update visit record: "+err.Error())
		return
	}

	utils.Success(c, "Visit record updated successfully", visit)
}

// VisitSummary is the printable representation of a visit.
type VisitSummary struct {
	Visit       models.VisitRecord `json:"visit"`
	ClinicName  string             `json:"clinicName"`
	DoctorName  string             `json:"doctorName"`
	Specialty   string             `json:"specialty,omitempty"`
	PatientName string             `json:"patientName"`
	PatientAge  *int               `json:"patientAge,omitempty"`
	Gender      string             `json:"gender,omitempty"`
	BloodGroup  string             `json:"bloodGroup,omitempty"`

	BMI         float64 `json:"bmi,omitempty"`
	BMICategory string  `json:"bmiCategory,omitempty"`

	ExpectedDueDate   string `json:"expectedDueDate,omitempty"`
	PregnancyDuration string `json:"pregnancyDuration,omitempty"`

	BalanceDue float64 `json:"balanceDue"`
}

// GetVisitSummary handles producing the printable summary for a visit,
// including the derived age, BMI and pregnancy values.
func (h *VisitHandler) GetVisitSummary(c *gin.Context) {
	visitID := c.Param("id")

	var visit models.VisitRecord
	if err := h.DB.First(&visit, "id = ?", visitID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Visit record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	if role != models.RoleAdmin {
		clinicID, _ := middleware.GetClinicIDFromContext(c)
		if visit.ClinicID != clinicID {
			utils.Forbidden(c, "This visit belongs to a different clinic.")
			return
		}
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", visit.PatientID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load patient: "+err.Error())
		return
	}
	var doctor models.User
	if err := h.DB.First(&doctor, "id = ?", visit.DoctorID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load doctor: "+err.Error())
		return
	}
	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", visit.ClinicID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load clinic: "+err.Error())
		return
	}

	summary := VisitSummary{
		Visit:       visit,
		ClinicName:  clinic.Name,
		DoctorName:  doctor.FirstName + " " + doctor.LastName,
		PatientName: patient.FirstName + " " + patient.LastName,
		Gender:      patient.Gender,
		BloodGroup:  patient.BloodGroup,
		BalanceDue:  visit.ConsultationFee - visit.PaidAmount,
	}

	var profile models.DoctorProfile
	if err := h.DB.Where("user_id = ?", visit.DoctorID).First(&profile).Error; err == nil {
		summary.Specialty = profile.Specialty
	}

	now := time.Now()
	if patient.DateOfBirth != nil {
		age := clinical.Age(*patient.DateOfBirth, now)
		summary.PatientAge = &age
	}
	if bmi, category := clinical.BMI(visit.WeightKg, visit.HeightCm); category != clinical.BMIUndefined {
		summary.BMI = bmi
		summary.BMICategory = category
	}
	if visit.PregnancyStartDate != nil {
		summary.ExpectedDueDate = clinical.ExpectedDueDate(*visit.PregnancyStartDate).Format("2006-01-02")
		summary.PregnancyDuration = clinical.GestationLabel(*visit.PregnancyStartDate, now)
	}

	utils.Success(c, "Visit summary generated", summary)
}
