package handlers

import (
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClinicHandler handles clinic onboarding and administration requests.
type ClinicHandler struct {
	DB *gorm.DB
}

// NewClinicHandler creates a new ClinicHandler.
func NewClinicHandler(db *gorm.DB) *ClinicHandler {
	return &ClinicHandler{DB: db}
}

// GetMyClinic handles fetching the clinic the caller belongs to.
func (h *ClinicHandler) GetMyClinic(c *gin.Context) {
	clinicID, exists := middleware.GetClinicIDFromContext(c)
	if !exists || clinicID == "" {
		utils.Forbidden(c, "No clinic associated with this account")
		return
	}

	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", clinicID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Clinic not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Clinic fetched successfully", clinic)
}

// UpdateClinicRequest represents the request body for updating clinic details.
type UpdateClinicRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
	Address     string `json:"address"`
}

// UpdateMyClinic handles updating the owner's clinic details.
func (h *ClinicHandler) UpdateMyClinic(c *gin.Context) {
	clinicID, exists := middleware.GetClinicIDFromContext(c)
	if !exists || clinicID == "" {
		utils.Forbidden(c, "No clinic associated with this account")
		return
	}

	var req UpdateClinicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", clinicID).Error; err != nil {
		utils.NotFound(c, "Clinic not found")
		return
	}

	if req.Name != "" {
		clinic.Name = req.Name
	}
	if req.PhoneNumber != "" {
		clinic.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		clinic.Address = req.Address
	}

	if err := h.DB.Save(&clinic).Error; err != nil {
		utils.InternalServerError(c, "Failed to update clinic: "+err.Error())
		return
	}

	utils.Success(c, "Clinic updated successfully", clinic)
}

// GetClinics handles listing all clinics (admin).
func (h *ClinicHandler) GetClinics(c *gin.Context) {
	var clinics []models.Clinic
	if err := h.DB.Preload("Owner").Order("created_at desc").Find(&clinics).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch clinics: "+err.Error())
		return
	}

	utils.Success(c, "Clinics fetched successfully", clinics)
}

// UpdateClinicStatusRequest represents the request body for changing a
// clinic's activation state.
type UpdateClinicStatusRequest struct {
	Status models.ClinicStatus `json:"status" binding:"required,oneof=active inactive"`
}

// UpdateClinicStatus handles activating or deactivating a clinic (admin).
func (h *ClinicHandler) UpdateClinicStatus(c *gin.Context) {
	clinicID := c.Param("id")

	var req UpdateClinicStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", clinicID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Clinic not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	clinic.Status = req.Status
	if err := h.DB.Save(&clinic).Error; err != nil {
		utils.InternalServerError(c, "Failed to update clinic status: "+err.Error())
		return
	}

	utils.Success(c, "Clinic status updated successfully", clinic)
}

// MarkSubscribed handles flagging a clinic as subscribed after the trial (admin).
func (h *ClinicHandler) MarkSubscribed(c *gin.Context) {
	clinicID := c.Param("id")

	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", clinicID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Clinic not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	clinic.Subscribed = true
	if err := h.DB.Save(&clinic).Error; err != nil {
		utils.InternalServerError(c, "Failed to update subscription: "+err.Error())
		return
	}

	utils.Success(c, "Clinic marked as subscribed", clinic)
}

// ApproveDoctorRequest represents the request body for reviewing a doctor profile.
type ApproveDoctorRequest struct {
	Status models.ApprovalStatus `json:"status" binding:"required,oneof=approved rejected"`
}

// ApproveDoctor handles approving or rejecting a pending doctor profile.
// Admins review any profile; clinic owners review doctors of their own clinic.
func (h *ClinicHandler) ApproveDoctor(c *gin.Context) {
	doctorID := c.Param("doctorId")

	var req ApproveDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var profile models.DoctorProfile
	if err := h.DB.Where("user_id = ?", doctorID).First(&profile).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	role, _ := middleware.GetUserRoleFromContext(c)
	if role != models.RoleAdmin {
		clinicID, _ := middleware.GetClinicIDFromContext(c)
		if clinicID != profile.ClinicID {
			utils.Forbidden(c, "You can only review doctors of your own clinic.")
			return
		}
	}

	profile.ApprovalStatus = req.Status
	if err := h.DB.Save(&profile).Error; err != nil {
		utils.InternalServerError(c, "Failed to update approval status: "+err.Error())
		return
	}

	utils.Success(c, "Doctor approval status updated", profile)
}

// GetPendingDoctors handles listing doctor profiles awaiting review.
func (h *ClinicHandler) GetPendingDoctors(c *gin.Context) {
	query := h.DB.Preload("User").Where("approval_status = ?", models.ApprovalPending)

	role, _ := middleware.GetUserRoleFromContext(c)
	if role != models.RoleAdmin {
		clinicID, _ := middleware.GetClinicIDFromContext(c)
		if clinicID == "" {
			utils.Forbidden(c, "No clinic associated with this account")
			return
		}
		query = query.Where("clinic_id = ?", clinicID)
	}

	var profiles []models.DoctorProfile
	if err := query.Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch pending doctors: "+err.Error())
		return
	}

	utils.Success(c, "Pending doctors fetched successfully", profiles)
}
