package handlers

import (
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler handles staff-account requests.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// CreateReceptionistRequest represents the request body for creating a
// receptionist account within the owner's clinic.
type CreateReceptionistRequest struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	PhoneNumber string `json:"phoneNumber"`
}

// CreateReceptionist handles creating a receptionist account (clinic owner only).
func (h *UserHandler) CreateReceptionist(c *gin.Context) {
	var req CreateReceptionistRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	clinicID, exists := middleware.GetClinicIDFromContext(c)
	if !exists || clinicID == "" {
		utils.Forbidden(c, "No clinic associated with this account")
		return
	}

	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	receptionist := models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleReceptionist,
		ClinicID:    clinicID,
	}
	if err := receptionist.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&receptionist).Error; err != nil {
		utils.InternalServerError(c, "Failed to create receptionist: "+err.Error())
		return
	}

	utils.Created(c, "Receptionist created successfully", receptionist.Sanitize())
}

// GetDoctors handles listing the approved doctors of a clinic. Admins may
// pass ?clinicId= to inspect any clinic; everyone else is scoped to their own.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	clinicID, _ := middleware.GetClinicIDFromContext(c)
	if role == models.RoleAdmin {
		clinicID = c.Query("clinicId")
	}

	query := h.DB.Preload("User").Where("approval_status = ?", models.ApprovalApproved)
	if clinicID != "" {
		query = query.Where("clinic_id = ?", clinicID)
	}

	var profiles []models.DoctorProfile
	if err := query.Find(&profiles).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Doctors fetched successfully", profiles)
}

// GetClinicStaff handles listing receptionists and doctors of the caller's clinic.
func (h *UserHandler) GetClinicStaff(c *gin.Context) {
	clinicID, exists := middleware.GetClinicIDFromContext(c)
	if !exists || clinicID == "" {
		utils.Forbidden(c, "No clinic associated with this account")
		return
	}

	var staff []models.User
	if err := h.DB.Where("clinic_id = ?", clinicID).Find(&staff).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch staff: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(staff))
	for i, u := range staff {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Staff fetched successfully", sanitized)
}

// GetUsers handles fetching all users (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitizedUsers := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitizedUsers[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", sanitizedUsers)
}

// GetUserByID handles fetching a single user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
type UpdateUserRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateUser handles updating a user by ID (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil { // partial update
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.NotFound(c, "User not found")
		return
	}

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles deleting a user by ID (admin).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	utils.Success(c, "User deleted successfully", nil)
}
