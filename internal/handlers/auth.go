package handlers

import (
	"time"

	"clinic-management-server/internal/config"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Login gate codes surfaced to the client so it can show the right dialog.
const (
	GateClinicInactive   = "clinic_inactive"
	GateTrialExpired     = "trial_expired"
	GateApprovalPending  = "approval_pending"
	GateApprovalRejected = "approval_rejected"
)

// AuthHandler handles authentication-related requests.
type AuthHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{DB: db, Cfg: cfg}
}

// RegisterClinicRequest represents the request body for clinic-owner signup.
type RegisterClinicRequest struct {
	FirstName    string `json:"firstName" binding:"required"`
	LastName     string `json:"lastName" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required,min=8"`
	ClinicName   string `json:"clinicName" binding:"required"`
	PhoneNumber  string `json:"phoneNumber"`
	Address      string `json:"address"`
	ReferralCode string `json:"referralCode"`
}

// RegisterClinic handles clinic-owner signup. The new clinic starts an
// active trial window and receives its own referral code.
func (h *AuthHandler) RegisterClinic(c *gin.Context) {
	var req RegisterClinicRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	// Check if user already exists
	var existingUser models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User with this email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	// A referral code, when supplied, must be well-formed and belong to an
	// existing clinic before it is recorded.
	if req.ReferralCode != "" {
		if !utils.ValidReferralCode(req.ReferralCode) {
			utils.BadRequest(c, "Invalid referral code format")
			return
		}
		var referrer models.Clinic
		if err := h.DB.Where("referral_code = ?", req.ReferralCode).First(&referrer).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.BadRequest(c, "Referral code not recognized")
			} else {
				utils.InternalServerError(c, "Database error checking referral code: "+err.Error())
			}
			return
		}
	}

	ownCode, err := h.unusedReferralCode()
	if err != nil {
		utils.InternalServerError(c, "Failed to issue referral code: "+err.Error())
		return
	}

	owner := models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleClinic,
	}
	if err := owner.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	clinic := models.Clinic{
		Name:         req.ClinicName,
		PhoneNumber:  req.PhoneNumber,
		Address:      req.Address,
		Status:       models.ClinicStatusActive,
		ReferralCode: ownCode,
		ReferredBy:   req.ReferralCode,
		TrialEndsAt:  time.Now().AddDate(0, 0, h.Cfg.TrialDays),
	}

	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}
		clinic.OwnerID = owner.ID
		return tx.Create(&clinic).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create clinic account: "+err.Error())
		return
	}

	utils.Created(c, "Clinic registered successfully", gin.H{
		"user":   owner.Sanitize(),
		"clinic": clinic,
	})
}

// unusedReferralCode generates a referral code not yet held by any clinic.
func (h *AuthHandler) unusedReferralCode() (string, error) {
	for i := 0; i < 5; i++ {
		code := utils.GenerateReferralCode()
		var existing models.Clinic
		err := h.DB.Where("referral_code = ?", code).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", gorm.ErrDuplicatedKey
}

// RegisterDoctorRequest represents the request body for doctor signup.
type RegisterDoctorRequest struct {
	FirstName       string  `json:"firstName" binding:"required"`
	LastName        string  `json:"lastName" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=8"`
	PhoneNumber     string  `json:"phoneNumber"`
	ClinicID        string  `json:"clinicId" binding:"required,uuid"`
	Specialty       string  `json:"specialty" binding:"required"`
	LicenseNumber   string  `json:"licenseNumber"`
	ConsultationFee float64 `json:"consultationFee"`
}

// RegisterDoctor handles doctor signup. The account works only after an
// admin approves the profile; until then login is gated.
func (h *AuthHandler) RegisterDoctor(c *gin.Context) {
	var req RegisterDoctorRequest
	if !utils.BindAndValidate(c, &req) {
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

	var clinic models.Clinic
	if err := h.DB.First(&clinic, "id = ?", req.ClinicID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Clinic not found")
		} else {
			utils.InternalServerError(c, "Database error verifying clinic: "+err.Error())
		}
		return
	}
	if clinic.Status != models.ClinicStatusActive {
		utils.BadRequest(c, "Clinic is not accepting registrations")
		return
	}

	doctor := models.User{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        models.RoleDoctor,
		ClinicID:    clinic.ID,
	}
	if err := doctor.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	profile := models.DoctorProfile{
		ClinicID:        clinic.ID,
		Specialty:       req.Specialty,
		LicenseNumber:   req.LicenseNumber,
		ConsultationFee: req.ConsultationFee,
		ApprovalStatus:  models.ApprovalPending,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&doctor).Error; err != nil {
			return err
		}
		profile.UserID = doctor.ID
		return tx.Create(&profile).Error
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to create doctor account: "+err.Error())
		return
	}

	utils.Created(c, "Doctor registered successfully, pending approval", gin.H{
		"user":    doctor.Sanitize(),
		"profile": profile,
	})
}

// LoginRequest represents the request body for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response body for successful login.
type LoginResponse struct {
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
	User         models.UserSanitized `json:"user"`
}

// Login handles user login. Account-state gates (inactive clinic, pending
// doctor approval, expired trial) reject the sign-in with a reason code
// before any tokens are issued.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Invalid email or password")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !user.CheckPassword(req.Password) {
		utils.Unauthorized(c, "Invalid email or password")
		return
	}

	clinicID, blocked := h.gateLogin(c, &user)
	if blocked {
		return
	}

	accessToken, refreshTokenString, err := utils.GenerateTokens(&user, clinicID, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate tokens: "+err.Error())
		return
	}
	// Store refresh token in DB
	refreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     refreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&refreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store refresh token: "+err.Error())
		return
	}

	h.setRefreshCookie(c, refreshTokenString, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Login successful", LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         user.Sanitize(),
	})
}

// gateLogin resolves the clinic the account belongs to and applies the
// account-state gates. It writes the 403 response itself and returns
// blocked=true when the sign-in must not proceed.
func (h *AuthHandler) gateLogin(c *gin.Context, user *models.User) (clinicID string, blocked bool) {
	switch user.Role {
	case models.RoleAdmin:
		return "", false

	case models.RoleClinic:
		var clinic models.Clinic
		if err := h.DB.Where("owner_id = ?", user.ID).First(&clinic).Error; err != nil {
			utils.InternalServerError(c, "Failed to load clinic for account: "+err.Error())
			return "", true
		}
		return clinic.ID, h.gateClinic(c, &clinic)

	case models.RoleDoctor:
		var profile models.DoctorProfile
		if err := h.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
			utils.InternalServerError(c, "Failed to load doctor profile: "+err.Error())
			return "", true
		}
		switch profile.ApprovalStatus {
		case models.ApprovalPending:
			utils.ForbiddenWithCode(c, GateApprovalPending, "Your account is awaiting approval.")
			return "", true
		case models.ApprovalRejected:
			utils.ForbiddenWithCode(c, GateApprovalRejected, "Your registration was not approved.")
			return "", true
		}
		var clinic models.Clinic
		if err := h.DB.First(&clinic, "id = ?", profile.ClinicID).Error; err != nil {
			utils.InternalServerError(c, "Failed to load clinic for doctor: "+err.Error())
			return "", true
		}
		return clinic.ID, h.gateClinic(c, &clinic)

	default: // receptionist
		var clinic models.Clinic
		if err := h.DB.First(&clinic, "id = ?", user.ClinicID).Error; err != nil {
			utils.InternalServerError(c, "Failed to load clinic for account: "+err.Error())
			return "", true
		}
		return clinic.ID, h.gateClinic(c, &clinic)
	}
}

func (h *AuthHandler) gateClinic(c *gin.Context, clinic *models.Clinic) bool {
	if clinic.Status != models.ClinicStatusActive {
		utils.ForbiddenWithCode(c, GateClinicInactive, "This clinic account is inactive. Contact support.")
		return true
	}
	if clinic.TrialExpired(time.Now()) {
		utils.ForbiddenWithCode(c, GateTrialExpired, "The trial period has ended. Please subscribe to continue.")
		return true
	}
	return false
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetCookie(
		"refresh_token",
		value,
		maxAge,
		"/",
		"",
		h.Cfg.Environment != "development",
		true,
	)
}

// RefreshTokenRequest represents the request body for token refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse represents the response body for successful token refresh.
type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken handles refreshing an access token using a refresh token.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	// First try to get the refresh token from HTTP-only cookie
	refreshTokenFromCookie, err := c.Cookie("refresh_token")

	// If no cookie, fall back to request body
	if err != nil || refreshTokenFromCookie == "" {
		var req RefreshTokenRequest
		if !utils.BindAndValidate(c, &req) {
			return
		}
		refreshTokenFromCookie = req.RefreshToken
	}

	claims, err := utils.ValidateToken(refreshTokenFromCookie, h.Cfg.JWTRefreshSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid refresh token structure or signature: "+err.Error())
		return
	}
	// Check if refresh token is revoked or still valid in DB
	var storedToken models.RefreshToken
	if err := h.DB.Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?",
		refreshTokenFromCookie, claims.UserID, false, time.Now()).First(&storedToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Unauthorized(c, "Refresh token not found, expired, or revoked")
		} else {
			utils.InternalServerError(c, "Database error checking refresh token: "+err.Error())
		}
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", claims.UserID).Error; err != nil {
		utils.InternalServerError(c, "Failed to find user associated with token: "+err.Error())
		return
	}

	// Refresh token rotation: revoke the old token before issuing new ones.
	storedToken.IsRevoked = true
	h.DB.Save(&storedToken)

	newAccessToken, newRefreshTokenString, err := utils.GenerateTokens(&user, claims.ClinicID, h.Cfg)
	if err != nil {
		utils.InternalServerError(c, "Failed to generate new tokens: "+err.Error())
		return
	}

	newRefreshToken := models.RefreshToken{
		UserID:    user.ID,
		Token:     newRefreshTokenString,
		ExpiresAt: time.Now().Add(time.Duration(h.Cfg.JWTRefreshExpirationHours) * time.Hour),
		IsRevoked: false,
	}
	if err := h.DB.Create(&newRefreshToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to store new refresh token: "+err.Error())
		return
	}

	h.setRefreshCookie(c, newRefreshTokenString, h.Cfg.JWTRefreshExpirationHours*60*60)

	utils.Success(c, "Access token refreshed successfully", RefreshTokenResponse{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenString,
	})
}

// LogoutRequest represents the request body for user logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Logout handles user logout by revoking the refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.RefreshToken == "" {
		utils.BadRequest(c, "Refresh token is required")
		return
	}

	var storedToken models.RefreshToken
	if err := h.DB.Where("token = ? AND is_revoked = ?", req.RefreshToken, false).First(&storedToken).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Token not found or already revoked, which is acceptable for logout.
			utils.Success(c, "Logout successful (token not found or already invalid).", nil)
		} else {
			utils.InternalServerError(c, "Database error during logout: "+err.Error())
		}
		return
	}

	storedToken.IsRevoked = true
	storedToken.ExpiresAt = time.Now()
	if err := h.DB.Save(&storedToken).Error; err != nil {
		utils.InternalServerError(c, "Failed to revoke refresh token: "+err.Error())
		return
	}

	h.setRefreshCookie(c, "", -1)

	utils.Success(c, "Logout successful. Refresh token has been invalidated.", nil)
}

// GetProfile handles fetching the currently authenticated user's profile.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Profile fetched successfully", user.Sanitize())
}

// UpdateProfileRequest represents the request body for updating user profile.
type UpdateProfileRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
}

// UpdateProfile handles updating the currently authenticated user's profile.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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
		utils.InternalServerError(c, "Failed to update profile: "+err.Error())
		return
	}

	utils.Success(c, "Profile updated successfully", user.Sanitize())
}
