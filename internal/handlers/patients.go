package handlers

import (
	"time"

	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/storage"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PatientHandler handles patient-record and document requests.
type PatientHandler struct {
	DB    *gorm.DB
	Store *storage.DocumentStore
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB, store *storage.DocumentStore) *PatientHandler {
	return &PatientHandler{DB: db, Store: store}
}

// clinicScope resolves the clinic the caller may operate on. Admins may pass
// ?clinicId=; everyone else is bound to their own clinic.
func clinicScope(c *gin.Context) (string, bool) {
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RoleAdmin {
		return c.Query("clinicId"), true
	}
	clinicID, exists := middleware.GetClinicIDFromContext(c)
	if !exists || clinicID == "" {
		return "", false
	}
	return clinicID, true
}

// CreatePatientRequest represents the request body for registering a patient.
type CreatePatientRequest struct {
	FirstName      string `json:"firstName" binding:"required"`
	LastName       string `json:"lastName"`
	Gender         string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth    string `json:"dateOfBirth"` // YYYY-MM-DD
	PhoneNumber    string `json:"phoneNumber"`
	CNIC           string `json:"cnic"`
	Address        string `json:"address"`
	BloodGroup     string `json:"bloodGroup"`
	Allergies      string `json:"allergies"`
	MedicalHistory string `json:"medicalHistory"`
}

// CreatePatient handles registering a new patient for the caller's clinic.
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req CreatePatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	clinicID, ok := clinicScope(c)
	if !ok || clinicID == "" {
		utils.Forbidden(c, "No clinic associated with this account")
		return
	}

	patient := models.Patient{
		ClinicID:       clinicID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		PhoneNumber:    req.PhoneNumber,
		CNIC:           req.CNIC,
		Address:        req.Address,
		BloodGroup:     req.BloodGroup,
		Allergies:      req.Allergies,
		MedicalHistory: req.MedicalHistory,
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid dateOfBirth format. Use YYYY-MM-DD.")
			return
		}
		patient.DateOfBirth = &dob
	}

	if err := h.DB.Create(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to create patient: "+err.Error())
		return
	}

	utils.Created(c, "Patient created successfully", patient)
}

// GetPatients handles listing the clinic's patients with optional text search
// over name, phone and CNIC.
func (h *PatientHandler) GetPatients(c *gin.Context) {
	clinicID, ok := clinicScope(c)
	if !ok {
		utils.Forbidden(c, "No clinic associated with this account")
		return
	}

	query := h.DB.Order("created_at desc")
	if clinicID != "" {
		query = query.Where("clinic_id = ?", clinicID)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR phone_number LIKE ? OR cnic LIKE ?",
			like, like, like, like)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// getScopedPatient loads a patient and verifies the caller's clinic may see it.
func (h *PatientHandler) getScopedPatient(c *gin.Context, patientID string, preloadDocs bool) (*models.Patient, bool) {
	query := h.DB
	if preloadDocs {
		query = query.Preload("Documents")
	}

	var patient models.Patient
	if err := query.First(&patient, "id = ?", patientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	clinicID, ok := clinicScope(c)
	if !ok {
		utils.Forbidden(c, "No clinic associated with this account")
		return nil, false
	}
	if clinicID != "" && clinicID != patient.ClinicID {
		utils.Forbidden(c, "This patient belongs to a different clinic.")
		return nil, false
	}

	return &patient, true
}

// GetPatientByID handles fetching a single patient with their documents.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	patient, ok := h.getScopedPatient(c, c.Param("id"), true)
	if !ok {
		return
	}
	utils.Success(c, "Patient fetched successfully", patient)
}

// UpdatePatientRequest represents the request body for updating a patient.
type UpdatePatientRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Gender         string `json:"gender" binding:"omitempty,oneof=male female other"`
	DateOfBirth    string `json:"dateOfBirth"`
	PhoneNumber    string `json:"phoneNumber"`
	CNIC           string `json:"cnic"`
	Address        string `json:"address"`
	BloodGroup     string `json:"bloodGroup"`
	Allergies      string `json:"allergies"`
	MedicalHistory string `json:"medicalHistory"`
}

// UpdatePatient handles updating a patient record.
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	patient, ok := h.getScopedPatient(c, c.Param("id"), false)
	if !ok {
		return
	}

	if req.FirstName != "" {
		patient.FirstName = req.FirstName
	}
	if req.LastName != "" {
		patient.LastName = req.LastName
	}
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			utils.BadRequest(c, "Invalid dateOfBirth format. Use YYYY-MM-DD.")
			return
		}
		patient.DateOfBirth = &dob
	}
	if req.PhoneNumber != "" {
		patient.PhoneNumber = req.PhoneNumber
	}
	if req.CNIC != "" {
		patient.CNIC = req.CNIC
	}
	if req.Address != "" {
		patient.Address = req.Address
	}
	if req.BloodGroup != "" {
		patient.BloodGroup = req.BloodGroup
	}
	if req.Allergies != "" {
		patient.Allergies = req.Allergies
	}
	if req.MedicalHistory != "" {
		patient.MedicalHistory = req.MedicalHistory
	}

	if err := h.DB.Save(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

// DeletePatient handles deleting a patient record.
func (h *PatientHandler) DeletePatient(c *gin.Context) {
	patient, ok := h.getScopedPatient(c, c.Param("id"), false)
	if !ok {
		return
	}

	if err := h.DB.Delete(patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient deleted successfully", nil)
}

// UploadDocument handles attaching a medical document to a patient. The file
// goes to blob storage; only metadata is kept in the database.
func (h *PatientHandler) UploadDocument(c *gin.Context) {
	patient, ok := h.getScopedPatient(c, c.Param("id"), false)
	if !ok {
		return
	}

	if !h.Store.Enabled() {
		utils.Error(c, 503, "Document storage is not configured")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequest(c, "No file provided: "+err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalServerError(c, "Failed to read uploaded file: "+err.Error())
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.DocumentKey(patient.ClinicID, patient.ID, fileHeader.Filename)
	if err := h.Store.Upload(c.Request.Context(), key, contentType, file); err != nil {
		utils.InternalServerError(c, "Failed to store document: "+err.Error())
		return
	}

	uploadedBy, _ := middleware.GetUserIDFromContext(c)
	doc := models.PatientDocument{
		PatientID:  patient.ID,
		ClinicID:   patient.ClinicID,
		FileName:   fileHeader.Filename,
		FileType:   contentType,
		StorageKey: key,
		UploadedBy: uploadedBy,
	}
	if err := h.DB.Create(&doc).Error; err != nil {
		utils.InternalServerError(c, "Failed to save document metadata: "+err.Error())
		return
	}

	utils.Created(c, "Document uploaded successfully", doc)
}

// GetDocumentURL handles issuing a time-limited signed URL for viewing a document.
func (h *PatientHandler) GetDocumentURL(c *gin.Context) {
	documentID := c.Param("documentId")

	var doc models.PatientDocument
	if err := h.DB.First(&doc, "id = ?", documentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Document not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	// Same clinic-scoping rule as the patient itself.
	if _, ok := h.getScopedPatient(c, doc.PatientID, false); !ok {
		return
	}

	url, err := h.Store.SignedURL(c.Request.Context(), doc.StorageKey)
	if err != nil {
		utils.InternalServerError(c, "Failed to sign document URL: "+err.Error())
		return
	}

	utils.Success(c, "Document URL generated", gin.H{
		"url":      url,
		"fileName": doc.FileName,
		"fileType": doc.FileType,
	})
}
