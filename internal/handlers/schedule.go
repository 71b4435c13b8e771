package handlers

import (
	"time"

	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleHandler handles working-hours and leave requests.
type ScheduleHandler struct {
	DB *gorm.DB
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(db *gorm.DB) *ScheduleHandler {
	return &ScheduleHandler{DB: db}
}

// canManageDoctor reports whether the caller may edit the given doctor's
// schedule: the doctor themselves, an admin, or clinic staff for a doctor
// of their own clinic.
func (h *ScheduleHandler) canManageDoctor(c *gin.Context, doctorID string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	switch role {
	case models.RoleAdmin:
		return true
	case models.RoleDoctor:
		return userID == doctorID
	default:
		clinicID, _ := middleware.GetClinicIDFromContext(c)
		var profile models.DoctorProfile
		if err := h.DB.Where("user_id = ?", doctorID).First(&profile).Error; err != nil {
			return false
		}
		return profile.ClinicID == clinicID
	}
}

// WorkingHoursEntry represents one weekday's working window.
type WorkingHoursEntry struct {
	DayOfWeek int    `json:"dayOfWeek" binding:"min=0,max=6"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	IsWorkDay bool   `json:"isWorkDay"`
}

// UpsertWorkingHoursRequest represents the request body for setting a
// doctor's weekly working hours.
type UpsertWorkingHoursRequest struct {
	DoctorID string              `json:"doctorId" binding:"required,uuid"`
	Entries  []WorkingHoursEntry `json:"entries" binding:"required,min=1,max=7,dive"`
}

// UpsertWorkingHours handles replacing a doctor's working hours for the
// listed weekdays. Days not listed keep their previous configuration.
func (h *ScheduleHandler) UpsertWorkingHours(c *gin.Context) {
	var req UpsertWorkingHoursRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !h.canManageDoctor(c, req.DoctorID) {
		utils.Forbidden(c, "You cannot manage this doctor's schedule.")
		return
	}

	seen := make(map[int]bool, len(req.Entries))
	for _, e := range req.Entries {
		if seen[e.DayOfWeek] {
			utils.BadRequest(c, "Duplicate entry for the same day of week.")
			return
		}
		seen[e.DayOfWeek] = true

		if !e.IsWorkDay {
			continue
		}
		start, err := scheduling.ParseTimeOfDay(e.StartTime)
		if err != nil {
			utils.BadRequest(c, "Invalid startTime. Use 24-hour HH:MM.")
			return
		}
		end, err := scheduling.ParseTimeOfDay(e.EndTime)
		if err != nil {
			utils.BadRequest(c, "Invalid endTime. Use 24-hour HH:MM.")
			return
		}
		if start >= end {
			utils.BadRequest(c, "startTime must be before endTime.")
			return
		}
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		for _, e := range req.Entries {
			row := models.DoctorSchedule{
				DoctorID:  req.DoctorID,
				DayOfWeek: e.DayOfWeek,
				StartTime: e.StartTime,
				EndTime:   e.EndTime,
				IsWorkDay: e.IsWorkDay,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "doctor_id"}, {Name: "day_of_week"}},
				DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "is_work_day"}),
			}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		utils.InternalServerError(c, "Failed to save working hours: "+err.Error())
		return
	}

	utils.Success(c, "Working hours saved successfully", nil)
}

// GetWorkingHours handles fetching a doctor's weekly working hours.
func (h *ScheduleHandler) GetWorkingHours(c *gin.Context) {
	doctorID := c.Param("doctorId")

	var schedules []models.DoctorSchedule
	if err := h.DB.Where("doctor_id = ?", doctorID).
		Order("day_of_week asc").Find(&schedules).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch working hours: "+err.Error())
		return
	}

	utils.Success(c, "Working hours fetched successfully", schedules)
}

// CreateLeaveRequest represents the request body for reporting a leave.
type CreateLeaveRequest struct {
	DoctorID  string           `json:"doctorId" binding:"required,uuid"`
	Date      string           `json:"date" binding:"required"`
	LeaveType models.LeaveType `json:"leaveType" binding:"required,oneof=full_day partial"`
	StartTime string           `json:"startTime"`
	EndTime   string           `json:"endTime"`
	Reason    string           `json:"reason" binding:"max=255"`
}

// CreateLeave handles reporting a doctor's leave for a date.
func (h *ScheduleHandler) CreateLeave(c *gin.Context) {
	var req CreateLeaveRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if !h.canManageDoctor(c, req.DoctorID) {
		utils.Forbidden(c, "You cannot manage this doctor's schedule.")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date format. Use YYYY-MM-DD.")
		return
	}

	if req.LeaveType == models.LeavePartial {
		start, err := scheduling.ParseTimeOfDay(req.StartTime)
		if err != nil {
			utils.BadRequest(c, "Partial leave requires a valid startTime (HH:MM).")
			return
		}
		end, err := scheduling.ParseTimeOfDay(req.EndTime)
		if err != nil {
			utils.BadRequest(c, "Partial leave requires a valid endTime (HH:MM).")
			return
		}
		if start >= end {
			utils.BadRequest(c, "startTime must be before endTime.")
			return
		}
	}

	var existing int64
	h.DB.Model(&models.DoctorLeave{}).
		Where("doctor_id = ? AND date = ?", req.DoctorID, date).
		Count(&existing)
	if existing > 0 {
		utils.Conflict(c, "A leave is already reported for this date.")
		return
	}

	leave := models.DoctorLeave{
		DoctorID:  req.DoctorID,
		Date:      date,
		LeaveType: req.LeaveType,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    req.Reason,
	}
	if err := h.DB.Create(&leave).Error; err != nil {
		utils.InternalServerError(c, "Failed to save leave: "+err.Error())
		return
	}

	utils.Created(c, "Leave reported successfully", leave)
}

// GetLeaves handles listing leaves, optionally filtered by doctor and
// date range (?doctorId=&from=&to=).
func (h *ScheduleHandler) GetLeaves(c *gin.Context) {
	query := h.DB.Model(&models.DoctorLeave{})

	if doctorID := c.Query("doctorId"); doctorID != "" {
		query = query.Where("doctor_id = ?", doctorID)
	}
	if from := c.Query("from"); from != "" {
		d, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.BadRequest(c, "Invalid 'from' date format. Use YYYY-MM-DD.")
			return
		}
		query = query.Where("date >= ?", d)
	}
	if to := c.Query("to"); to != "" {
		d, err := time.Parse("2006-01-02", to)
		if err != nil {
			utils.BadRequest(c, "Invalid 'to' date format. Use YYYY-MM-DD.")
			return
		}
		query = query.Where("date <= ?", d)
	}

	var leaves []models.DoctorLeave
	if err := query.Order("date asc").Find(&leaves).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch leaves: "+err.Error())
		return
	}

	utils.Success(c, "Leaves fetched successfully", leaves)
}

// DeleteLeave handles withdrawing a reported leave.
func (h *ScheduleHandler) DeleteLeave(c *gin.Context) {
	leaveID := c.Param("id")

	var leave models.DoctorLeave
	if err := h.DB.First(&leave, "id = ?", leaveID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Leave not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canManageDoctor(c, leave.DoctorID) {
		utils.Forbidden(c, "You cannot manage this doctor's schedule.")
		return
	}

	if err := h.DB.Delete(&leave).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete leave: "+err.Error())
		return
	}

	utils.Success(c, "Leave deleted successfully", nil)
}
