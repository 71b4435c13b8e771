package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/utils"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubBooker struct {
	params scheduling.BookingParams
	called bool
	err    error
}

func (b *stubBooker) Book(p scheduling.BookingParams) (*models.Appointment, error) {
	b.called = true
	b.params = p
	if b.err != nil {
		return nil, b.err
	}
	return &models.Appointment{
		DoctorID:   p.DoctorID,
		PatientID:  p.PatientID,
		Date:       p.Date,
		Time:       p.Time,
		Status:     models.StatusScheduled,
		IsFollowUp: p.IsFollowUp,
	}, nil
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return db, mock
}

func appointmentColumns() []string {
	return []string{"id", "created_at", "updated_at", "clinic_id", "doctor_id", "patient_id",
		"date", "time", "duration_minutes", "status", "reason", "notes", "is_follow_up"}
}

func appointmentRow(id string, status models.AppointmentStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(appointmentColumns()).
		AddRow(id, now, now, "clinic-1", "doc-1", "pat-1",
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "09:00", 30, string(status), "Checkup", "", false)
}

func performCreateVisit(t *testing.T, db *gorm.DB, booker FollowUpBooker, body CreateVisitRequest) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/visits", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("userID", "doc-1")
	c.Set("userRole", models.RoleDoctor)
	c.Set("clinicID", "clinic-1")

	NewVisitHandler(db, booker).CreateVisit(c)
	return w
}

func expectVisitSave(mock sqlmock.Sqlmock, appointmentID string, status models.AppointmentStatus) {
	mock.ExpectQuery("SELECT \\* FROM `appointments`").
		WillReturnRows(appointmentRow(appointmentID, status))
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `visit_records`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `appointments`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestCreateVisitBooksFollowUp(t *testing.T) {
	db, mock := newMockDB(t)
	booker := &stubBooker{}
	expectVisitSave(mock, "appt-1", models.StatusInProgress)

	w := performCreateVisit(t, db, booker, CreateVisitRequest{
		AppointmentID: "5f0c2f0a-1111-4222-8333-444455556666",
		Diagnosis:     "Seasonal flu",
		FollowUpDate:  "2026-03-16",
		FollowUpTime:  "10:00",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp utils.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Warnings)

	require.True(t, booker.called)
	assert.True(t, booker.params.IsFollowUp)
	assert.Equal(t, "doc-1", booker.params.DoctorID)
	assert.Equal(t, "pat-1", booker.params.PatientID)
	assert.Equal(t, "10:00", booker.params.Time)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A taken follow-up slot must not fail the visit save: the visit is stored,
// the appointment completed, and the response carries a warning instead.
func TestCreateVisitFollowUpSlotTakenStillSaves(t *testing.T) {
	db, mock := newMockDB(t)
	booker := &stubBooker{err: scheduling.ErrSlotTaken}
	expectVisitSave(mock, "appt-1", models.StatusInProgress)

	w := performCreateVisit(t, db, booker, CreateVisitRequest{
		AppointmentID: "5f0c2f0a-1111-4222-8333-444455556666",
		Diagnosis:     "Seasonal flu",
		FollowUpDate:  "2026-03-16",
		FollowUpTime:  "10:00",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp utils.ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "no longer available")

	assert.True(t, booker.called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateVisitWithoutFollowUpSkipsBooking(t *testing.T) {
	db, mock := newMockDB(t)
	booker := &stubBooker{}
	expectVisitSave(mock, "appt-1", models.StatusInProgress)

	w := performCreateVisit(t, db, booker, CreateVisitRequest{
		AppointmentID: "5f0c2f0a-1111-4222-8333-444455556666",
		Diagnosis:     "Seasonal flu",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, booker.called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateVisitRejectsCompletedAppointment(t *testing.T) {
	db, mock := newMockDB(t)
	booker := &stubBooker{}

	mock.ExpectQuery("SELECT \\* FROM `appointments`").
		WillReturnRows(appointmentRow("appt-1", models.StatusCompleted))

	w := performCreateVisit(t, db, booker, CreateVisitRequest{
		AppointmentID: "5f0c2f0a-1111-4222-8333-444455556666",
		Diagnosis:     "Seasonal flu",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, booker.called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateVisitOtherDoctorForbidden(t *testing.T) {
	db, mock := newMockDB(t)
	booker := &stubBooker{}

	row := sqlmock.NewRows(appointmentColumns()).
		AddRow("appt-1", time.Now(), time.Now(), "clinic-1", "doc-2", "pat-1",
			time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), "09:00", 30, "in_progress", "Checkup", "", false)
	mock.ExpectQuery("SELECT \\* FROM `appointments`").WillReturnRows(row)

	w := performCreateVisit(t, db, booker, CreateVisitRequest{
		AppointmentID: "5f0c2f0a-1111-4222-8333-444455556666",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, booker.called)
	assert.NoError(t, mock.ExpectationsWereMet())
}
