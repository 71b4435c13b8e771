package scheduling

import (
	"testing"
	"time"

	"clinic-management-server/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return NewService(db, zerolog.Nop()), mock
}

func leaveColumns() []string {
	return []string{"id", "created_at", "updated_at", "doctor_id", "date", "leave_type", "start_time", "end_time", "reason"}
}

func TestSlotsForDoctorFullDayLeave(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `doctor_leaves`").
		WithArgs("doc-1", date, 1).
		WillReturnRows(sqlmock.NewRows(leaveColumns()).
			AddRow("leave-1", time.Now(), time.Now(), "doc-1", date, "full_day", "", "", "Conference"))

	result, err := svc.SlotsForDoctor("doc-1", date)
	require.NoError(t, err)

	assert.True(t, result.OnLeave)
	assert.Empty(t, result.Slots)
	assert.Equal(t, models.LeaveFullDay, result.LeaveType)
	assert.Equal(t, "Conference", result.LeaveReason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotsForDoctorPartialLeaveKeepsSlots(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `doctor_leaves`").
		WillReturnRows(sqlmock.NewRows(leaveColumns()).
			AddRow("leave-1", time.Now(), time.Now(), "doc-1", date, "partial", "14:00", "16:00", "Errand"))
	mock.ExpectQuery("SELECT \\* FROM `doctor_schedules`").
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery("SELECT `time` FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"time"}))

	result, err := svc.SlotsForDoctor("doc-1", date)
	require.NoError(t, err)

	// A partial leave is reported but never narrows the slot window.
	assert.False(t, result.OnLeave)
	assert.Len(t, result.Slots, 48)
	assert.Equal(t, models.LeavePartial, result.LeaveType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotsForDoctorExcludesBooked(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

	mock.ExpectQuery("SELECT \\* FROM `doctor_leaves`").
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery("SELECT \\* FROM `doctor_schedules`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_id", "day_of_week", "start_time", "end_time", "is_work_day"}).
			AddRow("sched-1", "doc-1", 1, "09:00", "12:00", true))
	// Only non-cancelled appointments occupy slots; a cancelled row at the same
	// time never reaches this result set.
	mock.ExpectQuery("SELECT `time` FROM `appointments`").
		WithArgs("doc-1", date, "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"time"}).AddRow("09:30").AddRow("10:00"))

	result, err := svc.SlotsForDoctor("doc-1", date)
	require.NoError(t, err)

	require.Len(t, result.Slots, 4)
	values := []string{}
	for _, s := range result.Slots {
		values = append(values, s.Value)
	}
	assert.Equal(t, []string{"09:00", "10:30", "11:00", "11:30"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSlotsForDoctorNonWorkDay(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) // Sunday

	mock.ExpectQuery("SELECT \\* FROM `doctor_leaves`").
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery("SELECT \\* FROM `doctor_schedules`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "doctor_id", "day_of_week", "start_time", "end_time", "is_work_day"}).
			AddRow("sched-1", "doc-1", 0, "09:00", "17:00", false))
	mock.ExpectQuery("SELECT `time` FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"time"}))

	result, err := svc.SlotsForDoctor("doc-1", date)
	require.NoError(t, err)

	assert.Empty(t, result.Slots)
	assert.False(t, result.OnLeave)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsSlotAvailable(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WithArgs("doc-1", date, "09:00", "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))

	available, err := svc.IsSlotAvailable("doc-1", date, "09:00")
	require.NoError(t, err)
	assert.True(t, available)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WithArgs("doc-1", date, "09:00", "cancelled").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))

	available, err = svc.IsSlotAvailable("doc-1", date, "09:00")
	require.NoError(t, err)
	assert.False(t, available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The checker and the generator must agree: a slot the generator excludes is
// the same slot the checker reports as unavailable.
func TestCheckerMatchesGenerator(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `doctor_leaves`").
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery("SELECT \\* FROM `doctor_schedules`").
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectQuery("SELECT `time` FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"time"}).AddRow("10:00"))

	result, err := svc.SlotsForDoctor("doc-1", date)
	require.NoError(t, err)
	for _, s := range result.Slots {
		assert.NotEqual(t, "10:00", s.Value)
	}

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments`").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	available, err := svc.IsSlotAvailable("doc-1", date, "10:00")
	require.NoError(t, err)
	assert.False(t, available)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSlotTaken(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments` .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectRollback()

	_, err := svc.Book(BookingParams{
		ClinicID:  "clinic-1",
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Date:      date,
		Time:      "09:00",
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookSuccess(t *testing.T) {
	svc, mock := newMockService(t)
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `appointments` .* FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(0))
	mock.ExpectExec("INSERT INTO `appointments`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	appointment, err := svc.Book(BookingParams{
		ClinicID:  "clinic-1",
		DoctorID:  "doc-1",
		PatientID: "pat-1",
		Date:      date,
		Time:      "09:00",
		Reason:    "Checkup",
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusScheduled, appointment.Status)
	assert.Equal(t, SlotIntervalMinutes, appointment.DurationMinutes)
	assert.Equal(t, date, appointment.Date)
	assert.NotEmpty(t, appointment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRejectsInvalidTime(t *testing.T) {
	svc, _ := newMockService(t)

	_, err := svc.Book(BookingParams{
		DoctorID: "doc-1",
		Date:     time.Now(),
		Time:     "25:00",
	})
	assert.Error(t, err)
}
