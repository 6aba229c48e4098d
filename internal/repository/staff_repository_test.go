package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var staffColumns = []string{"id", "username", "password", "role", "status", "name", "branch", "salary"}

func staffRow(t *testing.T, password string) *sqlmock.Rows {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return sqlmock.NewRows(staffColumns).
		AddRow(3, "amy", string(hash), "cashier", "active", "Amy Tan", "HQ", "2400")
}

func TestVerifyCredentials_Match(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewStaffRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT \\* FROM `staff` WHERE username = \\? AND status = \\?").
		WithArgs("amy", "active", 1).
		WillReturnRows(staffRow(t, "s3cret"))

	staff, err := repo.VerifyCredentials(context.Background(), "amy", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, staff)
	assert.Equal(t, "Amy Tan", staff.Name)
}

func TestVerifyCredentials_WrongPassword(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewStaffRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT \\* FROM `staff` WHERE username = \\? AND status = \\?").
		WithArgs("amy", "active", 1).
		WillReturnRows(staffRow(t, "s3cret"))

	staff, err := repo.VerifyCredentials(context.Background(), "amy", "wrong")
	assert.NoError(t, err)
	assert.Nil(t, staff)
}

func TestVerifyCredentials_UnknownOrInactive(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewStaffRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT \\* FROM `staff` WHERE username = \\? AND status = \\?").
		WithArgs("ghost", "active", 1).
		WillReturnRows(sqlmock.NewRows(staffColumns))

	staff, err := repo.VerifyCredentials(context.Background(), "ghost", "whatever")
	assert.NoError(t, err)
	assert.Nil(t, staff)
}

func TestGetTodayAttendance_OpenRecord(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewStaffRepository(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"id", "staff_id", "time_in", "time_out", "date", "paid", "salary", "job"}).
		AddRow(42, 3, "09:00:00", nil, "2026-09-01", false, "2400", `{"role":"Cashier"}`)
	mock.ExpectQuery("SELECT id, staff_id, time_in, time_out, date, paid, salary, job").
		WithArgs(uint(3)).
		WillReturnRows(rows)

	att, err := repo.GetTodayAttendance(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, att)
	assert.True(t, att.IsOpen())
	assert.Equal(t, uint(42), att.ID)
}

func TestGetTodayAttendance_NoneToday(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewStaffRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT id, staff_id, time_in, time_out, date, paid, salary, job").
		WithArgs(uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "staff_id", "time_in", "time_out", "date", "paid", "salary", "job"}))

	att, err := repo.GetTodayAttendance(context.Background(), 3)
	assert.NoError(t, err)
	assert.Nil(t, att)
}

func TestClockInThenClockOutClosesTheDay(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewStaffRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO attendance").
		WithArgs(uint(3), sqlmock.AnyArg(), `{"role":"Cashier"}`).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectQuery("SELECT LAST_INSERT_ID").
		WillReturnRows(sqlmock.NewRows([]string{"LAST_INSERT_ID()"}).AddRow(42))
	mock.ExpectCommit()

	id, err := repo.ClockIn(context.Background(), 3, "Cashier", decimal.NewFromInt(2400))
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE attendance SET time_out = CURTIME\\(\\)").
		WithArgs(uint(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	closed, err := repo.ClockOut(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, closed)

	// the record is now closed
	rows := sqlmock.NewRows([]string{"id", "staff_id", "time_in", "time_out", "date", "paid", "salary", "job"}).
		AddRow(42, 3, "09:00:00", "17:30:00", "2026-09-01", false, "2400", `{"role":"Cashier"}`)
	mock.ExpectQuery("SELECT id, staff_id, time_in, time_out, date, paid, salary, job").
		WithArgs(uint(3)).
		WillReturnRows(rows)

	att, err := repo.GetTodayAttendance(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, att)
	assert.False(t, att.IsOpen())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClockOut_NoMatchingRow(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewStaffRepository(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE attendance SET time_out = CURTIME\\(\\)").
		WithArgs(uint(77)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	closed, err := repo.ClockOut(context.Background(), 77)
	require.NoError(t, err)
	assert.False(t, closed)
}

func TestListActiveStaff_OrderedByName(t *testing.T) {
	db, mock, mockDB := newMockDB(t)
	defer mockDB.Close()
	repo := NewStaffRepository(db, zap.NewNop())

	rows := sqlmock.NewRows([]string{"id", "username", "name", "role", "status"}).
		AddRow(2, "amy", "Amy Tan", "cashier", "active").
		AddRow(1, "zack", "Zack Lee", "manager", "active")
	mock.ExpectQuery("SELECT `id`,`username`,`name`,`role`,`status` FROM `staff` WHERE status = \\? ORDER BY name ASC").
		WithArgs("active").
		WillReturnRows(rows)

	staff, err := repo.ListActiveStaff(context.Background())
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, "Amy Tan", staff[0].Name)
}
