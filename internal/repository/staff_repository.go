package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"modern-pos-backend/internal/models"
	"modern-pos-backend/internal/poserr"
)

// StaffRepository handles credential checks and the attendance state
// machine: each attendance row goes open (clock-in) -> closed
// (clock-out), and closing is terminal.
type StaffRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewStaffRepository(db *gorm.DB, log *zap.Logger) *StaffRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &StaffRepository{db: db, log: log}
}

// VerifyCredentials returns the staff record when username, password
// and active status all match, nil otherwise. Inactive staff cannot
// authenticate regardless of password.
func (r *StaffRepository) VerifyCredentials(ctx context.Context, username, password string) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).
		Where("username = ? AND status = ?", username, "active").
		First(&staff).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, poserr.Query(err, "staff lookup failed for %q", username)
	}
	if bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(password)) != nil {
		return nil, nil
	}
	return &staff, nil
}

// GetTodayAttendance returns the most recent attendance row for the
// staff member today, or nil when none exists yet.
func (r *StaffRepository) GetTodayAttendance(ctx context.Context, staffID uint) (*models.Attendance, error) {
	var rows []models.Attendance
	err := r.db.WithContext(ctx).Raw(
		`SELECT id, staff_id, time_in, time_out, date, paid, salary, job
		 FROM attendance
		 WHERE staff_id = ? AND date = CURDATE()
		 ORDER BY id DESC
		 LIMIT 1`, staffID,
	).Scan(&rows).Error
	if err != nil {
		return nil, poserr.Query(err, "attendance lookup failed for staff %d", staffID)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// ClockIn opens a new attendance row (time-in now, date today, unpaid)
// and returns its id. Callers are expected to have checked
// GetTodayAttendance for an open record first; this method does not
// re-check.
func (r *StaffRepository) ClockIn(ctx context.Context, staffID uint, role string, salary decimal.Decimal) (uint, error) {
	job, err := json.Marshal(map[string]string{"role": role})
	if err != nil {
		return 0, poserr.Query(err, "could not encode job metadata")
	}

	var attendanceID uint
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"INSERT INTO attendance (staff_id, time_in, date, paid, salary, job) VALUES (?, CURTIME(), CURDATE(), 0, ?, ?)",
			staffID, salary, string(job),
		).Error; err != nil {
			return err
		}
		return tx.Raw("SELECT LAST_INSERT_ID()").Scan(&attendanceID).Error
	})
	if err != nil {
		return 0, poserr.Query(err, "clock-in failed for staff %d", staffID)
	}

	r.log.Info("staff clocked in",
		zap.Uint("staff_id", staffID), zap.Uint("attendance_id", attendanceID))
	return attendanceID, nil
}

// ClockOut closes the attendance row by stamping time-out now. The
// returned bool reports whether exactly one row was updated.
func (r *StaffRepository) ClockOut(ctx context.Context, attendanceID uint) (bool, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec("UPDATE attendance SET time_out = CURTIME() WHERE id = ?", attendanceID)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	if err != nil {
		return false, poserr.Query(err, "clock-out failed for attendance %d", attendanceID)
	}
	if affected > 0 {
		r.log.Info("staff clocked out", zap.Uint("attendance_id", attendanceID))
	}
	return affected == 1, nil
}

// ListActiveStaff returns every active staff member ordered by name,
// for the terminal's staff selector.
func (r *StaffRepository) ListActiveStaff(ctx context.Context) ([]models.Staff, error) {
	var staff []models.Staff
	err := r.db.WithContext(ctx).
		Select("id", "username", "name", "role", "status").
		Where("status = ?", "active").
		Order("name ASC").
		Find(&staff).Error
	if err != nil {
		return nil, poserr.Query(err, "could not list active staff")
	}
	return staff, nil
}
