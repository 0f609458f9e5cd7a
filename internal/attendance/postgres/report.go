package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/employee"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"github.com/jmoiron/sqlx"
)

// ReportRepository runs the aggregate queries behind the admin dashboard.
// Queries are written with ? placeholders and rebound for the driver.
type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) attendance.ReportRepositoryAPI {
	return &ReportRepository{db: db}
}

const dailyCountsQuery = `
SELECT
  (SELECT COUNT(*) FROM employees WHERE numeric_id <> ?) AS total,
  (SELECT COUNT(*) FROM attendance_records a JOIN employees e ON e.id = a.user_id
     WHERE a.date = ? AND e.numeric_id <> ?) AS present,
  (SELECT COUNT(*) FROM attendance_records a JOIN employees e ON e.id = a.user_id
     WHERE a.date = ? AND e.numeric_id <> ? AND a.status = ?) AS late,
  (SELECT COUNT(*) FROM employees WHERE numeric_id <> ? AND status = ?) AS on_leave
`

func (r *ReportRepository) DailyCounts(ctx context.Context, date string, adminNumericID int) (attendance.DailyCounts, error) {
	var counts attendance.DailyCounts
	err := r.db.GetContext(ctx, &counts, r.db.Rebind(dailyCountsQuery),
		adminNumericID,
		date, adminNumericID,
		date, adminNumericID, attendance.StatusLate,
		adminNumericID, employee.StatusOnLeave,
	)
	if err != nil {
		return attendance.DailyCounts{}, fmt.Errorf("daily counts query: %w", err)
	}
	return counts, nil
}

const departmentCountsQuery = `
SELECT
  e.department AS department,
  COUNT(*) AS total,
  COUNT(a.id) AS present,
  COALESCE(SUM(CASE WHEN a.status = ? THEN 1 ELSE 0 END), 0) AS late,
  COALESCE(SUM(CASE WHEN e.status = ? THEN 1 ELSE 0 END), 0) AS on_leave
FROM employees e
LEFT JOIN attendance_records a ON a.user_id = e.id AND a.date = ?
WHERE e.numeric_id <> ?
GROUP BY e.department
ORDER BY e.department
`

func (r *ReportRepository) DepartmentCounts(ctx context.Context, date string, adminNumericID int) ([]attendance.DepartmentCounts, error) {
	var rows []attendance.DepartmentCounts
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(departmentCountsQuery),
		attendance.StatusLate, employee.StatusOnLeave, date, adminNumericID)
	if err != nil {
		return nil, fmt.Errorf("department counts query: %w", err)
	}
	return rows, nil
}

func (r *ReportRepository) MonthlyLateCount(ctx context.Context, userID int64, month string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM attendance_records WHERE user_id = ? AND date LIKE ? AND status = ?`
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), userID, month+"-%", attendance.StatusLate); err != nil {
		return 0, fmt.Errorf("monthly late query: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) MonthlyPresentCount(ctx context.Context, userID int64, month string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM attendance_records WHERE user_id = ? AND date LIKE ?`
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(query), userID, month+"-%"); err != nil {
		return 0, fmt.Errorf("monthly present query: %w", err)
	}
	return n, nil
}

func (r *ReportRepository) MonthlyOvertimeHours(ctx context.Context, userID int64, month string, standardHours float64) (float64, error) {
	var hours float64
	query := `
SELECT COALESCE(SUM(CASE WHEN worked_hours > ? THEN worked_hours - ? ELSE 0 END), 0)
FROM attendance_records
WHERE user_id = ? AND date LIKE ?`
	if err := r.db.GetContext(ctx, &hours, r.db.Rebind(query), standardHours, standardHours, userID, month+"-%"); err != nil {
		return 0, fmt.Errorf("monthly overtime query: %w", err)
	}
	return hours, nil
}

func (r *ReportRepository) ApprovedLeaveTypeCounts(ctx context.Context) ([]attendance.LeaveTypeCount, error) {
	var rows []attendance.LeaveTypeCount
	query := `
SELECT leave_type, COUNT(*) AS count
FROM leave_requests
WHERE status = ?
GROUP BY leave_type
ORDER BY count DESC, leave_type ASC`
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), leave.StatusApproved); err != nil {
		return nil, fmt.Errorf("absence reasons query: %w", err)
	}
	return rows, nil
}
