package attendance

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"time"

	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/pkg/clock"
)

type RepositoryAPI interface {
	// GetByUserAndDate returns nil when the user has no record that day.
	GetByUserAndDate(ctx context.Context, userID int64, date string) (*attendanceDatamodel.Record, error)
	// Create returns ErrAttendanceAlreadyTaken when (user_id, date) already exists.
	Create(ctx context.Context, r *attendanceDatamodel.Record) error
	ListByDate(ctx context.Context, date string) ([]*attendanceDatamodel.Record, error)
	ListByUser(ctx context.Context, userID int64, from, to string) ([]*attendanceDatamodel.Record, error)
	CheckOut(ctx context.Context, userID int64, date string, at time.Time, workedHours float64) error
}

// ReportRepositoryAPI is the aggregate read side.
type ReportRepositoryAPI interface {
	DailyCounts(ctx context.Context, date string, adminNumericID int) (DailyCounts, error)
	DepartmentCounts(ctx context.Context, date string, adminNumericID int) ([]DepartmentCounts, error)
	MonthlyLateCount(ctx context.Context, userID int64, month string) (int, error)
	MonthlyPresentCount(ctx context.Context, userID int64, month string) (int, error)
	MonthlyOvertimeHours(ctx context.Context, userID int64, month string, standardHours float64) (float64, error)
	ApprovedLeaveTypeCounts(ctx context.Context) ([]LeaveTypeCount, error)
}

type DailyCounts struct {
	Total   int `db:"total"`
	Present int `db:"present"`
	Late    int `db:"late"`
	OnLeave int `db:"on_leave"`
}

type DepartmentCounts struct {
	Department string `db:"department"`
	Total      int    `db:"total"`
	Present    int    `db:"present"`
	Late       int    `db:"late"`
	OnLeave    int    `db:"on_leave"`
}

type LeaveTypeCount struct {
	LeaveType string `db:"leave_type"`
	Count     int    `db:"count"`
}

type Service struct {
	repo           RepositoryAPI
	reports        ReportRepositoryAPI
	schedule       Schedule
	clock          clock.Clock
	publisher      events.Publisher
	adminNumericID int
	standardHours  float64
	logger         *slog.Logger
}

func NewService(repo RepositoryAPI, reports ReportRepositoryAPI, schedule Schedule, c clock.Clock, publisher events.Publisher, adminNumericID int, standardHours float64, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		reports:        reports,
		schedule:       schedule,
		clock:          c,
		publisher:      publisher,
		adminNumericID: adminNumericID,
		standardHours:  standardHours,
		logger:         logger,
	}
}

func (s *Service) Schedule() Schedule {
	return s.schedule
}

// Today reports whether the user has already checked in today.
func (s *Service) Today(ctx context.Context, userID int64) (*TodayStatus, error) {
	date := s.schedule.Date(s.clock.Now())
	row, err := s.repo.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		s.logger.Error("failed to check today's attendance", "error", err, "user_id", userID)
		return nil, err
	}

	status := &TodayStatus{Date: date}
	if row != nil {
		status.CheckedIn = true
		status.Record = FromDataModel(row)
		status.Message = alreadyTakenMessage
		status.Redirect = "/dashboard"
	}
	return status, nil
}

// EnsureNotTaken fails with ErrAttendanceAlreadyTaken once the user has a
// record for today.
func (s *Service) EnsureNotTaken(ctx context.Context, userID int64) error {
	today, err := s.Today(ctx, userID)
	if err != nil {
		return err
	}
	if today.CheckedIn {
		return ErrAttendanceAlreadyTaken
	}
	return nil
}

// Record writes the day's attendance for a verified check-in.
func (s *Service) Record(ctx context.Context, in CheckIn) (*Record, error) {
	date := s.schedule.Date(in.At)

	existing, err := s.repo.GetByUserAndDate(ctx, in.UserID, date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAttendanceAlreadyTaken
	}

	row := &attendanceDatamodel.Record{
		UserID:       in.UserID,
		EmployeeName: in.EmployeeName,
		Department:   in.Department,
		Date:         date,
		CheckInAt:    in.At.In(s.schedule.Location()),
		Status:       s.schedule.StatusFor(in.At),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if !errors.Is(err, ErrAttendanceAlreadyTaken) {
			s.logger.Error("failed to record attendance", "error", err, "user_id", in.UserID, "date", date)
		}
		return nil, err
	}

	record := FromDataModel(row)
	s.logger.Info("attendance recorded", "user_id", in.UserID, "date", date, "status", record.Status)

	if s.publisher != nil {
		event := events.NewAttendanceRecordedEvent(record.ID, record.UserID, record.Date, record.Status, record.CheckInAt)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish attendance event", "error", err, "user_id", in.UserID)
		}
	}
	return record, nil
}

// CompleteDay stores check-out and worked hours once the work timer finishes.
func (s *Service) CompleteDay(ctx context.Context, userID int64, date string, checkOutAt time.Time, workedHours float64) error {
	if err := s.repo.CheckOut(ctx, userID, date, checkOutAt, workedHours); err != nil {
		if !errors.Is(err, ErrAttendanceNotFound) {
			s.logger.Error("failed to store check-out", "error", err, "user_id", userID, "date", date)
		}
		return err
	}
	return nil
}

// ListByDate lists the records for date, defaulting to today.
func (s *Service) ListByDate(ctx context.Context, date string) ([]*Record, error) {
	if date == "" {
		date = s.schedule.Date(s.clock.Now())
	} else if _, err := time.Parse(clock.DateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	rows, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func (s *Service) ListForUser(ctx context.Context, userID int64, from, to string) ([]*Record, error) {
	rows, err := s.repo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return fromRows(rows), nil
}

func fromRows(rows []*attendanceDatamodel.Record) []*Record {
	records := make([]*Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, FromDataModel(row))
	}
	return records
}

// TodayStats counts today's attendance across every employee except the admin.
// Present already includes late arrivals.
func (s *Service) TodayStats(ctx context.Context) (*TodayStats, error) {
	date := s.schedule.Date(s.clock.Now())
	counts, err := s.reports.DailyCounts(ctx, date, s.adminNumericID)
	if err != nil {
		s.logger.Error("failed to load daily attendance counts", "error", err, "date", date)
		return nil, err
	}

	return &TodayStats{
		Date:         date,
		TotalMembers: counts.Total,
		Present:      counts.Present,
		Late:         counts.Late,
		OnLeave:      counts.OnLeave,
		Absent:       absent(counts.Total, counts.Present, counts.OnLeave),
	}, nil
}

func (s *Service) DepartmentStats(ctx context.Context) ([]DepartmentStats, error) {
	date := s.schedule.Date(s.clock.Now())
	rows, err := s.reports.DepartmentCounts(ctx, date, s.adminNumericID)
	if err != nil {
		s.logger.Error("failed to load department attendance counts", "error", err, "date", date)
		return nil, err
	}

	stats := make([]DepartmentStats, 0, len(rows))
	for _, row := range rows {
		st := DepartmentStats{
			Department: row.Department,
			Total:      row.Total,
			Present:    row.Present,
			Late:       row.Late,
			OnLeave:    row.OnLeave,
			Absent:     absent(row.Total, row.Present, row.OnLeave),
		}
		if row.Total > 0 {
			st.AttendanceRate = round(float64(row.Present)/float64(row.Total)*100, 1)
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// MonthlySummary covers one calendar month given as YYYY-MM; empty means the current month.
func (s *Service) MonthlySummary(ctx context.Context, userID int64, month string) (*MonthlySummary, error) {
	if month == "" {
		month = s.clock.Now().In(s.schedule.Location()).Format("2006-01")
	} else if _, err := time.Parse("2006-01", month); err != nil {
		return nil, ErrInvalidMonth
	}

	present, err := s.reports.MonthlyPresentCount(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	late, err := s.reports.MonthlyLateCount(ctx, userID, month)
	if err != nil {
		return nil, err
	}
	overtime, err := s.reports.MonthlyOvertimeHours(ctx, userID, month, s.standardHours)
	if err != nil {
		return nil, err
	}

	return &MonthlySummary{
		Month:         month,
		DaysPresent:   present,
		LateArrivals:  late,
		OvertimeHours: round(overtime, 2),
	}, nil
}

// AbsenceReasons breaks approved leave down by type.
func (s *Service) AbsenceReasons(ctx context.Context) ([]AbsenceReason, error) {
	counts, err := s.reports.ApprovedLeaveTypeCounts(ctx)
	if err != nil {
		s.logger.Error("failed to load absence reasons", "error", err)
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}

	reasons := make([]AbsenceReason, 0, len(counts))
	for _, c := range counts {
		reason := AbsenceReason{LeaveType: c.LeaveType, Count: c.Count}
		if total > 0 {
			reason.Percentage = round(float64(c.Count)/float64(total)*100, 1)
		}
		reasons = append(reasons, reason)
	}
	return reasons, nil
}

func absent(total, present, onLeave int) int {
	n := total - present - onLeave
	if n < 0 {
		return 0
	}
	return n
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
