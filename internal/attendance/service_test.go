package attendance_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance-management/internal/attendance/postgres"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
	employeeDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/employee"
	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/leave"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type capturePublisher struct {
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) PublishSync(ctx context.Context, e events.Event) error {
	return p.Publish(ctx, e)
}

var _ = Describe("Attendance Service", func() {
	var (
		db        *gorm.DB
		service   *attendance.Service
		clk       *clock.Fixed
		publisher *capturePublisher
		ctx       context.Context
		ids       map[int]int64
	)

	addEmployee := func(numericID int, name, department, status string) {
		e := &employeeDatamodel.Employee{
			NumericID:    numericID,
			Name:         name,
			Username:     name,
			Email:        name + "@example.com",
			PasswordHash: "hash",
			Department:   department,
			Status:       status,
		}
		Expect(db.Create(e).Error).To(Succeed())
		ids[numericID] = e.ID
	}

	checkIn := func(numericID, hour, minute int) (*attendance.Record, error) {
		return service.Record(ctx, attendance.CheckIn{
			UserID: ids[numericID],
			At:     time.Date(2024, 1, 10, hour, minute, 0, 0, time.UTC),
		})
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		ids = map[int]int64{}
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&employeeDatamodel.Employee{}, &attendanceDatamodel.Record{}, &leaveDatamodel.Request{})).To(Succeed())

		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		schedule, err := attendance.NewSchedule(internal.AttendanceConfig{
			WorkStart:          "09:00",
			WorkEnd:            "17:00",
			GracePeriodMinutes: 15,
			Timezone:           "UTC",
		})
		Expect(err).NotTo(HaveOccurred())

		clk = clock.NewFixed(time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC))
		publisher = &capturePublisher{}
		service = attendance.NewService(
			attendancePostgres.NewAttendanceRepository(db),
			attendancePostgres.NewReportRepository(sqlx.NewDb(sqlDB, "sqlite3")),
			schedule,
			clk,
			publisher,
			1,
			8,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)

		addEmployee(1, "admin", "Management", "active")
		addEmployee(5, "budi", "Engineering", "active")
		addEmployee(6, "siti", "Engineering", "active")
		addEmployee(7, "andi", "Finance", "onleave")
		addEmployee(8, "dewi", "Finance", "active")
	})

	Describe("Record", func() {
		It("should mark a 09:20 arrival as late", func() {
			rec, err := checkIn(5, 9, 20)

			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Status).To(Equal(attendance.StatusLate))
			Expect(rec.Status).To(Equal("Late"))
			Expect(rec.Date).To(Equal("2024-01-10"))
		})

		It("should publish an attendance event", func() {
			_, err := checkIn(5, 9, 0)
			Expect(err).NotTo(HaveOccurred())

			Expect(publisher.events).To(HaveLen(1))
			recorded, ok := publisher.events[0].(*events.AttendanceRecordedEvent)
			Expect(ok).To(BeTrue())
			Expect(recorded.Status).To(Equal(attendance.StatusPresent))
		})

		It("should refuse a second check-in on the same day without writing a row", func() {
			_, err := checkIn(5, 9, 0)
			Expect(err).NotTo(HaveOccurred())

			_, err = checkIn(5, 11, 0)
			Expect(err).To(MatchError(attendance.ErrAttendanceAlreadyTaken))

			var count int64
			Expect(db.Model(&attendanceDatamodel.Record{}).Where("user_id = ?", ids[5]).Count(&count).Error).To(Succeed())
			Expect(count).To(Equal(int64(1)))
		})

		It("should let the unique index reject a duplicate written behind the check", func() {
			repo := attendancePostgres.NewAttendanceRepository(db)
			first := &attendanceDatamodel.Record{UserID: ids[5], Date: "2024-01-10", CheckInAt: clk.Now(), Status: attendance.StatusPresent}
			Expect(repo.Create(ctx, first)).To(Succeed())

			second := &attendanceDatamodel.Record{UserID: ids[5], Date: "2024-01-10", CheckInAt: clk.Now(), Status: attendance.StatusPresent}
			Expect(repo.Create(ctx, second)).To(HaveOccurred())
		})
	})

	Describe("Today and EnsureNotTaken", func() {
		It("should allow a first check-in", func() {
			Expect(service.EnsureNotTaken(ctx, ids[5])).To(Succeed())

			today, err := service.Today(ctx, ids[5])
			Expect(err).NotTo(HaveOccurred())
			Expect(today.CheckedIn).To(BeFalse())
		})

		It("should point back to the dashboard after checking in", func() {
			_, err := checkIn(5, 9, 0)
			Expect(err).NotTo(HaveOccurred())

			err = service.EnsureNotTaken(ctx, ids[5])
			Expect(err).To(MatchError(attendance.ErrAttendanceAlreadyTaken))
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(409))
			Expect(appErr.Message).To(Equal("You have already taken attendance today. Please try again tomorrow."))
			Expect(appErr.Details).To(Equal(map[string]string{"redirect": "/dashboard"}))

			today, err := service.Today(ctx, ids[5])
			Expect(err).NotTo(HaveOccurred())
			Expect(today.CheckedIn).To(BeTrue())
			Expect(today.Redirect).To(Equal("/dashboard"))
		})

		It("should allow checking in again the next day", func() {
			_, err := checkIn(5, 9, 0)
			Expect(err).NotTo(HaveOccurred())

			clk.Advance(24 * time.Hour)
			Expect(service.EnsureNotTaken(ctx, ids[5])).To(Succeed())
		})
	})

	Describe("CompleteDay", func() {
		It("should store check-out and worked hours", func() {
			_, err := checkIn(5, 9, 20)
			Expect(err).NotTo(HaveOccurred())
			out := time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC)

			Expect(service.CompleteDay(ctx, ids[5], "2024-01-10", out, 7.67)).To(Succeed())

			records, err := service.ListByDate(ctx, "2024-01-10")
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].WorkedHours).To(Equal(7.67))
			Expect(records[0].CheckOutAt).NotTo(BeNil())
		})

		It("should report a missing record", func() {
			err := service.CompleteDay(ctx, ids[5], "2024-01-10", clk.Now(), 1)
			Expect(err).To(MatchError(attendance.ErrAttendanceNotFound))
		})
	})

	Describe("ListByDate", func() {
		It("should reject a malformed date", func() {
			_, err := service.ListByDate(ctx, "10/01/2024")
			Expect(err).To(MatchError(attendance.ErrInvalidDate))
		})
	})

	Describe("TodayStats", func() {
		It("should exclude the admin and count late arrivals as present", func() {
			_, err := checkIn(1, 8, 0)
			Expect(err).NotTo(HaveOccurred())
			_, err = checkIn(5, 9, 0)
			Expect(err).NotTo(HaveOccurred())
			_, err = checkIn(6, 9, 30)
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.TodayStats(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.TotalMembers).To(Equal(4))
			Expect(stats.Present).To(Equal(2))
			Expect(stats.Late).To(Equal(1))
			Expect(stats.OnLeave).To(Equal(1))
			Expect(stats.Absent).To(Equal(1))
		})

		It("should never report a negative absent count", func() {
			Expect(db.Model(&employeeDatamodel.Employee{}).Where("numeric_id <> 1").Update("status", "onleave").Error).To(Succeed())
			_, err := checkIn(5, 9, 0)
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.TodayStats(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Absent).To(Equal(0))
		})
	})

	Describe("DepartmentStats", func() {
		It("should break attendance down by department", func() {
			_, err := checkIn(5, 9, 0)
			Expect(err).NotTo(HaveOccurred())
			_, err = checkIn(6, 9, 30)
			Expect(err).NotTo(HaveOccurred())

			stats, err := service.DepartmentStats(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(stats).To(HaveLen(2))
			Expect(stats[0]).To(Equal(attendance.DepartmentStats{
				Department: "Engineering", Total: 2, Present: 2, Late: 1, Absent: 0, AttendanceRate: 100,
			}))
			Expect(stats[1]).To(Equal(attendance.DepartmentStats{
				Department: "Finance", Total: 2, Present: 0, OnLeave: 1, Absent: 1, AttendanceRate: 0,
			}))
		})
	})

	Describe("MonthlySummary", func() {
		It("should count late arrivals and overtime for the month", func() {
			repo := attendancePostgres.NewAttendanceRepository(db)
			rows := []*attendanceDatamodel.Record{
				{UserID: ids[5], Date: "2024-01-08", CheckInAt: clk.Now(), Status: attendance.StatusLate, WorkedHours: 9.5},
				{UserID: ids[5], Date: "2024-01-09", CheckInAt: clk.Now(), Status: attendance.StatusPresent, WorkedHours: 7},
				{UserID: ids[5], Date: "2024-01-10", CheckInAt: clk.Now(), Status: attendance.StatusLate, WorkedHours: 8.25},
				{UserID: ids[5], Date: "2024-02-01", CheckInAt: clk.Now(), Status: attendance.StatusLate, WorkedHours: 12},
			}
			for _, row := range rows {
				Expect(repo.Create(ctx, row)).To(Succeed())
			}

			summary, err := service.MonthlySummary(ctx, ids[5], "2024-01")

			Expect(err).NotTo(HaveOccurred())
			Expect(summary.DaysPresent).To(Equal(3))
			Expect(summary.LateArrivals).To(Equal(2))
			Expect(summary.OvertimeHours).To(Equal(1.75))
		})

		It("should default to the current month", func() {
			summary, err := service.MonthlySummary(ctx, ids[5], "")
			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Month).To(Equal("2024-01"))
			Expect(summary.OvertimeHours).To(BeZero())
		})

		It("should reject a malformed month", func() {
			_, err := service.MonthlySummary(ctx, ids[5], "January")
			Expect(err).To(MatchError(attendance.ErrInvalidMonth))
		})
	})

	Describe("AbsenceReasons", func() {
		It("should give counts and percentages of approved leave", func() {
			requests := []*leaveDatamodel.Request{
				{ID: "a", EmployeeID: ids[5], StartDate: "2024-01-01", EndDate: "2024-01-01", LeaveType: "sick", LeaveDays: 1, Status: leave.StatusApproved, SubmittedAt: clk.Now()},
				{ID: "b", EmployeeID: ids[6], StartDate: "2024-01-02", EndDate: "2024-01-02", LeaveType: "sick", LeaveDays: 1, Status: leave.StatusApproved, SubmittedAt: clk.Now()},
				{ID: "c", EmployeeID: ids[7], StartDate: "2024-01-03", EndDate: "2024-01-04", LeaveType: "annual", LeaveDays: 2, Status: leave.StatusApproved, SubmittedAt: clk.Now()},
				{ID: "d", EmployeeID: ids[8], StartDate: "2024-01-05", EndDate: "2024-01-05", LeaveType: "annual", LeaveDays: 1, Status: leave.StatusPending, SubmittedAt: clk.Now()},
			}
			for _, req := range requests {
				Expect(db.Create(req).Error).To(Succeed())
			}

			reasons, err := service.AbsenceReasons(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(reasons).To(Equal([]attendance.AbsenceReason{
				{LeaveType: "sick", Count: 2, Percentage: 66.7},
				{LeaveType: "annual", Count: 1, Percentage: 33.3},
			}))
		})
	})
})
