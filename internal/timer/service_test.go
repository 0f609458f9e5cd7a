package timer_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/auth"
	timerDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/timer"
	"github.com/frahmantamala/attendance-management/internal/timer"
	timerPostgres "github.com/frahmantamala/attendance-management/internal/timer/postgres"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/internal/worker"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type completedDay struct {
	UserID      int64
	Date        string
	CheckOutAt  time.Time
	WorkedHours float64
}

type recordingCompleter struct {
	mu   sync.Mutex
	days []completedDay
	err  error
}

func (c *recordingCompleter) CompleteDay(_ context.Context, userID int64, date string, at time.Time, hours float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.days = append(c.days, completedDay{UserID: userID, Date: date, CheckOutAt: at, WorkedHours: hours})
	return c.err
}

func (c *recordingCompleter) Completed() []completedDay {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]completedDay, len(c.days))
	copy(out, c.days)
	return out
}

var _ = Describe("Timer Service", func() {
	var (
		db        *gorm.DB
		repo      timer.RepositoryAPI
		schedule  attendance.Schedule
		clk       *clock.Fixed
		completer *recordingCompleter
		service   *timer.Service
		slogger   *slog.Logger
		ctx       context.Context
		checkIn   time.Time
	)

	const userID = int64(7)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		slogger = slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&timerDatamodel.WorkTimer{})).To(Succeed())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		schedule, err = attendance.NewSchedule(internal.AttendanceConfig{
			WorkStart:          "09:00",
			WorkEnd:            "17:00",
			GracePeriodMinutes: 15,
			Timezone:           "UTC",
		})
		Expect(err).NotTo(HaveOccurred())

		checkIn = time.Date(2024, 1, 10, 9, 20, 0, 0, time.UTC)
		clk = clock.NewFixed(checkIn)
		completer = &recordingCompleter{}
		repo = timerPostgres.NewTimerRepository(db)
		service = timer.NewService(repo, completer, schedule, clk, nil, slogger)
	})

	Describe("Start", func() {
		It("should count down to the end of the working day", func() {
			t, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.IsActive).To(BeTrue())
			Expect(t.DurationSeconds).To(Equal(int64(27600)))
			Expect(t.Remaining).To(Equal("7:40:00"))
			Expect(t.Date).To(Equal("2024-01-10"))
		})

		It("should refuse a second start while running", func() {
			_, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Start(ctx, userID, checkIn)
			Expect(err).To(MatchError(timer.ErrTimerAlreadyActive))
		})

		It("should complete at once when the day is already over", func() {
			late := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
			clk.Set(late)

			t, err := service.Start(ctx, userID, late)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.IsActive).To(BeFalse())
			Expect(t.RemainingSeconds).To(BeZero())
			Expect(completer.Completed()).To(HaveLen(1))
		})

		It("should keep the accumulated total when restarted", func() {
			_, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())
			clk.Advance(27600 * time.Second)
			_, err = service.Get(ctx, userID)
			Expect(err).NotTo(HaveOccurred())

			next := time.Date(2024, 1, 11, 9, 0, 0, 0, time.UTC)
			clk.Set(next)
			t, err := service.Start(ctx, userID, next)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.TotalHours).To(Equal(7.67))
			Expect(t.Remaining).To(Equal("8:00:00"))
		})
	})

	Describe("Get", func() {
		It("should give the same remaining time after a reload", func() {
			_, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())
			clk.Advance(time.Hour)

			first, err := service.Get(ctx, userID)
			Expect(err).NotTo(HaveOccurred())

			reloaded := timer.NewService(timerPostgres.NewTimerRepository(db), completer, schedule, clk, nil, slogger)
			second, err := reloaded.Get(ctx, userID)
			Expect(err).NotTo(HaveOccurred())

			Expect(first.RemainingSeconds).To(Equal(int64(24000)))
			Expect(second.RemainingSeconds).To(Equal(first.RemainingSeconds))
		})

		It("should complete the timer once it reaches zero", func() {
			_, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())
			clk.Advance(27600 * time.Second)

			t, err := service.Get(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.IsActive).To(BeFalse())
			Expect(t.TotalHours).To(Equal(7.67))

			days := completer.Completed()
			Expect(days).To(HaveLen(1))
			Expect(days[0].UserID).To(Equal(userID))
			Expect(days[0].Date).To(Equal("2024-01-10"))
			Expect(days[0].WorkedHours).To(Equal(7.67))
			Expect(days[0].CheckOutAt).To(Equal(clk.Now()))

			_, err = service.Get(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(completer.Completed()).To(HaveLen(1))
		})

		It("should tolerate a missing attendance record", func() {
			completer.err = attendance.ErrAttendanceNotFound
			_, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())
			clk.Advance(8 * time.Hour)

			t, err := service.Get(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.IsActive).To(BeFalse())
		})

		It("should return not found without a timer", func() {
			_, err := service.Get(ctx, userID)
			Expect(err).To(MatchError(timer.ErrTimerNotFound))
		})
	})

	Describe("Stop, Reset and Delete", func() {
		BeforeEach(func() {
			_, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should freeze the remaining time on stop", func() {
			clk.Advance(10 * time.Minute)
			stopped, err := service.Stop(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stopped.IsActive).To(BeFalse())
			Expect(stopped.RemainingSeconds).To(Equal(int64(27000)))

			clk.Advance(time.Hour)
			t, err := service.Get(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.RemainingSeconds).To(Equal(int64(27000)))
			Expect(completer.Completed()).To(BeEmpty())
		})

		It("should clear everything on reset", func() {
			t, err := service.Reset(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.IsActive).To(BeFalse())
			Expect(t.RemainingSeconds).To(BeZero())
			Expect(t.TotalHours).To(BeZero())
		})

		It("should remove the timer on delete", func() {
			Expect(service.Delete(ctx, userID)).To(Succeed())
			_, err := service.Get(ctx, userID)
			Expect(err).To(MatchError(timer.ErrTimerNotFound))
			Expect(service.Delete(ctx, userID)).To(MatchError(timer.ErrTimerNotFound))
		})
	})

	Describe("Finalizer", func() {
		It("should complete only expired timers on the worker pool", func() {
			pool := worker.NewPool(worker.Config{Name: "timer-finalizer", MaxWorkers: 2, JobQueueSize: 10}, slogger)
			defer pool.Shutdown()

			_, err := service.Start(ctx, 1, checkIn)
			Expect(err).NotTo(HaveOccurred())
			clk.Set(checkIn.Add(4 * time.Hour))
			_, err = service.Start(ctx, 2, checkIn)
			Expect(err).NotTo(HaveOccurred())

			clk.Set(time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC))
			queued, err := timer.NewFinalizer(service, pool, slogger).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(queued).To(Equal(1))

			Eventually(completer.Completed, time.Second).Should(HaveLen(1))
			Expect(completer.Completed()[0].UserID).To(Equal(int64(1)))

			t, err := repo.Get(ctx, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(t.IsActive).To(BeTrue())
		})
	})

	Describe("Handler", func() {
		var handler *timer.Handler

		request := func(method string) *http.Request {
			req := httptest.NewRequest(method, "/api/v1/timer", nil)
			return req.WithContext(auth.ContextWithUser(req.Context(), &auth.User{ID: userID}))
		}

		BeforeEach(func() {
			handler = timer.NewHandler(transport.NewBaseHandler(slogger), service)
		})

		It("should return the running timer", func() {
			_, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())
			clk.Advance(40 * time.Minute)

			rec := httptest.NewRecorder()
			handler.GetTimer(rec, request(http.MethodGet))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body timer.Timer
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Remaining).To(Equal("7:00:00"))
			Expect(body.IsActive).To(BeTrue())
		})

		It("should return 404 without a timer", func() {
			rec := httptest.NewRecorder()
			handler.GetTimer(rec, request(http.MethodGet))
			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeTimerNotFound)))
		})

		It("should delete with 204", func() {
			_, err := service.Start(ctx, userID, checkIn)
			Expect(err).NotTo(HaveOccurred())

			rec := httptest.NewRecorder()
			handler.DeleteTimer(rec, request(http.MethodDelete))
			Expect(rec.Code).To(Equal(http.StatusNoContent))
		})

		It("should reject a request without a user", func() {
			rec := httptest.NewRecorder()
			handler.StopTimer(rec, httptest.NewRequest(http.MethodPost, "/api/v1/timer/stop", nil))
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
