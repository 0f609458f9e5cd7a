package leave_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/frahmantamala/attendance-management/internal/auth"
	leaveDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/leave"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/internal/employee"
	"github.com/frahmantamala/attendance-management/internal/leave"
	leavePostgres "github.com/frahmantamala/attendance-management/internal/leave/postgres"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type statusBook struct {
	mu       sync.Mutex
	statuses map[int64]string
}

func (b *statusBook) GetStatus(_ context.Context, id int64) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	status, ok := b.statuses[id]
	if !ok {
		return "", employee.ErrEmployeeNotFound
	}
	return status, nil
}

func (b *statusBook) SetStatus(_ context.Context, id int64, status string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.statuses[id]; !ok {
		return employee.ErrEmployeeNotFound
	}
	b.statuses[id] = status
	return nil
}

func (b *statusBook) status(id int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.statuses[id]
}

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

type flakyLedger struct {
	leave.RepositoryAPI
	failures int
}

func (r *flakyLedger) CreateDaysTaken(ctx context.Context, d *leaveDatamodel.DaysTaken) error {
	if r.failures > 0 {
		r.failures--
		return errors.New("ledger unavailable")
	}
	return r.RepositoryAPI.CreateDaysTaken(ctx, d)
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var _ = Describe("Leave Service", func() {
	var (
		db        *gorm.DB
		service   *leave.Service
		employees *statusBook
		publisher *capturePublisher
		clk       *clock.Fixed
		ctx       context.Context
	)

	const (
		eka   = int64(5)
		admin = int64(1)
	)

	submit := func(start, end, leaveType string) *leave.Request {
		req, err := service.Submit(ctx, eka, "Eka", leave.SubmitLeaveDTO{
			StartDate: start,
			EndDate:   end,
			LeaveType: leaveType,
			Reason:    "family",
		})
		Expect(err).NotTo(HaveOccurred())
		clk.Advance(time.Millisecond)
		return req
	}

	approve := func(id string) *leave.Request {
		req, err := service.UpdateStatus(ctx, id, admin, leave.UpdateLeaveStatusDTO{Status: leave.StatusApproved})
		Expect(err).NotTo(HaveOccurred())
		return req
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&leaveDatamodel.Request{}, &leaveDatamodel.DaysTaken{})).To(Succeed())

		clk = clock.NewFixed(time.Date(2024, 2, 3, 10, 0, 0, 0, time.UTC))
		employees = &statusBook{statuses: map[int64]string{eka: employee.StatusActive}}
		publisher = &capturePublisher{}
		service = leave.NewService(
			leavePostgres.NewLeaveRepository(db),
			employees,
			clk,
			publisher,
			slog.New(slog.NewTextHandler(io.Discard, nil)),
		)
	})

	Describe("Submit", func() {
		It("should create a pending request counting days inclusively", func() {
			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			Expect(req.Status).To(Equal(leave.StatusPending))
			Expect(req.LeaveDays).To(Equal(5))
			Expect(req.ID).To(HavePrefix("leave_req_5_"))
		})

		It("should count a single day as one", func() {
			req := submit("2024-02-07", "2024-02-07", leave.TypeSick)
			Expect(req.LeaveDays).To(Equal(1))
		})

		It("should reject an end date before the start", func() {
			_, err := service.Submit(ctx, eka, "Eka", leave.SubmitLeaveDTO{
				StartDate: "2024-02-05",
				EndDate:   "2024-02-01",
				LeaveType: leave.TypeAnnual,
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(Equal("end_date must not be before start_date"))
		})

		It("should reject an unknown leave type", func() {
			_, err := service.Submit(ctx, eka, "Eka", leave.SubmitLeaveDTO{
				StartDate: "2024-02-01",
				EndDate:   "2024-02-01",
				LeaveType: "sabbatical",
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("List", func() {
		It("should return newest first", func() {
			first := submit("2024-02-10", "2024-02-10", leave.TypeAnnual)
			second := submit("2024-02-12", "2024-02-12", leave.TypeSick)

			mine, err := service.ListMine(ctx, eka)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(2))
			Expect(mine[0].ID).To(Equal(second.ID))
			Expect(mine[1].ID).To(Equal(first.ID))

			others, err := service.ListMine(ctx, 99)
			Expect(err).NotTo(HaveOccurred())
			Expect(others).To(BeEmpty())
		})
	})

	Describe("UpdateStatus", func() {
		It("should put the employee on leave when approval covers today", func() {
			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			approved := approve(req.ID)

			Expect(approved.Status).To(Equal(leave.StatusApproved))
			Expect(approved.Status).To(Equal("Approved"))
			Expect(*approved.ApprovedBy).To(Equal(admin))
			Expect(employees.status(eka)).To(Equal(employee.StatusOnLeave))

			total, err := service.TotalDaysTaken(ctx, eka)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(5))

			Expect(publisher.events).To(HaveLen(1))
			event := publisher.events[0].(*events.LeaveEvent)
			Expect(event.EventType()).To(Equal(events.EventTypeLeaveApproved))
			Expect(event.StatusChanged).To(BeTrue())
		})

		It("should leave the status alone for future leave", func() {
			req := submit("2024-03-01", "2024-03-02", leave.TypeAnnual)
			approve(req.ID)
			Expect(employees.status(eka)).To(Equal(employee.StatusActive))
			Expect(publisher.events[0].(*events.LeaveEvent).StatusChanged).To(BeFalse())
		})

		It("should not reactivate an inactive employee on approval", func() {
			employees.statuses[eka] = employee.StatusInactive
			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			approve(req.ID)

			Expect(employees.status(eka)).To(Equal(employee.StatusInactive))
			Expect(publisher.events[0].(*events.LeaveEvent).StatusChanged).To(BeFalse())
		})

		It("should keep the request pending when the days taken cannot be recorded", func() {
			ledger := &flakyLedger{RepositoryAPI: leavePostgres.NewLeaveRepository(db), failures: 1}
			service = leave.NewService(ledger, employees, clk, publisher, slog.New(slog.NewTextHandler(io.Discard, nil)))

			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			_, err := service.UpdateStatus(ctx, req.ID, admin, leave.UpdateLeaveStatusDTO{Status: leave.StatusApproved})
			Expect(err).To(MatchError("ledger unavailable"))

			mine, err := service.ListMine(ctx, eka)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))
			Expect(mine[0].Status).To(Equal(leave.StatusPending))
			Expect(mine[0].ApprovedBy).To(BeNil())
			Expect(employees.status(eka)).To(Equal(employee.StatusActive))
			Expect(publisher.events).To(BeEmpty())

			approved := approve(req.ID)
			Expect(approved.Status).To(Equal(leave.StatusApproved))
			total, err := service.TotalDaysTaken(ctx, eka)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(5))
			Expect(employees.status(eka)).To(Equal(employee.StatusOnLeave))
		})

		It("should store the rejection reason", func() {
			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			rejected, err := service.UpdateStatus(ctx, req.ID, admin, leave.UpdateLeaveStatusDTO{
				Status:          leave.StatusRejected,
				RejectionReason: "busy season",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(rejected.RejectionReason).To(Equal("busy season"))
			Expect(employees.status(eka)).To(Equal(employee.StatusActive))

			total, err := service.TotalDaysTaken(ctx, eka)
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(BeZero())
		})

		It("should only change pending requests", func() {
			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			approve(req.ID)

			_, err := service.UpdateStatus(ctx, req.ID, admin, leave.UpdateLeaveStatusDTO{Status: leave.StatusRejected})
			Expect(err).To(MatchError(leave.ErrInvalidLeaveStatus))
		})

		It("should reject pending as a target status", func() {
			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			_, err := service.UpdateStatus(ctx, req.ID, admin, leave.UpdateLeaveStatusDTO{Status: leave.StatusPending})
			Expect(err).To(HaveOccurred())
		})

		It("should return not found for an unknown id", func() {
			_, err := service.UpdateStatus(ctx, "missing", admin, leave.UpdateLeaveStatusDTO{Status: leave.StatusApproved})
			Expect(err).To(MatchError(leave.ErrLeaveNotFound))
		})
	})

	Describe("Delete", func() {
		It("should undo an approval", func() {
			before, err := service.TotalDaysTaken(ctx, eka)
			Expect(err).NotTo(HaveOccurred())

			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			approve(req.ID)
			Expect(service.Delete(ctx, req.ID)).To(Succeed())

			after, err := service.TotalDaysTaken(ctx, eka)
			Expect(err).NotTo(HaveOccurred())
			Expect(after).To(Equal(before))
			Expect(employees.status(eka)).To(Equal(employee.StatusActive))

			last := publisher.events[len(publisher.events)-1].(*events.LeaveEvent)
			Expect(last.EventType()).To(Equal(events.EventTypeLeaveDeleted))
			Expect(last.StatusChanged).To(BeTrue())
		})

		It("should delete a pending request without side effects", func() {
			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			Expect(service.Delete(ctx, req.ID)).To(Succeed())
			Expect(publisher.events).To(BeEmpty())
			Expect(service.Delete(ctx, req.ID)).To(MatchError(leave.ErrLeaveNotFound))
		})
	})

	Describe("Sweep", func() {
		It("should reinstate employees once their leave ends", func() {
			req := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			approve(req.ID)

			clk.Set(time.Date(2024, 2, 6, 8, 0, 0, 0, time.UTC))
			result, err := service.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(leave.SweepResult{Activated: 1}))
			Expect(employees.status(eka)).To(Equal(employee.StatusActive))
		})

		It("should start leave that begins today", func() {
			req := submit("2024-02-07", "2024-02-08", leave.TypeAnnual)
			approve(req.ID)
			Expect(employees.status(eka)).To(Equal(employee.StatusActive))

			clk.Set(time.Date(2024, 2, 7, 0, 30, 0, 0, time.UTC))
			result, err := service.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.SetOnLeave).To(Equal(1))
			Expect(employees.status(eka)).To(Equal(employee.StatusOnLeave))
		})

		It("should let current leave win over ended leave", func() {
			old := submit("2024-01-10", "2024-01-12", leave.TypeSick)
			approve(old.ID)
			current := submit("2024-02-01", "2024-02-05", leave.TypeAnnual)
			approve(current.ID)

			_, err := service.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(employees.status(eka)).To(Equal(employee.StatusOnLeave))
		})

		It("should skip missing employees", func() {
			Expect(db.Create(&leaveDatamodel.Request{
				ID:          "orphan",
				EmployeeID:  404,
				StartDate:   "2024-02-01",
				EndDate:     "2024-02-10",
				LeaveType:   leave.TypeAnnual,
				LeaveDays:   10,
				Status:      leave.StatusApproved,
				SubmittedAt: clk.Now(),
			}).Error).To(Succeed())

			result, err := service.Sweep(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(leave.SweepResult{}))
		})
	})

	Describe("Handler", func() {
		var handler *leave.Handler

		asUser := func(req *http.Request, id int64, isAdmin bool) *http.Request {
			return req.WithContext(auth.ContextWithUser(req.Context(), &auth.User{ID: id, Name: "Eka", IsAdmin: isAdmin}))
		}

		BeforeEach(func() {
			handler = leave.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil))), service)
		})

		It("should submit a request with 201", func() {
			body, _ := json.Marshal(map[string]string{
				"start_date": "2024-02-01",
				"end_date":   "2024-02-02",
				"leave_type": "sick",
			})
			req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/leave-requests", bytes.NewReader(body)), eka, false)
			rec := httptest.NewRecorder()

			handler.SubmitLeave(rec, req)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var created leave.Request
			Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
			Expect(created.LeaveDays).To(Equal(2))
			Expect(created.EmployeeName).To(Equal("Eka"))
		})

		It("should report 400 for an invalid range", func() {
			body, _ := json.Marshal(map[string]string{
				"start_date": "2024-02-03",
				"end_date":   "2024-02-01",
				"leave_type": "sick",
			})
			req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/leave-requests", bytes.NewReader(body)), eka, false)
			rec := httptest.NewRecorder()

			handler.SubmitLeave(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring("end_date"))
		})

		It("should keep other employees' leave days private", func() {
			req := withParam(httptest.NewRequest(http.MethodGet, "/api/v1/leave-days/9", nil), "employeeID", "9")
			rec := httptest.NewRecorder()

			handler.GetLeaveDays(rec, asUser(req, eka, false))
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("should show the admin anyone's leave days", func() {
			approve(submit("2024-02-01", "2024-02-05", leave.TypeAnnual).ID)

			req := withParam(httptest.NewRequest(http.MethodGet, "/api/v1/leave-days/5", nil), "employeeID", "5")
			rec := httptest.NewRecorder()

			handler.GetLeaveDays(rec, asUser(req, admin, true))
			Expect(rec.Code).To(Equal(http.StatusOK))

			var resp leave.LeaveDaysResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.TotalLeaveDays).To(Equal(5))
		})

		It("should return 404 when deleting an unknown request", func() {
			req := withParam(httptest.NewRequest(http.MethodDelete, "/api/v1/admin/leave-requests/x", nil), "id", "x")
			rec := httptest.NewRecorder()

			handler.DeleteLeave(rec, req)
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})
})
