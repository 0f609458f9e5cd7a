package checkin_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/checkin"
	"github.com/frahmantamala/attendance-management/internal/core/events"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Late notices", func() {
	var (
		ctx     context.Context
		clk     *clock.Fixed
		store   *checkin.MemoryNoticeStore
		handler *checkin.EventHandler
		bus     *events.EventBus
	)

	BeforeEach(func() {
		ctx = context.Background()
		clk = clock.NewFixed(time.Date(2024, 1, 10, 9, 20, 0, 0, time.UTC))
		store = checkin.NewMemoryNoticeStore(clk, time.Hour)
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		handler = checkin.NewEventHandler(store, logger)
		bus = events.NewEventBus(logger)
		handler.RegisterEventHandlers(bus)
	})

	It("should raise a notice for a late check-in and hand it out once", func() {
		event := events.NewAttendanceRecordedEvent(1, 7, "2024-01-10", attendance.StatusLate, clk.Now())
		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		notice, err := store.TakeLate(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(notice).NotTo(BeNil())
		Expect(notice.Date).To(Equal("2024-01-10"))

		again, err := store.TakeLate(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(BeNil())
	})

	It("should stay quiet for an on-time check-in", func() {
		event := events.NewAttendanceRecordedEvent(1, 7, "2024-01-10", attendance.StatusPresent, clk.Now())
		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		notice, err := store.TakeLate(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(notice).To(BeNil())
	})

	It("should drop notices past their ttl", func() {
		Expect(store.PutLate(ctx, 7, checkin.LateNotice{Date: "2024-01-10"})).To(Succeed())
		clk.Advance(2 * time.Hour)

		notice, err := store.TakeLate(ctx, 7)
		Expect(err).NotTo(HaveOccurred())
		Expect(notice).To(BeNil())
	})
})
