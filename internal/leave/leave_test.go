package leave_test

import (
	"github.com/frahmantamala/attendance-management/internal/leave"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Leave Request", func() {
	req := &leave.Request{StartDate: "2024-02-01", EndDate: "2024-02-05"}

	DescribeTable("Covers",
		func(date string, expected bool) {
			Expect(req.Covers(date)).To(Equal(expected))
		},
		Entry("the day before", "2024-01-31", false),
		Entry("the first day", "2024-02-01", true),
		Entry("a middle day", "2024-02-03", true),
		Entry("the last day", "2024-02-05", true),
		Entry("the day after", "2024-02-06", false),
	)

	DescribeTable("Ended",
		func(date string, expected bool) {
			Expect(req.Ended(date)).To(Equal(expected))
		},
		Entry("on the last day", "2024-02-05", false),
		Entry("the day after", "2024-02-06", true),
	)
})
