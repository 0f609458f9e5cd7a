package employee

import (
	"context"
	"time"

	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("MemoryDirectoryCache", func() {
	var (
		cache *MemoryDirectoryCache
		clk   *clock.Fixed
		ctx   context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		clk = clock.NewFixed(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
		cache = NewMemoryDirectoryCache(clk, 5*time.Minute)
	})

	ginkgo.It("should miss before anything is stored", func() {
		_, ok, err := cache.Get(ctx)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should hit within the ttl and miss after it", func() {
		gomega.Expect(cache.Set(ctx, []*Employee{{ID: 1, Name: "Budi"}})).To(gomega.Succeed())

		clk.Advance(4*time.Minute + 59*time.Second)
		got, ok, _ := cache.Get(ctx)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(got).To(gomega.HaveLen(1))

		clk.Advance(time.Second)
		_, ok, _ = cache.Get(ctx)
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should miss after Invalidate", func() {
		gomega.Expect(cache.Set(ctx, []*Employee{{ID: 1}})).To(gomega.Succeed())
		gomega.Expect(cache.Invalidate(ctx)).To(gomega.Succeed())

		_, ok, _ := cache.Get(ctx)
		gomega.Expect(ok).To(gomega.BeFalse())
	})

	ginkgo.It("should hand out copies", func() {
		gomega.Expect(cache.Set(ctx, []*Employee{{ID: 1, Status: StatusActive}})).To(gomega.Succeed())

		got, _, _ := cache.Get(ctx)
		got[0].Status = StatusInactive

		again, _, _ := cache.Get(ctx)
		gomega.Expect(again[0].Status).To(gomega.Equal(StatusActive))
	})
})
