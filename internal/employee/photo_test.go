package employee

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("HTTPPhotoFetcher", func() {
	var (
		fetcher *HTTPPhotoFetcher
		server  *httptest.Server
		ctx     context.Context
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/employee_5.jpg":
				w.Header().Set("Content-Type", "image/jpeg")
				_, _ = w.Write([]byte("abc"))
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		fetcher = NewHTTPPhotoFetcher(server.Client())
	})

	ginkgo.AfterEach(func() {
		server.Close()
	})

	ginkgo.It("should download the photo as a data URL", func() {
		photo, err := fetcher.Fetch(ctx, server.URL+"/employee_5.jpg")

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(photo).To(gomega.Equal("data:image/jpeg;base64,YWJj"))
	})

	ginkgo.It("should pass data URLs through", func() {
		photo, err := fetcher.Fetch(ctx, "data:image/png;base64,AAAA")

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(photo).To(gomega.Equal("data:image/png;base64,AAAA"))
	})

	ginkgo.It("should fail on a non-200 response", func() {
		_, err := fetcher.Fetch(ctx, server.URL+"/missing.jpg")
		gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("status 404")))
	})

	ginkgo.It("should report a missing reference", func() {
		_, err := fetcher.Fetch(ctx, "")
		gomega.Expect(err).To(gomega.MatchError(ErrNoReferencePhoto))
	})
})

var _ = ginkgo.Describe("InlinePhotoStore", func() {
	ginkgo.It("should store uploads as data URLs", func() {
		store := NewInlinePhotoStore(nil)
		png := []byte("\x89PNG\r\n\x1a\n0000")

		url, err := store.Upload(context.Background(), "employee_5", bytes.NewReader(png))

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(url).To(gomega.HavePrefix("data:image/png;base64,"))
	})
})
