package checkin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/checkin"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubCheckins struct {
	frames    []string
	frameErr  error
	sessionID string
}

func (s *stubCheckins) OpenSession(_ context.Context, _ *auth.User) (checkin.Session, error) {
	return checkin.Session{ID: "sess-1", AttemptsLeft: 3}, nil
}

func (s *stubCheckins) SubmitFrame(_ context.Context, _ *auth.User, sessionID, frame string) (*checkin.FrameResult, error) {
	s.sessionID = sessionID
	s.frames = append(s.frames, frame)
	if s.frameErr != nil {
		return nil, s.frameErr
	}
	return &checkin.FrameResult{Status: checkin.StatusVerified, Matched: true, AttemptsLeft: 3}, nil
}

func (s *stubCheckins) TakeLateNotice(_ context.Context, _ int64) (*checkin.LateNotice, error) {
	return nil, nil
}

var _ = Describe("Checkin Handler", func() {
	var (
		stub    *stubCheckins
		logs    *bytes.Buffer
		handler *checkin.Handler
	)

	frameRequest := func(body string) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkin/sessions/sess-1/frames", strings.NewReader(body))
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", "sess-1")
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
		return req.WithContext(auth.ContextWithUser(ctx, &auth.User{ID: 7, Name: "Eka"}))
	}

	BeforeEach(func() {
		stub = &stubCheckins{}
		logs = &bytes.Buffer{}
		handler = checkin.NewHandler(transport.NewBaseHandler(slog.New(slog.NewTextHandler(logs, nil))), stub)
	})

	It("should pass the frame through to the session", func() {
		rec := httptest.NewRecorder()
		handler.SubmitFrame(rec, frameRequest(`{"image":"data:image/jpeg;base64,AAAA"}`))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(stub.sessionID).To(Equal("sess-1"))
		Expect(stub.frames).To(Equal([]string{"data:image/jpeg;base64,AAAA"}))

		var result checkin.FrameResult
		Expect(json.Unmarshal(rec.Body.Bytes(), &result)).To(Succeed())
		Expect(result.Matched).To(BeTrue())
	})

	It("should reject a frame without an image through the injected logger", func() {
		rec := httptest.NewRecorder()
		handler.SubmitFrame(rec, frameRequest(`{"image":""}`))

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(stub.frames).To(BeEmpty())
		Expect(logs.String()).To(ContainSubstring("http error"))
	})

	It("should map a locked session to forbidden", func() {
		stub.frameErr = checkin.ErrSessionLocked
		rec := httptest.NewRecorder()
		handler.SubmitFrame(rec, frameRequest(`{"image":"AAAA"}`))

		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(logs.String()).To(ContainSubstring(string(internal.ErrCodeSessionLocked)))
	})

	It("should require a user", func() {
		rec := httptest.NewRecorder()
		handler.OpenSession(rec, httptest.NewRequest(http.MethodPost, "/api/v1/checkin/sessions", nil))
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})
})
