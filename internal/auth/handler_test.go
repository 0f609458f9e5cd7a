package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Auth Handler", func() {
	var (
		handler *Handler
		service *Service
		clk     *clock.Fixed
		seen    *User
		echo    http.Handler
	)

	login := func(username string) string {
		body, _ := json.Marshal(LoginDTO{Login: username, Password: "correct_password"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		w := httptest.NewRecorder()
		handler.Login(w, req)
		gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))

		var tokens AuthTokens
		gomega.Expect(json.NewDecoder(w.Body).Decode(&tokens)).To(gomega.Succeed())
		return tokens.AccessToken
	}

	errorCode := func(w *httptest.ResponseRecorder) internal.ErrorCode {
		var resp internal.Response
		gomega.Expect(json.NewDecoder(w.Body).Decode(&resp)).To(gomega.Succeed())
		return resp.Error.Code
	}

	ginkgo.BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		clk = clock.NewFixed(time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC))
		service = NewService(
			newMockUserRepository(),
			NewJWTTokenGenerator("test-secret-that-is-long-enough-to-sign", time.Hour, clk),
			NewMemoryRevocationStore(clk),
			1,
			logger,
		)
		handler = &Handler{BaseHandler: transport.NewBaseHandler(logger), Service: service}

		seen = nil
		echo = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should reject bad credentials with 401", func() {
			body, _ := json.Marshal(LoginDTO{Login: "budi", Password: "nope"})
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
			w := httptest.NewRecorder()

			handler.Login(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(errorCode(w)).To(gomega.Equal(internal.ErrCodeInvalidCredentials))
		})

		ginkgo.It("should reject an empty body with 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", http.NoBody)
			w := httptest.NewRecorder()

			handler.Login(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		ginkgo.It("should put the user into the request context", func() {
			token := login("budi")
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			handler.AuthMiddleware(echo).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(seen).ToNot(gomega.BeNil())
			gomega.Expect(seen.ID).To(gomega.Equal(int64(5)))
			gomega.Expect(seen.TokenID).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("should reject a missing token", func() {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			w := httptest.NewRecorder()

			handler.AuthMiddleware(echo).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(seen).To(gomega.BeNil())
		})

		ginkgo.It("should reject a token after logout", func() {
			token := login("budi")

			logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			logoutReq.Header.Set("Authorization", "Bearer "+token)
			logoutW := httptest.NewRecorder()
			handler.AuthMiddleware(http.HandlerFunc(handler.Logout)).ServeHTTP(logoutW, logoutReq)
			gomega.Expect(logoutW.Code).To(gomega.Equal(http.StatusNoContent))

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.AuthMiddleware(echo).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(errorCode(w)).To(gomega.Equal(internal.ErrCodeTokenRevoked))
		})
	})

	ginkgo.Describe("RequireAdmin", func() {
		ginkgo.It("should let the admin through", func() {
			req := httptest.NewRequest(http.MethodGet, "/admin/employees", nil)
			req = req.WithContext(ContextWithUser(context.Background(), &User{ID: 1, NumericID: 1, IsAdmin: true}))
			w := httptest.NewRecorder()

			handler.RequireAdmin(echo).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should forbid other employees", func() {
			req := httptest.NewRequest(http.MethodGet, "/admin/employees", nil)
			req = req.WithContext(ContextWithUser(context.Background(), &User{ID: 5, NumericID: 5}))
			w := httptest.NewRecorder()

			handler.RequireAdmin(echo).ServeHTTP(w, req)

			gomega.Expect(w.Code).To(gomega.Equal(http.StatusForbidden))
			gomega.Expect(errorCode(w)).To(gomega.Equal(internal.ErrCodeAdminOnly))
		})
	})
})
