package employee_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/frahmantamala/attendance-management/internal/auth"
	employeeDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/attendance-management/internal/employee"
	employeePostgres "github.com/frahmantamala/attendance-management/internal/employee/postgres"
	"github.com/frahmantamala/attendance-management/internal/transport"
	"github.com/frahmantamala/attendance-management/pkg/clock"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

var _ = Describe("Employee Handler Integration", func() {
	var (
		db      *gorm.DB
		service *employee.Service
		handler *employee.Handler
		budi    *employee.Employee
	)

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(io.Discard, nil))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&employeeDatamodel.Employee{})).To(Succeed())

		clk := clock.NewFixed(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
		service = employee.NewService(
			employeePostgres.NewEmployeeRepository(db),
			employee.NewMemoryDirectoryCache(clk, 5*time.Minute),
			employee.NewInlinePhotoStore(nil),
			nil,
			clk,
			bcrypt.MinCost,
			slogger,
		)
		handler = &employee.Handler{BaseHandler: transport.NewBaseHandler(slogger), Service: service}

		budi, err = service.Create(context.Background(), employee.CreateEmployeeDTO{
			NumericID:  5,
			Name:       "Budi Santoso",
			Username:   "budi",
			Email:      "budi@example.com",
			Password:   "secret123",
			Department: "Engineering",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("should return the caller's profile on GET /users/me", func() {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		req = req.WithContext(auth.ContextWithUser(req.Context(), &auth.User{ID: budi.ID, NumericID: 5}))
		w := httptest.NewRecorder()

		handler.GetCurrentUser(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var body struct {
			Employee employee.Employee `json:"employee"`
			IsAdmin  bool              `json:"is_admin"`
		}
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		Expect(body.Employee.Username).To(Equal("budi"))
		Expect(body.IsAdmin).To(BeFalse())
	})

	It("should never expose the password hash", func() {
		req := withID(httptest.NewRequest(http.MethodGet, "/admin/employees/1", nil), "1")
		w := httptest.NewRecorder()

		handler.GetEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
	})

	It("should list employees", func() {
		req := httptest.NewRequest(http.MethodGet, "/admin/employees", nil)
		w := httptest.NewRecorder()

		handler.ListEmployees(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp employee.EmployeesResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Total).To(Equal(1))
	})

	It("should reject a duplicate username with 409", func() {
		body, _ := json.Marshal(employee.CreateEmployeeDTO{
			NumericID: 6,
			Name:      "Another Budi",
			Username:  "budi",
			Email:     "budi2@example.com",
			Password:  "secret123",
		})
		req := httptest.NewRequest(http.MethodPost, "/admin/employees", bytes.NewReader(body))
		w := httptest.NewRecorder()

		handler.CreateEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusConflict))
	})

	It("should update the status", func() {
		req := withID(httptest.NewRequest(http.MethodPatch, "/admin/employees/1/status", bytes.NewReader([]byte(`{"status":"onleave"}`))), "1")
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		status, err := service.GetStatus(context.Background(), budi.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(status).To(Equal(employee.StatusOnLeave))
	})

	It("should return 404 when deleting a missing employee", func() {
		req := withID(httptest.NewRequest(http.MethodDelete, "/admin/employees/99", nil), "99")
		w := httptest.NewRecorder()

		handler.DeleteEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should reject a non-numeric id", func() {
		req := withID(httptest.NewRequest(http.MethodGet, "/admin/employees/abc", nil), "abc")
		w := httptest.NewRecorder()

		handler.GetEmployee(w, req)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should store an uploaded reference photo", func() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "budi.jpg")
		Expect(err).NotTo(HaveOccurred())
		_, _ = part.Write([]byte("\xff\xd8\xff\xe0 jpeg body"))
		Expect(mw.Close()).To(Succeed())

		req := withID(httptest.NewRequest(http.MethodPost, "/admin/employees/1/photo", &buf), "1")
		req.Header.Set("Content-Type", mw.FormDataContentType())
		w := httptest.NewRecorder()

		handler.UploadPhoto(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		var resp employee.Employee
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.PhotoURL).To(HavePrefix("data:image/jpeg;base64,"))
	})
})
