package checkin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	"github.com/frahmantamala/attendance-management/internal/auth"
	"github.com/frahmantamala/attendance-management/internal/employee"
	"github.com/frahmantamala/attendance-management/internal/face"
	"github.com/frahmantamala/attendance-management/internal/metrics"
	"github.com/frahmantamala/attendance-management/internal/timer"
	"github.com/frahmantamala/attendance-management/pkg/clock"
)

const OpCheckIn = "checkin.frame"

const (
	StatusVerified          = "verified"
	StatusNoFace            = "no_face"
	StatusMultipleFaces     = "multiple_faces"
	StatusMismatch          = "mismatch"
	StatusVerificationError = "verification_error"
	StatusDetectionFailed   = "detection_failed"
)

const lockedMessage = "Too many failed attempts. You will be logged out for security reasons."

type AttendanceAPI interface {
	EnsureNotTaken(ctx context.Context, userID int64) error
	Record(ctx context.Context, in attendance.CheckIn) (*attendance.Record, error)
}

type TimerAPI interface {
	Start(ctx context.Context, userID int64, checkIn time.Time) (*timer.Timer, error)
}

type EmployeeAPI interface {
	Lookup(ctx context.Context, id int64) (*employee.Employee, error)
	ReferencePhoto(ctx context.Context, e *employee.Employee) (string, error)
	TouchSession(ctx context.Context, id int64) error
}

type FaceAPI interface {
	Detect(ctx context.Context, frame string) (face.Detection, error)
	Compare(ctx context.Context, frame, reference string) (face.Comparison, error)
}

type Revoker interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// FrameResult is the verdict on one submitted frame.
type FrameResult struct {
	Status          string             `json:"status"`
	Matched         bool               `json:"matched"`
	Message         string             `json:"message"`
	AttemptsLeft    int                `json:"attempts_left"`
	Locked          bool               `json:"locked,omitempty"`
	Logout          bool               `json:"logout,omitempty"`
	RedirectAfterMs int64              `json:"redirect_after_ms,omitempty"`
	Error           string             `json:"error,omitempty"`
	Record          *attendance.Record `json:"record,omitempty"`
	Timer           *timer.Timer       `json:"timer,omitempty"`
	Late            bool               `json:"late,omitempty"`
	Redirect        string             `json:"redirect,omitempty"`
}

type Config struct {
	JPEGQuality  int
	LockoutDelay time.Duration
}

type Service struct {
	governor   *Governor
	attendance AttendanceAPI
	timers     TimerAPI
	employees  EmployeeAPI
	faces      FaceAPI
	revoker    Revoker
	notices    NoticeStore
	metrics    metrics.Recorder
	clock      clock.Clock
	config     Config
	logger     *slog.Logger
}

func NewService(governor *Governor, attendanceSvc AttendanceAPI, timers TimerAPI, employees EmployeeAPI, faces FaceAPI, revoker Revoker, notices NoticeStore, recorder metrics.Recorder, c clock.Clock, config Config, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		governor:   governor,
		attendance: attendanceSvc,
		timers:     timers,
		employees:  employees,
		faces:      faces,
		revoker:    revoker,
		notices:    notices,
		metrics:    recorder,
		clock:      c,
		config:     config,
		logger:     logger,
	}
}

// OpenSession starts a check-in attempt once the daily guard allows it.
func (s *Service) OpenSession(ctx context.Context, user *auth.User) (Session, error) {
	if err := s.attendance.EnsureNotTaken(ctx, user.ID); err != nil {
		return Session{}, err
	}

	emp, err := s.employees.Lookup(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}
	if !emp.HasReferencePhoto() {
		return Session{}, employee.ErrNoReferencePhoto
	}

	session := s.governor.Open(user.ID)
	s.logger.Info("check-in session opened", "user_id", user.ID, "session_id", session.ID, "attempts", session.AttemptsLeft)
	return session, nil
}

// SubmitFrame runs detection then verification against the caller's own
// reference photo, recording attendance on a match.
func (s *Service) SubmitFrame(ctx context.Context, user *auth.User, sessionID, frame string) (*FrameResult, error) {
	defer s.metrics.Start(OpCheckIn)()

	session, err := s.governor.Get(sessionID, user.ID)
	if err != nil {
		return nil, err
	}
	if session.Locked {
		return nil, ErrSessionLocked
	}

	detection, err := s.faces.Detect(ctx, frame)
	if err != nil {
		// an unreachable service costs nothing; an unusable answer does
		if errors.Is(err, face.ErrDetectionFailed) {
			return s.fail(ctx, user, sessionID, StatusDetectionFailed, "Face detection failed. Please try again.", err)
		}
		return nil, err
	}
	switch detection.Outcome {
	case face.OutcomeNoFace:
		return s.fail(ctx, user, sessionID, StatusNoFace, "No face detected. Please position your face in front of the camera.", nil)
	case face.OutcomeMultipleFaces:
		return s.fail(ctx, user, sessionID, StatusMultipleFaces, "Multiple faces detected. Only one person is allowed.", nil)
	}

	emp, err := s.employees.Lookup(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	reference, err := s.employees.ReferencePhoto(ctx, emp)
	if err != nil {
		return nil, err
	}
	if compressed, err := face.Recompress(reference, s.config.JPEGQuality); err == nil {
		reference = compressed
	} else {
		s.logger.Debug("reference photo recompression skipped", "error", err, "user_id", user.ID)
	}

	comparison, err := s.faces.Compare(ctx, frame, reference)
	if err != nil {
		return s.fail(ctx, user, sessionID, StatusVerificationError, "Face verification failed. Please try again.", err)
	}
	if !comparison.Match {
		msg := fmt.Sprintf("Access denied. Only %s (authorized user) can take attendance from this account.", emp.Name)
		return s.fail(ctx, user, sessionID, StatusMismatch, msg, nil)
	}

	return s.verified(ctx, sessionID, emp)
}

func (s *Service) verified(ctx context.Context, sessionID string, emp *employee.Employee) (*FrameResult, error) {
	record, err := s.attendance.Record(ctx, attendance.CheckIn{
		UserID:       emp.ID,
		EmployeeName: emp.Name,
		Department:   emp.Department,
		At:           s.clock.Now(),
	})
	if err != nil {
		if errors.Is(err, attendance.ErrAttendanceAlreadyTaken) {
			s.governor.Close(sessionID)
		}
		return nil, err
	}
	s.governor.Close(sessionID)

	result := &FrameResult{
		Status:   StatusVerified,
		Matched:  true,
		Message:  fmt.Sprintf("Attendance recorded. Welcome, %s!", emp.Name),
		Record:   record,
		Late:     record.IsLate(),
		Redirect: "/dashboard",
	}

	t, err := s.timers.Start(ctx, emp.ID, record.CheckInAt)
	if err != nil {
		s.logger.Error("failed to start work timer after check-in", "error", err, "user_id", emp.ID)
	} else {
		result.Timer = t
	}

	if err := s.employees.TouchSession(ctx, emp.ID); err != nil {
		s.logger.Warn("failed to update employee session", "error", err, "user_id", emp.ID)
	}

	s.logger.Info("check-in verified", "user_id", emp.ID, "status", record.Status)
	return result, nil
}

// fail burns one attempt. On the last one the session locks and the caller's
// token is revoked.
func (s *Service) fail(ctx context.Context, user *auth.User, sessionID, status, message string, cause error) (*FrameResult, error) {
	session, err := s.governor.Fail(sessionID, user.ID)
	if err != nil {
		return nil, err
	}

	result := &FrameResult{
		Status:       status,
		Message:      message,
		AttemptsLeft: session.AttemptsLeft,
	}
	if cause != nil {
		result.Error = cause.Error()
	}

	s.logger.Warn("check-in attempt failed",
		"user_id", user.ID,
		"session_id", sessionID,
		"status", status,
		"attempts_left", session.AttemptsLeft)

	if !session.Locked {
		return result, nil
	}

	result.Locked = true
	result.Logout = true
	result.Message = lockedMessage
	result.RedirectAfterMs = s.config.LockoutDelay.Milliseconds()

	if user.TokenID != "" {
		if err := s.revoker.Revoke(ctx, user.TokenID, user.TokenExpiresAt); err != nil {
			s.logger.Error("failed to revoke token after lockout", "error", err, "user_id", user.ID)
		}
	}
	s.logger.Warn("check-in session locked, forcing logout", "user_id", user.ID, "session_id", sessionID)
	return result, nil
}

// TakeLateNotice returns the caller's pending late-arrival notice once.
func (s *Service) TakeLateNotice(ctx context.Context, userID int64) (*LateNotice, error) {
	notice, err := s.notices.TakeLate(ctx, userID)
	if err != nil {
		s.logger.Error("failed to read late notice", "error", err, "user_id", userID)
		return nil, err
	}
	return notice, nil
}
