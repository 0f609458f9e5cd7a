package face

import (
	"github.com/frahmantamala/attendance-management/internal"
)

// Outcome is what the detector saw in a frame.
type Outcome string

const (
	OutcomeNoFace        Outcome = "no-face"
	OutcomeSingleFace    Outcome = "single-face"
	OutcomeMultipleFaces Outcome = "multiple-faces"
)

var (
	ErrServiceUnavailable = internal.NewExternalError(
		"Face service is unreachable. Make sure the detection service (port 5000) and the comparison service (port 5001) are running.",
		internal.ErrCodeFaceServiceUnavailable,
	)
	ErrDetectionFailed  = internal.NewExternalError("Face detection failed, please try again", internal.ErrCodeFaceDetectionFailed)
	ErrComparisonFailed = internal.NewExternalError("Face verification could not be completed", internal.ErrCodeFaceServiceUnavailable)
)

type Detection struct {
	Outcome   Outcome `json:"outcome"`
	FaceCount int     `json:"face_count"`
	Message   string  `json:"message,omitempty"`
}

func (d Detection) SingleFace() bool {
	return d.Outcome == OutcomeSingleFace
}

type Comparison struct {
	Match    bool    `json:"match"`
	Distance float64 `json:"distance,omitempty"`
	Message  string  `json:"message,omitempty"`
}

type detectRequest struct {
	Image string `json:"image"`
}

type detectResponse struct {
	Success      bool   `json:"success"`
	FaceDetected bool   `json:"face_detected"`
	ErrorType    string `json:"error_type"`
	FaceCount    int    `json:"face_count"`
	Message      string `json:"message"`
}

type compareRequest struct {
	Image1 string `json:"image1"`
	Image2 string `json:"image2"`
}

type compareResponse struct {
	Match    bool    `json:"match"`
	Distance float64 `json:"distance"`
	Message  string  `json:"message"`
}
