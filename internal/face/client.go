package face

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/metrics"
)

const (
	OpDetect  = "face.detect"
	OpCompare = "face.compare"
)

type Client struct {
	detectionURL   string
	comparisonURL  string
	compareTimeout time.Duration
	http           *http.Client
	metrics        metrics.Recorder
	logger         *slog.Logger
}

func NewClient(cfg internal.FaceConfig, httpClient *http.Client, recorder metrics.Recorder, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	timeout := cfg.CompareTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		detectionURL:   strings.TrimRight(cfg.DetectionURL, "/"),
		comparisonURL:  strings.TrimRight(cfg.ComparisonURL, "/"),
		compareTimeout: timeout,
		http:           httpClient,
		metrics:        recorder,
		logger:         logger,
	}
}

// Detect asks the detection service how many faces are in frame. It has no
// timeout of its own; ctx bounds it. Anything but a clear answer is an error.
func (c *Client) Detect(ctx context.Context, frame string) (Detection, error) {
	defer c.metrics.Start(OpDetect)()

	resp, err := c.post(ctx, c.detectionURL+"/detect_face", detectRequest{Image: frame})
	if err != nil {
		if ctx.Err() != nil {
			return Detection{}, ctx.Err()
		}
		c.logger.Error("face detection service unreachable", "error", err, "url", c.detectionURL)
		return Detection{}, ErrServiceUnavailable.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("face detection returned an error status", "status", resp.StatusCode)
		return Detection{}, ErrDetectionFailed.WithCause(fmt.Errorf("detection service returned status %d", resp.StatusCode))
	}

	var body detectResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Detection{}, ErrDetectionFailed.WithCause(fmt.Errorf("failed to decode detection response: %w", err))
	}

	switch {
	case body.Success && body.FaceDetected:
		return Detection{Outcome: OutcomeSingleFace, FaceCount: 1, Message: body.Message}, nil
	case body.ErrorType == "no_face":
		return Detection{Outcome: OutcomeNoFace, FaceCount: 0, Message: body.Message}, nil
	case body.ErrorType == "multiple_faces":
		return Detection{Outcome: OutcomeMultipleFaces, FaceCount: body.FaceCount, Message: body.Message}, nil
	}

	return Detection{}, ErrDetectionFailed.WithCause(fmt.Errorf("unrecognised detection response: success=%t error_type=%q", body.Success, body.ErrorType))
}

// Compare checks frame against reference. It aborts after the configured
// timeout; any failure is reported as a non-match together with the error.
func (c *Client) Compare(ctx context.Context, frame, reference string) (Comparison, error) {
	defer c.metrics.Start(OpCompare)()

	ctx, cancel := context.WithTimeout(ctx, c.compareTimeout)
	defer cancel()

	resp, err := c.post(ctx, c.comparisonURL+"/compare", compareRequest{Image1: frame, Image2: reference})
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("face comparison timed out", "timeout", c.compareTimeout)
		} else {
			c.logger.Error("face comparison service unreachable", "error", err, "url", c.comparisonURL)
		}
		return Comparison{}, ErrComparisonFailed.WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("face comparison returned an error status", "status", resp.StatusCode)
		return Comparison{}, ErrComparisonFailed.WithCause(fmt.Errorf("comparison service returned status %d", resp.StatusCode))
	}

	var body compareResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Comparison{}, ErrComparisonFailed.WithCause(fmt.Errorf("failed to decode comparison response: %w", err))
	}

	return Comparison{Match: body.Match, Distance: body.Distance, Message: body.Message}, nil
}

func (c *Client) post(ctx context.Context, url string, payload interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.http.Do(req)
}
