package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"

	"fitimprove/internal/metrics"
)

var ErrInvalidPayload = errors.New("invalid payload from server")

// APIError carries a non-2xx response back to the caller.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: server returned %d: %s", e.StatusCode, e.Body)
}

// Client is the remote collaborator of the cache layer: every network
// round-trip the cache performs goes through here.
type Client interface {
	GetCoachTrainings(ctx context.Context) ([]TrainingDTO, error)
	GetAttendanceInWindow(ctx context.Context, start, end time.Time) ([]TrainingUserDTO, error)
	GetEnrolled(ctx context.Context) ([]TrainingUserDTO, error)
	GetTraining(ctx context.Context, id int64) (*TrainingDTO, error)
	Enroll(ctx context.Context, trainingID int64) (*TrainingUserDTO, error)
	CancelEnrollment(ctx context.Context, trainingID int64) error
	AcceptInvitation(ctx context.Context, trainingID int64) error
	DenyInvitation(ctx context.Context, trainingID int64) error
}

type client struct {
	baseURL  string
	token    string
	deviceID string
	http     *http.Client
	limiter  *rate.Limiter
	validate *validator.Validate
}

func NewClient(baseURL, token, deviceID string, timeout time.Duration, requestsPerSecond float64) Client {
	return &client{
		baseURL:  baseURL,
		token:    token,
		deviceID: deviceID,
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		validate: validator.New(),
	}
}

func (c *client) do(ctx context.Context, endpoint, method, path string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Device-ID", c.deviceID)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(endpoint, "transport_error")
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	metrics.RecordAPIRequest(endpoint, strconv.Itoa(resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return nil
}

func (c *client) validateTrainings(dtos []TrainingDTO) error {
	for i := range dtos {
		if err := c.validate.Struct(&dtos[i]); err != nil {
			return fmt.Errorf("%w: training %d: %v", ErrInvalidPayload, dtos[i].ID, err)
		}
	}
	return nil
}

func (c *client) validateTrainingUsers(dtos []TrainingUserDTO) error {
	for i := range dtos {
		if err := c.validate.Struct(&dtos[i]); err != nil {
			return fmt.Errorf("%w: training_user %d: %v", ErrInvalidPayload, dtos[i].ID, err)
		}
	}
	return nil
}

func (c *client) GetCoachTrainings(ctx context.Context) ([]TrainingDTO, error) {
	var dtos []TrainingDTO
	if err := c.do(ctx, "get_coach_trainings", http.MethodGet, "/trainings/coach", &dtos); err != nil {
		return nil, err
	}
	if err := c.validateTrainings(dtos); err != nil {
		return nil, err
	}
	return dtos, nil
}

func (c *client) GetAttendanceInWindow(ctx context.Context, start, end time.Time) ([]TrainingUserDTO, error) {
	path := fmt.Sprintf("/training-users/attendance?start=%s&end=%s",
		start.UTC().Format(time.RFC3339), end.UTC().Format(time.RFC3339))

	var dtos []TrainingUserDTO
	if err := c.do(ctx, "get_attendance", http.MethodGet, path, &dtos); err != nil {
		return nil, err
	}
	if err := c.validateTrainingUsers(dtos); err != nil {
		return nil, err
	}
	return dtos, nil
}

func (c *client) GetEnrolled(ctx context.Context) ([]TrainingUserDTO, error) {
	var dtos []TrainingUserDTO
	if err := c.do(ctx, "get_enrolled", http.MethodGet, "/training-users/enrolled", &dtos); err != nil {
		return nil, err
	}
	if err := c.validateTrainingUsers(dtos); err != nil {
		return nil, err
	}
	return dtos, nil
}

func (c *client) GetTraining(ctx context.Context, id int64) (*TrainingDTO, error) {
	var dto TrainingDTO
	if err := c.do(ctx, "get_training", http.MethodGet, fmt.Sprintf("/trainings/%d", id), &dto); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&dto); err != nil {
		return nil, fmt.Errorf("%w: training %d: %v", ErrInvalidPayload, id, err)
	}
	return &dto, nil
}

func (c *client) Enroll(ctx context.Context, trainingID int64) (*TrainingUserDTO, error) {
	var dto TrainingUserDTO
	if err := c.do(ctx, "enroll", http.MethodPost, fmt.Sprintf("/trainings/%d/enroll", trainingID), &dto); err != nil {
		return nil, err
	}
	if err := c.validate.Struct(&dto); err != nil {
		return nil, fmt.Errorf("%w: training_user %d: %v", ErrInvalidPayload, dto.ID, err)
	}
	return &dto, nil
}

func (c *client) CancelEnrollment(ctx context.Context, trainingID int64) error {
	return c.do(ctx, "cancel_enrollment", http.MethodPost, fmt.Sprintf("/trainings/%d/cancel", trainingID), nil)
}

func (c *client) AcceptInvitation(ctx context.Context, trainingID int64) error {
	return c.do(ctx, "accept_invitation", http.MethodPost, fmt.Sprintf("/trainings/%d/invitation/accept", trainingID), nil)
}

func (c *client) DenyInvitation(ctx context.Context, trainingID int64) error {
	return c.do(ctx, "deny_invitation", http.MethodPost, fmt.Sprintf("/trainings/%d/invitation/deny", trainingID), nil)
}
