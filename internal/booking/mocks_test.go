package booking

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fitimprove/internal/api"
	"fitimprove/internal/training"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) UpsertTraining(ctx context.Context, row training.TrainingRow) error {
	return m.Called(ctx, row).Error(0)
}

func (m *MockRepository) UpsertTrainingUser(ctx context.Context, row training.TrainingUserRow) error {
	return m.Called(ctx, row).Error(0)
}

func (m *MockRepository) TrainingExists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetTraining(ctx context.Context, id int64) (*training.TrainingRow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*training.TrainingRow), args.Error(1)
}

func (m *MockRepository) GetTrainingUser(ctx context.Context, trainingID, userID int64) (*training.TrainingUserRow, error) {
	args := m.Called(ctx, trainingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*training.TrainingUserRow), args.Error(1)
}

func (m *MockRepository) MarkInvitationAgreed(ctx context.Context, trainingID, userID int64, bookedAt string) (bool, error) {
	args := m.Called(ctx, trainingID, userID, bookedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkInvitationDenied(ctx context.Context, trainingID, userID int64) (bool, error) {
	args := m.Called(ctx, trainingID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) CancelAgreed(ctx context.Context, trainingID, userID int64, canceledAt string) (bool, error) {
	args := m.Called(ctx, trainingID, userID, canceledAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetUpcoming(ctx context.Context, userID int64) ([]training.TrainingRow, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]training.TrainingRow), args.Error(1)
}

func (m *MockRepository) GetTrainingsInInterval(ctx context.Context, userID int64, start, end time.Time) ([]training.TrainingRow, error) {
	args := m.Called(ctx, userID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]training.TrainingRow), args.Error(1)
}

func (m *MockRepository) GetCoachTrainings(ctx context.Context, coachID int64) ([]training.TrainingRow, error) {
	args := m.Called(ctx, coachID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]training.TrainingRow), args.Error(1)
}

func (m *MockRepository) ClearAll(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRepository) EnsureDeviceID(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) LastSyncTime(ctx context.Context) (*time.Time, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockRepository) SetLastSyncTime(ctx context.Context, t time.Time) error {
	return m.Called(ctx, t).Error(0)
}

type MockClient struct{ mock.Mock }

func (m *MockClient) GetCoachTrainings(ctx context.Context) ([]api.TrainingDTO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.TrainingDTO), args.Error(1)
}

func (m *MockClient) GetAttendanceInWindow(ctx context.Context, start, end time.Time) ([]api.TrainingUserDTO, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.TrainingUserDTO), args.Error(1)
}

func (m *MockClient) GetEnrolled(ctx context.Context) ([]api.TrainingUserDTO, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.TrainingUserDTO), args.Error(1)
}

func (m *MockClient) GetTraining(ctx context.Context, id int64) (*api.TrainingDTO, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.TrainingDTO), args.Error(1)
}

func (m *MockClient) Enroll(ctx context.Context, trainingID int64) (*api.TrainingUserDTO, error) {
	args := m.Called(ctx, trainingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.TrainingUserDTO), args.Error(1)
}

func (m *MockClient) CancelEnrollment(ctx context.Context, trainingID int64) error {
	return m.Called(ctx, trainingID).Error(0)
}

func (m *MockClient) AcceptInvitation(ctx context.Context, trainingID int64) error {
	return m.Called(ctx, trainingID).Error(0)
}

func (m *MockClient) DenyInvitation(ctx context.Context, trainingID int64) error {
	return m.Called(ctx, trainingID).Error(0)
}
