package training

import (
	"context"
	"time"
)

type Repository interface {
	UpsertTraining(ctx context.Context, row TrainingRow) error
	UpsertTrainingUser(ctx context.Context, row TrainingUserRow) error
	TrainingExists(ctx context.Context, id int64) (bool, error)
	GetTraining(ctx context.Context, id int64) (*TrainingRow, error)
	GetTrainingUser(ctx context.Context, trainingID, userID int64) (*TrainingUserRow, error)

	MarkInvitationAgreed(ctx context.Context, trainingID, userID int64, bookedAt string) (bool, error)
	MarkInvitationDenied(ctx context.Context, trainingID, userID int64) (bool, error)
	CancelAgreed(ctx context.Context, trainingID, userID int64, canceledAt string) (bool, error)

	GetUpcoming(ctx context.Context, userID int64) ([]TrainingRow, error)
	GetTrainingsInInterval(ctx context.Context, userID int64, start, end time.Time) ([]TrainingRow, error)
	GetCoachTrainings(ctx context.Context, coachID int64) ([]TrainingRow, error)

	ClearAll(ctx context.Context) error

	EnsureDeviceID(ctx context.Context) (string, error)
	LastSyncTime(ctx context.Context) (*time.Time, error)
	SetLastSyncTime(ctx context.Context, t time.Time) error
}
