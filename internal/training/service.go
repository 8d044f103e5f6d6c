package training

import (
	"context"
	"time"
)

// Service is the read side used by UI code: everything answers from the
// local cache, nothing here touches the network.
type Service interface {
	Upcoming(ctx context.Context, userID int64) ([]Training, error)
	InInterval(ctx context.Context, userID int64, start, end time.Time) ([]Training, error)
	CoachSchedule(ctx context.Context, coachID int64) ([]Training, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Upcoming returns the user's agreed, non-canceled trainings ordered by
// start time. No lower time bound is applied; callers filter to the
// future when they need to.
func (s *service) Upcoming(ctx context.Context, userID int64) ([]Training, error) {
	rows, err := s.repo.GetUpcoming(ctx, userID)
	if err != nil {
		return nil, err
	}
	return DomainAll(rows)
}

// InInterval returns the same set bounded by [start, end], both ends
// inclusive. The calendar grid calls this with a whole-month window.
func (s *service) InInterval(ctx context.Context, userID int64, start, end time.Time) ([]Training, error) {
	rows, err := s.repo.GetTrainingsInInterval(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return DomainAll(rows)
}

func (s *service) CoachSchedule(ctx context.Context, coachID int64) ([]Training, error) {
	rows, err := s.repo.GetCoachTrainings(ctx, coachID)
	if err != nil {
		return nil, err
	}
	return DomainAll(rows)
}
