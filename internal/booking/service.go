// Package booking drives the participation lifecycle of a training_user
// record: INVITED can move to AGREED or DENIED, AGREED to CANCELED.
// Every operation talks to the server first and mirrors the result into
// the local cache only after the server accepted it; the server is the
// source of truth, the cache a read optimization.
package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fitimprove/internal/api"
	"fitimprove/internal/logger"
	"fitimprove/internal/metrics"
	"fitimprove/internal/session"
	"fitimprove/internal/training"
)

var (
	ErrNoFreeSlots       = errors.New("training has no free slots")
	ErrAlreadyEnrolled   = errors.New("already enrolled in this training")
	ErrInvitationPending = errors.New("invitation pending for this training")
	ErrNotEnrolled       = errors.New("no active enrollment for this training")
	ErrNotInvited        = errors.New("no pending invitation for this training")
)

type Service interface {
	Book(ctx context.Context, trainingID int64) (*training.TrainingUser, error)
	Cancel(ctx context.Context, trainingID int64) error
	AcceptInvitation(ctx context.Context, trainingID int64) error
	DenyInvitation(ctx context.Context, trainingID int64) error
}

type service struct {
	repo training.Repository
	api  api.Client
	sess *session.Session
	now  func() time.Time
}

func NewService(repo training.Repository, client api.Client, sess *session.Session) Service {
	return &service{
		repo: repo,
		api:  client,
		sess: sess,
		now:  time.Now,
	}
}

// Book enrolls the user into a training. Self-initiated booking has no
// INVITED step: the server answers with an already-AGREED record.
func (s *service) Book(ctx context.Context, trainingID int64) (*training.TrainingUser, error) {
	dto, cached, err := s.resolveTraining(ctx, trainingID)
	if err != nil {
		return nil, err
	}

	if dto.IsCanceled || dto.FreeSlots <= 0 {
		return nil, ErrNoFreeSlots
	}

	existing, err := s.repo.GetTrainingUser(ctx, trainingID, s.sess.UserID)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	if existing != nil {
		switch existing.Status {
		case string(training.StatusAgreed):
			return nil, ErrAlreadyEnrolled
		case string(training.StatusInvited):
			// A pending invitation already reserves the spot; enrolling
			// on top of it would create a second record for the same
			// training. The caller should answer the invitation instead.
			return nil, ErrInvitationPending
		}
	}

	record, err := s.api.Enroll(ctx, trainingID)
	if err != nil {
		return nil, fmt.Errorf("booking: enroll in training %d: %w", trainingID, err)
	}

	// The training must be cached before its participation record; the
	// mirror write is skipped if that fails.
	if s.mirrorTraining(ctx, dto, cached) {
		s.mirrorTrainingUser(ctx, *record)
	}

	metrics.RecordBooking()

	row, err := training.UserRowFromDTO(*record, s.sess.UserID)
	if err != nil {
		return nil, err
	}
	domain, err := row.Domain()
	if err != nil {
		return nil, err
	}
	return &domain, nil
}

// Cancel withdraws an AGREED enrollment. A record in any other state is
// left untouched and the server is not called.
func (s *service) Cancel(ctx context.Context, trainingID int64) error {
	existing, err := s.repo.GetTrainingUser(ctx, trainingID, s.sess.UserID)
	if err == sql.ErrNoRows {
		return ErrNotEnrolled
	}
	if err != nil {
		return err
	}
	if existing.Status != string(training.StatusAgreed) {
		return ErrNotEnrolled
	}

	if err := s.api.CancelEnrollment(ctx, trainingID); err != nil {
		return fmt.Errorf("booking: cancel enrollment in training %d: %w", trainingID, err)
	}

	changed, err := s.repo.CancelAgreed(ctx, trainingID, s.sess.UserID, training.FormatTime(s.now()))
	if err != nil {
		// The server accepted the cancellation; a failed mirror write
		// degrades to a stale cache until the next refresh.
		logger.Errorf("booking: mirror cancellation of training %d: %v", trainingID, err)
	} else if !changed {
		logger.Warnf("booking: cancellation of training %d matched no AGREED row", trainingID)
	}

	metrics.RecordCancellation()
	return nil
}

// AcceptInvitation moves a pending invitation to AGREED.
func (s *service) AcceptInvitation(ctx context.Context, trainingID int64) error {
	if err := s.requireInvited(ctx, trainingID); err != nil {
		return err
	}

	if err := s.api.AcceptInvitation(ctx, trainingID); err != nil {
		return fmt.Errorf("booking: accept invitation for training %d: %w", trainingID, err)
	}

	if _, err := s.repo.MarkInvitationAgreed(ctx, trainingID, s.sess.UserID, training.FormatTime(s.now())); err != nil {
		logger.Errorf("booking: mirror accepted invitation for training %d: %v", trainingID, err)
	}

	metrics.RecordInvitationReply("accepted")
	return nil
}

// DenyInvitation declines a pending invitation. DENIED is terminal.
func (s *service) DenyInvitation(ctx context.Context, trainingID int64) error {
	if err := s.requireInvited(ctx, trainingID); err != nil {
		return err
	}

	if err := s.api.DenyInvitation(ctx, trainingID); err != nil {
		return fmt.Errorf("booking: deny invitation for training %d: %w", trainingID, err)
	}

	if _, err := s.repo.MarkInvitationDenied(ctx, trainingID, s.sess.UserID); err != nil {
		logger.Errorf("booking: mirror denied invitation for training %d: %v", trainingID, err)
	}

	metrics.RecordInvitationReply("denied")
	return nil
}

func (s *service) requireInvited(ctx context.Context, trainingID int64) error {
	existing, err := s.repo.GetTrainingUser(ctx, trainingID, s.sess.UserID)
	if err == sql.ErrNoRows {
		return ErrNotInvited
	}
	if err != nil {
		return err
	}
	if existing.Status != string(training.StatusInvited) {
		return ErrNotInvited
	}
	return nil
}

// resolveTraining finds the training locally, falling back to a server
// fetch for trainings not cached yet (e.g. booked straight from a
// search result). Reports whether the cache already held it.
func (s *service) resolveTraining(ctx context.Context, trainingID int64) (api.TrainingDTO, bool, error) {
	row, err := s.repo.GetTraining(ctx, trainingID)
	if err == nil {
		return api.TrainingDTO{
			ID:         row.ID,
			Title:      row.Title,
			FreeSlots:  row.FreeSlots,
			ForType:    row.ForType,
			Time:       row.Time,
			Duration:   row.Duration,
			IsCanceled: row.IsCanceled,
			CoachID:    row.CoachID,
			CoachName:  row.CoachName,
			GymName:    row.GymName,
		}, true, nil
	}
	if err != sql.ErrNoRows {
		return api.TrainingDTO{}, false, err
	}

	dto, err := s.api.GetTraining(ctx, trainingID)
	if err != nil {
		return api.TrainingDTO{}, false, fmt.Errorf("booking: fetch training %d: %w", trainingID, err)
	}

	return *dto, false, nil
}

func (s *service) mirrorTraining(ctx context.Context, dto api.TrainingDTO, cached bool) bool {
	if cached {
		return true
	}

	row, err := training.RowFromDTO(dto)
	if err != nil {
		logger.Errorf("booking: map training %d: %v", dto.ID, err)
		return false
	}

	if err := s.repo.UpsertTraining(ctx, row); err != nil {
		logger.Errorf("booking: cache training %d: %v", dto.ID, err)
		metrics.RecordCacheWriteFailure("trainings")
		return false
	}

	metrics.RecordCacheWrite("trainings")
	return true
}

func (s *service) mirrorTrainingUser(ctx context.Context, dto api.TrainingUserDTO) {
	row, err := training.UserRowFromDTO(dto, s.sess.UserID)
	if err != nil {
		logger.Errorf("booking: map training_user %d: %v", dto.ID, err)
		return
	}

	if err := s.repo.UpsertTrainingUser(ctx, row); err != nil {
		logger.Errorf("booking: cache training_user %d: %v", dto.ID, err)
		metrics.RecordCacheWriteFailure("training_user")
		return
	}

	metrics.RecordCacheWrite("training_user")
}
