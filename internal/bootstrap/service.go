// Package bootstrap rebuilds the local schedule cache from the server.
// A full run happens once per session-establishing event (login,
// app-foreground with a stored session); Refresh is the cheaper
// incremental path used between those events.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"fitimprove/internal/api"
	"fitimprove/internal/logger"
	"fitimprove/internal/metrics"
	"fitimprove/internal/session"
	"fitimprove/internal/training"
)

// attendanceEpoch is the lower bound of the attendance-history window
// on a full bootstrap. Nothing in the product predates it.
var attendanceEpoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

type Service interface {
	Run(ctx context.Context, sess *session.Session) error
	Refresh(ctx context.Context, sess *session.Session) error
}

type service struct {
	repo training.Repository
	api  api.Client
	now  func() time.Time
}

func NewService(repo training.Repository, client api.Client) Service {
	return &service{
		repo: repo,
		api:  client,
		now:  time.Now,
	}
}

// Run wipes and repopulates the cache for the signed-in identity. Any
// network error aborts the whole run and propagates; the caller is
// expected to redirect to re-authentication. Per-row storage errors are
// logged and the row is skipped, never a crash: the cache is a read
// optimization, not a system of record.
func (s *service) Run(ctx context.Context, sess *session.Session) error {
	var err error
	switch sess.Role {
	case session.RoleCoach:
		err = s.runCoach(ctx, sess)
	case session.RoleUser:
		err = s.runUser(ctx, sess)
	default:
		err = fmt.Errorf("bootstrap: unsupported role %q", sess.Role)
	}

	if err != nil {
		metrics.RecordBootstrap(string(sess.Role), "error")
		return err
	}

	metrics.RecordBootstrap(string(sess.Role), "success")
	return nil
}

func (s *service) runCoach(ctx context.Context, sess *session.Session) error {
	fetchedAt := s.now()

	dtos, err := s.api.GetCoachTrainings(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: fetch coach trainings: %w", err)
	}

	if err := s.repo.ClearAll(ctx); err != nil {
		return fmt.Errorf("bootstrap: clear cache: %w", err)
	}

	for _, dto := range dtos {
		s.storeTraining(ctx, dto)
	}

	s.markSynced(ctx, fetchedAt)
	logger.Infof("bootstrap: coach %d cached %d trainings", sess.UserID, len(dtos))
	return nil
}

func (s *service) runUser(ctx context.Context, sess *session.Session) error {
	now := s.now()

	attendance, err := s.api.GetAttendanceInWindow(ctx, attendanceEpoch, now)
	if err != nil {
		return fmt.Errorf("bootstrap: fetch attendance: %w", err)
	}

	enrolled, err := s.api.GetEnrolled(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: fetch enrolled: %w", err)
	}

	records := make([]api.TrainingUserDTO, 0, len(attendance)+len(enrolled))
	records = append(records, attendance...)
	records = append(records, enrolled...)

	// One fetch per unique referenced training, sequentially: ordering
	// (training before participation record) matters more than latency
	// here, and the fetches run before the cache is touched so an abort
	// leaves the previous contents intact.
	ids := uniqueTrainingIDs(records)
	fetched := make(map[int64]api.TrainingDTO, len(ids))
	for _, id := range ids {
		dto, err := s.api.GetTraining(ctx, id)
		if err != nil {
			return fmt.Errorf("bootstrap: fetch training %d: %w", id, err)
		}
		fetched[id] = *dto
	}

	if err := s.repo.ClearAll(ctx); err != nil {
		return fmt.Errorf("bootstrap: clear cache: %w", err)
	}

	stored := make(map[int64]bool, len(ids))
	for _, id := range ids {
		stored[id] = s.storeTraining(ctx, fetched[id])
	}

	for _, rec := range records {
		if !stored[rec.TrainingID] {
			// Writing the participation record anyway would leave it
			// pointing at a training the cache does not hold.
			logger.Warnf("bootstrap: skipping training_user %d: training %d not cached", rec.ID, rec.TrainingID)
			metrics.RecordCacheWriteFailure("training_user")
			continue
		}
		s.storeTrainingUser(ctx, rec, sess.UserID)
	}

	s.markSynced(ctx, now)
	logger.Infof("bootstrap: user %d cached %d trainings, %d participation records", sess.UserID, len(ids), len(records))
	return nil
}

// Refresh applies attendance changes since the last successful sync
// without wiping the cache. With no sync marker it falls back to a full
// run.
func (s *service) Refresh(ctx context.Context, sess *session.Session) error {
	if sess.Role == session.RoleCoach {
		return s.Run(ctx, sess)
	}

	since, err := s.repo.LastSyncTime(ctx)
	if err != nil {
		logger.Errorf("refresh: read last sync time: %v", err)
		return s.Run(ctx, sess)
	}
	if since == nil {
		return s.Run(ctx, sess)
	}

	now := s.now()
	records, err := s.api.GetAttendanceInWindow(ctx, *since, now)
	if err != nil {
		return fmt.Errorf("refresh: fetch attendance since %s: %w", since.Format(time.RFC3339), err)
	}

	for _, rec := range records {
		if !s.ensureTrainingCached(ctx, rec.TrainingID) {
			metrics.RecordCacheWriteFailure("training_user")
			continue
		}
		s.storeTrainingUser(ctx, rec, sess.UserID)
	}

	if err := s.repo.SetLastSyncTime(ctx, now); err != nil {
		logger.Errorf("refresh: save last sync time: %v", err)
	}

	logger.Debugf("refresh: applied %d participation records since %s", len(records), since.Format(time.RFC3339))
	return nil
}

// ensureTrainingCached lazily fetches a referenced training that is not
// in the cache yet. A failed fetch is logged and not retried; the
// caller skips the referencing record.
func (s *service) ensureTrainingCached(ctx context.Context, id int64) bool {
	exists, err := s.repo.TrainingExists(ctx, id)
	if err != nil {
		logger.Errorf("refresh: check training %d: %v", id, err)
		return false
	}
	if exists {
		return true
	}

	dto, err := s.api.GetTraining(ctx, id)
	if err != nil {
		logger.Errorf("refresh: fetch training %d: %v", id, err)
		return false
	}

	return s.storeTraining(ctx, *dto)
}

func (s *service) storeTraining(ctx context.Context, dto api.TrainingDTO) bool {
	row, err := training.RowFromDTO(dto)
	if err != nil {
		logger.Errorf("bootstrap: map training %d: %v", dto.ID, err)
		metrics.RecordCacheWriteFailure("trainings")
		return false
	}

	if err := s.repo.UpsertTraining(ctx, row); err != nil {
		logger.Errorf("bootstrap: store training %d: %v", dto.ID, err)
		metrics.RecordCacheWriteFailure("trainings")
		return false
	}

	metrics.RecordCacheWrite("trainings")
	return true
}

func (s *service) storeTrainingUser(ctx context.Context, dto api.TrainingUserDTO, userID int64) {
	row, err := training.UserRowFromDTO(dto, userID)
	if err != nil {
		logger.Errorf("bootstrap: map training_user %d: %v", dto.ID, err)
		metrics.RecordCacheWriteFailure("training_user")
		return
	}

	if err := s.repo.UpsertTrainingUser(ctx, row); err != nil {
		logger.Errorf("bootstrap: store training_user %d: %v", dto.ID, err)
		metrics.RecordCacheWriteFailure("training_user")
		return
	}

	metrics.RecordCacheWrite("training_user")
}

// markSynced records at as the sync marker. It must be the end of the
// fetched window, not the completion time: changes landing on the
// server while the per-id fetch loop runs were not in the responses,
// and a later marker would let the next Refresh skip right over them.
func (s *service) markSynced(ctx context.Context, at time.Time) {
	if err := s.repo.SetLastSyncTime(ctx, at); err != nil {
		logger.Errorf("bootstrap: save last sync time: %v", err)
	}
}

func uniqueTrainingIDs(records []api.TrainingUserDTO) []int64 {
	seen := make(map[int64]bool, len(records))
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		if seen[rec.TrainingID] {
			continue
		}
		seen[rec.TrainingID] = true
		ids = append(ids, rec.TrainingID)
	}
	return ids
}
