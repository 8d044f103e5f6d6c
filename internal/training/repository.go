package training

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	metaKeyDeviceID = "device_id"
	metaKeyLastSync = "last_sync_time"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertTraining(ctx context.Context, row TrainingRow) error {
	query := `
		INSERT INTO trainings (id, title, description, free_slots, for_type, time, duration, is_canceled, created_at, coach_id, coach_name, gym_name)
		VALUES (:id, :title, :description, :free_slots, :for_type, :time, :duration, :is_canceled, :created_at, :coach_id, :coach_name, :gym_name)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			free_slots = excluded.free_slots,
			for_type = excluded.for_type,
			time = excluded.time,
			duration = excluded.duration,
			is_canceled = excluded.is_canceled,
			created_at = excluded.created_at,
			coach_id = excluded.coach_id,
			coach_name = excluded.coach_name,
			gym_name = excluded.gym_name
	`

	_, err := r.db.NamedExecContext(ctx, query, row)
	return err
}

func (r *repository) UpsertTrainingUser(ctx context.Context, row TrainingUserRow) error {
	query := `
		INSERT INTO training_user (id, training_id, user_id, status, invited_at, booked_at, canceled_at)
		VALUES (:id, :training_id, :user_id, :status, :invited_at, :booked_at, :canceled_at)
		ON CONFLICT(id) DO UPDATE SET
			training_id = excluded.training_id,
			user_id = excluded.user_id,
			status = excluded.status,
			invited_at = excluded.invited_at,
			booked_at = excluded.booked_at,
			canceled_at = excluded.canceled_at
	`

	_, err := r.db.NamedExecContext(ctx, query, row)
	return err
}

func (r *repository) TrainingExists(ctx context.Context, id int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM trainings WHERE id = ?)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) GetTraining(ctx context.Context, id int64) (*TrainingRow, error) {
	query := `
		SELECT id, title, description, free_slots, for_type, time, duration, is_canceled, created_at, coach_id, coach_name, gym_name
		FROM trainings
		WHERE id = ?
	`

	var row TrainingRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (r *repository) GetTrainingUser(ctx context.Context, trainingID, userID int64) (*TrainingUserRow, error) {
	// A rebooked training gets a fresh server-assigned record id, so an
	// old CANCELED row may coexist with the active one; the newest id
	// is the current state.
	query := `
		SELECT id, training_id, user_id, status, invited_at, booked_at, canceled_at
		FROM training_user
		WHERE training_id = ? AND user_id = ?
		ORDER BY id DESC
		LIMIT 1
	`

	var row TrainingUserRow
	err := r.db.GetContext(ctx, &row, query, trainingID, userID)
	if err != nil {
		return nil, err
	}

	return &row, nil
}

func (r *repository) MarkInvitationAgreed(ctx context.Context, trainingID, userID int64, bookedAt string) (bool, error) {
	query := `
		UPDATE training_user
		SET status = 'AGREED', booked_at = ?
		WHERE training_id = ? AND user_id = ? AND status = 'INVITED'
	`

	return r.conditionalUpdate(ctx, query, bookedAt, trainingID, userID)
}

func (r *repository) MarkInvitationDenied(ctx context.Context, trainingID, userID int64) (bool, error) {
	query := `
		UPDATE training_user
		SET status = 'DENIED'
		WHERE training_id = ? AND user_id = ? AND status = 'INVITED'
	`

	return r.conditionalUpdate(ctx, query, trainingID, userID)
}

func (r *repository) CancelAgreed(ctx context.Context, trainingID, userID int64, canceledAt string) (bool, error) {
	query := `
		UPDATE training_user
		SET status = 'CANCELED', canceled_at = ?
		WHERE training_id = ? AND user_id = ? AND status = 'AGREED'
	`

	return r.conditionalUpdate(ctx, query, canceledAt, trainingID, userID)
}

// conditionalUpdate reports whether the guarded transition matched a
// row. Zero rows affected means the record was not in the required
// state; callers treat that as a no-op, not an error.
func (r *repository) conditionalUpdate(ctx context.Context, query string, args ...interface{}) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

const trainingColumns = `t.id, t.title, t.description, t.free_slots, t.for_type, t.time, t.duration, t.is_canceled, t.created_at, t.coach_id, t.coach_name, t.gym_name`

func (r *repository) GetUpcoming(ctx context.Context, userID int64) ([]TrainingRow, error) {
	query := `
		SELECT ` + trainingColumns + `
		FROM trainings t
		JOIN training_user tu ON tu.training_id = t.id
		WHERE tu.user_id = ? AND tu.status = 'AGREED' AND t.is_canceled = 0
		ORDER BY t.time ASC
	`

	var rows []TrainingRow
	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *repository) GetTrainingsInInterval(ctx context.Context, userID int64, start, end time.Time) ([]TrainingRow, error) {
	query := `
		SELECT ` + trainingColumns + `
		FROM trainings t
		JOIN training_user tu ON tu.training_id = t.id
		WHERE tu.user_id = ? AND tu.status = 'AGREED' AND t.is_canceled = 0
			AND t.time BETWEEN ? AND ?
		ORDER BY t.time ASC
	`

	var rows []TrainingRow
	err := r.db.SelectContext(ctx, &rows, query, userID, FormatTime(start), FormatTime(end))
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (r *repository) GetCoachTrainings(ctx context.Context, coachID int64) ([]TrainingRow, error) {
	query := `
		SELECT id, title, description, free_slots, for_type, time, duration, is_canceled, created_at, coach_id, coach_name, gym_name
		FROM trainings
		WHERE coach_id = ?
		ORDER BY time ASC
	`

	var rows []TrainingRow
	err := r.db.SelectContext(ctx, &rows, query, coachID)
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// ClearAll empties the cache for a fresh bootstrap or logout. The
// device id survives: it identifies the install, not the session.
func (r *repository) ClearAll(ctx context.Context) error {
	statements := []string{
		`DELETE FROM training_user`,
		`DELETE FROM trainings`,
		`DELETE FROM sync_meta WHERE key = '` + metaKeyLastSync + `'`,
	}

	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

func (r *repository) getMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM sync_meta WHERE key = ?`, key)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (r *repository) setMeta(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO sync_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	_, err := r.db.ExecContext(ctx, query, key, value)
	return err
}

func (r *repository) EnsureDeviceID(ctx context.Context) (string, error) {
	id, err := r.getMeta(ctx, metaKeyDeviceID)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", err
	}

	id = uuid.NewString()
	if err := r.setMeta(ctx, metaKeyDeviceID, id); err != nil {
		return "", err
	}

	return id, nil
}

func (r *repository) LastSyncTime(ctx context.Context) (*time.Time, error) {
	value, err := r.getMeta(ctx, metaKeyLastSync)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	t, err := parseStoredTime(value)
	if err != nil {
		return nil, err
	}

	return &t, nil
}

func (r *repository) SetLastSyncTime(ctx context.Context, t time.Time) error {
	return r.setMeta(ctx, metaKeyLastSync, FormatTime(t))
}
