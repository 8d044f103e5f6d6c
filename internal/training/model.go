package training

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownForType = errors.New("unknown training visibility type")

// ForType is the visibility/eligibility policy of a training.
type ForType string

const (
	ForEveryone ForType = "EVERYONE"
	ForLimited  ForType = "LIMITED"
)

// ParseForType maps the stored string to the enum. Unknown values are an
// error, never a silent default: a wrong guess here decides who is
// allowed to see a training.
func ParseForType(s string) (ForType, error) {
	switch ForType(s) {
	case ForEveryone:
		return ForEveryone, nil
	case ForLimited:
		return ForLimited, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownForType, s)
	}
}

// Status is the participation state of a training_user record.
// INVITED can move to AGREED or DENIED; AGREED can move to CANCELED.
// DENIED and CANCELED are terminal.
type Status string

const (
	StatusInvited  Status = "INVITED"
	StatusAgreed   Status = "AGREED"
	StatusDenied   Status = "DENIED"
	StatusCanceled Status = "CANCELED"
)

// TrainingRow is the persisted shape of a training. Timestamps are
// stored as RFC3339 UTC strings so that string comparison in SQL agrees
// with chronological order.
type TrainingRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	FreeSlots   int            `db:"free_slots"`
	ForType     string         `db:"for_type"`
	Time        string         `db:"time"`
	Duration    int            `db:"duration"`
	IsCanceled  bool           `db:"is_canceled"`
	CreatedAt   sql.NullString `db:"created_at"`
	CoachID     int64          `db:"coach_id"`
	CoachName   string         `db:"coach_name"`
	GymName     string         `db:"gym_name"`
}

// TrainingUserRow is the persisted participation record. The local
// cache only ever holds the rows of the signed-in user.
type TrainingUserRow struct {
	ID         int64          `db:"id"`
	TrainingID int64          `db:"training_id"`
	UserID     int64          `db:"user_id"`
	Status     string         `db:"status"`
	InvitedAt  sql.NullString `db:"invited_at"`
	BookedAt   sql.NullString `db:"booked_at"`
	CanceledAt sql.NullString `db:"canceled_at"`
}

// Training is the in-memory object handed to UI code.
type Training struct {
	ID          int64
	Title       string
	Description string
	FreeSlots   int
	ForType     ForType
	Time        time.Time
	Duration    int // minutes
	IsCanceled  bool
	CreatedAt   *time.Time
	CoachID     int64
	CoachName   string
	GymName     string
}

type TrainingUser struct {
	ID         int64
	TrainingID int64
	UserID     int64
	Status     Status
	InvitedAt  *time.Time
	BookedAt   *time.Time
	CanceledAt *time.Time
}
