package training

import (
	"database/sql"
	"fmt"
	"time"

	"fitimprove/internal/api"
)

// Mapping between wire DTOs, persisted rows and domain objects. All
// functions here are pure; network and storage calls live in the
// services that use them.

const timeLayout = time.RFC3339

// FormatTime renders a timestamp the way the cache stores it.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// normalizeWireTime re-renders a server timestamp in the stored layout.
// Server payloads are RFC3339 but not always UTC; comparisons in SQL
// only work if every stored string uses one zone and one layout.
func normalizeWireTime(s string) (string, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return "", fmt.Errorf("failed to parse wire timestamp %q: %w", s, err)
	}
	return FormatTime(t), nil
}

func normalizeOptionalWireTime(s *string) (sql.NullString, error) {
	if s == nil || *s == "" {
		return sql.NullString{}, nil
	}
	normalized, err := normalizeWireTime(*s)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: normalized, Valid: true}, nil
}

// RowFromDTO converts a server training record into its persisted row.
func RowFromDTO(dto api.TrainingDTO) (TrainingRow, error) {
	forType, err := ParseForType(dto.ForType)
	if err != nil {
		return TrainingRow{}, err
	}

	start, err := normalizeWireTime(dto.Time)
	if err != nil {
		return TrainingRow{}, err
	}

	createdAt, err := normalizeOptionalWireTime(dto.CreatedAt)
	if err != nil {
		return TrainingRow{}, err
	}

	return TrainingRow{
		ID:          dto.ID,
		Title:       dto.Title,
		Description: dto.Description,
		FreeSlots:   dto.FreeSlots,
		ForType:     string(forType),
		Time:        start,
		Duration:    dto.Duration,
		IsCanceled:  dto.IsCanceled,
		CreatedAt:   createdAt,
		CoachID:     dto.CoachID,
		CoachName:   dto.CoachName,
		GymName:     dto.GymName,
	}, nil
}

// UserRowFromDTO converts a server participation record. The user id
// column is always taken from the authenticated session, not from the
// wire record: the server filters these records to the signed-in user
// anyway, and some endpoints omit the field.
func UserRowFromDTO(dto api.TrainingUserDTO, userID int64) (TrainingUserRow, error) {
	invitedAt, err := normalizeOptionalWireTime(dto.InvitedAt)
	if err != nil {
		return TrainingUserRow{}, err
	}
	bookedAt, err := normalizeOptionalWireTime(dto.BookedAt)
	if err != nil {
		return TrainingUserRow{}, err
	}
	canceledAt, err := normalizeOptionalWireTime(dto.CanceledAt)
	if err != nil {
		return TrainingUserRow{}, err
	}

	return TrainingUserRow{
		ID:         dto.ID,
		TrainingID: dto.TrainingID,
		UserID:     userID,
		Status:     dto.Status,
		InvitedAt:  invitedAt,
		BookedAt:   bookedAt,
		CanceledAt: canceledAt,
	}, nil
}

// Domain parses a persisted row into the in-memory object.
func (r TrainingRow) Domain() (Training, error) {
	forType, err := ParseForType(r.ForType)
	if err != nil {
		return Training{}, err
	}

	start, err := parseStoredTime(r.Time)
	if err != nil {
		return Training{}, err
	}

	var createdAt *time.Time
	if r.CreatedAt.Valid {
		t, err := parseStoredTime(r.CreatedAt.String)
		if err != nil {
			return Training{}, err
		}
		createdAt = &t
	}

	return Training{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		FreeSlots:   r.FreeSlots,
		ForType:     forType,
		Time:        start,
		Duration:    r.Duration,
		IsCanceled:  r.IsCanceled,
		CreatedAt:   createdAt,
		CoachID:     r.CoachID,
		CoachName:   r.CoachName,
		GymName:     r.GymName,
	}, nil
}

func (r TrainingUserRow) Domain() (TrainingUser, error) {
	parseOptional := func(v sql.NullString) (*time.Time, error) {
		if !v.Valid {
			return nil, nil
		}
		t, err := parseStoredTime(v.String)
		if err != nil {
			return nil, err
		}
		return &t, nil
	}

	invitedAt, err := parseOptional(r.InvitedAt)
	if err != nil {
		return TrainingUser{}, err
	}
	bookedAt, err := parseOptional(r.BookedAt)
	if err != nil {
		return TrainingUser{}, err
	}
	canceledAt, err := parseOptional(r.CanceledAt)
	if err != nil {
		return TrainingUser{}, err
	}

	return TrainingUser{
		ID:         r.ID,
		TrainingID: r.TrainingID,
		UserID:     r.UserID,
		Status:     Status(r.Status),
		InvitedAt:  invitedAt,
		BookedAt:   bookedAt,
		CanceledAt: canceledAt,
	}, nil
}

// DomainAll converts a batch of rows, failing on the first bad row.
func DomainAll(rows []TrainingRow) ([]Training, error) {
	out := make([]Training, 0, len(rows))
	for _, r := range rows {
		t, err := r.Domain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
