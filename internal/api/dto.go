package api

// Wire shapes returned by the schedule service. Validation tags are
// enforced by the client after decoding, so malformed payloads are
// rejected before anything reaches the local cache.

type TrainingDTO struct {
	ID          int64   `json:"id" validate:"required"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	FreeSlots   int     `json:"freeSlots" validate:"gte=0"`
	ForType     string  `json:"forType" validate:"oneof=EVERYONE LIMITED"`
	Time        string  `json:"time" validate:"required"`
	Duration    int     `json:"duration" validate:"gt=0"`
	IsCanceled  bool    `json:"canceled"`
	CreatedAt   *string `json:"createdAt"`
	CoachID     int64   `json:"coachId"`
	CoachName   string  `json:"coachName"`
	GymName     string  `json:"gymName"`
}

type TrainingUserDTO struct {
	ID         int64   `json:"id" validate:"required"`
	TrainingID int64   `json:"trainingId" validate:"required"`
	UserID     int64   `json:"userId"`
	Status     string  `json:"status" validate:"oneof=INVITED AGREED DENIED CANCELED"`
	InvitedAt  *string `json:"invitedAt"`
	BookedAt   *string `json:"bookedAt"`
	CanceledAt *string `json:"canceledAt"`
}
