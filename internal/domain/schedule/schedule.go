package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Schedule struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Weather   string    `json:"weather,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("schedule not found")

type CreateScheduleRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=120"`
	Content string `json:"content" binding:"omitempty,max=2000"`
}

// a full update payload; weather is captured once at creation and not editable.
type UpdateScheduleRequest struct {
	Title   string `json:"title" binding:"required,min=1,max=120"`
	Content string `json:"content" binding:"omitempty,max=2000"`
}

// pointers mean "not filtered"
type ListSchedulesFilter struct {
	AuthorID *string
	Query    *string
	Limit    int
}

// A factory to build a Schedule from the incoming DTO

func NewFromCreateRequest(req CreateScheduleRequest, authorID, weather string) Schedule {
	now := time.Now().UTC()

	return Schedule{
		ID:        uuid.NewString(),
		AuthorID:  authorID,
		Title:     req.Title,
		Content:   req.Content,
		Weather:   weather,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
