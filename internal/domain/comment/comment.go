package comment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID         string    `json:"id"`
	ScheduleID string    `json:"scheduleId"`
	AuthorID   string    `json:"authorId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("comment not found")

type CreateCommentRequest struct {
	ScheduleID string `json:"-"`
	Content    string `json:"content" binding:"required,min=1,max=1000"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

func NewFromCreateRequest(req CreateCommentRequest, authorID string) Comment {
	now := time.Now().UTC()

	return Comment{
		ID:         uuid.NewString(),
		ScheduleID: req.ScheduleID,
		AuthorID:   authorID,
		Content:    req.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
