package assignment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Assignment links a user to a schedule as its manager. One row per pairing.
type Assignment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ScheduleID string    `json:"scheduleId"`
	CreatedAt  time.Time `json:"createdAt"`
}

var (
	ErrNotFound        = errors.New("assignment not found")
	ErrAlreadyAssigned = errors.New("user is already a manager of this schedule")
)

type AddManagerRequest struct {
	ManagerID  string `json:"managerId" binding:"required,uuid"`
	ScheduleID string `json:"scheduleId" binding:"required,uuid"`
}

type RemoveManagerRequest struct {
	ManagerID string `json:"managerId" binding:"required,uuid"`
}

func New(userID, scheduleID string) Assignment {
	return Assignment{
		ID:         uuid.NewString(),
		UserID:     userID,
		ScheduleID: scheduleID,
		CreatedAt:  time.Now().UTC(),
	}
}
