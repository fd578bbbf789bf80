package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hannakang/schedhub/internal/config"
	"github.com/hannakang/schedhub/internal/domain/assignment"
	"github.com/hannakang/schedhub/internal/domain/schedule"
	"github.com/hannakang/schedhub/internal/domain/user"
	"github.com/hannakang/schedhub/internal/utils"
)

type AssignmentsStore interface {
	Create(ctx context.Context, userID, scheduleID string) (assignment.Assignment, error)
	GetByUserID(ctx context.Context, userID string) (assignment.Assignment, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]assignment.Assignment, error)
	Delete(ctx context.Context, id string) error
}

// AssignmentsHandler manages schedule managers. Every route is behind
// RequireRole(ADMIN).
type AssignmentsHandler struct {
	repo AssignmentsStore
}

func NewAssignmentsHandler(repo AssignmentsStore) *AssignmentsHandler {
	return &AssignmentsHandler{repo: repo}
}

func (h *AssignmentsHandler) AddManager(ctx *gin.Context) {
	var req assignment.AddManagerRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	a, err := h.repo.Create(cctx, req.ManagerID, req.ScheduleID)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, schedule.ErrNotFound):
			RespondNotFound(ctx, "Schedule not found")
		case errors.Is(err, assignment.ErrAlreadyAssigned):
			RespondConflict(ctx, "already_assigned", "This user already manages this schedule.")
		default:
			RespondInternal(ctx, "Could not add manager")
		}
		return
	}

	ctx.JSON(http.StatusCreated, a)
}

func (h *AssignmentsHandler) RemoveManager(ctx *gin.Context) {
	var req assignment.RemoveManagerRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	a, err := h.repo.GetByUserID(cctx, req.ManagerID)

	if err != nil {
		if errors.Is(err, assignment.ErrNotFound) {
			RespondNotFound(ctx, "Assignment not found")
			return
		}
		RespondInternal(ctx, "Could not remove manager")
		return
	}

	err = h.repo.Delete(cctx, a.ID)

	if err != nil {
		if errors.Is(err, assignment.ErrNotFound) {
			RespondNotFound(ctx, "Assignment not found")
			return
		}
		RespondInternal(ctx, "Could not remove manager")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *AssignmentsHandler) ListManagers(ctx *gin.Context) {
	scheduleID := ctx.Param("id")

	if !utils.IsUUID(scheduleID) {
		RespondBadRequest(ctx, "invalid_id", "schedule id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	items, err := h.repo.ListBySchedule(cctx, scheduleID)

	if err != nil {
		RespondInternal(ctx, "Could not list managers")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
