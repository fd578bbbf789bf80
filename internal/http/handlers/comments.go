package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hannakang/schedhub/internal/config"
	"github.com/hannakang/schedhub/internal/domain/comment"
	"github.com/hannakang/schedhub/internal/domain/schedule"
	"github.com/hannakang/schedhub/internal/http/middlewares"
	"github.com/hannakang/schedhub/internal/utils"
)

type CommentsStore interface {
	Create(ctx context.Context, c comment.Comment) (comment.Comment, error)
	ListBySchedule(ctx context.Context, scheduleID string) ([]comment.Comment, error)
	GetByID(ctx context.Context, id string) (comment.Comment, error)
	Update(ctx context.Context, id string, req comment.UpdateCommentRequest) (comment.Comment, error)
	Delete(ctx context.Context, id string) error
}

type CommentsHandler struct {
	repo  CommentsStore
	users UserReader
}

func NewCommentsHandler(repo CommentsStore, users UserReader) *CommentsHandler {
	return &CommentsHandler{
		repo:  repo,
		users: users,
	}
}

func (h *CommentsHandler) CreateComment(ctx *gin.Context) {
	scheduleID := ctx.Param("id")

	if !utils.IsUUID(scheduleID) {
		RespondBadRequest(ctx, "invalid_id", "schedule id must be a valid UUID", nil)
		return
	}

	var req comment.CreateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// force URL param as the source of truth
	req.ScheduleID = scheduleID

	name, ok := middlewares.UserNameFromContext(ctx)

	if !ok || name == "" {
		RespondUnAuthorized(ctx, "missing_token", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	author, err := h.users.GetByName(cctx, name)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_token", "Token subject no longer exists")
		return
	}

	c, err := h.repo.Create(cctx, comment.NewFromCreateRequest(req, author.ID))

	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			RespondNotFound(ctx, "Schedule not found")
			return
		}
		RespondInternal(ctx, "Could not create comment")
		return
	}

	ctx.JSON(http.StatusCreated, c)
}

func (h *CommentsHandler) ListComments(ctx *gin.Context) {
	scheduleID := ctx.Param("id")

	if !utils.IsUUID(scheduleID) {
		RespondBadRequest(ctx, "invalid_id", "schedule id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	comments, err := h.repo.ListBySchedule(cctx, scheduleID)

	if err != nil {
		RespondInternal(ctx, "Could not list comments")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": comments,
		"count": len(comments),
	})
}

func (h *CommentsHandler) UpdateComment(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", "comment id must be a valid UUID", nil)
		return
	}

	var req comment.UpdateCommentRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	c, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not update comment")
		return
	}

	ctx.JSON(http.StatusOK, c)
}

func (h *CommentsHandler) DeleteComment(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", "comment id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, comment.ErrNotFound) {
			RespondNotFound(ctx, "Comment not found")
			return
		}
		RespondInternal(ctx, "Could not delete comment")
		return
	}

	ctx.Status(http.StatusNoContent)
}
