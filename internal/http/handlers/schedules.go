package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hannakang/schedhub/internal/config"
	"github.com/hannakang/schedhub/internal/domain/schedule"
	"github.com/hannakang/schedhub/internal/domain/user"
	"github.com/hannakang/schedhub/internal/http/middlewares"
	"github.com/hannakang/schedhub/internal/utils"
)

type SchedulesStore interface {
	Create(ctx context.Context, s schedule.Schedule) (schedule.Schedule, error)
	GetByID(ctx context.Context, id string) (schedule.Schedule, error)
	ListCursor(ctx context.Context, filters schedule.ListSchedulesFilter, afterCreatedAt time.Time, afterID string) ([]schedule.Schedule, *string, bool, error)
	Update(ctx context.Context, id string, req schedule.UpdateScheduleRequest) (schedule.Schedule, error)
	Delete(ctx context.Context, id string) error
}

type UserReader interface {
	GetByName(ctx context.Context, name string) (user.User, error)
}

type WeatherReader interface {
	Today(ctx context.Context) (string, error)
}

type SchedulesHandler struct {
	repo    SchedulesStore
	users   UserReader
	weather WeatherReader
	log     *slog.Logger
}

func NewSchedulesHandler(repo SchedulesStore, users UserReader, weather WeatherReader, log *slog.Logger) *SchedulesHandler {
	return &SchedulesHandler{
		repo:    repo,
		users:   users,
		weather: weather,
		log:     log,
	}
}

func (h *SchedulesHandler) CreateSchedule(ctx *gin.Context) {
	var req schedule.CreateScheduleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	name, ok := middlewares.UserNameFromContext(ctx)

	if !ok || name == "" {
		RespondUnAuthorized(ctx, "missing_token", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	author, err := h.users.GetByName(cctx, name)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_token", "Token subject no longer exists")
		return
	}

	// weather is best-effort: a failed lookup never fails the write
	weather, err := h.weather.Today(cctx)

	if err != nil {
		h.log.Warn("weather lookup failed", "err", err)
		weather = ""
	}

	s, err := h.repo.Create(cctx, schedule.NewFromCreateRequest(req, author.ID, weather))

	if err != nil {
		RespondInternal(ctx, "Could not create schedule")
		return
	}

	ctx.JSON(http.StatusCreated, s)
}

func (h *SchedulesHandler) ListSchedules(ctx *gin.Context) {
	limit := 20

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		if err != nil || n < 1 || n > 100 {
			RespondBadRequest(ctx, "invalid_limit", "limit must be between 1 and 100", nil)
			return
		}

		limit = n
	}

	filters := schedule.ListSchedulesFilter{Limit: limit}

	if author := ctx.Query("authorId"); author != "" {
		if !utils.IsUUID(author) {
			RespondBadRequest(ctx, "invalid_id", "authorId must be a valid UUID", nil)
			return
		}

		filters.AuthorID = &author
	}

	if q := ctx.Query("q"); q != "" {
		filters.Query = &q
	}

	var afterCreatedAt time.Time
	var afterID string

	if raw := ctx.Query("cursor"); raw != "" {
		cur, err := utils.DecodeScheduleCursor(raw)

		if err != nil {
			RespondBadRequest(ctx, "invalid_cursor", "cursor is malformed", nil)
			return
		}

		afterCreatedAt = cur.CreatedAt
		afterID = cur.ID
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	items, next, hasMore, err := h.repo.ListCursor(cctx, filters, afterCreatedAt, afterID)

	if err != nil {
		RespondInternal(ctx, "Could not list schedules")
		return
	}

	resp := gin.H{
		"items":   items,
		"count":   len(items),
		"hasMore": hasMore,
	}

	if next != nil {
		resp["nextCursor"] = *next
	}

	ctx.JSON(http.StatusOK, resp)
}

func (h *SchedulesHandler) GetScheduleByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", "schedule id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			RespondNotFound(ctx, "Schedule not found")
			return
		}
		RespondInternal(ctx, "Could not fetch schedule")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, s)
}

func (h *SchedulesHandler) UpdateSchedule(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", "schedule id must be a valid UUID", nil)
		return
	}

	var req schedule.UpdateScheduleRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	s, err := h.repo.Update(cctx, id, req)

	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			RespondNotFound(ctx, "Schedule not found")
			return
		}
		RespondInternal(ctx, "Could not update schedule")
		return
	}

	ctx.JSON(http.StatusOK, s)
}

func (h *SchedulesHandler) DeleteSchedule(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", "schedule id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.repo.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, schedule.ErrNotFound) {
			RespondNotFound(ctx, "Schedule not found")
			return
		}
		RespondInternal(ctx, "Could not delete schedule")
		return
	}

	ctx.Status(http.StatusNoContent)
}
