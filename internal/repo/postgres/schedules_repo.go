package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hannakang/schedhub/internal/domain/schedule"
	"github.com/hannakang/schedhub/internal/observability"
	"github.com/hannakang/schedhub/internal/utils"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SchedulesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewSchedulesRepo(pool *pgxpool.Pool, prom *observability.Prom) *SchedulesRepo {
	return &SchedulesRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *SchedulesRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

const scheduleColumns = `id, author_id, title, content, weather, created_at, updated_at`

func scanSchedule(row pgx.Row) (schedule.Schedule, error) {
	var s schedule.Schedule

	err := row.Scan(
		&s.ID,
		&s.AuthorID,
		&s.Title,
		&s.Content,
		&s.Weather,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.Schedule{}, schedule.ErrNotFound
		}

		return schedule.Schedule{}, err
	}

	return s, nil
}

func (r *SchedulesRepo) Create(ctx context.Context, s schedule.Schedule) (schedule.Schedule, error) {
	err := r.observe("schedules.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO schedules (id, author_id, title, content, weather, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			s.ID, s.AuthorID, s.Title, s.Content, s.Weather, s.CreatedAt, s.UpdatedAt,
		)
		return e
	})

	if err != nil {
		return schedule.Schedule{}, err
	}

	return s, nil
}

// ListCursor pages newest-first on (created_at, id). The first page passes the
// zero time and empty id.
func (r *SchedulesRepo) ListCursor(
	ctx context.Context,
	filters schedule.ListSchedulesFilter,
	afterCreatedAt time.Time,
	afterID string,
) ([]schedule.Schedule, *string, bool, error) {
	baseQuery := `SELECT ` + scheduleColumns + ` FROM schedules`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filters.AuthorID != nil {
		conds = append(conds, fmt.Sprintf("author_id = $%d", argsPosition))
		args = append(args, *filters.AuthorID)
		argsPosition++
	}

	if filters.Query != nil {
		conds = append(conds, fmt.Sprintf("title ILIKE '%%' || $%d || '%%'", argsPosition))
		args = append(args, *filters.Query)
		argsPosition++
	}

	if !afterCreatedAt.IsZero() && afterID != "" {
		conds = append(conds, fmt.Sprintf("(created_at, id) < ($%d, $%d)", argsPosition, argsPosition+1))
		args = append(args, afterCreatedAt, afterID)
		argsPosition += 2
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// one extra row tells us whether there is another page
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argsPosition)
	args = append(args, filters.Limit+1)

	var out []schedule.Schedule

	err := r.observe("schedules.list_cursor", func() error {
		rows, e := r.pool.Query(ctx, query, args...)

		if e != nil {
			return e
		}

		defer rows.Close()

		out = make([]schedule.Schedule, 0, filters.Limit+1)

		for rows.Next() {
			var s schedule.Schedule

			e = rows.Scan(&s.ID, &s.AuthorID, &s.Title, &s.Content, &s.Weather, &s.CreatedAt, &s.UpdatedAt)

			if e != nil {
				return e
			}

			out = append(out, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, nil, false, err
	}

	hasMore := len(out) > filters.Limit

	if hasMore {
		out = out[:filters.Limit]
	}

	var next *string

	if hasMore && len(out) > 0 {
		last := out[len(out)-1]

		cursor, e := utils.EncodeScheduleCursor(last.CreatedAt, last.ID)

		if e != nil {
			return nil, nil, false, e
		}

		next = &cursor
	}

	return out, next, hasMore, nil
}

func (r *SchedulesRepo) GetByID(ctx context.Context, id string) (s schedule.Schedule, err error) {
	err = r.observe("schedules.get_by_id", func() error {
		s, err = scanSchedule(r.pool.QueryRow(
			ctx,
			`SELECT `+scheduleColumns+` FROM schedules WHERE id = $1`,
			id,
		))
		return err
	})

	return
}

func (r *SchedulesRepo) Update(ctx context.Context, id string, req schedule.UpdateScheduleRequest) (s schedule.Schedule, err error) {
	err = r.observe("schedules.update", func() error {
		s, err = scanSchedule(r.pool.QueryRow(
			ctx,
			`UPDATE schedules
				SET title = $2,
						content = $3,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+scheduleColumns,
			id,
			req.Title,
			req.Content,
		))
		return err
	})

	return
}

func (r *SchedulesRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("schedules.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return schedule.ErrNotFound
	}

	return nil
}
