package postgres

import (
	"context"
	"errors"

	"github.com/hannakang/schedhub/internal/domain/comment"
	"github.com/hannakang/schedhub/internal/domain/schedule"
	"github.com/hannakang/schedhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewCommentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *CommentsRepo {
	return &CommentsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *CommentsRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

const commentColumns = `id, schedule_id, author_id, content, created_at, updated_at`

func scanComment(row pgx.Row) (comment.Comment, error) {
	var c comment.Comment

	err := row.Scan(
		&c.ID,
		&c.ScheduleID,
		&c.AuthorID,
		&c.Content,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return comment.Comment{}, comment.ErrNotFound
		}

		return comment.Comment{}, err
	}

	return c, nil
}

// Create inserts a comment; the FK on schedule_id rejects comments against a
// schedule that does not exist.
func (r *CommentsRepo) Create(ctx context.Context, c comment.Comment) (comment.Comment, error) {
	err := r.observe("comments.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO comments (id, schedule_id, author_id, content, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			c.ID, c.ScheduleID, c.AuthorID, c.Content, c.CreatedAt, c.UpdatedAt,
		)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError

		// 23503: foreign key violation, the schedule is gone
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return comment.Comment{}, schedule.ErrNotFound
		}

		return comment.Comment{}, err
	}

	return c, nil
}

func (r *CommentsRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]comment.Comment, error) {
	var out []comment.Comment

	err := r.observe("comments.list_by_schedule", func() error {
		rows, e := r.pool.Query(
			ctx,
			`SELECT `+commentColumns+` FROM comments WHERE schedule_id = $1 ORDER BY created_at ASC, id ASC`,
			scheduleID,
		)

		if e != nil {
			return e
		}

		defer rows.Close()

		out = []comment.Comment{}

		for rows.Next() {
			var c comment.Comment

			e = rows.Scan(&c.ID, &c.ScheduleID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt)

			if e != nil {
				return e
			}

			out = append(out, c)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *CommentsRepo) GetByID(ctx context.Context, id string) (c comment.Comment, err error) {
	err = r.observe("comments.get_by_id", func() error {
		c, err = scanComment(r.pool.QueryRow(
			ctx,
			`SELECT `+commentColumns+` FROM comments WHERE id = $1`,
			id,
		))
		return err
	})

	return
}

func (r *CommentsRepo) Update(ctx context.Context, id string, req comment.UpdateCommentRequest) (c comment.Comment, err error) {
	err = r.observe("comments.update", func() error {
		c, err = scanComment(r.pool.QueryRow(
			ctx,
			`UPDATE comments
				SET content = $2,
						updated_at = NOW()
			WHERE id = $1
			RETURNING `+commentColumns,
			id,
			req.Content,
		))
		return err
	})

	return
}

func (r *CommentsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("comments.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return comment.ErrNotFound
	}

	return nil
}
