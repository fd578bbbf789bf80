package postgres

import (
	"context"
	"errors"

	"github.com/hannakang/schedhub/internal/domain/assignment"
	"github.com/hannakang/schedhub/internal/domain/schedule"
	"github.com/hannakang/schedhub/internal/domain/user"
	"github.com/hannakang/schedhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AssignmentsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAssignmentsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AssignmentsRepo {
	return &AssignmentsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *AssignmentsRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}

	return r.prom.ObserveDB(op, fn)
}

func (r *AssignmentsRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return r.pool.BeginTx(ctx, pgx.TxOptions{})
}

// CreateTx verifies both sides of the link exist before inserting, all inside
// the caller's transaction so a concurrent delete cannot slip between the
// checks and the insert.
func (r *AssignmentsRepo) CreateTx(ctx context.Context, tx pgx.Tx, userID, scheduleID string) (a assignment.Assignment, err error) {
	var dummy string

	err = r.observe("assignments.create_tx.user_check", func() error {
		return tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1`, userID).Scan(&dummy)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = user.ErrNotFound
		}

		return
	}

	err = r.observe("assignments.create_tx.schedule_check", func() error {
		return tx.QueryRow(ctx, `SELECT id FROM schedules WHERE id = $1`, scheduleID).Scan(&dummy)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = schedule.ErrNotFound
		}

		return
	}

	a = assignment.New(userID, scheduleID)

	err = r.observe("assignments.create_tx.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO schedule_managers (id, user_id, schedule_id, created_at)
		VALUES ($1,$2,$3,$4)
	`, a.ID, a.UserID, a.ScheduleID, a.CreatedAt)
		return e
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "schedule_managers_user_schedule_uniq" {
			err = assignment.ErrAlreadyAssigned
			return
		}

		return
	}

	return
}

func (r *AssignmentsRepo) Create(ctx context.Context, userID, scheduleID string) (a assignment.Assignment, err error) {
	tx, err := r.BeginTx(ctx)

	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	a, err = r.CreateTx(ctx, tx, userID, scheduleID)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	return
}

func (r *AssignmentsRepo) GetByUserID(ctx context.Context, userID string) (assignment.Assignment, error) {
	var a assignment.Assignment

	err := r.observe("assignments.get_by_user", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT id, user_id, schedule_id, created_at FROM schedule_managers WHERE user_id = $1`,
			userID,
		).Scan(&a.ID, &a.UserID, &a.ScheduleID, &a.CreatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.Assignment{}, assignment.ErrNotFound
		}

		return assignment.Assignment{}, err
	}

	return a, nil
}

func (r *AssignmentsRepo) ListBySchedule(ctx context.Context, scheduleID string) ([]assignment.Assignment, error) {
	var out []assignment.Assignment

	err := r.observe("assignments.list_by_schedule", func() error {
		rows, e := r.pool.Query(
			ctx,
			`SELECT id, user_id, schedule_id, created_at FROM schedule_managers
			 WHERE schedule_id = $1 ORDER BY created_at ASC, id ASC`,
			scheduleID,
		)

		if e != nil {
			return e
		}

		defer rows.Close()

		out = []assignment.Assignment{}

		for rows.Next() {
			var a assignment.Assignment

			e = rows.Scan(&a.ID, &a.UserID, &a.ScheduleID, &a.CreatedAt)

			if e != nil {
				return e
			}

			out = append(out, a)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *AssignmentsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("assignments.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM schedule_managers WHERE id = $1`, id)
		return e
	})

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return assignment.ErrNotFound
	}

	return nil
}
