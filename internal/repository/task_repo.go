package repository

import (
	"context"
	"errors"

	"choresbot/internal/domain"

	"github.com/jackc/pgx/v5"
)

// TaskRepository is a pure storage adapter for tasks. Lookups return
// (nil, nil) when nothing matches; typed not-found errors are the service
// layer's business.
type TaskRepository struct {
	db Querier
}

func NewTaskRepository(db Querier) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	var t domain.Task
	err := r.db.QueryRow(ctx,
		`SELECT id, description, is_archived FROM tasks WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Description, &t.IsArchived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) GetByDescription(ctx context.Context, description string) (*domain.Task, error) {
	var t domain.Task
	err := r.db.QueryRow(ctx,
		`SELECT id, description, is_archived FROM tasks WHERE description = $1`,
		description,
	).Scan(&t.ID, &t.Description, &t.IsArchived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepository) Add(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (description, is_archived) VALUES ($1, $2) RETURNING id`,
		t.Description, t.IsArchived,
	).Scan(&t.ID)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Update(ctx context.Context, id int64, t *domain.Task) (*domain.Task, error) {
	_, err := r.db.Exec(ctx,
		`UPDATE tasks SET description = $1, is_archived = $2 WHERE id = $3`,
		t.Description, t.IsArchived, id,
	)
	if err != nil {
		return nil, err
	}
	t.ID = id
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, description, is_archived FROM tasks ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Description, &t.IsArchived); err != nil {
			return nil, err
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}
