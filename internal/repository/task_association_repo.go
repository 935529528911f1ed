package repository

import (
	"context"
	"errors"

	"choresbot/internal/domain"

	"github.com/jackc/pgx/v5"
)

// TaskAssociationRepository is the storage adapter for the user<->task join
// rows. Same contract as TaskRepository: (nil, nil) for missing rows.
type TaskAssociationRepository struct {
	db Querier
}

func NewTaskAssociationRepository(db Querier) *TaskAssociationRepository {
	return &TaskAssociationRepository{db: db}
}

func (r *TaskAssociationRepository) Get(ctx context.Context, id int64) (*domain.TaskAssociation, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, user_id, task_id, task_completed, task_archived
		 FROM task_associations WHERE id = $1`,
		id,
	))
}

// GetForUpdate locks the row for the rest of the transaction. The completion
// guard re-reads through this before writing, so concurrent confirmations of
// one association serialize on the row lock.
func (r *TaskAssociationRepository) GetForUpdate(ctx context.Context, id int64) (*domain.TaskAssociation, error) {
	return r.scanOne(r.db.QueryRow(ctx,
		`SELECT id, user_id, task_id, task_completed, task_archived
		 FROM task_associations WHERE id = $1 FOR UPDATE`,
		id,
	))
}

func (r *TaskAssociationRepository) Add(ctx context.Context, a *domain.TaskAssociation) (*domain.TaskAssociation, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO task_associations (user_id, task_id, task_completed, task_archived)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		a.UserID, a.TaskID, a.TaskCompleted, a.TaskArchived,
	).Scan(&a.ID)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *TaskAssociationRepository) Update(ctx context.Context, id int64, a *domain.TaskAssociation) (*domain.TaskAssociation, error) {
	_, err := r.db.Exec(ctx,
		`UPDATE task_associations
		 SET user_id = $1, task_id = $2, task_completed = $3, task_archived = $4
		 WHERE id = $5`,
		a.UserID, a.TaskID, a.TaskCompleted, a.TaskArchived, id,
	)
	if err != nil {
		return nil, err
	}
	a.ID = id
	return a, nil
}

func (r *TaskAssociationRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM task_associations WHERE id = $1`, id)
	return err
}

func (r *TaskAssociationRepository) List(ctx context.Context) ([]*domain.TaskAssociation, error) {
	return r.query(ctx,
		`SELECT id, user_id, task_id, task_completed, task_archived
		 FROM task_associations ORDER BY id`)
}

func (r *TaskAssociationRepository) GetByTaskID(ctx context.Context, taskID int64) ([]*domain.TaskAssociation, error) {
	return r.query(ctx,
		`SELECT id, user_id, task_id, task_completed, task_archived
		 FROM task_associations WHERE task_id = $1 ORDER BY id`, taskID)
}

func (r *TaskAssociationRepository) GetByUserID(ctx context.Context, userID int64) ([]*domain.TaskAssociation, error) {
	return r.query(ctx,
		`SELECT id, user_id, task_id, task_completed, task_archived
		 FROM task_associations WHERE user_id = $1 ORDER BY id`, userID)
}

func (r *TaskAssociationRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.TaskAssociation, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.TaskAssociation
	for rows.Next() {
		var a domain.TaskAssociation
		if err := rows.Scan(&a.ID, &a.UserID, &a.TaskID, &a.TaskCompleted, &a.TaskArchived); err != nil {
			return nil, err
		}
		res = append(res, &a)
	}
	return res, rows.Err()
}

func (r *TaskAssociationRepository) scanOne(row pgx.Row) (*domain.TaskAssociation, error) {
	var a domain.TaskAssociation
	err := row.Scan(&a.ID, &a.UserID, &a.TaskID, &a.TaskCompleted, &a.TaskArchived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}
