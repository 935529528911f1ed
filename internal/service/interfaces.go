package service

import (
	"context"

	"choresbot/internal/domain"
)

// TaskStore is the persistence contract the task service programs against.
// Lookups return (nil, nil) when nothing matches.
type TaskStore interface {
	Get(ctx context.Context, id int64) (*domain.Task, error)
	GetByDescription(ctx context.Context, description string) (*domain.Task, error)
	Add(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, id int64, t *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.Task, error)
}

// AssociationStore is the persistence contract for user<->task join rows.
type AssociationStore interface {
	Get(ctx context.Context, id int64) (*domain.TaskAssociation, error)
	GetForUpdate(ctx context.Context, id int64) (*domain.TaskAssociation, error)
	Add(ctx context.Context, a *domain.TaskAssociation) (*domain.TaskAssociation, error)
	Update(ctx context.Context, id int64, a *domain.TaskAssociation) (*domain.TaskAssociation, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*domain.TaskAssociation, error)
	GetByTaskID(ctx context.Context, taskID int64) ([]*domain.TaskAssociation, error)
	GetByUserID(ctx context.Context, userID int64) ([]*domain.TaskAssociation, error)
}

// UserStore is the persistence contract for registered users.
type UserStore interface {
	Get(ctx context.Context, id int64) (*domain.User, error)
	GetByFirstName(ctx context.Context, firstName string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Add(ctx context.Context, u *domain.User) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// Tx is the transaction handle a Scope wraps. Calling Rollback after a
// successful Commit must be a harmless no-op, so scopes can always defer it.
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Scope groups the stores bound to one transaction. Every service call opens
// one scope, defers Rollback and commits explicitly on the success path; a
// scope abandoned without Commit rolls back.
type Scope struct {
	Tasks        TaskStore
	Associations AssociationStore
	Users        UserStore

	tx Tx
}

// NewScope binds transaction-scoped stores to their transaction handle.
func NewScope(tx Tx, tasks TaskStore, associations AssociationStore, users UserStore) *Scope {
	return &Scope{Tasks: tasks, Associations: associations, Users: users, tx: tx}
}

func (s *Scope) Commit(ctx context.Context) error {
	return s.tx.Commit(ctx)
}

func (s *Scope) Rollback(ctx context.Context) error {
	return s.tx.Rollback(ctx)
}

// UnitOfWork opens transaction scopes over the backing store.
type UnitOfWork interface {
	Begin(ctx context.Context) (*Scope, error)
}
