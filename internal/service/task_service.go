package service

import (
	"context"
	"fmt"

	"choresbot/internal/domain"
)

// TaskService owns the task roster and its per-user associations: creation,
// existence checks, archival and reopening, and the photo-proof completion
// guard. All mutation of tasks and associations goes through here, one unit
// of work scope per call.
type TaskService struct {
	uow UnitOfWork
}

func NewTaskService(uow UnitOfWork) *TaskService {
	return &TaskService{uow: uow}
}

// CreateTask persists a new task plus one fresh association per supplied
// user, in a single transaction.
func (s *TaskService) CreateTask(ctx context.Context, task *domain.Task, users []*domain.User) (*domain.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	task, err = scope.Tasks.Add(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("add task: %w", err)
	}
	for _, user := range users {
		_, err = scope.Associations.Add(ctx, &domain.TaskAssociation{
			UserID: user.ID,
			TaskID: task.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("add association for user %d: %w", user.ID, err)
		}
	}

	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

// CheckTaskExistence looks a task up by id when given, else by description.
// Supplying neither is a caller bug and fails with ErrTaskAttributeRequired.
func (s *TaskService) CheckTaskExistence(ctx context.Context, id int64, description string) (bool, error) {
	if id == 0 && description == "" {
		return false, domain.ErrTaskAttributeRequired
	}

	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	if id != 0 {
		task, err := scope.Tasks.Get(ctx, id)
		if err != nil {
			return false, err
		}
		if task != nil {
			return true, nil
		}
	}
	if description != "" {
		task, err := scope.Tasks.GetByDescription(ctx, description)
		if err != nil {
			return false, err
		}
		if task != nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	task, err := scope.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) GetTaskByDescription(ctx context.Context, description string) (*domain.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	task, err := scope.Tasks.GetByDescription(ctx, description)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

// GetAllTasks returns every stored task, archived included.
func (s *TaskService) GetAllTasks(ctx context.Context) ([]*domain.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	return scope.Tasks.List(ctx)
}

// CreateAssociationsForUser backfills one association per existing task for a
// freshly registered user, mirroring each task's current archived flag.
func (s *TaskService) CreateAssociationsForUser(ctx context.Context, user *domain.User) ([]*domain.TaskAssociation, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	tasks, err := scope.Tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	associations := make([]*domain.TaskAssociation, 0, len(tasks))
	for _, task := range tasks {
		a, err := scope.Associations.Add(ctx, &domain.TaskAssociation{
			UserID:       user.ID,
			TaskID:       task.ID,
			TaskArchived: task.IsArchived,
		})
		if err != nil {
			return nil, fmt.Errorf("add association for task %d: %w", task.ID, err)
		}
		associations = append(associations, a)
	}

	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return associations, nil
}

// GetUserAssociations returns all of a user's associations, archived and active.
func (s *TaskService) GetUserAssociations(ctx context.Context, userID int64) ([]*domain.TaskAssociation, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	return scope.Associations.GetByUserID(ctx, userID)
}

// ArchiveOldTasks reconciles the stored roster against a newly uploaded one:
// every non-archived task whose description is absent from newTasks is
// archived together with all its associations. Tasks still present in the new
// roster are left untouched. The whole pass is one transaction, so a failure
// archives nothing rather than leaving the roster half-reconciled.
func (s *TaskService) ArchiveOldTasks(ctx context.Context, newTasks []domain.Task) error {
	incoming := make(map[string]struct{}, len(newTasks))
	for _, t := range newTasks {
		incoming[t.Key()] = struct{}{}
	}

	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	stored, err := scope.Tasks.List(ctx)
	if err != nil {
		return err
	}
	for _, task := range stored {
		if task.IsArchived {
			continue
		}
		if _, ok := incoming[task.Key()]; ok {
			continue
		}

		task.IsArchived = true
		if _, err := scope.Tasks.Update(ctx, task.ID, task); err != nil {
			return fmt.Errorf("archive task %d: %w", task.ID, err)
		}

		associations, err := scope.Associations.GetByTaskID(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, a := range associations {
			a.TaskArchived = true
			if _, err := scope.Associations.Update(ctx, a.ID, a); err != nil {
				return fmt.Errorf("archive association %d: %w", a.ID, err)
			}
		}
	}

	return scope.Commit(ctx)
}

// ReopenTask un-archives a task and all its associations, the inverse of the
// archival half of ArchiveOldTasks. Ids are preserved.
func (s *TaskService) ReopenTask(ctx context.Context, id int64) (*domain.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	task, err := scope.Tasks.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}

	task.IsArchived = false
	if _, err := scope.Tasks.Update(ctx, task.ID, task); err != nil {
		return nil, fmt.Errorf("reopen task %d: %w", task.ID, err)
	}

	associations, err := scope.Associations.GetByTaskID(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range associations {
		a.TaskArchived = false
		if _, err := scope.Associations.Update(ctx, a.ID, a); err != nil {
			return nil, fmt.Errorf("reopen association %d: %w", a.ID, err)
		}
	}

	if err := scope.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTaskByAssociationID resolves an association to its parent task. A missing
// task behind an existing association means referential corruption and is
// reported as ErrTaskNotFound.
func (s *TaskService) GetTaskByAssociationID(ctx context.Context, associationID int64) (*domain.Task, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	a, err := scope.Associations.Get(ctx, associationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrTaskAssociationNotFound
	}

	task, err := scope.Tasks.Get(ctx, a.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) GetAssociationByID(ctx context.Context, associationID int64) (*domain.TaskAssociation, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	a, err := scope.Associations.Get(ctx, associationID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrTaskAssociationNotFound
	}
	return a, nil
}

// SetAssociationCompleted marks an association completed exactly once. The
// association is re-read under a row lock inside the transaction, so of N
// concurrent confirmations exactly one writes; the rest block on the lock and
// then observe the completed row. Completed and archived rows are left
// untouched and the transaction is not committed.
func (s *TaskService) SetAssociationCompleted(ctx context.Context, associationID int64) (domain.ConfirmOutcome, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	a, err := scope.Associations.GetForUpdate(ctx, associationID)
	if err != nil {
		return 0, err
	}
	if a == nil {
		return 0, domain.ErrTaskAssociationNotFound
	}
	if a.TaskCompleted {
		return domain.ConfirmAlreadyCompleted, nil
	}
	if a.TaskArchived {
		return domain.ConfirmArchived, nil
	}

	a.TaskCompleted = true
	if _, err := scope.Associations.Update(ctx, a.ID, a); err != nil {
		return 0, fmt.Errorf("complete association %d: %w", a.ID, err)
	}
	if err := scope.Commit(ctx); err != nil {
		return 0, err
	}
	return domain.ConfirmCompleted, nil
}

// SyncRoster runs the upload orchestration: archive whatever the new roster
// dropped, then walk the roster in order creating unknown tasks (with
// associations for every current user) and reopening archived ones. Duplicate
// descriptions within one roster are not deduplicated; the second occurrence
// finds the task created by the first and reopening it is a no-op. Returns
// the resulting active task list.
func (s *TaskService) SyncRoster(ctx context.Context, newTasks []domain.Task) ([]*domain.Task, error) {
	if err := s.ArchiveOldTasks(ctx, newTasks); err != nil {
		return nil, err
	}

	users, err := s.listUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range newTasks {
		exists, err := s.CheckTaskExistence(ctx, 0, newTasks[i].Description)
		if err != nil {
			return nil, err
		}
		if !exists {
			if _, err := s.CreateTask(ctx, &newTasks[i], users); err != nil {
				return nil, err
			}
			continue
		}

		stored, err := s.GetTaskByDescription(ctx, newTasks[i].Description)
		if err != nil {
			return nil, err
		}
		if stored.IsArchived {
			if _, err := s.ReopenTask(ctx, stored.ID); err != nil {
				return nil, err
			}
		}
	}

	tasks, err := s.GetAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsArchived {
			active = append(active, t)
		}
	}
	return active, nil
}

func (s *TaskService) listUsers(ctx context.Context) ([]*domain.User, error) {
	scope, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = scope.Rollback(ctx) }()

	return scope.Users.List(ctx)
}
