package service

import (
	"context"

	"choresbot/internal/domain"
)

// TaskStatistic pairs a task description with its completion state for one user.
type TaskStatistic struct {
	Description string
	IsCompleted bool
}

// ActiveTask is a menu entry for the completion flow: the association id is
// what the proof workflow is keyed on.
type ActiveTask struct {
	AssociationID int64
	Description   string
}

// TaskViews are read-only projections over the task service. They never
// mutate anything.
type TaskViews struct {
	tasks *TaskService
}

func NewTaskViews(tasks *TaskService) *TaskViews {
	return &TaskViews{tasks: tasks}
}

// GetActiveTasks returns the non-archived tasks.
func (v *TaskViews) GetActiveTasks(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := v.tasks.GetAllTasks(ctx)
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

// GetUserTaskStatistics resolves a user's non-archived associations to
// (description, completed) pairs.
func (v *TaskViews) GetUserTaskStatistics(ctx context.Context, userID int64) ([]TaskStatistic, error) {
	associations, err := v.tasks.GetUserAssociations(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := make([]TaskStatistic, 0, len(associations))
	for _, a := range associations {
		if a.TaskArchived {
			continue
		}
		task, err := v.tasks.GetTaskByID(ctx, a.TaskID)
		if err != nil {
			return nil, err
		}
		stats = append(stats, TaskStatistic{
			Description: task.Description,
			IsCompleted: a.TaskCompleted,
		})
	}
	return stats, nil
}

// GetUserActiveTasks lists the associations a user may still complete:
// neither archived nor already completed.
func (v *TaskViews) GetUserActiveTasks(ctx context.Context, userID int64) ([]ActiveTask, error) {
	associations, err := v.tasks.GetUserAssociations(ctx, userID)
	if err != nil {
		return nil, err
	}

	tasks, err := v.tasks.GetAllTasks(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	var active []ActiveTask
	for _, a := range associations {
		if a.TaskArchived || a.TaskCompleted {
			continue
		}
		task, ok := byID[a.TaskID]
		if !ok {
			return nil, domain.ErrTaskNotFound
		}
		active = append(active, ActiveTask{
			AssociationID: a.ID,
			Description:   task.Description,
		})
	}
	return active, nil
}
