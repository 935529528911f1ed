package service_test

import (
	"context"
	"sync"
	"testing"

	"choresbot/internal/domain"
	"choresbot/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskService(db *memDB) *service.TaskService {
	return service.NewTaskService(&memUoW{db: db})
}

func TestCreateTask(t *testing.T) {
	db := newMemDB()
	db.addUser(domain.User{ID: 10, FirstName: "Ann"})
	db.addUser(domain.User{ID: 20, FirstName: "Bob"})
	svc := newTaskService(db)

	users := []*domain.User{{ID: 10}, {ID: 20}}
	task, err := svc.CreateTask(context.Background(), &domain.Task{Description: "Clean kitchen"}, users)
	require.NoError(t, err)
	assert.NotZero(t, task.ID)

	associations, err := svc.GetUserAssociations(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, associations, 1)
	assert.Equal(t, task.ID, associations[0].TaskID)
	assert.False(t, associations[0].TaskCompleted)
	assert.False(t, associations[0].TaskArchived)

	associations, err = svc.GetUserAssociations(context.Background(), 20)
	require.NoError(t, err)
	assert.Len(t, associations, 1)

	assert.Equal(t, 1, db.commits, "task and associations should land in one commit")
}

func TestCheckTaskExistence(t *testing.T) {
	db := newMemDB()
	stored := db.addTask(domain.Task{Description: "Water plants"})
	svc := newTaskService(db)
	ctx := context.Background()

	tests := []struct {
		name        string
		id          int64
		description string
		want        bool
		wantErr     error
	}{
		{name: "by id", id: stored.ID, want: true},
		{name: "by description", description: "Water plants", want: true},
		{name: "unknown id", id: 999, want: false},
		{name: "unknown description", description: "Feed cat", want: false},
		{name: "no arguments", wantErr: domain.ErrTaskAttributeRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.CheckTaskExistence(ctx, tt.id, tt.description)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetTaskByID(t *testing.T) {
	db := newMemDB()
	stored := db.addTask(domain.Task{Description: "Take out trash"})
	svc := newTaskService(db)

	task, err := svc.GetTaskByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "Take out trash", task.Description)

	_, err = svc.GetTaskByID(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestGetTaskByDescription(t *testing.T) {
	db := newMemDB()
	db.addTask(domain.Task{Description: "Take out trash"})
	svc := newTaskService(db)

	task, err := svc.GetTaskByDescription(context.Background(), "Take out trash")
	require.NoError(t, err)
	assert.NotZero(t, task.ID)

	_, err = svc.GetTaskByDescription(context.Background(), "take out trash")
	assert.ErrorIs(t, err, domain.ErrTaskNotFound, "matching is case-sensitive")
}

func TestCreateAssociationsForUser(t *testing.T) {
	db := newMemDB()
	db.addTask(domain.Task{Description: "Active one"})
	db.addTask(domain.Task{Description: "Active two"})
	db.addTask(domain.Task{Description: "Old", IsArchived: true})
	svc := newTaskService(db)

	user := &domain.User{ID: 42}
	associations, err := svc.CreateAssociationsForUser(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, associations, 3, "archived tasks get associations too")

	archived := 0
	for _, a := range associations {
		assert.Equal(t, int64(42), a.UserID)
		assert.False(t, a.TaskCompleted)
		if a.TaskArchived {
			archived++
		}
	}
	assert.Equal(t, 1, archived, "task_archived mirrors each task's current state")
}

func TestArchiveOldTasks(t *testing.T) {
	db := newMemDB()
	kitchen := db.addTask(domain.Task{Description: "Clean kitchen"})
	plants := db.addTask(domain.Task{Description: "Water plants"})
	kitchenAssoc := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: kitchen.ID})
	plantsAssoc := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: plants.ID})
	svc := newTaskService(db)

	err := svc.ArchiveOldTasks(context.Background(), []domain.Task{{Description: "Water plants"}})
	require.NoError(t, err)

	got, _ := db.task(kitchen.ID)
	assert.True(t, got.IsArchived)
	gotAssoc, _ := db.assoc(kitchenAssoc.ID)
	assert.True(t, gotAssoc.TaskArchived)

	got, _ = db.task(plants.ID)
	assert.False(t, got.IsArchived, "tasks still on the roster are untouched")
	gotAssoc, _ = db.assoc(plantsAssoc.ID)
	assert.False(t, gotAssoc.TaskArchived)

	assert.Equal(t, 1, db.commits, "the archival pass is one transaction")
}

func TestArchiveOldTasksSkipsAlreadyArchived(t *testing.T) {
	db := newMemDB()
	db.addTask(domain.Task{Description: "Old", IsArchived: true})
	svc := newTaskService(db)

	require.NoError(t, svc.ArchiveOldTasks(context.Background(), nil))
	assert.Equal(t, 1, db.commits)
}

func TestReopenTask(t *testing.T) {
	db := newMemDB()
	task := db.addTask(domain.Task{Description: "Clean kitchen", IsArchived: true})
	assoc := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: task.ID, TaskArchived: true})
	svc := newTaskService(db)

	reopened, err := svc.ReopenTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, reopened.ID)
	assert.False(t, reopened.IsArchived)

	gotAssoc, _ := db.assoc(assoc.ID)
	assert.False(t, gotAssoc.TaskArchived)

	_, err = svc.ReopenTask(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestGetTaskByAssociationID(t *testing.T) {
	db := newMemDB()
	task := db.addTask(domain.Task{Description: "Clean kitchen"})
	assoc := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: task.ID})
	dangling := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: 999})
	svc := newTaskService(db)

	got, err := svc.GetTaskByAssociationID(context.Background(), assoc.ID)
	require.NoError(t, err)
	assert.Equal(t, task.ID, got.ID)

	_, err = svc.GetTaskByAssociationID(context.Background(), 12345)
	assert.ErrorIs(t, err, domain.ErrTaskAssociationNotFound)

	// An association pointing at a missing task is referential corruption.
	_, err = svc.GetTaskByAssociationID(context.Background(), dangling.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestSetAssociationCompleted(t *testing.T) {
	db := newMemDB()
	task := db.addTask(domain.Task{Description: "Clean kitchen"})
	fresh := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: task.ID})
	done := db.addAssoc(domain.TaskAssociation{UserID: 2, TaskID: task.ID, TaskCompleted: true})
	archived := db.addAssoc(domain.TaskAssociation{UserID: 3, TaskID: task.ID, TaskArchived: true})
	svc := newTaskService(db)
	ctx := context.Background()

	outcome, err := svc.SetAssociationCompleted(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmCompleted, outcome)
	got, _ := db.assoc(fresh.ID)
	assert.True(t, got.TaskCompleted)

	outcome, err = svc.SetAssociationCompleted(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmAlreadyCompleted, outcome)

	outcome, err = svc.SetAssociationCompleted(ctx, archived.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmArchived, outcome)

	_, err = svc.SetAssociationCompleted(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrTaskAssociationNotFound)

	assert.Equal(t, 1, db.commits, "only the real transition commits")
}

func TestSetAssociationCompletedConcurrent(t *testing.T) {
	db := newMemDB()
	task := db.addTask(domain.Task{Description: "Clean kitchen"})
	assoc := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: task.ID})
	svc := newTaskService(db)

	const n = 16
	outcomes := make([]domain.ConfirmOutcome, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = svc.SetAssociationCompleted(context.Background(), assoc.ID)
		}(i)
	}
	wg.Wait()

	completed := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		switch outcomes[i] {
		case domain.ConfirmCompleted:
			completed++
		case domain.ConfirmAlreadyCompleted:
		default:
			t.Fatalf("unexpected outcome %v", outcomes[i])
		}
	}
	assert.Equal(t, 1, completed, "exactly one confirmation wins")
	assert.Equal(t, 1, db.commits, "losers do not commit")

	got, _ := db.assoc(assoc.ID)
	assert.True(t, got.TaskCompleted)
}

func TestCompletionIsMonotonic(t *testing.T) {
	db := newMemDB()
	task := db.addTask(domain.Task{Description: "Clean kitchen"})
	assoc := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: task.ID})
	svc := newTaskService(db)
	ctx := context.Background()

	_, err := svc.SetAssociationCompleted(ctx, assoc.ID)
	require.NoError(t, err)

	// Archival and reopening must not reset completion.
	require.NoError(t, svc.ArchiveOldTasks(ctx, nil))
	_, err = svc.ReopenTask(ctx, task.ID)
	require.NoError(t, err)

	got, _ := db.assoc(assoc.ID)
	assert.True(t, got.TaskCompleted)

	// A second confirmation observes, never rewrites.
	outcome, err := svc.SetAssociationCompleted(ctx, assoc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ConfirmAlreadyCompleted, outcome)
}

func TestSyncRosterEmptyStore(t *testing.T) {
	db := newMemDB()
	db.addUser(domain.User{ID: 1, FirstName: "U1"})
	svc := newTaskService(db)

	active, err := svc.SyncRoster(context.Background(), []domain.Task{
		{Description: "Clean kitchen"},
		{Description: "Water plants"},
	})
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Clean kitchen", active[0].Description)
	assert.Equal(t, "Water plants", active[1].Description)

	associations, err := svc.GetUserAssociations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, associations, 2)
	for _, a := range associations {
		assert.False(t, a.TaskCompleted)
		assert.False(t, a.TaskArchived)
	}
}

func TestSyncRosterArchivesDropped(t *testing.T) {
	db := newMemDB()
	db.addUser(domain.User{ID: 1, FirstName: "U1"})
	kitchen := db.addTask(domain.Task{Description: "Clean kitchen"})
	kitchenAssoc := db.addAssoc(domain.TaskAssociation{UserID: 1, TaskID: kitchen.ID})
	svc := newTaskService(db)

	active, err := svc.SyncRoster(context.Background(), []domain.Task{{Description: "Water plants"}})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Water plants", active[0].Description)

	gotTask, _ := db.task(kitchen.ID)
	assert.True(t, gotTask.IsArchived)
	gotAssoc, _ := db.assoc(kitchenAssoc.ID)
	assert.True(t, gotAssoc.TaskArchived)
}

func TestSyncRosterRoundTripPreservesIDs(t *testing.T) {
	db := newMemDB()
	db.addUser(domain.User{ID: 1, FirstName: "U1"})
	svc := newTaskService(db)
	ctx := context.Background()

	first, err := svc.SyncRoster(ctx, []domain.Task{{Description: "Clean kitchen"}})
	require.NoError(t, err)
	taskID := first[0].ID
	associations, err := svc.GetUserAssociations(ctx, 1)
	require.NoError(t, err)
	assocID := associations[0].ID

	_, err = svc.SyncRoster(ctx, []domain.Task{{Description: "Water plants"}})
	require.NoError(t, err)
	gotTask, _ := db.task(taskID)
	require.True(t, gotTask.IsArchived)

	second, err := svc.SyncRoster(ctx, []domain.Task{{Description: "Clean kitchen"}})
	require.NoError(t, err)

	var reopened *domain.Task
	for _, task := range second {
		if task.Description == "Clean kitchen" {
			reopened = task
		}
	}
	require.NotNil(t, reopened)
	assert.Equal(t, taskID, reopened.ID, "reopening must not re-create the task")

	gotAssoc, _ := db.assoc(assocID)
	assert.False(t, gotAssoc.TaskArchived)
	assert.Equal(t, assocID, gotAssoc.ID)
}

func TestSyncRosterDuplicateDescriptions(t *testing.T) {
	db := newMemDB()
	db.addUser(domain.User{ID: 1, FirstName: "U1"})
	svc := newTaskService(db)

	active, err := svc.SyncRoster(context.Background(), []domain.Task{
		{Description: "Clean kitchen"},
		{Description: "Clean kitchen"},
	})
	require.NoError(t, err)
	assert.Len(t, active, 1, "second occurrence sees the task created by the first")
}

func TestSyncRosterNoDuplicateAcrossUploads(t *testing.T) {
	db := newMemDB()
	db.addUser(domain.User{ID: 1, FirstName: "U1"})
	svc := newTaskService(db)
	ctx := context.Background()

	_, err := svc.SyncRoster(ctx, []domain.Task{{Description: "Clean kitchen"}})
	require.NoError(t, err)
	_, err = svc.SyncRoster(ctx, []domain.Task{{Description: "Clean kitchen"}})
	require.NoError(t, err)

	nonArchived := 0
	for id := int64(1); id <= db.nextTaskID; id++ {
		if task, ok := db.task(id); ok && !task.IsArchived {
			nonArchived++
		}
	}
	assert.Equal(t, 1, nonArchived)
}

func TestSyncRosterEmptyArchivesEverything(t *testing.T) {
	db := newMemDB()
	db.addUser(domain.User{ID: 1, FirstName: "U1"})
	kitchen := db.addTask(domain.Task{Description: "Clean kitchen"})
	plants := db.addTask(domain.Task{Description: "Water plants"})
	svc := newTaskService(db)

	active, err := svc.SyncRoster(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, active)

	got, _ := db.task(kitchen.ID)
	assert.True(t, got.IsArchived)
	got, _ = db.task(plants.ID)
	assert.True(t, got.IsArchived)
}
