package service_test

import (
	"context"
	"sync"

	"choresbot/internal/domain"
	"choresbot/internal/service"
)

// memDB is an in-memory stand-in for the postgres store. The rowMu mutex
// emulates the FOR UPDATE row lock: GetForUpdate acquires it and the scope's
// commit or rollback releases it, so concurrent confirmation tests exercise
// the same serialization the real store provides.
type memDB struct {
	mu          sync.Mutex
	rowMu       sync.Mutex
	tasks       map[int64]domain.Task
	assocs      map[int64]domain.TaskAssociation
	users       map[int64]domain.User
	nextTaskID  int64
	nextAssocID int64
	commits     int
}

func newMemDB() *memDB {
	return &memDB{
		tasks:  make(map[int64]domain.Task),
		assocs: make(map[int64]domain.TaskAssociation),
		users:  make(map[int64]domain.User),
	}
}

func (db *memDB) addUser(u domain.User) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users[u.ID] = u
}

func (db *memDB) addTask(t domain.Task) domain.Task {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextTaskID++
	t.ID = db.nextTaskID
	db.tasks[t.ID] = t
	return t
}

func (db *memDB) addAssoc(a domain.TaskAssociation) domain.TaskAssociation {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextAssocID++
	a.ID = db.nextAssocID
	db.assocs[a.ID] = a
	return a
}

func (db *memDB) task(id int64) (domain.Task, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.tasks[id]
	return t, ok
}

func (db *memDB) assoc(id int64) (domain.TaskAssociation, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	a, ok := db.assocs[id]
	return a, ok
}

type memScope struct {
	db     *memDB
	locked bool
}

func (s *memScope) Commit(ctx context.Context) error {
	s.db.mu.Lock()
	s.db.commits++
	s.db.mu.Unlock()
	s.release()
	return nil
}

func (s *memScope) Rollback(ctx context.Context) error {
	s.release()
	return nil
}

func (s *memScope) release() {
	if s.locked {
		s.locked = false
		s.db.rowMu.Unlock()
	}
}

type memUoW struct {
	db *memDB
}

func (u *memUoW) Begin(ctx context.Context) (*service.Scope, error) {
	sc := &memScope{db: u.db}
	return service.NewScope(sc, &memTasks{sc}, &memAssocs{sc}, &memUsers{sc}), nil
}

type memTasks struct{ s *memScope }

func (r *memTasks) Get(ctx context.Context, id int64) (*domain.Task, error) {
	if t, ok := r.s.db.task(id); ok {
		return &t, nil
	}
	return nil, nil
}

func (r *memTasks) GetByDescription(ctx context.Context, description string) (*domain.Task, error) {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, t := range db.tasks {
		if t.Description == description {
			t := t
			return &t, nil
		}
	}
	return nil, nil
}

func (r *memTasks) Add(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	added := r.s.db.addTask(*t)
	t.ID = added.ID
	return t, nil
}

func (r *memTasks) Update(ctx context.Context, id int64, t *domain.Task) (*domain.Task, error) {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	t.ID = id
	db.tasks[id] = *t
	return t, nil
}

func (r *memTasks) Delete(ctx context.Context, id int64) error {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.tasks, id)
	return nil
}

func (r *memTasks) List(ctx context.Context) ([]*domain.Task, error) {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	res := make([]*domain.Task, 0, len(db.tasks))
	for id := int64(1); id <= db.nextTaskID; id++ {
		if t, ok := db.tasks[id]; ok {
			t := t
			res = append(res, &t)
		}
	}
	return res, nil
}

type memAssocs struct{ s *memScope }

func (r *memAssocs) Get(ctx context.Context, id int64) (*domain.TaskAssociation, error) {
	if a, ok := r.s.db.assoc(id); ok {
		return &a, nil
	}
	return nil, nil
}

func (r *memAssocs) GetForUpdate(ctx context.Context, id int64) (*domain.TaskAssociation, error) {
	r.s.db.rowMu.Lock()
	r.s.locked = true
	return r.Get(ctx, id)
}

func (r *memAssocs) Add(ctx context.Context, a *domain.TaskAssociation) (*domain.TaskAssociation, error) {
	added := r.s.db.addAssoc(*a)
	a.ID = added.ID
	return a, nil
}

func (r *memAssocs) Update(ctx context.Context, id int64, a *domain.TaskAssociation) (*domain.TaskAssociation, error) {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	a.ID = id
	db.assocs[id] = *a
	return a, nil
}

func (r *memAssocs) Delete(ctx context.Context, id int64) error {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.assocs, id)
	return nil
}

func (r *memAssocs) List(ctx context.Context) ([]*domain.TaskAssociation, error) {
	return r.filter(func(domain.TaskAssociation) bool { return true }), nil
}

func (r *memAssocs) GetByTaskID(ctx context.Context, taskID int64) ([]*domain.TaskAssociation, error) {
	return r.filter(func(a domain.TaskAssociation) bool { return a.TaskID == taskID }), nil
}

func (r *memAssocs) GetByUserID(ctx context.Context, userID int64) ([]*domain.TaskAssociation, error) {
	return r.filter(func(a domain.TaskAssociation) bool { return a.UserID == userID }), nil
}

func (r *memAssocs) filter(keep func(domain.TaskAssociation) bool) []*domain.TaskAssociation {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	var res []*domain.TaskAssociation
	for id := int64(1); id <= db.nextAssocID; id++ {
		if a, ok := db.assocs[id]; ok && keep(a) {
			a := a
			res = append(res, &a)
		}
	}
	return res
}

type memUsers struct{ s *memScope }

func (r *memUsers) Get(ctx context.Context, id int64) (*domain.User, error) {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	if u, ok := db.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *memUsers) GetByFirstName(ctx context.Context, firstName string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.FirstName == firstName }), nil
}

func (r *memUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username }), nil
}

func (r *memUsers) Add(ctx context.Context, u *domain.User) (*domain.User, error) {
	r.s.db.addUser(*u)
	return u, nil
}

func (r *memUsers) List(ctx context.Context) ([]*domain.User, error) {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	var res []*domain.User
	for _, u := range db.users {
		u := u
		res = append(res, &u)
	}
	return res, nil
}

func (r *memUsers) find(match func(domain.User) bool) *domain.User {
	db := r.s.db
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if match(u) {
			u := u
			return &u
		}
	}
	return nil
}
