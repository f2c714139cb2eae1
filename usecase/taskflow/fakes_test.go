package taskflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

// memTasks is an in-memory TaskRepository. onGet, when set, runs after
// each fetch so tests can interleave concurrent pipelines.
type memTasks struct {
	mu         sync.Mutex
	tasks      map[string]*domain.Task
	failWrites bool
	onGet      func()
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: make(map[string]*domain.Task)}
}

func (m *memTasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	m.mu.Lock()
	task, ok := m.tasks[id]
	var copied *domain.Task
	if ok {
		copied = task.Clone()
	}
	m.mu.Unlock()

	if m.onGet != nil {
		m.onGet()
	}
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return copied, nil
}

func (m *memTasks) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Task
	for _, task := range m.tasks {
		if matchesFilter(task, filter) {
			out = append(out, *task.Clone())
		}
	}
	return out, nil
}

func (m *memTasks) Count(ctx context.Context, filter repository.TaskFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, task := range m.tasks {
		if matchesFilter(task, filter) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(task *domain.Task, filter repository.TaskFilter) bool {
	if filter.CreatedBy != "" && task.CreatedBy != filter.CreatedBy {
		return false
	}
	if filter.AssignedTo != "" && task.AssignedTo != filter.AssignedTo {
		return false
	}
	if filter.Status != "" && string(task.Status) != filter.Status {
		return false
	}
	return true
}

func (m *memTasks) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if m.failWrites {
		return nil, errors.New("store unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	m.tasks[task.ID] = task.Clone()
	return task, nil
}

func (m *memTasks) Update(ctx context.Context, task *domain.Task) error {
	if m.failWrites {
		return errors.New("store unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = time.Now()
	m.tasks[task.ID] = task.Clone()
	return nil
}

func (m *memTasks) Delete(ctx context.Context, id string) error {
	if m.failWrites {
		return errors.New("store unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) get(id string) *domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task, ok := m.tasks[id]; ok {
		return task.Clone()
	}
	return nil
}

type memIdentities struct {
	identities map[string]*domain.Identity
}

func newMemIdentities(seed ...*domain.Identity) *memIdentities {
	m := &memIdentities{identities: make(map[string]*domain.Identity)}
	for _, identity := range seed {
		m.identities[identity.ID] = identity
	}
	return m
}

func (m *memIdentities) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	if identity, ok := m.identities[id]; ok {
		copied := *identity
		return &copied, nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *memIdentities) List(ctx context.Context, filter repository.IdentityFilter) ([]domain.Identity, error) {
	var out []domain.Identity
	for _, identity := range m.identities {
		if filter.Role == "" || identity.Role == filter.Role {
			out = append(out, *identity)
		}
	}
	return out, nil
}

func (m *memIdentities) Upsert(ctx context.Context, identity *domain.Identity) error {
	copied := *identity
	m.identities[identity.ID] = &copied
	return nil
}

// recorderStub captures audit entries handed to the sink.
type recorderStub struct {
	mu      sync.Mutex
	entries []*domain.ActivityEntry
}

func (r *recorderStub) Record(ctx context.Context, entry *domain.ActivityEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recorderStub) recorded() []*domain.ActivityEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*domain.ActivityEntry(nil), r.entries...)
}

type publishedEvent struct {
	recipient string
	event     domain.Event
}

// notifierStub captures published events; fail makes every publish error.
type notifierStub struct {
	mu     sync.Mutex
	events []publishedEvent
	fail   bool
}

func (n *notifierStub) Publish(ctx context.Context, identityID string, event domain.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("channel unavailable")
	}
	n.events = append(n.events, publishedEvent{recipient: identityID, event: event})
	return nil
}

func (n *notifierStub) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, e := range n.events {
		out = append(out, e.recipient)
	}
	return out
}

// Test fixtures. Every engine test seeds the same cast: two managers
// and two users.
const (
	managerID      = "mgr-1"
	otherManagerID = "mgr-2"
	userID         = "usr-1"
	otherUserID    = "usr-2"
)

func seedIdentities() *memIdentities {
	return newMemIdentities(
		&domain.Identity{ID: managerID, Name: "Mara", Email: "mara@example.com", Role: domain.RoleManager},
		&domain.Identity{ID: otherManagerID, Name: "Milo", Email: "milo@example.com", Role: domain.RoleManager},
		&domain.Identity{ID: userID, Name: "Uma", Email: "uma@example.com", Role: domain.RoleUser},
		&domain.Identity{ID: otherUserID, Name: "Ugo", Email: "ugo@example.com", Role: domain.RoleUser},
	)
}

type engineFixture struct {
	uc         *UseCase
	tasks      *memTasks
	identities *memIdentities
	recorder   *recorderStub
	notifier   *notifierStub
	now        time.Time
}

func newEngine() *engineFixture {
	f := &engineFixture{
		tasks:      newMemTasks(),
		identities: seedIdentities(),
		recorder:   &recorderStub{},
		notifier:   &notifierStub{},
		now:        time.Date(2025, time.March, 10, 15, 4, 5, 0, time.UTC),
	}
	f.uc = New(f.tasks, f.identities, f.recorder, f.notifier, nil)
	f.uc.now = func() time.Time { return f.now }
	return f
}

// seedTask plants a task created by managerID and assigned to userID.
func (f *engineFixture) seedTask(id string) *domain.Task {
	task := &domain.Task{
		ID:         id,
		Title:      "Prepare quarterly report",
		Status:     domain.StatusPending,
		AssignedTo: userID,
		Priority:   domain.PriorityMedium,
		CreatedBy:  managerID,
		CreatedAt:  f.now.Add(-24 * time.Hour),
		UpdatedAt:  f.now.Add(-24 * time.Hour),
	}
	f.tasks.tasks[id] = task
	return task.Clone()
}

func strPtr(s string) *string                          { return &s }
func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }
func prioPtr(p domain.TaskPriority) *domain.TaskPriority {
	return &p
}
