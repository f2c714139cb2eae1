package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
)

type memActivities struct {
	entries []domain.ActivityEntry
	fail    bool
}

func (m *memActivities) Append(ctx context.Context, entry *domain.ActivityEntry) error {
	if m.fail {
		return errors.New("connection refused")
	}
	// Newest first, like the backing query.
	m.entries = append([]domain.ActivityEntry{*entry}, m.entries...)
	return nil
}

func (m *memActivities) ListByTask(ctx context.Context, taskID string) ([]domain.ActivityEntry, error) {
	var out []domain.ActivityEntry
	for _, e := range m.entries {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memActivities) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.ActivityEntry, error) {
	return append([]domain.ActivityEntry(nil), m.entries...), nil
}

func (m *memActivities) Count(ctx context.Context) (int, error) {
	return len(m.entries), nil
}

type memIdentities struct {
	identities map[string]*domain.Identity
}

func (m *memIdentities) GetByID(ctx context.Context, id string) (*domain.Identity, error) {
	if identity, ok := m.identities[id]; ok {
		copied := *identity
		return &copied, nil
	}
	return nil, domain.ErrIdentityNotFound
}

func (m *memIdentities) List(ctx context.Context, filter repository.IdentityFilter) ([]domain.Identity, error) {
	return nil, nil
}

func (m *memIdentities) Upsert(ctx context.Context, identity *domain.Identity) error {
	return nil
}

type bufferStub struct {
	buffered []*domain.ActivityEntry
	fail     bool
}

func (b *bufferStub) BufferEntry(ctx context.Context, entry *domain.ActivityEntry) error {
	if b.fail {
		return errors.New("buffer closed")
	}
	b.buffered = append(b.buffered, entry)
	return nil
}

func newFixture() (*UseCase, *memActivities, *bufferStub) {
	store := &memActivities{}
	buffer := &bufferStub{}
	identities := &memIdentities{identities: map[string]*domain.Identity{
		"mgr-1": {ID: "mgr-1", Name: "Mara", Email: "mara@example.com", Role: domain.RoleManager},
	}}
	return New(store, identities, buffer, nil), store, buffer
}

func TestRecord_AppendsEntry(t *testing.T) {
	uc, store, buffer := newFixture()

	uc.Record(context.Background(), &domain.ActivityEntry{
		TaskID: "t1", UserID: "mgr-1", Action: domain.ActionCreated,
	})

	if len(store.entries) != 1 {
		t.Fatalf("stored entries = %d, want 1", len(store.entries))
	}
	if len(buffer.buffered) != 0 {
		t.Errorf("healthy append buffered %d entries", len(buffer.buffered))
	}
}

func TestRecord_FailedAppendSpillsToBuffer(t *testing.T) {
	uc, store, buffer := newFixture()
	store.fail = true

	// Best effort: the caller sees nothing either way.
	uc.Record(context.Background(), &domain.ActivityEntry{
		TaskID: "t1", UserID: "mgr-1", Action: domain.ActionUpdated, Field: "title",
	})

	if len(store.entries) != 0 {
		t.Fatalf("stored entries = %d, want 0", len(store.entries))
	}
	if len(buffer.buffered) != 1 {
		t.Fatalf("buffered entries = %d, want 1", len(buffer.buffered))
	}
	if buffer.buffered[0].Field != "title" {
		t.Errorf("buffered entry = %+v", buffer.buffered[0])
	}
}

func TestRecord_LostEntryDoesNotPanic(t *testing.T) {
	uc, store, buffer := newFixture()
	store.fail = true
	buffer.fail = true

	uc.Record(context.Background(), &domain.ActivityEntry{TaskID: "t1", UserID: "mgr-1", Action: domain.ActionDeleted})
	uc.Record(context.Background(), nil)
}

func TestListForTask_ExpandsActors(t *testing.T) {
	uc, store, _ := newFixture()
	now := time.Now()
	store.entries = []domain.ActivityEntry{
		{ID: "a2", TaskID: "t1", UserID: "mgr-1", Action: domain.ActionUpdated, CreatedAt: now},
		{ID: "a1", TaskID: "t1", UserID: "ghost", Action: domain.ActionCreated, CreatedAt: now.Add(-time.Minute)},
		{ID: "a3", TaskID: "t2", UserID: "mgr-1", Action: domain.ActionCreated, CreatedAt: now},
	}

	views, err := uc.ListForTask(context.Background(), "t1")
	if err != nil {
		t.Fatalf("ListForTask() error = %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("views = %d, want 2", len(views))
	}
	if views[0].Actor.Name != "Mara" {
		t.Errorf("resolved actor = %+v", views[0].Actor)
	}
	// Unresolvable actors degrade to an id-only summary.
	if views[1].Actor.ID != "ghost" || views[1].Actor.Name != "" {
		t.Errorf("degraded actor = %+v", views[1].Actor)
	}
}

func TestList_ReturnsTotal(t *testing.T) {
	uc, store, _ := newFixture()
	for i := 0; i < 3; i++ {
		store.entries = append(store.entries, domain.ActivityEntry{ID: "e", TaskID: "t1", UserID: "mgr-1"})
	}

	views, total, err := uc.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(views) != 3 {
		t.Errorf("List() = %d views, total %d", len(views), total)
	}
}
