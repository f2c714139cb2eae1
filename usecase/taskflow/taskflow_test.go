package taskflow

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/taskdesk/backend/domain"
)

func TestCreate_ManagerAssignsUser(t *testing.T) {
	f := newEngine()
	due := f.now.Add(48 * time.Hour)

	view, err := f.uc.Create(context.Background(), managerID, CreateRequest{
		Title:      "Prepare quarterly report",
		AssignedTo: userID,
		DueDate:    &due,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if view.Status != domain.StatusPending {
		t.Errorf("status = %q, want %q", view.Status, domain.StatusPending)
	}
	if view.Priority != domain.PriorityMedium {
		t.Errorf("priority = %q, want default %q", view.Priority, domain.PriorityMedium)
	}
	if view.CreatedBy != managerID || view.AssignedTo != userID {
		t.Errorf("ownership = (%q, %q), want (%q, %q)", view.CreatedBy, view.AssignedTo, managerID, userID)
	}
	if view.Creator.Name != "Mara" || view.Assignee.Name != "Uma" {
		t.Errorf("identity expansion = (%q, %q)", view.Creator.Name, view.Assignee.Name)
	}
	if stored := f.tasks.get(view.ID); stored == nil {
		t.Fatal("task not persisted")
	}

	entries := f.recorder.recorded()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].Action != domain.ActionCreated || entries[0].TaskID != view.ID || entries[0].UserID != managerID {
		t.Errorf("entry = %+v", entries[0])
	}

	if got := f.notifier.recipients(); !reflect.DeepEqual(got, []string{userID}) {
		t.Errorf("notified %v, want [%s]", got, userID)
	}
}

func TestCreate_Rejections(t *testing.T) {
	f := newEngine()
	yesterday := f.now.Add(-24 * time.Hour)

	tests := []struct {
		name      string
		requester string
		req       CreateRequest
		wantErr   error
	}{
		{
			name:      "user cannot create",
			requester: userID,
			req:       CreateRequest{Title: "t", AssignedTo: otherUserID},
			wantErr:   domain.ErrAccessDenied,
		},
		{
			name:      "blank title",
			requester: managerID,
			req:       CreateRequest{Title: "   ", AssignedTo: userID},
			wantErr:   domain.ErrTitleRequired,
		},
		{
			name:      "self assignment",
			requester: managerID,
			req:       CreateRequest{Title: "t", AssignedTo: managerID},
			wantErr:   domain.ErrSelfAssignment,
		},
		{
			name:      "manager assignee",
			requester: managerID,
			req:       CreateRequest{Title: "t", AssignedTo: otherManagerID},
			wantErr:   domain.ErrAssigneeIsManager,
		},
		{
			name:      "unknown assignee",
			requester: managerID,
			req:       CreateRequest{Title: "t", AssignedTo: "ghost"},
			wantErr:   domain.ErrAssigneeNotFound,
		},
		{
			name:      "past due date",
			requester: managerID,
			req:       CreateRequest{Title: "t", AssignedTo: userID, DueDate: &yesterday},
			wantErr:   domain.ErrDueDateInPast,
		},
		{
			name:      "unknown priority",
			requester: managerID,
			req:       CreateRequest{Title: "t", AssignedTo: userID, Priority: "urgent"},
			wantErr:   domain.ErrInvalidPriority,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Create(context.Background(), tt.requester, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Create() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(f.tasks.tasks) != 0 {
		t.Errorf("rejected creates persisted %d tasks", len(f.tasks.tasks))
	}
	if entries := f.recorder.recorded(); len(entries) != 0 {
		t.Errorf("rejected creates recorded %d entries", len(entries))
	}
}

func TestUpdate_UserStatusChangeWithComment(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	view, changes, err := f.uc.Update(context.Background(), userID, "t1", UpdateRequest{
		Status:  statusPtr(domain.StatusInProgress),
		Comment: "picked it up this morning",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if view.Status != domain.StatusInProgress {
		t.Errorf("status = %q, want %q", view.Status, domain.StatusInProgress)
	}
	if len(changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(changes))
	}

	entries := f.recorder.recorded()
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Action != domain.ActionStatusChanged {
		t.Errorf("action = %q, want %q", entry.Action, domain.ActionStatusChanged)
	}
	if entry.Field != "status" || entry.OldValue != string(domain.StatusPending) || entry.NewValue != string(domain.StatusInProgress) {
		t.Errorf("entry delta = %+v", entry)
	}
	if entry.Comment != "picked it up this morning" {
		t.Errorf("comment = %q", entry.Comment)
	}

	// Assignee and creator each exactly once.
	if got := f.notifier.recipients(); !reflect.DeepEqual(got, []string{userID, managerID}) {
		t.Errorf("notified %v, want [%s %s]", got, userID, managerID)
	}
}

func TestUpdate_UserCommentRequired(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	_, _, err := f.uc.Update(context.Background(), userID, "t1", UpdateRequest{
		Status: statusPtr(domain.StatusCompleted),
	})
	if !errors.Is(err, domain.ErrCommentRequired) {
		t.Fatalf("Update() = %v, want %v", err, domain.ErrCommentRequired)
	}

	if stored := f.tasks.get("t1"); stored.Status != domain.StatusPending {
		t.Errorf("status mutated to %q on rejected update", stored.Status)
	}
	if entries := f.recorder.recorded(); len(entries) != 0 {
		t.Errorf("rejected update recorded %d entries", len(entries))
	}
	if got := f.notifier.recipients(); len(got) != 0 {
		t.Errorf("rejected update notified %v", got)
	}
}

func TestUpdate_UserForbiddenField(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	_, _, err := f.uc.Update(context.Background(), userID, "t1", UpdateRequest{
		Title: strPtr("my own title"),
	})
	if !errors.Is(err, domain.ErrForbiddenField) {
		t.Fatalf("Update() = %v, want %v", err, domain.ErrForbiddenField)
	}

	if stored := f.tasks.get("t1"); stored.Title != "Prepare quarterly report" {
		t.Errorf("title mutated to %q", stored.Title)
	}
	if entries := f.recorder.recorded(); len(entries) != 0 {
		t.Errorf("forbidden update recorded %d entries", len(entries))
	}
}

func TestUpdate_SameStatusIsNoop(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	// Re-sending the current status needs no comment and produces no
	// audit entry.
	_, changes, err := f.uc.Update(context.Background(), userID, "t1", UpdateRequest{
		Status: statusPtr(domain.StatusPending),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if len(changes) != 0 {
		t.Errorf("changes = %d, want 0", len(changes))
	}
	if entries := f.recorder.recorded(); len(entries) != 0 {
		t.Errorf("no-op recorded %d entries", len(entries))
	}
}

func TestUpdate_ManagerMultiField_AuditOrder(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")
	due := f.now.Add(72 * time.Hour)

	_, changes, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
		Title:    strPtr("Prepare annual report"),
		Status:   statusPtr(domain.StatusInProgress),
		Priority: prioPtr(domain.PriorityHigh),
		DueDate:  &due,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	var fields []string
	for _, c := range changes {
		fields = append(fields, c.Field)
	}
	want := []string{"title", "status", "priority", "dueDate"}
	if !reflect.DeepEqual(fields, want) {
		t.Fatalf("change order = %v, want %v", fields, want)
	}

	entries := f.recorder.recorded()
	if len(entries) != len(want) {
		t.Fatalf("audit entries = %d, want %d", len(entries), len(want))
	}
	for i, entry := range entries {
		if entry.Field != want[i] {
			t.Errorf("entry[%d].Field = %q, want %q", i, entry.Field, want[i])
		}
	}
	if entries[1].Action != domain.ActionStatusChanged {
		t.Errorf("status entry action = %q, want %q", entries[1].Action, domain.ActionStatusChanged)
	}
	// Managers may change status without a comment.
	if entries[1].Comment != "" {
		t.Errorf("status entry comment = %q, want empty", entries[1].Comment)
	}
}

func TestUpdate_Reassignment_FanOut(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	view, _, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
		AssignedTo: strPtr(otherUserID),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if view.AssignedTo != otherUserID {
		t.Errorf("assignee = %q, want %q", view.AssignedTo, otherUserID)
	}
	if view.CreatedBy == view.AssignedTo {
		t.Error("creator ended up as assignee")
	}

	// Previous assignee, new assignee, creator.
	want := []string{userID, otherUserID, managerID}
	if got := f.notifier.recipients(); !reflect.DeepEqual(got, want) {
		t.Errorf("notified %v, want %v", got, want)
	}
}

func TestUpdate_UnchangedAssignee_FanOutDeduped(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	_, _, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
		Description: strPtr("now with context"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	want := []string{userID, managerID}
	if got := f.notifier.recipients(); !reflect.DeepEqual(got, want) {
		t.Errorf("notified %v, want %v", got, want)
	}
}

func TestUpdate_ValidationRejectsWholeRequest(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")
	yesterday := f.now.Add(-24 * time.Hour)

	// Title alone would be accepted, but the invalid due date aborts
	// everything.
	_, _, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
		Title:   strPtr("half applied?"),
		DueDate: &yesterday,
	})
	if !errors.Is(err, domain.ErrDueDateInPast) {
		t.Fatalf("Update() = %v, want %v", err, domain.ErrDueDateInPast)
	}

	if stored := f.tasks.get("t1"); stored.Title != "Prepare quarterly report" {
		t.Errorf("partial apply: title = %q", stored.Title)
	}
	if entries := f.recorder.recorded(); len(entries) != 0 {
		t.Errorf("rejected request recorded %d entries", len(entries))
	}
}

func TestUpdate_ManagerReassignRules(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	tests := []struct {
		name     string
		assignee string
		wantErr  error
	}{
		{name: "to self", assignee: managerID, wantErr: domain.ErrSelfAssignment},
		{name: "to manager", assignee: otherManagerID, wantErr: domain.ErrAssigneeIsManager},
		{name: "to ghost", assignee: "ghost", wantErr: domain.ErrAssigneeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
				AssignedTo: strPtr(tt.assignee),
			})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Update() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdate_StoreFailureAbortsSideEffects(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")
	f.tasks.failWrites = true

	_, _, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
		Title: strPtr("never lands"),
	})
	if !domain.IsDomainError(err, domain.ErrCodeInternal) {
		t.Fatalf("Update() = %v, want internal domain error", err)
	}
	if entries := f.recorder.recorded(); len(entries) != 0 {
		t.Errorf("failed write recorded %d entries", len(entries))
	}
	if got := f.notifier.recipients(); len(got) != 0 {
		t.Errorf("failed write notified %v", got)
	}
}

func TestUpdate_VisibilityAndExistence(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")
	change := UpdateRequest{Status: statusPtr(domain.StatusCompleted), Comment: "c"}

	tests := []struct {
		name      string
		requester string
		taskID    string
		wantErr   error
	}{
		{name: "missing task", requester: managerID, taskID: "ghost", wantErr: domain.ErrTaskNotFound},
		{name: "foreign user", requester: otherUserID, taskID: "t1", wantErr: domain.ErrAccessDenied},
		{name: "foreign manager", requester: otherManagerID, taskID: "t1", wantErr: domain.ErrAccessDenied},
		{name: "unknown requester", requester: "ghost", taskID: "t1", wantErr: domain.ErrUnauthorized},
		{name: "empty requester", requester: "", taskID: "t1", wantErr: domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.uc.Update(context.Background(), tt.requester, tt.taskID, change)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Update() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestUpdate_NotifierFailureDoesNotFailMutation(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")
	f.notifier.fail = true

	view, _, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
		Title: strPtr("still lands"),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if view.Title != "still lands" {
		t.Errorf("title = %q", view.Title)
	}
	if stored := f.tasks.get("t1"); stored.Title != "still lands" {
		t.Errorf("persisted title = %q", stored.Title)
	}
}

func TestDelete_CreatorOnly(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	if err := f.uc.Delete(context.Background(), otherManagerID, "t1"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("foreign manager Delete() = %v, want %v", err, domain.ErrAccessDenied)
	}
	if err := f.uc.Delete(context.Background(), userID, "t1"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("assignee Delete() = %v, want %v", err, domain.ErrAccessDenied)
	}
	if f.tasks.get("t1") == nil {
		t.Fatal("task deleted by denied requester")
	}

	if err := f.uc.Delete(context.Background(), managerID, "t1"); err != nil {
		t.Fatalf("creator Delete() error = %v", err)
	}
	if f.tasks.get("t1") != nil {
		t.Fatal("task still present after delete")
	}

	entries := f.recorder.recorded()
	if len(entries) != 1 || entries[0].Action != domain.ActionDeleted || entries[0].TaskID != "t1" {
		t.Fatalf("audit entries = %+v", entries)
	}

	events := f.notifier.events
	if len(events) != 1 {
		t.Fatalf("notifications = %d, want 1", len(events))
	}
	if events[0].recipient != userID || events[0].event.Kind != domain.EventTaskDeleted || events[0].event.TaskID != "t1" {
		t.Errorf("delete event = %+v", events[0])
	}
}

func TestGet_Visibility(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	if _, err := f.uc.Get(context.Background(), userID, "t1"); err != nil {
		t.Errorf("assignee Get() error = %v", err)
	}
	if _, err := f.uc.Get(context.Background(), managerID, "t1"); err != nil {
		t.Errorf("creator Get() error = %v", err)
	}
	if _, err := f.uc.Get(context.Background(), otherUserID, "t1"); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("foreign user Get() = %v, want %v", err, domain.ErrAccessDenied)
	}
}

func TestList_RoleScoping(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")
	f.seedTask("t2")
	// A task by the other manager assigned to the other user keeps both
	// scopes honest.
	f.tasks.tasks["t3"] = &domain.Task{
		ID: "t3", Title: "other", Status: domain.StatusPending,
		AssignedTo: otherUserID, Priority: domain.PriorityLow, CreatedBy: otherManagerID,
	}

	views, total, err := f.uc.List(context.Background(), userID, "", 10, 0)
	if err != nil {
		t.Fatalf("user List() error = %v", err)
	}
	if total != 2 || len(views) != 2 {
		t.Errorf("user scope = %d/%d, want 2/2", len(views), total)
	}
	for _, v := range views {
		if v.AssignedTo != userID {
			t.Errorf("user saw task assigned to %q", v.AssignedTo)
		}
	}

	views, total, err = f.uc.List(context.Background(), otherManagerID, "", 10, 0)
	if err != nil {
		t.Fatalf("manager List() error = %v", err)
	}
	if total != 1 || len(views) != 1 || views[0].ID != "t3" {
		t.Errorf("manager scope = %+v total=%d", views, total)
	}

	if _, _, err := f.uc.ListCreated(context.Background(), userID, 10, 0); !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("user ListCreated() = %v, want %v", err, domain.ErrAccessDenied)
	}
}

// TestUpdate_ConcurrentLastWriteWins pins down the read-modify-write
// window: two updates computed from the same snapshot overwrite each
// other field-wise, so exactly one of the two survives.
func TestUpdate_ConcurrentLastWriteWins(t *testing.T) {
	f := newEngine()
	f.seedTask("t1")

	var fetched sync.WaitGroup
	fetched.Add(2)
	f.tasks.onGet = func() {
		fetched.Done()
		fetched.Wait()
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
			Title: strPtr("title from A"),
		})
		if err != nil {
			t.Errorf("update A: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		_, _, err := f.uc.Update(context.Background(), managerID, "t1", UpdateRequest{
			Priority: prioPtr(domain.PriorityHigh),
		})
		if err != nil {
			t.Errorf("update B: %v", err)
		}
	}()
	wg.Wait()

	f.tasks.onGet = nil
	stored := f.tasks.get("t1")
	titleApplied := stored.Title == "title from A"
	priorityApplied := stored.Priority == domain.PriorityHigh
	if titleApplied == priorityApplied {
		t.Fatalf("expected exactly one write to survive, got title=%v priority=%v", titleApplied, priorityApplied)
	}
}
