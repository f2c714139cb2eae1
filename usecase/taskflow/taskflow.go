package taskflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskdesk/backend/domain"
	"github.com/taskdesk/backend/repository"
	"github.com/taskdesk/backend/usecase"
)

// UseCase is the task-mutation engine. Every mutation runs the same
// pipeline: authorize, validate, apply the accepted delta to a copy,
// persist, audit each accepted change, fan out notifications. The
// store write is the atomicity boundary; audit and notification are
// best-effort side effects that never roll it back.
type UseCase struct {
	tasks      repository.TaskRepository
	identities repository.IdentityRepository
	recorder   usecase.ActivitySink
	notifier   usecase.Notifier
	logger     *zap.Logger

	// now is swappable so due-date day-boundary behavior is testable.
	now func() time.Time
}

func New(
	tasks repository.TaskRepository,
	identities repository.IdentityRepository,
	recorder usecase.ActivitySink,
	notifier usecase.Notifier,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		tasks:      tasks,
		identities: identities,
		recorder:   recorder,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateRequest carries the fields of a new task.
type CreateRequest struct {
	Title       string
	Description string
	AssignedTo  string
	Priority    domain.TaskPriority
	DueDate     *time.Time
}

// Create builds and persists a new task on behalf of a manager. The
// assignee is validated with the same rules as an assignment update;
// status always starts pending and priority defaults to medium.
func (uc *UseCase) Create(ctx context.Context, requesterID string, req CreateRequest) (*domain.TaskView, error) {
	requester, err := uc.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if err := authorizeCreate(requester); err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, domain.ErrTitleRequired
	}
	if err := uc.validateAssignee(ctx, requester, req.AssignedTo); err != nil {
		return nil, err
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}
	if req.DueDate != nil {
		if err := uc.validateDueDate(*req.DueDate); err != nil {
			return nil, err
		}
	}

	task := &domain.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.StatusPending,
		AssignedTo:  req.AssignedTo,
		Priority:    priority,
		DueDate:     req.DueDate,
		CreatedBy:   requester.ID,
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		return nil, domain.PersistenceError(err)
	}

	uc.recorder.Record(ctx, &domain.ActivityEntry{
		TaskID: created.ID,
		UserID: requester.ID,
		Action: domain.ActionCreated,
	})

	view := uc.resolve(ctx, created)
	uc.publish(ctx, created.AssignedTo, domain.Event{
		Kind:   domain.EventTaskUpdated,
		Task:   view,
		Action: string(domain.ActionCreated),
	})

	return view, nil
}

// Update applies a proposed field set to an existing task. The request
// is evaluated as a whole: either every surviving field is accepted and
// applied, or the task is left exactly as it was. One audit entry is
// recorded per accepted change, none for no-ops.
func (uc *UseCase) Update(ctx context.Context, requesterID, taskID string, req UpdateRequest) (*domain.TaskView, []Change, error) {
	requester, err := uc.requester(ctx, requesterID)
	if err != nil {
		return nil, nil, err
	}

	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	if err := authorizeUpdate(requester, task, req); err != nil {
		return nil, nil, err
	}

	changes, next, err := uc.computeChanges(ctx, requester, task, req)
	if err != nil {
		return nil, nil, err
	}

	prevAssignee := task.AssignedTo

	if err := uc.tasks.Update(ctx, next); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, nil, err
		}
		return nil, nil, domain.PersistenceError(err)
	}

	for _, change := range changes {
		uc.recorder.Record(ctx, &domain.ActivityEntry{
			TaskID:   next.ID,
			UserID:   requester.ID,
			Action:   change.Action,
			Field:    change.Field,
			OldValue: change.Old,
			NewValue: change.New,
			Comment:  change.Comment,
		})
	}

	view := uc.resolve(ctx, next)
	uc.fanOutUpdate(ctx, view, prevAssignee, string(domain.ActionUpdated))

	return view, changes, nil
}

// Delete removes a task on behalf of its creator. The audit entry
// references the pre-deletion state and survives the task itself.
func (uc *UseCase) Delete(ctx context.Context, requesterID, taskID string) error {
	requester, err := uc.requester(ctx, requesterID)
	if err != nil {
		return err
	}

	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	if err := authorizeDelete(requester, task); err != nil {
		return err
	}

	uc.recorder.Record(ctx, &domain.ActivityEntry{
		TaskID: task.ID,
		UserID: requester.ID,
		Action: domain.ActionDeleted,
	})

	if err := uc.tasks.Delete(ctx, taskID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return err
		}
		return domain.PersistenceError(err)
	}

	uc.fanOutDelete(ctx, task)
	return nil
}

// Get fetches a single task, subject to the visibility rule.
func (uc *UseCase) Get(ctx context.Context, requesterID, taskID string) (*domain.TaskView, error) {
	requester, err := uc.requester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	task, err := uc.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := canView(requester, task); err != nil {
		return nil, err
	}
	return uc.resolve(ctx, task), nil
}

// List returns the requester's role-scoped task page: users see tasks
// assigned to them, managers see tasks they created.
func (uc *UseCase) List(ctx context.Context, requesterID string, status string, limit, offset int) ([]domain.TaskView, int, error) {
	requester, err := uc.requester(ctx, requesterID)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.TaskFilter{Status: status, Limit: limit, Offset: offset}
	switch requester.Role {
	case domain.RoleUser:
		filter.AssignedTo = requester.ID
	case domain.RoleManager:
		filter.CreatedBy = requester.ID
	default:
		return nil, 0, domain.ErrAccessDenied
	}

	return uc.listPage(ctx, filter)
}

// ListAssigned returns tasks assigned to the requester regardless of role.
func (uc *UseCase) ListAssigned(ctx context.Context, requesterID string, limit, offset int) ([]domain.TaskView, int, error) {
	if _, err := uc.requester(ctx, requesterID); err != nil {
		return nil, 0, err
	}
	return uc.listPage(ctx, repository.TaskFilter{AssignedTo: requesterID, Limit: limit, Offset: offset})
}

// ListCreated returns tasks created by the requester; managers only.
func (uc *UseCase) ListCreated(ctx context.Context, requesterID string, limit, offset int) ([]domain.TaskView, int, error) {
	requester, err := uc.requester(ctx, requesterID)
	if err != nil {
		return nil, 0, err
	}
	if !requester.IsManager() {
		return nil, 0, domain.ErrAccessDenied
	}
	return uc.listPage(ctx, repository.TaskFilter{CreatedBy: requesterID, Limit: limit, Offset: offset})
}

func (uc *UseCase) listPage(ctx context.Context, filter repository.TaskFilter) ([]domain.TaskView, int, error) {
	tasks, err := uc.tasks.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := uc.tasks.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]domain.TaskView, 0, len(tasks))
	for i := range tasks {
		views = append(views, *uc.resolve(ctx, &tasks[i]))
	}
	return views, total, nil
}

// requester resolves the acting identity. A requester id that fails to
// resolve is an authentication problem, not a missing resource.
func (uc *UseCase) requester(ctx context.Context, id string) (*domain.Identity, error) {
	if id == "" {
		return nil, domain.ErrUnauthorized
	}
	identity, err := uc.identities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrIdentityNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return identity, nil
}

// resolve expands the task's identity references for responses and
// events. Resolution failures degrade to id-only summaries rather than
// failing the mutation that already happened.
func (uc *UseCase) resolve(ctx context.Context, task *domain.Task) *domain.TaskView {
	view := &domain.TaskView{Task: *task}

	if creator, err := uc.identities.GetByID(ctx, task.CreatedBy); err == nil {
		view.Creator = creator.Summary()
	} else {
		uc.logger.Warn("creator resolution failed", zap.String("identity_id", task.CreatedBy), zap.Error(err))
		view.Creator = domain.IdentitySummary{ID: task.CreatedBy}
	}

	if assignee, err := uc.identities.GetByID(ctx, task.AssignedTo); err == nil {
		view.Assignee = assignee.Summary()
	} else {
		uc.logger.Warn("assignee resolution failed", zap.String("identity_id", task.AssignedTo), zap.Error(err))
		view.Assignee = domain.IdentitySummary{ID: task.AssignedTo}
	}

	return view
}
