package taskflow

import "github.com/taskdesk/backend/domain"

// canView implements the visibility rule: a user sees only tasks
// assigned to them, a manager sees only tasks they created. Unknown
// roles are denied outright.
func canView(requester *domain.Identity, task *domain.Task) error {
	if requester == nil || task == nil {
		return domain.ErrAccessDenied
	}
	switch requester.Role {
	case domain.RoleUser:
		if task.AssignedTo != requester.ID {
			return domain.ErrAccessDenied
		}
	case domain.RoleManager:
		if task.CreatedBy != requester.ID {
			return domain.ErrAccessDenied
		}
	default:
		return domain.ErrAccessDenied
	}
	return nil
}

// authorizeUpdate gates a proposed field set. For user-role requesters
// any field other than status is a hard ForbiddenField error, not a
// silent skip; a request without status is rejected the same way.
func authorizeUpdate(requester *domain.Identity, task *domain.Task, req UpdateRequest) error {
	if err := canView(requester, task); err != nil {
		return err
	}
	switch requester.Role {
	case domain.RoleManager:
		return nil
	case domain.RoleUser:
		if req.Title != nil || req.Description != nil || req.AssignedTo != nil || req.Priority != nil || req.DueDate != nil {
			return domain.ErrForbiddenField
		}
		if req.Status == nil {
			return domain.ErrForbiddenField
		}
		return nil
	default:
		return domain.ErrAccessDenied
	}
}

// authorizeCreate permits task creation for managers only.
func authorizeCreate(requester *domain.Identity) error {
	if requester == nil || !requester.IsManager() {
		return domain.ErrAccessDenied
	}
	return nil
}

// authorizeDelete permits deletion only by the creating manager.
func authorizeDelete(requester *domain.Identity, task *domain.Task) error {
	if requester == nil || task == nil || !requester.IsManager() {
		return domain.ErrAccessDenied
	}
	if task.CreatedBy != requester.ID {
		return domain.ErrAccessDenied
	}
	return nil
}
