package transport

// TaskCreateRequest is the payload for POST /api/v1/tasks.
type TaskCreateRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"max=2000"`
	AssignedTo  string `json:"assigned_to" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     string `json:"due_date"`
}

// TaskUpdateRequest is the payload for PUT /api/v1/tasks/{id}. Nil
// pointers mean the field was not proposed; comment accompanies a
// status change.
type TaskUpdateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in-progress completed"`
	AssignedTo  *string `json:"assigned_to"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
	Comment     string  `json:"comment" validate:"max=2000"`
}

// ProfileUpdateRequest lets an identity edit its own directory entry.
type ProfileUpdateRequest struct {
	Name  string `json:"name" validate:"omitempty,min=1,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

type AuthLoginRequest struct {
	IdentityID string `json:"identity_id" validate:"required"`
	TTL        int    `json:"ttl_seconds" validate:"omitempty,min=60"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TTL       int    `json:"ttl_seconds" validate:"omitempty,min=60"`
}
