package tasks

// CreateTaskRequest is the payload for creating a task.
type CreateTaskRequest struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    string  `json:"category" validate:"required,max=100"`
	Status      *Status `json:"status" validate:"omitempty,oneof=Todo InProgress Done"`
}

// UpdateTaskRequest is a partial update; nil fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category" validate:"omitempty,min=1,max=100"`
	Status      *Status `json:"status" validate:"omitempty,oneof=Todo InProgress Done"`
	Order       *int    `json:"order" validate:"omitempty,min=0"`
}

// ReorderRequest persists a whole column after a drag-and-drop: each task is
// moved into the column and given its index as order.
type ReorderRequest struct {
	TaskIDs []int64 `json:"taskIds" validate:"required,min=1,unique,dive,gt=0"`
}
