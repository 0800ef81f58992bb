package model

// TaskReorder is one record of a batch reorder. Status and Order are applied
// independently when present. ID is kept as a string so that ids which do not
// resolve, malformed or not, are skipped instead of failing the batch.
type TaskReorder struct {
	ID     string      `json:"id" binding:"required"`
	Status *TaskStatus `json:"status,omitempty" binding:"omitempty,oneof=todo in_progress done archived"`
	Order  *int        `json:"order,omitempty" binding:"omitempty,min=0"`
}

// SubtaskReorder is the subtask counterpart of TaskReorder; TaskID moves the
// subtask to another parent.
type SubtaskReorder struct {
	ID     string  `json:"id" binding:"required"`
	TaskID *string `json:"taskId,omitempty" binding:"omitempty,uuid"`
	Order  *int    `json:"order,omitempty" binding:"omitempty,min=0"`
}
