package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus represents the task lifecycle state
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusAssigned   TaskStatus = "assigned"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// RobotTask is the aggregate root for a unit of robot work. Transitions are
// one-way; terminal states never revert.
type RobotTask struct {
	ID                 primitive.ObjectID     `bson:"_id,omitempty" json:"-"`
	TaskID             string                 `bson:"taskId" json:"taskId"`
	RobotID            *string                `bson:"robotId,omitempty" json:"robotId,omitempty"`
	Type               TaskType               `bson:"type" json:"type"`
	Priority           TaskPriority           `bson:"priority" json:"priority"`
	Origin             RobotPosition          `bson:"origin" json:"origin"`
	Destination        RobotPosition          `bson:"destination" json:"destination"`
	RequiredCapability RobotCapability        `bson:"requiredCapability" json:"requiredCapability"`
	Payload            map[string]interface{} `bson:"payload,omitempty" json:"payload,omitempty"`
	Status             TaskStatus             `bson:"status" json:"status"`
	FailureReason      *string                `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt          time.Time              `bson:"createdAt" json:"createdAt"`
	AssignedAt         *time.Time             `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	StartedAt          *time.Time             `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt        *time.Time             `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// NewRobotTask creates a pending task
func NewRobotTask(taskID string, taskType TaskType, priority TaskPriority, origin, destination RobotPosition, requiredCapability RobotCapability, payload map[string]interface{}) (*RobotTask, error) {
	if taskID == "" {
		return nil, NewInvalidArgument("task id is required")
	}
	if _, err := ParseTaskType(string(taskType)); err != nil {
		return nil, err
	}
	if _, err := ParseTaskPriority(string(priority)); err != nil {
		return nil, err
	}
	if _, err := ParseCapability(string(requiredCapability)); err != nil {
		return nil, err
	}

	return &RobotTask{
		TaskID:             taskID,
		Type:               taskType,
		Priority:           priority,
		Origin:             origin,
		Destination:        destination,
		RequiredCapability: requiredCapability,
		Payload:            payload,
		Status:             TaskStatusPending,
		CreatedAt:          time.Now(),
	}, nil
}

// Assign binds the task to a robot; valid only from pending
func (t *RobotTask) Assign(robotID string) error {
	if t.Status != TaskStatusPending {
		return NewInvalidState("task %s must be pending to assign (status: %s)", t.TaskID, t.Status)
	}
	if robotID == "" {
		return NewInvalidArgument("robot id is required")
	}

	now := time.Now()
	t.RobotID = &robotID
	t.Status = TaskStatusAssigned
	t.AssignedAt = &now
	return nil
}

// Start moves the task into execution; valid only from assigned
func (t *RobotTask) Start() error {
	if t.Status != TaskStatusAssigned {
		return NewInvalidState("task %s must be assigned to start (status: %s)", t.TaskID, t.Status)
	}

	now := time.Now()
	t.Status = TaskStatusInProgress
	t.StartedAt = &now
	return nil
}

// Complete finishes the task; valid only from in_progress
func (t *RobotTask) Complete() error {
	if t.Status != TaskStatusInProgress {
		return NewInvalidState("task %s must be in progress to complete (status: %s)", t.TaskID, t.Status)
	}

	now := time.Now()
	t.Status = TaskStatusCompleted
	t.CompletedAt = &now
	return nil
}

// Fail aborts the task with a reason; valid from any non-terminal state
func (t *RobotTask) Fail(reason string) error {
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusCancelled || t.Status == TaskStatusFailed {
		return NewInvalidState("task %s is already terminal (status: %s)", t.TaskID, t.Status)
	}

	now := time.Now()
	t.Status = TaskStatusFailed
	t.FailureReason = &reason
	t.CompletedAt = &now
	return nil
}

// Cancel withdraws the task; valid from any state except completed or failed
func (t *RobotTask) Cancel() error {
	if t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed {
		return NewInvalidState("task %s cannot be cancelled (status: %s)", t.TaskID, t.Status)
	}

	now := time.Now()
	t.Status = TaskStatusCancelled
	t.CompletedAt = &now
	return nil
}

// IsTerminal reports whether the task has reached a final state
func (t *RobotTask) IsTerminal() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed || t.Status == TaskStatusCancelled
}

// Duration returns the execution time, or zero if the task never ran to an end
func (t *RobotTask) Duration() time.Duration {
	if t.StartedAt == nil || t.CompletedAt == nil {
		return 0
	}
	return t.CompletedAt.Sub(*t.StartedAt)
}

// WaitTime returns how long the task waited for assignment; for an
// unassigned task the clock keeps running.
func (t *RobotTask) WaitTime() time.Duration {
	if t.AssignedAt != nil {
		return t.AssignedAt.Sub(t.CreatedAt)
	}
	return time.Since(t.CreatedAt)
}
