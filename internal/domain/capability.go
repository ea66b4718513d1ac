package domain

// RobotCapability identifies a hardware capability a robot carries
type RobotCapability string

const (
	CapabilityPicker        RobotCapability = "picker"
	CapabilityTransporter   RobotCapability = "transporter"
	CapabilitySorter        RobotCapability = "sorter"
	CapabilityLifter        RobotCapability = "lifter"
	CapabilityScanner       RobotCapability = "scanner"
	CapabilityCollaborative RobotCapability = "collaborative"
)

// AllCapabilities lists every known capability
var AllCapabilities = []RobotCapability{
	CapabilityPicker,
	CapabilityTransporter,
	CapabilitySorter,
	CapabilityLifter,
	CapabilityScanner,
	CapabilityCollaborative,
}

// ParseCapability validates a capability string
func ParseCapability(value string) (RobotCapability, error) {
	for _, c := range AllCapabilities {
		if string(c) == value {
			return c, nil
		}
	}
	return "", NewInvalidArgument("unknown robot capability: %s", value)
}

// TaskType identifies what kind of work a task demands
type TaskType string

const (
	TaskTypeMove      TaskType = "move"
	TaskTypePick      TaskType = "pick"
	TaskTypeTransport TaskType = "transport"
	TaskTypeSort      TaskType = "sort"
	TaskTypeDeliver   TaskType = "deliver"
	TaskTypeReturn    TaskType = "return"
)

// AllTaskTypes lists every known task type
var AllTaskTypes = []TaskType{
	TaskTypeMove,
	TaskTypePick,
	TaskTypeTransport,
	TaskTypeSort,
	TaskTypeDeliver,
	TaskTypeReturn,
}

// ParseTaskType validates a task type string
func ParseTaskType(value string) (TaskType, error) {
	for _, t := range AllTaskTypes {
		if string(t) == value {
			return t, nil
		}
	}
	return "", NewInvalidArgument("unknown task type: %s", value)
}

// TaskPriority orders tasks from least to most urgent
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityNormal TaskPriority = "normal"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

var priorityLevels = map[TaskPriority]int{
	PriorityLow:    1,
	PriorityNormal: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// ParseTaskPriority validates a priority string
func ParseTaskPriority(value string) (TaskPriority, error) {
	p := TaskPriority(value)
	if _, ok := priorityLevels[p]; !ok {
		return "", NewInvalidArgument("unknown task priority: %s", value)
	}
	return p, nil
}

// Level returns the numeric ordering of the priority
func (p TaskPriority) Level() int {
	return priorityLevels[p]
}

// HigherThan reports whether p outranks other
func (p TaskPriority) HigherThan(other TaskPriority) bool {
	return p.Level() > other.Level()
}
