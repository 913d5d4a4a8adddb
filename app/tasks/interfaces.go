package tasks

// TaskSchedulerInterface defines the interface for task scheduling
// operations. Used by the main application and the HTTP API to manage
// background pipeline processing.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
