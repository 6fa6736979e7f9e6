package queue

// TaskType is the closed set of admission-queue message kinds. Today only
// one kind exists; the type survives so the stream can carry other kinds
// of background work without a wire-format change.
type TaskType string

const (
	TaskTypeSlowPathRequested TaskType = "slow_path_requested"
)
