package orchestrator

import "errors"

var (
	// ErrJobStoreRequired indicates an Orchestrator was built without a job store.
	ErrJobStoreRequired = errors.New("job store is required")

	// ErrNoStrategies indicates an Orchestrator was built without strategies.
	ErrNoStrategies = errors.New("at least one strategy is required")

	// ErrDuplicateStrategy indicates two strategies share a name.
	ErrDuplicateStrategy = errors.New("duplicate strategy name")

	// ErrJobAlreadyRunning indicates the job id is already being processed.
	ErrJobAlreadyRunning = errors.New("job is already running")

	// ErrNoStrategy indicates no registered strategy can process the job.
	ErrNoStrategy = errors.New("no strategy can process job")

	// ErrExecutorBusy indicates the worker pool is saturated.
	ErrExecutorBusy = errors.New("executor is busy")

	// ErrExecutorClosed indicates the executor was released.
	ErrExecutorClosed = errors.New("executor is closed")

	// ErrNotFinished indicates a handle's job has not completed yet.
	ErrNotFinished = errors.New("job has not finished")
)
