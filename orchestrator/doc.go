// Package orchestrator selects and runs processing strategies for jobs.
//
// An Orchestrator scores every registered strategy against a job's sources,
// runs the winner, optionally runs one fallback when the winner fails, and
// records exactly one terminal state in the job store:
//
//	orch, err := orchestrator.NewOrchestrator(jobs,
//		[]strategy.Strategy{fast, general},
//		orchestrator.WithFallback(true),
//		orchestrator.WithJobTimeout(10*time.Minute))
//	if err != nil {
//		return err
//	}
//	result, err := orch.Process(ctx, jobID)
//
// Process rejects a job that is already running with ErrJobAlreadyRunning.
// Every other failure is reported through the returned result.
//
// Executor runs jobs in the background on a bounded worker pool:
//
//	exec, _ := orchestrator.NewExecutor(orch, orchestrator.WithPoolSize(5))
//	h, err := exec.Submit(ctx, jobID)
//	if errors.Is(err, orchestrator.ErrExecutorBusy) {
//		// retry later
//	}
//	result, err := h.Wait(ctx)
package orchestrator
