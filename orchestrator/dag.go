// Package orchestrator runs ffmpeg commands in parallel under per-resource
// slot limits and task dependencies.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"silencecut/command"
	"silencecut/models"
)

// ResourceType names a pool of execution slots.
type ResourceType string

const (
	ResourceCPU ResourceType = "cpu" // encoder processes (parallel)
	ResourceIO  ResourceType = "io"  // stream copy and file I/O (sequential)
)

// ErrDependencyFailed is the error of a task skipped because a task it
// depends on failed.
var ErrDependencyFailed = errors.New("dependency failed")

// Task represents a unit of work with dependencies and resource requirements
type Task struct {
	ID           string
	SegmentID    uint
	Command      command.Command
	Dependencies []string // IDs of tasks that must complete before this one
	Resource     ResourceType
	Status       TaskStatus
	Error        error
	Result       *models.SegmentResult
	StartTime    time.Time
	EndTime      time.Time
}

// TaskStatus represents the current state of a task
type TaskStatus int

const (
	TaskPending TaskStatus = iota
	TaskReady              // Dependencies met, waiting for resource
	TaskRunning
	TaskCompleted
	TaskFailed
)

func (s TaskStatus) String() string {
	switch s {
	case TaskPending:
		return "pending"
	case TaskReady:
		return "ready"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ResourceConstraint defines limits for a resource type
type ResourceConstraint struct {
	Type     ResourceType
	MaxSlots int // Maximum concurrent tasks for this resource
}

// DAGOrchestrator manages task execution with dependencies and resource constraints
type DAGOrchestrator struct {
	tasks       map[string]*Task
	order       []*Task // scheduling order: priority, then insertion
	constraints map[ResourceType]int

	activeSlots map[ResourceType]int
	slotsMutex  sync.Mutex

	tasksMutex sync.RWMutex

	onProgress func(completed, total int, task *Task)
	logger     *zap.Logger
}

// NewDAGOrchestrator creates a new orchestrator with resource constraints.
// A resource without a constraint is unlimited; MaxSlots below 1 counts as 1.
func NewDAGOrchestrator(constraints []ResourceConstraint) *DAGOrchestrator {
	limits := make(map[ResourceType]int, len(constraints))
	for _, c := range constraints {
		slots := c.MaxSlots
		if slots < 1 {
			slots = 1
		}
		limits[c.Type] = slots
	}

	return &DAGOrchestrator{
		tasks:       make(map[string]*Task),
		constraints: limits,
		activeSlots: make(map[ResourceType]int),
		logger:      zap.NewNop(),
	}
}

// SetLogger attaches a logger for task lifecycle events.
func (o *DAGOrchestrator) SetLogger(logger *zap.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

// AddTask adds a task to the orchestrator
func (o *DAGOrchestrator) AddTask(task *Task) error {
	if task == nil || task.Command == nil {
		return fmt.Errorf("task must have a command")
	}

	o.tasksMutex.Lock()
	defer o.tasksMutex.Unlock()

	if _, exists := o.tasks[task.ID]; exists {
		return fmt.Errorf("task %s already exists", task.ID)
	}

	task.Status = TaskPending
	o.tasks[task.ID] = task
	o.order = append(o.order, task)
	return nil
}

// SetProgressCallback sets a callback invoked once per finished task, from
// the goroutine running Execute.
func (o *DAGOrchestrator) SetProgressCallback(callback func(completed, total int, task *Task)) {
	o.onProgress = callback
}

// Execute runs all tasks respecting dependencies and resource constraints and
// returns one result per task, ordered by SegmentID.
//
// A failed task does not stop unrelated tasks; its dependents fail with
// ErrDependencyFailed. When ctx is cancelled, running commands are expected to
// stop through their own context, tasks not yet started fail with ctx.Err(),
// and Execute returns ctx.Err() after every task has settled.
func (o *DAGOrchestrator) Execute(ctx context.Context) ([]*models.SegmentResult, error) {
	if err := o.validateDAG(); err != nil {
		return nil, err
	}

	o.tasksMutex.Lock()
	sort.SliceStable(o.order, func(i, j int) bool {
		return o.order[i].Command.GetPriority() > o.order[j].Command.GetPriority()
	})
	total := len(o.order)
	o.tasksMutex.Unlock()

	results := make([]*models.SegmentResult, 0, total)
	doneCh := make(chan *Task, total)
	finished := 0

	record := func(task *Task) {
		finished++
		if task.Result != nil {
			results = append(results, task.Result)
		}
		if task.Status == TaskFailed {
			o.logger.Warn("task failed", zap.String("task", task.ID), zap.Error(task.Error))
		} else {
			o.logger.Debug("task completed",
				zap.String("task", task.ID),
				zap.Duration("elapsed", task.EndTime.Sub(task.StartTime)))
		}
		if o.onProgress != nil {
			o.onProgress(finished, total, task)
		}
	}

	ctxDone := ctx.Done()
	for {
		for _, task := range o.schedule(ctx, doneCh) {
			record(task)
		}
		if finished == total {
			break
		}

		select {
		case task := <-doneCh:
			record(task)
		case <-ctxDone:
			// Next schedule pass fails everything still pending.
			ctxDone = nil
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SegmentID < results[j].SegmentID
	})

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// schedule starts every task whose dependencies are met and whose resource
// has a free slot. Tasks it fails without running are returned.
func (o *DAGOrchestrator) schedule(ctx context.Context, doneCh chan<- *Task) []*Task {
	o.tasksMutex.Lock()
	defer o.tasksMutex.Unlock()

	var failed []*Task
	for _, task := range o.order {
		if task.Status != TaskPending && task.Status != TaskReady {
			continue
		}

		if err := ctx.Err(); err != nil {
			o.fail(task, err)
			failed = append(failed, task)
			continue
		}

		if o.hasFailedDependency(task) {
			o.fail(task, ErrDependencyFailed)
			failed = append(failed, task)
			continue
		}

		if !o.dependenciesMet(task) {
			continue
		}
		task.Status = TaskReady

		if !o.tryAcquireResource(task.Resource) {
			continue
		}

		task.Status = TaskRunning
		task.StartTime = time.Now()
		o.logger.Debug("task started",
			zap.String("task", task.ID),
			zap.String("type", string(task.Command.GetTaskType())),
			zap.String("resource", string(task.Resource)))
		go o.executeTask(ctx, task, doneCh)
	}
	return failed
}

// dependenciesMet checks if all dependencies of a task are completed
func (o *DAGOrchestrator) dependenciesMet(task *Task) bool {
	for _, depID := range task.Dependencies {
		depTask, exists := o.tasks[depID]
		if !exists || depTask.Status != TaskCompleted {
			return false
		}
	}
	return true
}

// hasFailedDependency checks if any direct or transitive dependency has failed
func (o *DAGOrchestrator) hasFailedDependency(task *Task) bool {
	for _, depID := range task.Dependencies {
		if depTask, exists := o.tasks[depID]; exists {
			if depTask.Status == TaskFailed || o.hasFailedDependency(depTask) {
				return true
			}
		}
	}
	return false
}

// tryAcquireResource attempts to acquire a resource slot
func (o *DAGOrchestrator) tryAcquireResource(resourceType ResourceType) bool {
	o.slotsMutex.Lock()
	defer o.slotsMutex.Unlock()

	limit, exists := o.constraints[resourceType]
	if !exists {
		return true
	}

	if o.activeSlots[resourceType] < limit {
		o.activeSlots[resourceType]++
		return true
	}
	return false
}

// releaseResource releases a resource slot
func (o *DAGOrchestrator) releaseResource(resourceType ResourceType) {
	o.slotsMutex.Lock()
	defer o.slotsMutex.Unlock()

	if o.activeSlots[resourceType] > 0 {
		o.activeSlots[resourceType]--
	}
}

// executeTask runs a single task. The slot is released before the task is
// reported so the scheduler can reuse it on the same pass.
func (o *DAGOrchestrator) executeTask(ctx context.Context, task *Task, doneCh chan<- *Task) {
	err := task.Command.Run(ctx)

	o.tasksMutex.Lock()
	task.EndTime = time.Now()
	if err != nil {
		o.fail(task, err)
	} else if result, rerr := models.NewSegmentResultSuccess(task.SegmentID, task.Command.GetOutputPath()); rerr != nil {
		o.fail(task, rerr)
	} else {
		task.Status = TaskCompleted
		task.Result = result
	}
	o.tasksMutex.Unlock()

	o.releaseResource(task.Resource)
	doneCh <- task
}

// fail marks task failed. Callers hold tasksMutex.
func (o *DAGOrchestrator) fail(task *Task, err error) {
	task.Status = TaskFailed
	task.Error = err
	if task.EndTime.IsZero() {
		task.EndTime = time.Now()
	}
	task.Result, _ = models.NewSegmentResultFailure(task.SegmentID, err)
}

// validateDAG validates the task graph
func (o *DAGOrchestrator) validateDAG() error {
	o.tasksMutex.RLock()
	defer o.tasksMutex.RUnlock()

	for _, task := range o.order {
		for _, depID := range task.Dependencies {
			if _, exists := o.tasks[depID]; !exists {
				return fmt.Errorf("task %s depends on non-existent task %s", task.ID, depID)
			}
		}
	}

	// DFS cycle detection
	visited := make(map[string]bool)
	recStack := make(map[string]bool)

	var hasCycle func(taskID string) bool
	hasCycle = func(taskID string) bool {
		visited[taskID] = true
		recStack[taskID] = true

		for _, depID := range o.tasks[taskID].Dependencies {
			if !visited[depID] {
				if hasCycle(depID) {
					return true
				}
			} else if recStack[depID] {
				return true
			}
		}

		recStack[taskID] = false
		return false
	}

	for _, task := range o.order {
		if !visited[task.ID] && hasCycle(task.ID) {
			return fmt.Errorf("cycle detected in task dependencies")
		}
	}

	return nil
}

// GetTaskStatus returns the status of a task
func (o *DAGOrchestrator) GetTaskStatus(taskID string) (TaskStatus, error) {
	o.tasksMutex.RLock()
	defer o.tasksMutex.RUnlock()

	task, exists := o.tasks[taskID]
	if !exists {
		return TaskPending, fmt.Errorf("task %s not found", taskID)
	}

	return task.Status, nil
}

// GetStats returns task counts by status plus a "total" entry.
func (o *DAGOrchestrator) GetStats() map[string]int {
	o.tasksMutex.RLock()
	defer o.tasksMutex.RUnlock()

	stats := map[string]int{
		"total":                len(o.tasks),
		TaskPending.String():   0,
		TaskReady.String():     0,
		TaskRunning.String():   0,
		TaskCompleted.String(): 0,
		TaskFailed.String():    0,
	}
	for _, task := range o.tasks {
		stats[task.Status.String()]++
	}
	return stats
}
