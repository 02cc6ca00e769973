package taskstore

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskdeck/taskdeck/pkg/events"
	"github.com/taskdeck/taskdeck/pkg/log"
	"github.com/taskdeck/taskdeck/pkg/metrics"
	"github.com/taskdeck/taskdeck/pkg/types"
)

// TaskAPI is the backend surface the store needs.
// Satisfied by *api.Client.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]types.Task, error)
	CreateTask(ctx context.Context, input types.TaskInput) (*types.Task, error)
	UpdateTask(ctx context.Context, id string, input types.TaskInput) (*types.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// AssigneeResolver resolves user ids against the directory cache.
// Satisfied by *directory.Resolver.
type AssigneeResolver interface {
	Resolve(userID string) (types.User, bool)
}

// Store owns the ordered task collection and all create/update/delete
// logic. Mutations are optimistic: the server's response is applied to
// the local collection immediately, without a confirmation round trip.
// New tasks go to the front; updates keep their position; order is
// otherwise the server's.
type Store struct {
	api      TaskAPI
	resolver AssigneeResolver
	log      zerolog.Logger

	mu     sync.RWMutex
	tasks  []types.Task
	closed bool

	broker *events.Broker
}

// Option configures the store.
type Option func(*Store)

// WithEvents publishes task events to the given broker.
func WithEvents(b *events.Broker) Option {
	return func(s *Store) {
		s.broker = b
	}
}

// New creates an empty task store.
func New(api TaskAPI, resolver AssigneeResolver, opts ...Option) *Store {
	s := &Store{
		api:      api,
		resolver: resolver,
		log:      log.WithComponent("taskstore"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the entire collection with the backend's current
// snapshot, in the order received. It is also the reconciliation
// fallback: when an optimistic mutation cannot be applied cleanly the
// store gives up local derivation and reloads canonical state.
func (s *Store) Load(ctx context.Context) error {
	tasks, err := s.api.ListTasks(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.tasks = tasks
	size := len(s.tasks)
	s.mu.Unlock()

	metrics.TasksInStore.Set(float64(size))
	s.publish(events.EventTasksReloaded, "task list reloaded", "")
	s.log.Debug().Int("tasks", size).Msg("task collection replaced from backend")
	return nil
}

// enrichOutcome is the result of the assignee-enrichment step.
type enrichOutcome int

const (
	// enrichApplied means the task can be applied to the collection
	// as returned (possibly with the assignee filled in).
	enrichApplied enrichOutcome = iota
	// enrichNeedsReconciliation means the assignee could not be
	// resolved from the directory cache and the store must refetch
	// canonical state instead of guessing.
	enrichNeedsReconciliation
)

// enrich fills in the inline assignee for a task the backend returned
// with assignedToId but no assignedTo. Resolution is against the
// current directory cache only; a miss is reported as needing
// reconciliation, never guessed around.
func (s *Store) enrich(task types.Task) (types.Task, enrichOutcome) {
	if task.AssignedToID == "" || task.AssignedTo != nil {
		return task, enrichApplied
	}
	user, ok := s.resolver.Resolve(task.AssignedToID)
	if !ok {
		return task, enrichNeedsReconciliation
	}
	task.AssignedTo = &user
	return task, enrichApplied
}

// reconcile discards optimistic state and reloads the canonical task
// list. Load failures here are logged, not propagated: the triggering
// mutation already succeeded server-side and the next Load retries.
func (s *Store) reconcile(ctx context.Context, reason string) {
	metrics.ReconciliationsTotal.Inc()
	s.log.Info().Str("reason", reason).Msg("reconciling task collection from backend")
	if err := s.Load(ctx); err != nil {
		s.log.Warn().Err(err).Msg("reconciliation load failed, keeping previous collection")
	}
}

// CreateOptimistic creates a task through the backend and inserts the
// result at the front of the collection. If the returned task carries
// an assignee id that cannot be resolved from the directory cache, the
// optimistic insert is discarded and the whole collection is reloaded.
// On failure the collection is unchanged and the error is returned.
func (s *Store) CreateOptimistic(ctx context.Context, input types.TaskInput) (types.Task, error) {
	created, err := s.api.CreateTask(ctx, input)
	if err != nil {
		return types.Task{}, err
	}

	task, outcome := s.enrich(*created)
	if outcome == enrichNeedsReconciliation {
		s.reconcile(ctx, "created task assignee not in directory cache")
		return *created, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return task, nil
	}
	s.tasks = append([]types.Task{task}, s.tasks...)
	size := len(s.tasks)
	s.mu.Unlock()

	metrics.TasksInStore.Set(float64(size))
	s.publish(events.EventTaskCreated, "task created", task.ID)
	s.log.Info().Str("task_id", task.ID).Str("title", task.Title).Msg("task created")
	return task, nil
}

// UpdateOptimistic updates a task through the backend and replaces the
// matching local entry in its current position. A task id unknown to
// the local collection is a no-op: no insert, no error. Assignee
// enrichment follows the same rule as create, including the
// reconciliation fallback on a resolution miss.
func (s *Store) UpdateOptimistic(ctx context.Context, taskID string, input types.TaskInput) (types.Task, error) {
	updated, err := s.api.UpdateTask(ctx, taskID, input)
	if err != nil {
		return types.Task{}, err
	}

	task, outcome := s.enrich(*updated)
	if outcome == enrichNeedsReconciliation {
		s.reconcile(ctx, "updated task assignee not in directory cache")
		return *updated, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return task, nil
	}
	replaced := false
	for i := range s.tasks {
		if s.tasks[i].ID == task.ID {
			s.tasks[i] = task
			replaced = true
			break
		}
	}
	s.mu.Unlock()

	if replaced {
		s.publish(events.EventTaskUpdated, "task updated", task.ID)
		s.log.Info().Str("task_id", task.ID).Msg("task updated")
	} else {
		s.log.Debug().Str("task_id", task.ID).Msg("updated task not in local collection, ignoring")
	}
	return task, nil
}

// Delete removes a task through the backend, then from the collection.
// The decision to delete (user confirmation and so on) belongs to the
// caller. On failure the collection is untouched and the error is
// returned.
func (s *Store) Delete(ctx context.Context, taskID string) error {
	if err := s.api.DeleteTask(ctx, taskID); err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			break
		}
	}
	size := len(s.tasks)
	s.mu.Unlock()

	metrics.TasksInStore.Set(float64(size))
	s.publish(events.EventTaskDeleted, "task deleted", taskID)
	s.log.Info().Str("task_id", taskID).Msg("task deleted")
	return nil
}

// Tasks returns a copy of the collection in display order.
func (s *Store) Tasks() []types.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks in the collection.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Get returns the task with the given id, if present.
func (s *Store) Get(taskID string) (types.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.tasks {
		if s.tasks[i].ID == taskID {
			return s.tasks[i], true
		}
	}
	return types.Task{}, false
}

// Close marks the store disposed. Responses that arrive after Close
// are not applied to the collection.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *Store) publish(evType events.EventType, msg, taskID string) {
	if s.broker == nil {
		return
	}
	ev := &events.Event{Type: evType, Message: msg}
	if taskID != "" {
		ev.Metadata = map[string]string{"task_id": taskID}
	}
	s.broker.Publish(ev)
}
