// Package memory provides an in-memory workflow.Store. It is the
// default execution registry for the orchestrator and is intended for
// single-process use, unit testing, and development.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/nexora-ai/conductor"
	"github.com/nexora-ai/conductor/id"
	"github.com/nexora-ai/conductor/workflow"
)

// Ensure Store implements workflow.Store at compile time.
var _ workflow.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithMaxExecutions bounds the registry to n records. When a new
// execution would exceed the cap, the oldest terminal execution is
// evicted. In-progress executions are never evicted. Zero (the default)
// means unbounded growth.
func WithMaxExecutions(n int) Option {
	return func(s *Store) {
		s.maxExecutions = n
	}
}

// Store is a mutex-guarded in-memory implementation of workflow.Store.
// Safe for concurrent access. All reads and writes copy the execution
// record so callers never share memory with the store.
type Store struct {
	mu sync.RWMutex

	executions map[string]*workflow.Execution
	order      []string // insertion order of execution IDs

	maxExecutions int
}

// New returns a new empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		executions: make(map[string]*workflow.Execution),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateExecution registers a new execution record, evicting the oldest
// terminal record first if the retention cap is reached.
func (s *Store) CreateExecution(_ context.Context, e *workflow.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.ID.String()
	if _, exists := s.executions[key]; exists {
		return conductor.ErrExecutionExists
	}

	if s.maxExecutions > 0 && len(s.executions) >= s.maxExecutions {
		s.evictOldestTerminal()
	}

	cp := *e
	s.executions[key] = &cp
	s.order = append(s.order, key)
	return nil
}

// GetExecution retrieves an execution by ID.
func (s *Store) GetExecution(_ context.Context, execID id.ExecutionID) (*workflow.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.executions[execID.String()]
	if !ok {
		return nil, conductor.ErrExecutionNotFound
	}
	cp := *e
	return &cp, nil
}

// UpdateExecution persists changes to an existing execution.
func (s *Store) UpdateExecution(_ context.Context, e *workflow.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.ID.String()
	if _, ok := s.executions[key]; !ok {
		return conductor.ErrExecutionNotFound
	}
	cp := *e
	cp.UpdatedAt = time.Now().UTC()
	s.executions[key] = &cp
	return nil
}

// ListExecutions returns executions matching the options in insertion
// order (oldest first).
func (s *Store) ListExecutions(_ context.Context, opts workflow.ListOpts) ([]*workflow.Execution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*workflow.Execution, 0, len(s.order))
	for _, key := range s.order {
		e, ok := s.executions[key]
		if !ok {
			continue
		}
		if opts.Status != "" && e.Status != opts.Status {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(result) {
			return []*workflow.Execution{}, nil
		}
		result = result[opts.Offset:]
	}
	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// Len returns the number of stored executions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.executions)
}

// evictOldestTerminal removes the oldest execution that has reached a
// terminal status. Caller must hold the write lock.
func (s *Store) evictOldestTerminal() {
	for i, key := range s.order {
		e, ok := s.executions[key]
		if !ok || !e.Status.Terminal() {
			continue
		}
		delete(s.executions, key)
		s.order = append(s.order[:i], s.order[i+1:]...)
		return
	}
}
