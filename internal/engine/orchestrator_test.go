package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/AmmarAzhad/civils/internal/domain"
	"github.com/AmmarAzhad/civils/internal/repo"
)

// fakeWorkflows — WorkflowSource поверх map.
type fakeWorkflows struct {
	workflows map[int64]*domain.Workflow
	err       error
}

func (f *fakeWorkflows) GetByID(_ context.Context, id int64) (*domain.Workflow, error) {
	if f.err != nil {
		return nil, f.err
	}
	w, ok := f.workflows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return w, nil
}

// fakeStore — ExecutionStore в памяти с записью переходов.
type fakeStore struct {
	mu          sync.Mutex
	executions  map[uuid.UUID]*domain.Execution
	transitions []domain.ExecutionStatus

	createErr error
	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{executions: make(map[uuid.UUID]*domain.Execution)}
}

func (s *fakeStore) Create(_ context.Context, e *domain.Execution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	copied := *e
	s.executions[e.ID] = &copied
	s.transitions = append(s.transitions, e.Status)
	return nil
}

func (s *fakeStore) UpdateStatus(_ context.Context, e *domain.Execution, status domain.ExecutionStatus, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	e.Transition(status, message)
	copied := *e
	s.executions[e.ID] = &copied
	s.transitions = append(s.transitions, status)
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Execution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.executions[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (s *fakeStore) recorded() []domain.ExecutionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.ExecutionStatus(nil), s.transitions...)
}

func (s *fakeStore) stored() []*domain.Execution {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Execution
	for _, e := range s.executions {
		copied := *e
		out = append(out, &copied)
	}
	return out
}

func collectUpdates(ch <-chan domain.StatusUpdate) []domain.StatusUpdate {
	var updates []domain.StatusUpdate
	for u := range ch {
		updates = append(updates, u)
	}
	return updates
}

func newTestOrchestrator(workflows WorkflowSource, store ExecutionStore) *Orchestrator {
	return New(Config{
		Workflows: workflows,
		Store:     store,
		Executor:  &fakeExecutor{},
	})
}

// --- ExecuteWorkflow Tests ---

func TestExecuteWorkflow_MissingWorkflow(t *testing.T) {
	store := newFakeStore()
	o := newTestOrchestrator(&fakeWorkflows{}, store)

	updates := collectUpdates(o.ExecuteWorkflow(context.Background(), 42))

	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if updates[0].Status != domain.StatusFailed {
		t.Errorf("expected FAILED, got %s", updates[0].Status)
	}
	want := "Workflow definition '42' not found or has no tasks."
	if updates[0].Message != want {
		t.Errorf("expected %q, got %q", want, updates[0].Message)
	}
	// Запись execution не создаётся
	if len(store.stored()) != 0 {
		t.Error("no execution record should be created")
	}
}

func TestExecuteWorkflow_NoTasks(t *testing.T) {
	workflows := &fakeWorkflows{workflows: map[int64]*domain.Workflow{
		7: {ID: 7, Name: "empty"},
	}}
	store := newFakeStore()
	o := newTestOrchestrator(workflows, store)

	updates := collectUpdates(o.ExecuteWorkflow(context.Background(), 7))

	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if updates[0].Status != domain.StatusFailed {
		t.Errorf("expected FAILED, got %s", updates[0].Status)
	}
	if len(store.stored()) != 0 {
		t.Error("no execution record should be created for empty workflow")
	}
}

func TestExecuteWorkflow_SingleSyncSuccess(t *testing.T) {
	workflows := &fakeWorkflows{workflows: map[int64]*domain.Workflow{
		1: {ID: 1, Name: "simple", Tasks: []domain.Task{
			{ID: 10, WorkflowID: 1, Name: "only", Mode: domain.ModeSync, Sequence: 0},
		}},
	}}
	store := newFakeStore()
	o := newTestOrchestrator(workflows, store)

	updates := collectUpdates(o.ExecuteWorkflow(context.Background(), 1))

	// PENDING, RUNNING, task start, task result, COMPLETED
	if len(updates) != 5 {
		t.Fatalf("expected 5 updates, got %d: %v", len(updates), updates)
	}
	if updates[0].Status != domain.StatusPending {
		t.Errorf("first update should be PENDING, got %s", updates[0].Status)
	}
	last := updates[len(updates)-1]
	if last.Status != domain.StatusCompleted {
		t.Errorf("last update should be COMPLETED, got %s", last.Status)
	}
	if last.Message != "Workflow execution completed successfully." {
		t.Errorf("unexpected terminal message: %q", last.Message)
	}

	// Переходы в store: PENDING → RUNNING → COMPLETED
	want := []domain.ExecutionStatus{domain.StatusPending, domain.StatusRunning, domain.StatusCompleted}
	got := store.recorded()
	if len(got) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestExecuteWorkflow_SyncFailureShortCircuits(t *testing.T) {
	workflows := &fakeWorkflows{workflows: map[int64]*domain.Workflow{
		1: {ID: 1, Name: "chain", Tasks: []domain.Task{
			{ID: 1, Name: "a", Mode: domain.ModeSync, Sequence: 0},
			{ID: 2, Name: "b", Mode: domain.ModeSync, Sequence: 0},
			{ID: 3, Name: "never", Mode: domain.ModeSync, Sequence: 1},
		}},
	}}
	store := newFakeStore()
	executor := &fakeExecutor{fail: map[string]bool{"b": true}}
	o := New(Config{Workflows: workflows, Store: store, Executor: executor})

	updates := collectUpdates(o.ExecuteWorkflow(context.Background(), 1))

	last := updates[len(updates)-1]
	if last.Status != domain.StatusFailed {
		t.Fatalf("last update should be FAILED, got %s", last.Status)
	}
	want := "Workflow failed at task 'b': Task b failed."
	if last.Message != want {
		t.Errorf("expected %q, got %q", want, last.Message)
	}

	// Task из следующей группы не выполнялся
	for _, name := range executor.executed() {
		if name == "never" {
			t.Error("later group should not run after failure")
		}
	}

	// Запись закрыта как FAILED
	stored := store.stored()
	if len(stored) != 1 {
		t.Fatalf("expected 1 execution record, got %d", len(stored))
	}
	if stored[0].Status != domain.StatusFailed {
		t.Errorf("stored execution should be FAILED, got %s", stored[0].Status)
	}
	if stored[0].FinishedAt == nil {
		t.Error("finished_at should be set for terminal status")
	}
}

func TestExecuteWorkflow_MixedGroups(t *testing.T) {
	workflows := &fakeWorkflows{workflows: map[int64]*domain.Workflow{
		1: {ID: 1, Name: "mixed", Tasks: []domain.Task{
			{ID: 1, Name: "s1", Mode: domain.ModeSync, Sequence: 0},
			{ID: 2, Name: "s2", Mode: domain.ModeSync, Sequence: 0},
			{ID: 3, Name: "p1", Mode: domain.ModeAsync, Sequence: 1},
			{ID: 4, Name: "p2", Mode: domain.ModeAsync, Sequence: 1},
			{ID: 5, Name: "p3", Mode: domain.ModeAsync, Sequence: 1},
		}},
	}}
	store := newFakeStore()
	executor := &fakeExecutor{fail: map[string]bool{"p2": true}}
	o := New(Config{Workflows: workflows, Store: store, Executor: executor})

	updates := collectUpdates(o.ExecuteWorkflow(context.Background(), 1))

	// PENDING, RUNNING, s1×2, s2×2, batch, p×3, FAILED
	if len(updates) != 11 {
		t.Fatalf("expected 11 updates, got %d", len(updates))
	}
	last := updates[len(updates)-1]
	if last.Status != domain.StatusFailed {
		t.Errorf("last update should be FAILED, got %s", last.Status)
	}
	if !strings.Contains(last.Message, "parallel task 'p2'") {
		t.Errorf("terminal message should name p2, got %q", last.Message)
	}

	// Все async tasks выполнились, падение p2 не отменило соседей
	executed := executor.executed()
	if len(executed) != 5 {
		t.Errorf("expected 5 executed tasks, got %d: %v", len(executed), executed)
	}
}

func TestExecuteWorkflow_CreateError(t *testing.T) {
	workflows := &fakeWorkflows{workflows: map[int64]*domain.Workflow{
		1: {ID: 1, Name: "w", Tasks: []domain.Task{
			{ID: 1, Name: "a", Mode: domain.ModeSync, Sequence: 0},
		}},
	}}
	store := newFakeStore()
	store.createErr = errors.New("db down")
	o := newTestOrchestrator(workflows, store)

	updates := collectUpdates(o.ExecuteWorkflow(context.Background(), 1))

	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if updates[0].Status != domain.StatusFailed {
		t.Errorf("expected FAILED, got %s", updates[0].Status)
	}
	if !strings.Contains(updates[0].Message, "internal error during execution") {
		t.Errorf("expected internal error message, got %q", updates[0].Message)
	}
}

func TestExecuteWorkflow_UpdateErrorClosesStream(t *testing.T) {
	workflows := &fakeWorkflows{workflows: map[int64]*domain.Workflow{
		1: {ID: 1, Name: "w", Tasks: []domain.Task{
			{ID: 1, Name: "a", Mode: domain.ModeSync, Sequence: 0},
		}},
	}}
	store := newFakeStore()
	store.updateErr = errors.New("db down")
	o := newTestOrchestrator(workflows, store)

	updates := collectUpdates(o.ExecuteWorkflow(context.Background(), 1))

	last := updates[len(updates)-1]
	if last.Status != domain.StatusFailed {
		t.Errorf("last update should be FAILED, got %s", last.Status)
	}
	if !strings.Contains(last.Message, "internal error during execution") {
		t.Errorf("expected internal error message, got %q", last.Message)
	}
}

func TestExecuteWorkflow_LoadError(t *testing.T) {
	workflows := &fakeWorkflows{err: errors.New("connection refused")}
	store := newFakeStore()
	o := newTestOrchestrator(workflows, store)

	updates := collectUpdates(o.ExecuteWorkflow(context.Background(), 1))

	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	if !strings.Contains(updates[0].Message, "internal error during execution") {
		t.Errorf("expected internal error message, got %q", updates[0].Message)
	}
}

// --- GetStatus Tests ---

func TestGetStatus_InvalidID(t *testing.T) {
	o := newTestOrchestrator(&fakeWorkflows{}, newFakeStore())

	_, err := o.GetStatus(context.Background(), "not-a-uuid")
	if !errors.Is(err, ErrInvalidExecutionID) {
		t.Errorf("expected ErrInvalidExecutionID, got %v", err)
	}
}

func TestGetStatus_NotFound(t *testing.T) {
	o := newTestOrchestrator(&fakeWorkflows{}, newFakeStore())

	_, err := o.GetStatus(context.Background(), uuid.New().String())
	if !errors.Is(err, ErrExecutionNotFound) {
		t.Errorf("expected ErrExecutionNotFound, got %v", err)
	}
}

func TestGetStatus_Found(t *testing.T) {
	store := newFakeStore()
	exec := domain.NewExecution(uuid.New(), 1)
	if err := store.Create(context.Background(), exec); err != nil {
		t.Fatalf("create: %v", err)
	}

	o := newTestOrchestrator(&fakeWorkflows{}, store)

	got, err := o.GetStatus(context.Background(), exec.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != exec.ID {
		t.Errorf("expected execution %s, got %s", exec.ID, got.ID)
	}

	// Повторный запрос возвращает то же состояние
	again, err := o.GetStatus(context.Background(), exec.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Status != got.Status {
		t.Error("repeated reads should observe the same status")
	}
}
