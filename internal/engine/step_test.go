package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/AmmarAzhad/civils/internal/domain"
)

// fakeExecutor выполняет tasks мгновенно, падая для имён из fail.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []string

	fail    map[string]bool
	panicOn string
}

func (e *fakeExecutor) Execute(_ context.Context, task *domain.Task, _ *RunContext) Outcome {
	e.mu.Lock()
	e.calls = append(e.calls, task.Name)
	e.mu.Unlock()

	if task.Name == e.panicOn {
		panic("boom in " + task.Name)
	}
	if e.fail[task.Name] {
		return Outcome{Success: false, Message: fmt.Sprintf("Task %s failed.", task.Name)}
	}
	return Outcome{Success: true, Message: fmt.Sprintf("Task %s completed successfully.", task.Name)}
}

func (e *fakeExecutor) executed() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.calls...)
}

// collectSink собирает updates в память.
type collectSink struct {
	mu      sync.Mutex
	updates []domain.StatusUpdate
	failAt  int // Emit возвращает ошибку начиная с этого вызова (0 = никогда)
	calls   int
}

func (s *collectSink) Emit(_ context.Context, u domain.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failAt > 0 && s.calls >= s.failAt {
		return errors.New("sink closed")
	}
	s.updates = append(s.updates, u)
	return nil
}

func (s *collectSink) all() []domain.StatusUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.StatusUpdate(nil), s.updates...)
}

func testRunContext() *RunContext {
	return &RunContext{
		ExecutionID: uuid.New(),
		Workflow:    &domain.Workflow{ID: 1, Name: "test"},
		Logger:      slog.Default(),
	}
}

func syncTask(id int64, name string) domain.Task {
	return domain.Task{ID: id, Name: name, Mode: domain.ModeSync}
}

func asyncTask(id int64, name string) domain.Task {
	return domain.Task{ID: id, Name: name, Mode: domain.ModeAsync}
}

// --- Sync Tests ---

func TestRunStep_SyncSuccess(t *testing.T) {
	executor := &fakeExecutor{}
	sink := &collectSink{}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		syncTask(1, "a"), syncTask(2, "b"),
	}}

	step, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.Success {
		t.Errorf("step should succeed, got failure: %s", step.FailureMessage)
	}

	// По два update на task: starting + result
	updates := sink.all()
	if len(updates) != 4 {
		t.Fatalf("expected 4 updates, got %d", len(updates))
	}
	if updates[0].Message != "Starting task a" {
		t.Errorf("unexpected first update: %q", updates[0].Message)
	}
	if updates[1].Message != "Task a completed successfully." {
		t.Errorf("unexpected second update: %q", updates[1].Message)
	}
	if updates[0].TaskName != "a" || updates[2].TaskName != "b" {
		t.Error("updates should carry task names in execution order")
	}
}

func TestRunStep_SyncShortCircuit(t *testing.T) {
	executor := &fakeExecutor{fail: map[string]bool{"b": true}}
	sink := &collectSink{}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		syncTask(1, "a"), syncTask(2, "b"), syncTask(3, "c"),
	}}

	step, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Success {
		t.Fatal("step should fail")
	}

	want := "Workflow failed at task 'b': Task b failed."
	if step.FailureMessage != want {
		t.Errorf("expected %q, got %q", want, step.FailureMessage)
	}

	// c не должен запускаться
	for _, name := range executor.executed() {
		if name == "c" {
			t.Error("task c should not run after b failed")
		}
	}
	if len(sink.all()) != 4 {
		t.Errorf("expected 4 updates (a start/result, b start/result), got %d", len(sink.all()))
	}
}

// --- Async Tests ---

func TestRunStep_AsyncAllRun(t *testing.T) {
	executor := &fakeExecutor{}
	sink := &collectSink{}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 1, Tasks: []domain.Task{
		asyncTask(1, "a"), asyncTask(2, "b"), asyncTask(3, "c"),
	}}

	step, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.Success {
		t.Errorf("step should succeed, got: %s", step.FailureMessage)
	}

	if got := len(executor.executed()); got != 3 {
		t.Errorf("expected 3 executed tasks, got %d", got)
	}

	// 1 batch update + 3 result updates
	updates := sink.all()
	if len(updates) != 4 {
		t.Fatalf("expected 4 updates, got %d", len(updates))
	}
	if updates[0].Message != "Starting 3 parallel tasks for sequence 1..." {
		t.Errorf("unexpected batch update: %q", updates[0].Message)
	}
}

func TestRunStep_AsyncFailureDoesNotCancelSiblings(t *testing.T) {
	executor := &fakeExecutor{fail: map[string]bool{"b": true}}
	sink := &collectSink{}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		asyncTask(1, "a"), asyncTask(2, "b"), asyncTask(3, "c"),
	}}

	step, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Success {
		t.Fatal("step should fail")
	}

	want := "Workflow failed at parallel task 'b': Task b failed."
	if step.FailureMessage != want {
		t.Errorf("expected %q, got %q", want, step.FailureMessage)
	}

	// Все tasks выполнились несмотря на падение b
	if got := len(executor.executed()); got != 3 {
		t.Errorf("expected 3 executed tasks, got %d", got)
	}
	// batch + 3 results: шаг ждёт всех
	if got := len(sink.all()); got != 4 {
		t.Errorf("expected 4 updates, got %d", got)
	}
}

func TestRunStep_SyncBeforeAsync(t *testing.T) {
	executor := &fakeExecutor{}
	sink := &collectSink{}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		asyncTask(1, "p1"), syncTask(2, "s1"), asyncTask(3, "p2"), syncTask(4, "s2"),
	}}

	step, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.Success {
		t.Fatalf("step should succeed, got: %s", step.FailureMessage)
	}

	calls := executor.executed()
	if len(calls) != 4 {
		t.Fatalf("expected 4 executed tasks, got %d", len(calls))
	}
	// Sync tasks строго раньше async
	if calls[0] != "s1" || calls[1] != "s2" {
		t.Errorf("sync tasks should run first in order, got %v", calls)
	}
}

func TestRunStep_SyncFailureSkipsAsync(t *testing.T) {
	executor := &fakeExecutor{fail: map[string]bool{"s1": true}}
	sink := &collectSink{}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		syncTask(1, "s1"), asyncTask(2, "p1"),
	}}

	step, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Success {
		t.Fatal("step should fail")
	}
	if got := executor.executed(); len(got) != 1 {
		t.Errorf("async task should not start after sync failure, executed: %v", got)
	}
}

// --- Panic Tests ---

func TestRunStep_PanicBecomesFailure(t *testing.T) {
	executor := &fakeExecutor{panicOn: "bad"}
	sink := &collectSink{}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		syncTask(1, "bad"),
	}}

	step, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Success {
		t.Fatal("step should fail after panic")
	}
	if !strings.Contains(step.FailureMessage, "panicked") {
		t.Errorf("failure message should mention panic, got %q", step.FailureMessage)
	}
}

func TestRunStep_AsyncPanicDoesNotKillBarrier(t *testing.T) {
	executor := &fakeExecutor{panicOn: "bad"}
	sink := &collectSink{}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		asyncTask(1, "a"), asyncTask(2, "bad"), asyncTask(3, "c"),
	}}

	step, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if step.Success {
		t.Fatal("step should fail")
	}
	if got := len(executor.executed()); got != 3 {
		t.Errorf("all tasks should run, got %d", got)
	}
}

// --- Edge Cases ---

func TestRunStep_EmptyGroup(t *testing.T) {
	runner := NewStepRunner(&fakeExecutor{}, slog.Default())
	sink := &collectSink{}

	step, err := runner.RunStep(context.Background(), SequenceGroup{Sequence: 0}, sink, testRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !step.Success {
		t.Error("empty group should succeed")
	}
	if len(sink.all()) != 0 {
		t.Error("empty group should emit nothing")
	}
}

func TestRunStep_DeadSinkReturnsError(t *testing.T) {
	executor := &fakeExecutor{}
	sink := &collectSink{failAt: 1}
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		syncTask(1, "a"), syncTask(2, "b"),
	}}

	_, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err == nil {
		t.Fatal("expected error from dead sink")
	}
}

func TestRunStep_DeadSinkDrainsAsyncResults(t *testing.T) {
	executor := &fakeExecutor{}
	sink := &collectSink{failAt: 2} // падает после batch update
	runner := NewStepRunner(executor, slog.Default())

	group := SequenceGroup{Sequence: 0, Tasks: []domain.Task{
		asyncTask(1, "a"), asyncTask(2, "b"), asyncTask(3, "c"),
	}}

	_, err := runner.RunStep(context.Background(), group, sink, testRunContext())
	if err == nil {
		t.Fatal("expected error from dead sink")
	}
	// Все горутины должны завершиться, несмотря на мёртвый sink
	if got := len(executor.executed()); got != 3 {
		t.Errorf("all async tasks should be drained, executed %d", got)
	}
}
