package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestParseTaskSpec(t *testing.T) {
	task, err := parseTaskSpec("build:sync:0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Name != "build" || task.ExecutionType != "sync" || task.Sequence != 0 {
		t.Errorf("unexpected task: %+v", task)
	}

	if _, err := parseTaskSpec("no-colons"); err == nil {
		t.Error("expected error for missing fields")
	}
	if _, err := parseTaskSpec("a:sync:x"); err == nil {
		t.Error("expected error for non-numeric sequence")
	}
}

func TestClient_StartExecution_Stream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"execution_id":"e1","workflow_id":1,"status":"PENDING","message":"Workflow execution initiated."}`)
		fmt.Fprintln(w, `{"execution_id":"e1","workflow_id":1,"status":"RUNNING","current_task_name":"a","message":"Starting task a"}`)
		fmt.Fprintln(w, `{"execution_id":"e1","workflow_id":1,"status":"COMPLETED","message":"Workflow execution completed successfully."}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var updates []StatusUpdate
	err := client.StartExecution("1", func(u StatusUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(updates) != 3 {
		t.Fatalf("expected 3 updates, got %d", len(updates))
	}
	if updates[0].Status != "PENDING" {
		t.Errorf("first update should be PENDING, got %s", updates[0].Status)
	}
	if updates[1].TaskName != "a" {
		t.Errorf("second update should carry task name, got %q", updates[1].TaskName)
	}
	if updates[2].Status != "COMPLETED" {
		t.Errorf("last update should be COMPLETED, got %s", updates[2].Status)
	}
}

func TestClient_StartExecution_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintln(w, `{"error":{"code":"BAD_REQUEST","message":"invalid workflow id"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	err := client.StartExecution("abc", func(StatusUpdate) {
		t.Error("callback should not be called on error")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "BAD_REQUEST: invalid workflow id" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_GetExecution(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/executions/e1" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"data":{"id":"e1","workflow_id":7,"status":"FAILED","last_message":"boom"}}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	exec, err := client.GetExecution("e1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.ID != "e1" || exec.WorkflowID != 7 || exec.Status != "FAILED" {
		t.Errorf("unexpected execution: %+v", exec)
	}
}
