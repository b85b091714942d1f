package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/bytedance/sonic"

	"github.com/huiyuanXP/time-block-scheduler/storage"
)

func TestCreateTaskValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"date":"2024-06-03"}`},
		{"missing date", `{"title":"write report"}`},
		{"malformed date", `{"title":"write report","date":"03/06/2024"}`},
		{"unknown field", `{"title":"write report","date":"2024-06-03","extra":true}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{}
			c, rec := newContext(t, http.MethodPost, "/api/tasks", tc.body)
			if err := createTask(store, authedUser())(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400 got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateTask(t *testing.T) {
	store := &mockStore{createdTaskID: 9}
	body := `{"title":"write report","description":"quarterly numbers","date":"2024-06-03"}`
	c, rec := newContext(t, http.MethodPost, "/api/tasks", body)
	if err := createTask(store, authedUser())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
	}

	if store.lastTask.UserID != 1 || store.lastTask.Title != "write report" || store.lastTask.Date != "2024-06-03" {
		t.Fatalf("unexpected task forwarded: %+v", store.lastTask)
	}

	var resp taskCreatedResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.TaskID != 9 {
		t.Fatalf("expected task_id 9 got %d", resp.TaskID)
	}
}

func TestGetTasksMonthRange(t *testing.T) {
	store := &mockStore{}
	c, rec := newContext(t, http.MethodGet, "/api/tasks?year=2024&month=12", "")
	if err := getTasks(store, authedUser())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", rec.Code)
	}
	if store.lastRangeStart != "2024-12-01" || store.lastRangeEnd != "2025-01-01" {
		t.Fatalf("expected December range, got [%s, %s)", store.lastRangeStart, store.lastRangeEnd)
	}
}

func TestGetTasksInvalidMonth(t *testing.T) {
	for _, target := range []string{"/api/tasks?month=13", "/api/tasks?month=0", "/api/tasks?year=abc"} {
		c, rec := newContext(t, http.MethodGet, target, "")
		if err := getTasks(&mockStore{}, authedUser())(c); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400 got %d", target, rec.Code)
		}
	}
}

func TestUpdateProgressClamps(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		stored    int
	}{
		{"below range", -5, 0},
		{"in range", 42, 42},
		{"above range", 150, 100},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := &mockStore{}
			c, rec := newContext(t, http.MethodPut, "/api/tasks/8/progress",
				`{"progress":`+strconv.Itoa(tc.requested)+`}`)
			c.SetParamNames("id")
			c.SetParamValues("8")
			if err := updateProgress(store, authedUser())(c); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200 got %d: %s", rec.Code, rec.Body.String())
			}
			if store.lastTaskID != 8 {
				t.Fatalf("expected task 8 got %d", store.lastTaskID)
			}
			if store.lastProgress != tc.stored {
				t.Fatalf("expected stored progress %d got %d", tc.stored, store.lastProgress)
			}

			var resp progressResponse
			if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if resp.Progress != tc.stored {
				t.Fatalf("expected reported progress %d got %d", tc.stored, resp.Progress)
			}
		})
	}
}

func TestUpdateProgressNotFound(t *testing.T) {
	store := &mockStore{progressErr: storage.ErrNotFound}
	c, rec := newContext(t, http.MethodPut, "/api/tasks/99/progress", `{"progress":50}`)
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := updateProgress(store, authedUser())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 got %d", rec.Code)
	}
}

func TestUpdateProgressBadID(t *testing.T) {
	store := &mockStore{}
	c, rec := newContext(t, http.MethodPut, "/api/tasks/abc/progress", `{"progress":50}`)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	if err := updateProgress(store, authedUser())(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 got %d", rec.Code)
	}
	if store.lastTaskID != 0 {
		t.Fatal("storage should not be reached for an invalid id")
	}
}
