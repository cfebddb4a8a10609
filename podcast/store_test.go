package podcast

import (
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	s := NewMemoryStore()

	if err := s.Create(Task{ID: "a", Status: StatusStarted, Message: "queued"}); err != nil {
		t.Fatal(err)
	}

	task, err := s.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if task.Status != StatusStarted || task.Message != "queued" {
		t.Errorf("unexpected record %+v", task)
	}
	if task.CreatedAt.IsZero() || task.UpdatedAt.IsZero() {
		t.Error("timestamps should be set on create")
	}
}

func TestMemoryStoreDuplicateID(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Create(Task{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(Task{ID: "a"}); !errors.Is(err, ErrTaskExists) {
		t.Errorf("expected ErrTaskExists, got %v", err)
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get("nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	err := s.Update("nope", func(*Task) {})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Create(Task{ID: "a", Status: StatusStarted}); err != nil {
		t.Fatal(err)
	}

	err := s.Update("a", func(task *Task) {
		task.Status = StatusFetching
		task.Progress = 5
		task.Message = "fetching script"
	})
	if err != nil {
		t.Fatal(err)
	}

	task, _ := s.Get("a")
	if task.Status != StatusFetching || task.Progress != 5 {
		t.Errorf("update not applied: %+v", task)
	}
}

func TestMemoryStoreProgressNeverDecreases(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Create(Task{ID: "a", Status: StatusStarted, Progress: 50}); err != nil {
		t.Fatal(err)
	}

	if err := s.Update("a", func(task *Task) { task.Progress = 10 }); err != nil {
		t.Fatal(err)
	}

	task, _ := s.Get("a")
	if task.Progress != 50 {
		t.Errorf("progress regressed to %d", task.Progress)
	}
}

func TestMemoryStoreTerminalIsImmutable(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Create(Task{ID: "a", Status: StatusStarted}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update("a", func(task *Task) { task.Status = StatusError; task.Err = "boom" }); err != nil {
		t.Fatal(err)
	}

	err := s.Update("a", func(task *Task) { task.Status = StatusCompleted })
	if !errors.Is(err, ErrTaskFinal) {
		t.Errorf("expected ErrTaskFinal, got %v", err)
	}

	task, _ := s.Get("a")
	if task.Status != StatusError || task.Err != "boom" {
		t.Errorf("terminal record changed: %+v", task)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Create(Task{ID: "a", Status: StatusStarted}); err != nil {
		t.Fatal(err)
	}
	if err := s.Update("a", func(task *Task) {
		task.Result = &EpisodeResult{AudioPath: "a.wav", FileSize: 10}
	}); err != nil {
		t.Fatal(err)
	}

	task, _ := s.Get("a")
	task.Result.AudioPath = "tampered.wav"
	task.Message = "tampered"

	fresh, _ := s.Get("a")
	if fresh.Result.AudioPath != "a.wav" || fresh.Message == "tampered" {
		t.Error("mutating a returned record must not affect the store")
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryStore()
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		err := s.Create(Task{ID: id, Status: StatusStarted, CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		if err != nil {
			t.Fatal(err)
		}
	}

	tasks, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks", len(tasks))
	}
	if tasks[0].ID != "new" || tasks[2].ID != "old" {
		t.Errorf("unexpected order: %s, %s, %s", tasks[0].ID, tasks[1].ID, tasks[2].ID)
	}
}
