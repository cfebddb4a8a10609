package taskstore

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/educast/podcast"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	task := podcast.Task{ID: "a", Status: podcast.StatusStarted, Progress: 0, Message: "queued"}
	if err := s.Create(task); err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != podcast.StatusStarted || got.Message != "queued" {
		t.Errorf("unexpected record %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
}

func TestSQLiteDuplicateID(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(podcast.Task{ID: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Create(podcast.Task{ID: "a"}); !errors.Is(err, podcast.ErrTaskExists) {
		t.Errorf("expected ErrTaskExists, got %v", err)
	}
}

func TestSQLiteUnknownTask(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nope"); !errors.Is(err, podcast.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
	err := s.Update("nope", func(*podcast.Task) {})
	if !errors.Is(err, podcast.ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestSQLiteUpdateLifecycle(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(podcast.Task{ID: "a", Status: podcast.StatusStarted}); err != nil {
		t.Fatal(err)
	}

	err := s.Update("a", func(task *podcast.Task) {
		task.Status = podcast.StatusGeneratingAudio
		task.Progress = 40
		task.Message = "generating audio"
	})
	if err != nil {
		t.Fatal(err)
	}

	// Progress must not regress.
	if err := s.Update("a", func(task *podcast.Task) { task.Progress = 10 }); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get("a")
	if got.Progress != 40 {
		t.Errorf("progress regressed to %d", got.Progress)
	}

	// Terminal records are immutable.
	if err := s.Update("a", func(task *podcast.Task) { task.Status = podcast.StatusError; task.Err = "boom" }); err != nil {
		t.Fatal(err)
	}
	err = s.Update("a", func(task *podcast.Task) { task.Message = "rewrite" })
	if !errors.Is(err, podcast.ErrTaskFinal) {
		t.Errorf("expected ErrTaskFinal, got %v", err)
	}
}

func TestSQLiteResultRoundTrip(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(podcast.Task{ID: "a", Status: podcast.StatusStarted}); err != nil {
		t.Fatal(err)
	}

	result := &podcast.EpisodeResult{
		AudioPath:  "/tmp/episode.wav",
		ScriptPath: "/tmp/script.txt",
		FileSize:   4096,
		Duration:   90 * time.Second,
	}
	err := s.Update("a", func(task *podcast.Task) {
		task.Status = podcast.StatusCompleted
		task.Progress = 100
		task.Result = result
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.Get("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Result == nil {
		t.Fatal("result should survive the round trip")
	}
	if *got.Result != *result {
		t.Errorf("result = %+v, want %+v", *got.Result, *result)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Create(podcast.Task{ID: "a", Status: podcast.StatusStarted}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close() //nolint:errcheck

	if _, err := reopened.Get("a"); err != nil {
		t.Errorf("record should survive a reopen: %v", err)
	}
}

func TestSQLiteListNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"old", "mid", "new"} {
		err := s.Create(podcast.Task{
			ID:        id,
			Status:    podcast.StatusStarted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
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

func TestOpenSelectsBackend(t *testing.T) {
	mem, err := Open(podcast.StoreConfig{Backend: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := mem.(*podcast.MemoryStore); !ok {
		t.Errorf("memory backend returned %T", mem)
	}

	sqlite, err := Open(podcast.StoreConfig{Backend: "sqlite", Path: filepath.Join(t.TempDir(), "t.db")})
	if err != nil {
		t.Fatal(err)
	}
	defer sqlite.Close() //nolint:errcheck
	if _, ok := sqlite.(*SQLiteStore); !ok {
		t.Errorf("sqlite backend returned %T", sqlite)
	}
}
