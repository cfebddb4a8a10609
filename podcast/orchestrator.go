package podcast

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/dgnsrekt/educast/podcast/engines"
	"github.com/dgnsrekt/educast/podcast/script"
)

// Progress milestones for the pipeline phases. Segment synthesis spans the
// range between synthStart and synthEnd, scaled by segments finished.
const (
	progressQueued     = 0
	progressFetching   = 5
	progressSegmenting = 15
	synthStart         = 25
	synthEnd           = 90
	progressAssembling = 92
	progressDone       = 100
)

// Orchestrator runs synthesis tasks in the background and exposes their
// pollable status records. Each submission gets its own worker goroutine;
// admission is bounded so at most MaxConcurrentTasks pipelines run at once,
// with further submissions queued in STARTED.
type Orchestrator struct {
	cfg       Config
	store     TaskStore
	engine    engines.Factory
	segmenter *script.Segmenter
	assembler *Assembler
	outputDir string
	logger    *log.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	mu   sync.Mutex
	done map[string]chan struct{}
}

// NewOrchestrator creates an orchestrator over the given store and engine.
// The output directory is created if missing.
func NewOrchestrator(cfg Config, store TaskStore, engine engines.Factory, logger *log.Logger) (*Orchestrator, error) {
	outputDir := cfg.Server.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("unable to create output dir: %w", err)
	}

	profile := cfg.VoiceProfile()
	speakers := append(profile.Speakers(), profile.FallbackSpeaker)

	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		engine:    engine,
		segmenter: script.NewSegmenter(speakers, profile.FallbackSpeaker),
		assembler: NewAssembler(cfg.Pause(), logger),
		outputDir: outputDir,
		logger:    logger,
		sem:       make(chan struct{}, cfg.MaxConcurrentTasks),
		done:      make(map[string]chan struct{}),
	}, nil
}

// Submit accepts a script source and starts a background task for it. It
// returns the task id immediately; callers poll Status or block on Wait. An
// empty outputPath places the episode in the orchestrator's output directory
// named after the task id.
func (o *Orchestrator) Submit(source ScriptSource, outputPath string) (string, error) {
	id := uuid.NewString()
	if outputPath == "" {
		outputPath = filepath.Join(o.outputDir, id+".wav")
	}

	task := Task{
		ID:       id,
		Status:   StatusStarted,
		Progress: progressQueued,
		Message:  "queued",
	}
	if err := o.store.Create(task); err != nil {
		return "", err
	}

	finished := make(chan struct{})
	o.mu.Lock()
	o.done[id] = finished
	o.mu.Unlock()

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer close(finished)
		o.runTask(id, source, outputPath)
	}()

	o.logger.Info("task submitted", "task", id, "source", source.Path(), "output", outputPath)
	return id, nil
}

// SubmitScript starts a task reading its script from a file.
func (o *Orchestrator) SubmitScript(path, outputPath string) (string, error) {
	return o.Submit(NewFileSource(path), outputPath)
}

// SubmitText starts a task for a script held in memory.
func (o *Orchestrator) SubmitText(text, outputPath string) (string, error) {
	return o.Submit(NewStringSource(text), outputPath)
}

// Status returns a snapshot of the task record.
func (o *Orchestrator) Status(id string) (Task, error) {
	return o.store.Get(id)
}

// List returns snapshots of all task records, newest first.
func (o *Orchestrator) List() ([]Task, error) {
	return o.store.List()
}

// Wait blocks until the task reaches a terminal state or ctx expires, then
// returns the final record.
func (o *Orchestrator) Wait(ctx context.Context, id string) (Task, error) {
	o.mu.Lock()
	finished, ok := o.done[id]
	o.mu.Unlock()
	if !ok {
		// Unknown here but possibly persisted from an earlier process.
		task, err := o.store.Get(id)
		if err != nil {
			return Task{}, err
		}
		if task.Terminal() {
			return task, nil
		}
		return Task{}, fmt.Errorf("task %s is not managed by this orchestrator", id)
	}

	select {
	case <-finished:
		return o.store.Get(id)
	case <-ctx.Done():
		return Task{}, ctx.Err()
	}
}

// Close waits for all running tasks to finish and closes the store.
func (o *Orchestrator) Close() error {
	o.wg.Wait()
	return o.store.Close()
}

// runTask executes the full pipeline for one task. Every failure is caught
// and recorded as a terminal ERROR; nothing escapes the worker goroutine.
func (o *Orchestrator) runTask(id string, source ScriptSource, outputPath string) {
	o.sem <- struct{}{}
	defer func() { <-o.sem }()

	ctx := context.Background()
	logger := o.logger.With("task", id)

	if err := o.execute(ctx, id, source, outputPath, logger); err != nil {
		logger.Error("task failed", "error", err)
		o.fail(id, err)
	}
}

func (o *Orchestrator) execute(ctx context.Context, id string, source ScriptSource, outputPath string, logger *log.Logger) error {
	o.advance(id, StatusFetching, progressFetching, "fetching script")
	text, err := source.Fetch(ctx)
	if err != nil {
		return err
	}

	o.advance(id, StatusProcessingScript, progressSegmenting, "segmenting script")
	segments := o.segmenter.Segment(text)
	if len(segments) == 0 {
		return NewPipelineError(ErrEmptyInput, "segmenter", nil)
	}
	logger.Debug("script segmented", "segments", len(segments))

	pool, err := NewVoicePool(o.cfg.VoiceProfile(), o.engine, logger)
	if err != nil {
		return err
	}

	workDir, err := os.MkdirTemp(o.cfg.WorkDir, "educast-"+id+"-")
	if err != nil {
		return fmt.Errorf("unable to create working dir: %w", err)
	}
	defer os.RemoveAll(workDir) //nolint:errcheck

	o.advance(id, StatusGeneratingAudio, synthStart, "generating audio")
	synth := NewSynthesizer(pool, workDir, o.cfg.SynthTimeout, logger)
	chunks, err := synth.Run(ctx, segments, func(done, total int) {
		progress := synthStart + done*(synthEnd-synthStart)/total
		o.progress(id, progress, fmt.Sprintf("synthesized %d/%d segments", done, total))
	})
	if err != nil {
		return err
	}

	o.progress(id, progressAssembling, "assembling episode")
	duration, err := o.assembler.Assemble(chunks, outputPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return NewPipelineError(ErrAssembly, "assembler", err)
	}

	result := &EpisodeResult{
		AudioPath:  outputPath,
		ScriptPath: source.Path(),
		FileSize:   info.Size(),
		Duration:   duration,
	}
	o.complete(id, result)
	logger.Info("task completed",
		"segments", len(segments),
		"duration", duration,
		"size", humanize.Bytes(uint64(info.Size())),
	)
	return nil
}

// advance moves the task to the next lifecycle status.
func (o *Orchestrator) advance(id string, status Status, progress int, message string) {
	err := o.store.Update(id, func(t *Task) {
		if !CanTransition(t.Status, status) && t.Status != status {
			return
		}
		t.Status = status
		t.Progress = progress
		t.Message = message
	})
	if err != nil {
		o.logger.Warn("status update failed", "task", id, "error", err)
	}
}

// progress bumps the progress within the current status.
func (o *Orchestrator) progress(id string, progress int, message string) {
	err := o.store.Update(id, func(t *Task) {
		t.Progress = progress
		t.Message = message
	})
	if err != nil {
		o.logger.Warn("progress update failed", "task", id, "error", err)
	}
}

// complete records the successful terminal state.
func (o *Orchestrator) complete(id string, result *EpisodeResult) {
	err := o.store.Update(id, func(t *Task) {
		t.Status = StatusCompleted
		t.Progress = progressDone
		t.Message = fmt.Sprintf("episode ready (%s)", humanize.Bytes(uint64(result.FileSize)))
		t.Result = result
	})
	if err != nil {
		o.logger.Warn("completion update failed", "task", id, "error", err)
	}
}

// fail records the failed terminal state with the cause.
func (o *Orchestrator) fail(id string, cause error) {
	err := o.store.Update(id, func(t *Task) {
		t.Status = StatusError
		t.Message = cause.Error()
		t.Err = cause.Error()
	})
	if err != nil && !errors.Is(err, ErrTaskFinal) {
		o.logger.Warn("failure update failed", "task", id, "error", err)
	}
}
