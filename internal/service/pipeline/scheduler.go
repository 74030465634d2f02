package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"pbi-rag/internal/domain"
)

// stopGracePeriod bounds how long Stop waits for in-flight scheduled runs.
const stopGracePeriod = 30 * time.Second

// ScheduleFile is the YAML document listing cron-triggered extraction jobs.
type ScheduleFile struct {
	Jobs []ScheduledJob `yaml:"jobs"`
}

// ScheduledJob describes one recurring extraction: a cron expression plus
// the same dataset/queries pair the HTTP endpoint accepts.
type ScheduledJob struct {
	Name      string            `yaml:"name"`
	Schedule  string            `yaml:"schedule"`
	DatasetID string            `yaml:"dataset_id"`
	Queries   map[string]string `yaml:"queries"`
}

// LoadScheduleFile parses and validates a schedule file. Job names must be
// unique; each job must carry a schedule and a valid extraction request.
func LoadScheduleFile(path string) (*ScheduleFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator-controlled
	if err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}

	var file ScheduleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schedule file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Jobs))
	for i, job := range file.Jobs {
		if job.Name == "" {
			return nil, fmt.Errorf("schedule file %s: job %d has no name", path, i)
		}
		if seen[job.Name] {
			return nil, fmt.Errorf("schedule file %s: duplicate job name %q", path, job.Name)
		}
		seen[job.Name] = true
		if job.Schedule == "" {
			return nil, fmt.Errorf("schedule file %s: job %q has no schedule", path, job.Name)
		}
		if _, err := cron.ParseStandard(job.Schedule); err != nil {
			return nil, fmt.Errorf("schedule file %s: job %q: invalid schedule %q: %w", path, job.Name, job.Schedule, err)
		}
		req := domain.ExtractRequest{DatasetID: job.DatasetID, Queries: job.Queries}
		if err := req.Validate(); err != nil {
			return nil, fmt.Errorf("schedule file %s: job %q: %w", path, job.Name, err)
		}
	}
	return &file, nil
}

// Runner is the subset of the pipeline service the scheduler needs.
type Runner interface {
	Run(ctx context.Context, req domain.ExtractRequest) (*domain.PipelineResult, error)
}

// Scheduler triggers pipeline runs on cron schedules read from a file.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	path    string
	logger  *slog.Logger
	mu      sync.Mutex
	entries map[string]cron.EntryID // job name → cron entry
}

// NewScheduler creates a scheduler for the jobs in the file at path.
func NewScheduler(runner Runner, path string, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		path:    path,
		logger:  logger.With("component", "scheduler"),
		entries: make(map[string]cron.EntryID),
	}
}

// Start loads the schedule file and starts the cron loop.
func (s *Scheduler) Start() error {
	file, err := LoadScheduleFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.register(file)
	jobs := len(s.entries)
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", jobs)
	return nil
}

// Stop stops the cron loop and waits for in-flight runs to finish, up to
// stopGracePeriod.
func (s *Scheduler) Stop() {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("scheduler stopped")
	case <-time.After(stopGracePeriod):
		s.logger.Warn("scheduler stop timed out with runs still in flight")
	}
}

// Reload re-reads the schedule file and replaces all cron entries. A file
// that no longer parses leaves the running schedule untouched.
func (s *Scheduler) Reload() error {
	file, err := LoadScheduleFile(s.path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, entryID := range s.entries {
		s.cron.Remove(entryID)
	}
	s.entries = make(map[string]cron.EntryID)
	s.register(file)
	return nil
}

// register adds one cron entry per job. Schedules are validated at load
// time. Callers hold s.mu.
func (s *Scheduler) register(file *ScheduleFile) {
	for _, job := range file.Jobs {
		entryID, err := s.cron.AddFunc(job.Schedule, s.jobFunc(job))
		if err != nil {
			s.logger.Warn("register job failed", "job", job.Name, "error", err)
			continue
		}
		s.entries[job.Name] = entryID
		s.logger.Info("scheduled job", "job", job.Name, "schedule", job.Schedule)
	}
}

func (s *Scheduler) jobFunc(job ScheduledJob) func() {
	return func() {
		ctx := context.Background()
		result, err := s.runner.Run(ctx, domain.ExtractRequest{
			DatasetID: job.DatasetID,
			Queries:   job.Queries,
		})
		if err != nil {
			s.logger.Warn("scheduled run failed", "job", job.Name, "error", err)
			return
		}
		s.logger.Info("scheduled run finished",
			"job", job.Name,
			"run_id", result.RunID,
			"status", result.Status,
		)
	}
}
