package simd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/Jaikrrish5959/Live-in-Labs/pkg/config"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/models"
	"github.com/Jaikrrish5959/Live-in-Labs/pkg/utils"
)

// ErrJobNotFound is returned when a job id has no record on disk.
var ErrJobNotFound = errors.New("job not found")

// JobStore persists simulation jobs as JSON files, one directory per job
// under <dataDir>/runs. The job directory doubles as its artifact directory,
// so a job's whole history lives in one place and survives restarts.
type JobStore struct {
	mu      sync.Mutex
	runsDir string
}

// NewJobStore creates the store and its runs directory
func NewJobStore(dataDir string) (*JobStore, error) {
	runsDir := filepath.Join(dataDir, "runs")
	if err := os.MkdirAll(runsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating runs directory: %w", err)
	}
	return &JobStore{runsDir: runsDir}, nil
}

// JobDir returns the directory holding a job's record and artifacts
func (s *JobStore) JobDir(jobID string) string {
	return filepath.Join(s.runsDir, jobID)
}

func (s *JobStore) jobFile(jobID string) string {
	return filepath.Join(s.JobDir(jobID), "job.json")
}

// Create persists a new pending job for the given effective config. The job
// id becomes the config's run id, so every downstream record carries it.
func (s *JobStore) Create(cfg *config.SimulationConfig) (*models.SimulationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &models.SimulationJob{
		JobID:     utils.NewJobID(),
		Status:    models.JobPending,
		CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Config:    cfg,
	}
	cfg.RunID = job.JobID

	if err := os.MkdirAll(s.JobDir(job.JobID), 0o755); err != nil {
		return nil, fmt.Errorf("creating job directory: %w", err)
	}
	if err := s.save(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Get loads a job by id
func (s *JobStore) Get(jobID string) (*models.SimulationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(jobID)
}

// Update persists the given job record as-is
func (s *JobStore) Update(job *models.SimulationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(job)
}

// MarkRunning claims a pending job. Claiming a missing or already-claimed
// job returns an error, so two workers can never both run it.
func (s *JobStore) MarkRunning(jobID string) (*models.SimulationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.load(jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.JobPending {
		return nil, fmt.Errorf("job %s is %s, not pending", jobID, job.Status)
	}
	job.Status = models.JobRunning
	job.StartedAt = time.Now().UTC().Format(time.RFC3339Nano)
	if err := s.save(job); err != nil {
		return nil, err
	}
	return job, nil
}

// Complete stores the run result and the artifact index
func (s *JobStore) Complete(jobID string, result *models.Result, artifacts map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.load(jobID)
	if err != nil {
		return err
	}
	job.Status = models.JobCompleted
	job.CompletedAt = time.Now().UTC().Format(time.RFC3339Nano)
	job.Result = result
	job.Artifacts = artifacts
	return s.save(job)
}

// Fail records the failure text against the job
func (s *JobStore) Fail(jobID string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, err := s.load(jobID)
	if err != nil {
		return err
	}
	job.Status = models.JobFailed
	job.CompletedAt = time.Now().UTC().Format(time.RFC3339Nano)
	job.ErrorMessage = message
	return s.save(job)
}

// List returns up to limit jobs, newest first
func (s *JobStore) List(limit int) ([]*models.SimulationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	jobs, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobTime(jobs[i]).After(jobTime(jobs[j]))
	})
	if len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

// NextPending returns the oldest pending job, or nil when none is queued
func (s *JobStore) NextPending() (*models.SimulationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	var pending []*models.SimulationJob
	for _, j := range jobs {
		if j.Status == models.JobPending {
			pending = append(pending, j)
		}
	}
	if len(pending) == 0 {
		return nil, nil
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return jobTime(pending[i]).Before(jobTime(pending[j]))
	})
	return pending[0], nil
}

// PendingCount reports how many jobs are waiting for a worker
func (s *JobStore) PendingCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.loadAll()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, j := range jobs {
		if j.Status == models.JobPending {
			count++
		}
	}
	return count, nil
}

// Prune removes the oldest job directories beyond keep
func (s *JobStore) Prune(keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	jobs, err := s.loadAll()
	if err != nil {
		return err
	}
	sort.SliceStable(jobs, func(i, j int) bool {
		return jobTime(jobs[i]).After(jobTime(jobs[j]))
	})
	for _, j := range jobs[utils.Min(keep, len(jobs)):] {
		if err := os.RemoveAll(s.JobDir(j.JobID)); err != nil {
			return fmt.Errorf("pruning job %s: %w", j.JobID, err)
		}
	}
	return nil
}

func (s *JobStore) load(jobID string) (*models.SimulationJob, error) {
	data, err := os.ReadFile(s.jobFile(jobID))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading job %s: %w", jobID, err)
	}
	var job models.SimulationJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decoding job %s: %w", jobID, err)
	}
	return &job, nil
}

func (s *JobStore) save(job *models.SimulationJob) error {
	data, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding job %s: %w", job.JobID, err)
	}
	if err := os.WriteFile(s.jobFile(job.JobID), data, 0o644); err != nil {
		return fmt.Errorf("writing job %s: %w", job.JobID, err)
	}
	return nil
}

// loadAll reads every job record under the runs directory, skipping entries
// that are not readable job directories.
func (s *JobStore) loadAll() ([]*models.SimulationJob, error) {
	entries, err := os.ReadDir(s.runsDir)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	jobs := make([]*models.SimulationJob, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		job, err := s.load(e.Name())
		if err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// jobTime parses a job's creation timestamp for ordering. Unparseable
// records sort to the far past.
func jobTime(j *models.SimulationJob) time.Time {
	t, err := time.Parse(time.RFC3339Nano, j.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
