package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the current state of an acquisition job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusFetching  JobStatus = "fetching"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// Job represents one acquisition request submitted over the API
type Job struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Quality   string    `json:"quality,omitempty"`
	Status    JobStatus `json:"status"`
	Progress  float64   `json:"progress"`
	File      string    `json:"file,omitempty"`
	Size      int64     `json:"size,omitempty"`
	Title     string    `json:"title,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal fields (not serialized)
	cancel context.CancelFunc `json:"-"`
	ctx    context.Context    `json:"-"`
}

// FetchOutcome is what a finished acquisition leaves behind.
type FetchOutcome struct {
	File  string
	Size  int64
	Title string
}

// FetchFunc runs one acquisition end to end: probe, transfer, resolve
// and place the artifact in the server's output directory.
type FetchFunc func(ctx context.Context, url, quality string, progressFn func(percent float64)) (*FetchOutcome, error)

// JobQueue manages acquisition jobs with a worker pool
type JobQueue struct {
	jobs          map[string]*Job
	mu            sync.RWMutex
	queue         chan *Job
	maxConcurrent int
	fetchFn       FetchFunc
	wg            sync.WaitGroup
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
	closed        bool
}

// NewJobQueue creates a new job queue with the specified concurrency
func NewJobQueue(maxConcurrent int, fetchFn FetchFunc) *JobQueue {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}

	return &JobQueue{
		jobs:          make(map[string]*Job),
		queue:         make(chan *Job, 100),
		maxConcurrent: maxConcurrent,
		fetchFn:       fetchFn,
		stopCleanup:   make(chan struct{}),
	}
}

// Start begins the worker pool and cleanup routine
func (jq *JobQueue) Start() {
	for i := 0; i < jq.maxConcurrent; i++ {
		jq.wg.Add(1)
		go jq.worker()
	}

	// Remove finished jobs an hour after their last update.
	jq.cleanupTicker = time.NewTicker(10 * time.Minute)
	go jq.cleanupLoop()
}

// Stop gracefully shuts down the job queue. AddJob refuses new work
// from the moment Stop begins.
func (jq *JobQueue) Stop() {
	jq.mu.Lock()
	if jq.closed {
		jq.mu.Unlock()
		return
	}
	jq.closed = true
	jq.mu.Unlock()

	close(jq.queue)
	close(jq.stopCleanup)
	if jq.cleanupTicker != nil {
		jq.cleanupTicker.Stop()
	}
	jq.wg.Wait()
}

func (jq *JobQueue) worker() {
	defer jq.wg.Done()

	for job := range jq.queue {
		jq.processJob(job)
	}
}

func (jq *JobQueue) processJob(job *Job) {
	jq.setStatus(job.ID, JobStatusFetching, "")

	progressFn := func(percent float64) {
		jq.setProgress(job.ID, percent)
	}

	outcome, err := jq.fetchFn(job.ctx, job.URL, job.Quality, progressFn)
	if err != nil {
		if job.ctx.Err() == context.Canceled {
			jq.setStatus(job.ID, JobStatusCancelled, "cancelled by user")
		} else {
			jq.setStatus(job.ID, JobStatusFailed, err.Error())
		}
		return
	}

	jq.mu.Lock()
	if j, ok := jq.jobs[job.ID]; ok && !jobFinished(j.Status) {
		j.Status = JobStatusCompleted
		j.Progress = 100
		j.File = outcome.File
		j.Size = outcome.Size
		j.Title = outcome.Title
		j.UpdatedAt = time.Now()
	}
	jq.mu.Unlock()
}

func (jq *JobQueue) cleanupLoop() {
	for {
		select {
		case <-jq.cleanupTicker.C:
			jq.cleanupOldJobs()
		case <-jq.stopCleanup:
			return
		}
	}
}

func (jq *JobQueue) cleanupOldJobs() {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	cutoff := time.Now().Add(-1 * time.Hour)
	for id, job := range jq.jobs {
		if jobFinished(job.Status) && job.UpdatedAt.Before(cutoff) {
			delete(jq.jobs, id)
		}
	}
}

func jobFinished(s JobStatus) bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// ClearHistory removes all completed, failed, and cancelled jobs
func (jq *JobQueue) ClearHistory() int {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	count := 0
	for id, job := range jq.jobs {
		if jobFinished(job.Status) {
			delete(jq.jobs, id)
			count++
		}
	}
	return count
}

// AddJob creates and queues a new acquisition job
func (jq *JobQueue) AddJob(url, quality string) (*Job, error) {
	ctx, cancel := context.WithCancel(context.Background())

	job := &Job{
		ID:        uuid.NewString(),
		URL:       url,
		Quality:   quality,
		Status:    JobStatusQueued,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}

	// Register and enqueue under the lock so a concurrent Stop cannot
	// close the queue between the check and the send.
	jq.mu.Lock()
	if jq.closed {
		jq.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("job queue is shut down")
	}
	jq.jobs[job.ID] = job

	select {
	case jq.queue <- job:
		jq.mu.Unlock()
		return job, nil
	default:
		delete(jq.jobs, job.ID)
		jq.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("job queue is full")
	}
}

// GetJob returns a copy of a job by ID
func (jq *JobQueue) GetJob(id string) *Job {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	if job, ok := jq.jobs[id]; ok {
		jobCopy := *job
		return &jobCopy
	}
	return nil
}

// GetAllJobs returns copies of all jobs
func (jq *JobQueue) GetAllJobs() []*Job {
	jq.mu.RLock()
	defer jq.mu.RUnlock()

	jobs := make([]*Job, 0, len(jq.jobs))
	for _, job := range jq.jobs {
		jobCopy := *job
		jobs = append(jobs, &jobCopy)
	}
	return jobs
}

// CancelJob cancels a queued or running job by ID
func (jq *JobQueue) CancelJob(id string) bool {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	job, ok := jq.jobs[id]
	if !ok {
		return false
	}
	if job.Status != JobStatusQueued && job.Status != JobStatusFetching {
		return false
	}

	job.cancel()
	job.Status = JobStatusCancelled
	job.UpdatedAt = time.Now()
	return true
}

func (jq *JobQueue) setStatus(id string, status JobStatus, errMsg string) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if job, ok := jq.jobs[id]; ok {
		// A cancellation may have won the race while the worker ran.
		if jobFinished(job.Status) {
			return
		}
		job.Status = status
		if errMsg != "" {
			job.Error = errMsg
		}
		job.UpdatedAt = time.Now()
	}
}

func (jq *JobQueue) setProgress(id string, percent float64) {
	jq.mu.Lock()
	defer jq.mu.Unlock()

	if job, ok := jq.jobs[id]; ok {
		job.Progress = percent
		job.UpdatedAt = time.Now()
	}
}
