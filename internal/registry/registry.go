// Package registry implements the in-memory job registry.
//
// Go Pattern: A mutex-guarded map is the standard Go answer to "I need a
// small amount of shared state and a database is overkill". Results only
// need to survive long enough for the client to poll them, so jobs live
// in process memory and are evicted on a timer. A restart forgets
// everything — that is an accepted property of this service, not a bug.
package registry

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Shimizu-Technology/billing-extract-api/internal/models"
)

// entry pairs a job with its eviction timer so Close can cancel it.
type entry struct {
	job   *models.Job
	timer *time.Timer
}

// Registry stores extraction jobs keyed by id for a fixed retention
// window. All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	retention time.Duration
	jobs      map[string]*entry
	closed    bool
}

// New creates a registry that evicts each job `retention` after its
// creation — regardless of whether the job ever reached a terminal
// state. A stuck pipeline must not pin memory forever.
func New(retention time.Duration) *Registry {
	return &Registry{
		retention: retention,
		jobs:      make(map[string]*entry),
	}
}

// Create registers a new pending job and schedules its eviction.
// The returned job is a snapshot; later writes go through Complete/Fail.
//
// Go Pattern: time.AfterFunc runs the callback on its own goroutine.
// Scheduling eviction here, at creation, means the countdown covers the
// job's whole life — queue wait, PDF decode, and the oracle round trip
// all burn retention time.
func (r *Registry) Create() models.Job {
	id := uuid.New().String()
	job := &models.Job{
		ID:        id,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := &entry{job: job}
	e.timer = time.AfterFunc(r.retention, func() { r.evict(id) })
	r.jobs[id] = e

	return *job
}

// Get returns a snapshot of the job, or ok=false if the id is unknown
// or the job has been evicted. Returning a copy keeps callers from
// mutating registry state outside the lock.
func (r *Registry) Get(id string) (models.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.jobs[id]
	if !ok {
		return models.Job{}, false
	}
	return *e.job, true
}

// Complete records the job's rows and marks it completed. It is an
// error to complete a job that is unknown, evicted, or already terminal
// — jobs are write-once past pending, and a violated transition points
// at a pipeline bug we want surfaced, not swallowed.
func (r *Registry) Complete(id string, rows []models.UnifiedRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if e.job.Status != models.StatusPending {
		return fmt.Errorf("job %s already %s", id, e.job.Status)
	}

	e.job.Status = models.StatusCompleted
	e.job.Data = rows
	return nil
}

// Fail marks the job errored with the given reason. Same write-once
// rules as Complete.
func (r *Registry) Fail(id string, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[id]
	if !ok {
		return fmt.Errorf("job %s not found", id)
	}
	if e.job.Status != models.StatusPending {
		return fmt.Errorf("job %s already %s", id, e.job.Status)
	}

	e.job.Status = models.StatusError
	e.job.Error = msg
	return nil
}

// ActiveCount reports how many jobs are still pending. Surfaced on the
// debug endpoint so a wedged pipeline shows up without log digging.
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.jobs {
		if e.job.Status == models.StatusPending {
			n++
		}
	}
	return n
}

// Close stops every pending eviction timer. Called on shutdown so the
// process doesn't wait on stray timer goroutines.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, e := range r.jobs {
		e.timer.Stop()
	}
}

// evict removes a job whose retention window expired.
func (r *Registry) evict(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	e, ok := r.jobs[id]
	if !ok {
		return
	}
	if e.job.Status == models.StatusPending {
		log.Printf("🧹 Evicting job %s while still pending — pipeline never finished", id)
	}
	delete(r.jobs, id)
}
