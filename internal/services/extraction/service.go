// Package extraction orchestrates the pipeline for one uploaded PDF:
// decode the bytes into text lines, filter the lines down to billing
// table candidates, send those to the extraction oracle, and record the
// terminal result on the job.
//
// Go Pattern: Goroutines are cheap, so each upload gets its own
// pipeline goroutine instead of a fixed worker pool with a job queue.
// The payload travels with the goroutine and the result lands in the
// job registry, so no channel plumbing is needed — a weighted semaphore
// is enough to bound how many pipelines run at once.
package extraction

import (
	"context"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/Shimizu-Technology/billing-extract-api/internal/models"
	"github.com/Shimizu-Technology/billing-extract-api/internal/registry"
	"github.com/Shimizu-Technology/billing-extract-api/internal/services/rowfilter"
)

// Oracle normalizes candidate lines into billing rows. The oracle
// package's client implements it; tests substitute a stub.
type Oracle interface {
	ExtractRows(ctx context.Context, lines []string) ([]models.UnifiedRow, error)
}

// DecodeFunc turns uploaded PDF bytes into visual text lines.
type DecodeFunc func(data []byte) ([]string, error)

// Service runs extraction pipelines in the background.
type Service struct {
	registry *registry.Registry
	oracle   Oracle
	decode   DecodeFunc

	// sem bounds concurrent pipelines. A saturated service parks new
	// jobs in Acquire — they stay pending, burning their retention
	// window, rather than piling unbounded load on the oracle.
	sem *semaphore.Weighted

	// Go Pattern: sync.WaitGroup tracks running goroutines and
	// context cancellation signals shutdown, same as any worker pool.
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New wires an extraction service. decode is injectable so tests can
// feed lines without crafting real PDFs.
func New(reg *registry.Registry, orc Oracle, decode DecodeFunc, maxConcurrent int) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		registry: reg,
		oracle:   orc,
		decode:   decode,
		sem:      semaphore.NewWeighted(int64(maxConcurrent)),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit registers a pending job for the uploaded bytes and starts its
// pipeline in the background. It returns immediately — the HTTP
// response must not wait on the oracle's latency.
func (s *Service) Submit(data []byte) models.Job {
	job := s.registry.Create()

	s.wg.Add(1)
	go s.run(job.ID, data)

	log.Printf("📥 Job %s queued (%d bytes)", job.ID, len(data))
	return job
}

// Stop prevents parked pipelines from starting and waits for the rest
// to wind down. In-flight oracle calls are cancelled — their results
// live in process memory and would not outlive the restart anyway.
func (s *Service) Stop() {
	log.Println("⏹️  Stopping extraction pipelines...")
	s.cancel()
	s.wg.Wait()
	log.Println("✅ All extraction pipelines stopped")
}

// run is one job's pipeline. Every exit path writes exactly one
// terminal state; once a job is started it is never retried.
func (s *Service) run(jobID string, data []byte) {
	defer s.wg.Done()

	if err := s.sem.Acquire(s.ctx, 1); err != nil {
		s.fail(jobID, "service shutting down before extraction started")
		return
	}
	defer s.sem.Release(1)

	lines, err := s.decode(data)
	if err != nil {
		s.fail(jobID, err.Error())
		return
	}
	if len(lines) == 0 {
		s.fail(jobID, "no text extracted")
		return
	}
	log.Printf("📄 Job %s: extracted %d lines", jobID, len(lines))

	candidates := rowfilter.Filter(lines)
	log.Printf("🔎 Job %s: %d candidate lines after filtering", jobID, len(candidates))

	rows, err := s.oracle.ExtractRows(s.ctx, candidates)
	if err != nil {
		s.fail(jobID, err.Error())
		return
	}

	if err := s.registry.Complete(jobID, rows); err != nil {
		// Evicted mid-run, most likely. The work is lost but harmless.
		log.Printf("⚠️ Job %s finished but could not be recorded: %v", jobID, err)
		return
	}
	log.Printf("✅ Job %s completed with %d rows", jobID, len(rows))
}

func (s *Service) fail(jobID, reason string) {
	log.Printf("❌ Job %s failed: %s", jobID, reason)
	if err := s.registry.Fail(jobID, reason); err != nil {
		log.Printf("⚠️ Job %s failure could not be recorded: %v", jobID, err)
	}
}
