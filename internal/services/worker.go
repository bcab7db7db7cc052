package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type JobKind string

const (
	// JobFetchEvaluation loads the evaluation result of the selected applicant.
	JobFetchEvaluation JobKind = "fetch-evaluation"
	// JobReconcile re-reads the job posting after a successful save.
	JobReconcile JobKind = "reconcile"
)

type Job struct {
	Kind          JobKind
	SessionID     uuid.UUID
	ApplicationID int64
	Delay         time.Duration
}

// JobHandler runs jobs and reports work the poller should retry.
type JobHandler interface {
	HandleJob(ctx context.Context, job Job) error
	PendingJobs() []Job
}

type JobQueue interface {
	EnqueueJob(job Job)
}

type Worker interface {
	JobQueue
	Start(ctx context.Context)
	Stop()
}

type worker struct {
	handler      JobHandler
	jobQueue     chan Job
	concurrency  int
	pollInterval time.Duration
	wg           sync.WaitGroup
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewWorker(handler JobHandler, concurrency, queueSize int, pollInterval time.Duration) Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	if queueSize < 1 {
		queueSize = 100
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &worker{
		handler:      handler,
		jobQueue:     make(chan Job, queueSize),
		concurrency:  concurrency,
		pollInterval: pollInterval,
		stopChan:     make(chan struct{}),
	}
}

// Start implements Worker.
func (w *worker) Start(ctx context.Context) {
	log.Printf("🚀 Starting worker with %d concurrent workers\n", w.concurrency)

	for i := 0; i < w.concurrency; i++ {
		w.wg.Add(1)
		go w.processJobs(ctx, i+1)
	}

	w.wg.Add(1)
	go w.pollPendingFetches(ctx)

	log.Println("✅ Worker started successfully")
}

// Stop implements Worker.
func (w *worker) Stop() {
	log.Println("🛑 Stopping worker...")
	w.stopOnce.Do(func() { close(w.stopChan) })
	w.wg.Wait()
	log.Println("✅ Worker stopped")
}

// EnqueueJob implements JobQueue. Delayed jobs are queued once their delay
// elapses. A full queue drops the job; the poller picks fetches up again.
func (w *worker) EnqueueJob(job Job) {
	if job.Delay > 0 {
		delay := job.Delay
		job.Delay = 0
		time.AfterFunc(delay, func() { w.enqueue(job) })
		return
	}
	w.enqueue(job)
}

func (w *worker) enqueue(job Job) {
	select {
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue %s for application %d\n", job.Kind, job.ApplicationID)
		return
	default:
	}

	select {
	case w.jobQueue <- job:
		log.Printf("📥 Job %s enqueued for application %d\n", job.Kind, job.ApplicationID)
	case <-w.stopChan:
		log.Printf("⚠️  Worker stopped, cannot enqueue %s for application %d\n", job.Kind, job.ApplicationID)
	default:
		log.Printf("⚠️  Job queue full, dropping %s for application %d\n", job.Kind, job.ApplicationID)
	}
}

func (w *worker) processJobs(ctx context.Context, workerID int) {
	defer w.wg.Done()
	log.Printf("🚀 Worker %d started processing jobs\n", workerID)

	for {
		select {
		case <-w.stopChan:
			log.Printf("👷 Worker #%d stopped\n", workerID)
			return
		case <-ctx.Done():
			log.Printf("👷 Worker #%d context done\n", workerID)
			return
		case job := <-w.jobQueue:
			log.Printf("👷 Worker #%d processing %s for application %d\n", workerID, job.Kind, job.ApplicationID)
			err := w.handler.HandleJob(ctx, job)
			workerJobs.WithLabelValues(string(job.Kind), outcome(err)).Inc()
			if err != nil {
				log.Printf("❌ Worker #%d failed %s for application %d: %v\n", workerID, job.Kind, job.ApplicationID, err)
			} else {
				log.Printf("✅ Worker #%d completed %s for application %d\n", workerID, job.Kind, job.ApplicationID)
			}
		}
	}
}

// pollPendingFetches re-requests evaluation results that upstream has not produced yet.
func (w *worker) pollPendingFetches(ctx context.Context) {
	defer w.wg.Done()
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	log.Println("🔄 Starting pending evaluation poller")

	for {
		select {
		case <-w.stopChan:
			log.Println("🔄 Pending evaluation poller stopped")
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			pending := w.handler.PendingJobs()
			if len(pending) > 0 {
				log.Printf("📋 Found %d pending evaluation fetches\n", len(pending))
			}
			for _, job := range pending {
				w.enqueue(job)
			}
		}
	}
}
