// Package worker provides an asynchronous worker pool for persisting learning
// records using the provided storage.Driver, announcing them on the event bus,
// and generating turn embeddings using the provided embeddings.Embedder.
//
// The pool decouples persistence from the API hot path so request handlers
// return as soon as a record is queued.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/studyhallco/studyhall/pkg/embeddings"
	"github.com/studyhallco/studyhall/pkg/eventstream"
	"github.com/studyhallco/studyhall/pkg/learn"
	"github.com/studyhallco/studyhall/pkg/logger"
	"github.com/studyhallco/studyhall/pkg/storage"
	"github.com/studyhallco/studyhall/pkg/thread"
	"github.com/studyhallco/studyhall/pkg/vector"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against.
// Exactly one field should be set.
type Job struct {
	Attempt  *learn.Attempt
	CheckIn  *learn.CheckIn
	Activity *learn.Activity
	Plan     *learn.Plan

	// Turns is a parent-first run of conversation turns to persist.
	Turns []*thread.Turn
}

// kind names the job for logging.
func (j Job) kind() string {
	switch {
	case j.Attempt != nil:
		return "attempt"
	case j.CheckIn != nil:
		return "checkin"
	case j.Activity != nil:
		return "activity"
	case j.Plan != nil:
		return "plan"
	case len(j.Turns) > 0:
		return "turns"
	default:
		return "empty"
	}
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend records are persisted to.
	Driver storage.Driver

	// Publisher receives bus events after successful persistence.
	// Defaults to a nop publisher when nil.
	Publisher eventstream.Publisher

	// VectorDriver is the optional vector store driver for turn embeddings.
	VectorDriver vector.Driver

	// Embedder generates optional turn embeddings.
	// A configured Embedder is required if VectorDriver is set.
	Embedder embeddings.Embedder

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided logger
	Logger *slog.Logger
}

// Pool processes persistence jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Publisher == nil {
		c.Publisher = eventstream.NewNopPublisher()
	}

	if c.Logger == nil {
		c.Logger = logger.Nop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"kind", job.kind(),
		)
		return true
	default:
		p.logger.Warn("job not queued, queue full, job dropped",
			"kind", job.kind(),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("persistence worker stopped", "worker_id", id)
}

// processJob dispatches a Job to the handler for its record kind.
func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	var err error
	switch {
	case job.Attempt != nil:
		err = p.processAttempt(ctx, job.Attempt)
	case job.CheckIn != nil:
		err = p.processCheckIn(ctx, job.CheckIn)
	case job.Activity != nil:
		err = p.processActivity(ctx, job.Activity)
	case job.Plan != nil:
		err = p.processPlan(ctx, job.Plan)
	case len(job.Turns) > 0:
		err = p.processTurns(ctx, job.Turns)
	default:
		p.logger.Warn("empty job dropped")
		return
	}

	if err != nil {
		p.logger.Error("async persistence failed",
			"kind", job.kind(),
			"error", err,
		)
	}
}

func (p *Pool) processAttempt(ctx context.Context, attempt *learn.Attempt) error {
	if err := p.config.Driver.PutAttempt(ctx, attempt); err != nil {
		return fmt.Errorf("storing attempt: %w", err)
	}

	p.publish(ctx, eventstream.NewAttemptRecorded(attempt))

	p.logger.Info("attempt stored",
		"attempt_id", attempt.ID,
		"learner", attempt.Learner,
		"quiz", attempt.QuizSlug,
	)

	return nil
}

func (p *Pool) processCheckIn(ctx context.Context, checkIn *learn.CheckIn) error {
	if err := p.config.Driver.PutCheckIn(ctx, checkIn); err != nil {
		return fmt.Errorf("storing check-in: %w", err)
	}

	p.publish(ctx, eventstream.NewCheckInRecorded(checkIn))

	p.logger.Info("check-in stored",
		"checkin_id", checkIn.ID,
		"learner", checkIn.Learner,
	)

	return nil
}

func (p *Pool) processActivity(ctx context.Context, activity *learn.Activity) error {
	if err := p.config.Driver.PutActivity(ctx, activity); err != nil {
		return fmt.Errorf("storing activity: %w", err)
	}

	p.logger.Debug("activity stored",
		"learner", activity.Learner,
		"verb", activity.Verb,
	)

	return nil
}

func (p *Pool) processPlan(ctx context.Context, plan *learn.Plan) error {
	if err := p.config.Driver.PutPlan(ctx, plan); err != nil {
		return fmt.Errorf("storing plan: %w", err)
	}

	p.publish(ctx, eventstream.NewPlanGenerated(plan))

	p.logger.Info("plan stored",
		"plan_id", plan.ID,
		"learner", plan.Learner,
		"weeks", len(plan.Weeks),
	)

	return nil
}

// processTurns persists a run of conversation turns parent first.
// Content-addressing makes the puts idempotent, so replayed turns dedup and
// only newly inserted ones are announced and embedded.
func (p *Pool) processTurns(ctx context.Context, turns []*thread.Turn) error {
	var newTurns []*thread.Turn

	for _, turn := range turns {
		isNew, err := p.config.Driver.PutTurn(ctx, turn)
		if err != nil {
			return fmt.Errorf("storing turn: %w", err)
		}

		p.logger.Debug("stored turn",
			"hash", turn.Hash,
			"role", turn.Role,
			"is_new", isNew,
		)

		if !isNew {
			continue
		}

		newTurns = append(newTurns, turn)
		p.publish(ctx, eventstream.NewTurnPersisted(turn))
	}

	if len(turns) > 0 {
		p.logger.Info("thread stored",
			"head", turns[len(turns)-1].Hash,
			"new_turns", len(newTurns),
		)
	}

	// If the vector store is configured, embed newly inserted turns
	if p.config.VectorDriver != nil && p.config.Embedder != nil && len(newTurns) > 0 {
		p.storeEmbeddings(ctx, newTurns)
	}

	return nil
}

// publish announces an event, logging failures instead of surfacing them so
// a broker outage never fails a persisted record.
func (p *Pool) publish(ctx context.Context, event eventstream.Event) {
	if err := p.config.Publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish event",
			"type", event.EventType(),
			"error", err,
		)
	}
}

// storeEmbeddings generates and stores embeddings for the given turns.
// Only called for turns that were newly inserted.
// Errors are logged but not returned to avoid failing the main storage operation.
func (p *Pool) storeEmbeddings(ctx context.Context, turns []*thread.Turn) {
	texts := make([]string, 0, len(turns))
	eligible := make([]*thread.Turn, 0, len(turns))

	for _, turn := range turns {
		if turn.Text == "" {
			p.logger.Debug("skipping embedding for turn with no text",
				"hash", turn.Hash,
			)
			continue
		}
		texts = append(texts, turn.Text)
		eligible = append(eligible, turn)
	}

	if len(eligible) == 0 {
		return
	}

	embs, err := p.config.Embedder.EmbedBatch(ctx, texts)
	if err != nil {
		p.logger.Warn("failed to generate embeddings",
			"turns", len(eligible),
			"error", err,
		)
		return
	}

	docs := make([]vector.Document, 0, len(eligible))
	for i, turn := range eligible {
		docs = append(docs, vector.Document{
			ID:        turn.Hash,
			Hash:      turn.Hash,
			Embedding: embs[i],
		})
	}

	if err := p.config.VectorDriver.Add(ctx, docs); err != nil {
		p.logger.Warn("failed to store embeddings",
			"count", len(docs),
			"error", err,
		)
		return
	}

	p.logger.Debug("stored embeddings",
		"count", len(docs),
	)
}
