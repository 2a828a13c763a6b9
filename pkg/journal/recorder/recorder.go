package recorder

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"mercator-hq/strcalc/pkg/journal"
)

// Config contains configuration for the journal recorder.
type Config struct {
	// AsyncBuffer is the size of the async write channel buffer.
	// Default: 1000
	AsyncBuffer int

	// WriteTimeout is the timeout for writing a record to storage.
	// Default: 5 seconds
	WriteTimeout time.Duration

	// MaxExpressionLength is the maximum number of bytes of the expression
	// kept in a record. Zero keeps the full expression.
	// Default: 500
	MaxExpressionLength int
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		AsyncBuffer:         1000,
		WriteTimeout:        5 * time.Second,
		MaxExpressionLength: 500,
	}
}

// Recorder writes journal records asynchronously so evaluations never wait
// on storage. When the buffer is full new records are dropped and counted.
type Recorder struct {
	storage    journal.Storage
	config     *Config
	observer   journal.Observer
	logger     *slog.Logger
	recordChan chan *journal.Record
	done       chan struct{}
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewRecorder creates a recorder and starts its background writer.
func NewRecorder(storage journal.Storage, config *Config, observer journal.Observer, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	if config.AsyncBuffer <= 0 {
		config.AsyncBuffer = DefaultConfig().AsyncBuffer
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultConfig().WriteTimeout
	}
	if observer == nil {
		observer = journal.NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		storage:    storage,
		config:     config,
		observer:   observer,
		logger:     logger.With("component", "journal.recorder"),
		recordChan: make(chan *journal.Record, config.AsyncBuffer),
		done:       make(chan struct{}),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("journal recorder initialized",
		"async_buffer", config.AsyncBuffer,
		"write_timeout", config.WriteTimeout,
		"max_expression_length", config.MaxExpressionLength,
	)

	return r
}

// Record completes the record's identity fields and enqueues it. It never
// blocks: a full buffer drops the record and returns ErrBufferFull.
func (r *Recorder) Record(ctx context.Context, record *journal.Record) error {
	r.prepare(record)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return journal.NewRecorderError(record.ID, journal.ErrRecorderClosed)
	}

	select {
	case r.recordChan <- record:
		r.logger.Debug("journal record enqueued",
			"record_id", record.ID,
			"request_id", record.RequestID,
		)
		return nil
	default:
		r.observer.RecordJournalDrop()
		r.logger.Warn("journal buffer full, dropping record",
			"record_id", record.ID,
			"channel_capacity", r.config.AsyncBuffer,
		)
		return journal.NewRecorderError(record.ID, journal.ErrBufferFull)
	}
}

// Close stops accepting records, drains the buffer and waits for pending
// writes. It is safe to call more than once.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.done)
	r.mu.Unlock()

	r.logger.Info("shutting down journal recorder")
	r.wg.Wait()
	r.logger.Info("journal recorder shut down complete")
	return nil
}

// prepare fills the fields the recorder owns.
func (r *Recorder) prepare(record *journal.Record) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.RecordedAt.IsZero() {
		record.RecordedAt = time.Now().UTC()
	}
	if record.ExpressionHash == "" {
		record.ExpressionSize = len(record.Expression)
		record.ExpressionHash = HashString(record.Expression)
	}
	if r.config.MaxExpressionLength > 0 {
		var truncated bool
		record.Expression, truncated = Truncate(record.Expression, r.config.MaxExpressionLength)
		record.Truncated = record.Truncated || truncated
	}
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case record := <-r.recordChan:
			r.writeRecord(record)

		case <-r.done:
			r.logger.Info("draining journal channel before shutdown",
				"pending_count", len(r.recordChan),
			)
			for {
				select {
				case record := <-r.recordChan:
					r.writeRecord(record)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) writeRecord(record *journal.Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	err := r.storage.Store(ctx, record)
	duration := time.Since(start)

	if err != nil {
		r.observer.RecordJournalWrite("error", duration)
		r.logger.Error("failed to store journal record",
			"record_id", record.ID,
			"error", err,
		)
		return
	}

	r.observer.RecordJournalWrite("success", duration)
	r.logger.Debug("journal record stored",
		"record_id", record.ID,
		"outcome", record.Outcome(),
		"duration_ms", duration.Milliseconds(),
	)

	if duration > r.config.WriteTimeout/2 {
		r.logger.Warn("slow journal write",
			"record_id", record.ID,
			"duration_ms", duration.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
