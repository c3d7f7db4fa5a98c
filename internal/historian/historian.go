// Package historian drains resolved rounds from the history queue and archives
// them to Postgres in batches.
package historian

import (
	"context"
	"time"

	"github.com/jason-s-yu/cardparty/internal/models"
	"github.com/sirupsen/logrus"
)

// Source is the queue side, implemented by cache.RoundQueue.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*models.RoundRecord, error)
}

// Writer is the archive side, implemented by database.Store.
type Writer interface {
	InsertRoundResults(ctx context.Context, records []models.RoundRecord) error
}

// Options tune batching.
type Options struct {
	BatchSize  int
	FlushDelay time.Duration
	// PopTimeout bounds each blocking pop so the flush deadline and shutdown are noticed.
	PopTimeout time.Duration
	// MaxPending caps records held across failed flushes; the oldest are dropped past it.
	MaxPending int
}

func (o Options) withDefaults() Options {
	if o.BatchSize < 1 {
		o.BatchSize = 20
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = 500 * time.Millisecond
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = time.Second
	}
	if o.MaxPending < o.BatchSize {
		o.MaxPending = 50 * o.BatchSize
	}
	return o
}

// Service accumulates popped records and flushes them when the batch is full or
// FlushDelay has passed since the last flush.
type Service struct {
	src  Source
	dst  Writer
	opts Options
	log  *logrus.Entry

	batch     []models.RoundRecord
	lastFlush time.Time
}

// New builds a historian service.
func New(src Source, dst Writer, opts Options, logger *logrus.Logger) *Service {
	opts = opts.withDefaults()
	return &Service{
		src:  src,
		dst:  dst,
		opts: opts,
		log:  logger.WithField("component", "historian"),
	}
}

// Run blocks until ctx is cancelled, then flushes whatever is left.
func (s *Service) Run(ctx context.Context) {
	s.log.Info("historian started")
	s.lastFlush = time.Now()
	for {
		if ctx.Err() != nil {
			s.shutdown()
			return
		}

		rec, err := s.src.Pop(ctx, s.opts.PopTimeout)
		switch {
		case err != nil && ctx.Err() != nil:
			continue
		case err != nil:
			s.log.Errorf("pop: %v", err)
			// a broken queue connection would otherwise spin
			select {
			case <-ctx.Done():
			case <-time.After(s.opts.PopTimeout):
			}
		case rec != nil:
			s.batch = append(s.batch, *rec)
		}

		if len(s.batch) >= s.opts.BatchSize || time.Since(s.lastFlush) >= s.opts.FlushDelay {
			s.flush(ctx)
		}
	}
}

func (s *Service) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.flush(ctx)
	s.log.Info("historian stopped")
}

// flush writes the pending batch in one call. On failure the records are kept
// for the next attempt.
func (s *Service) flush(ctx context.Context) {
	s.lastFlush = time.Now()
	if len(s.batch) == 0 {
		return
	}
	if err := s.dst.InsertRoundResults(ctx, s.batch); err != nil {
		s.log.Errorf("flush %d rounds: %v", len(s.batch), err)
		if over := len(s.batch) - s.opts.MaxPending; over > 0 {
			s.log.Warnf("dropping %d oldest rounds", over)
			s.batch = append(s.batch[:0], s.batch[over:]...)
		}
		return
	}
	s.log.Debugf("flushed %d rounds", len(s.batch))
	s.batch = nil
}
