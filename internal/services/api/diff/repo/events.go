package repo

import (
	"context"
	"sync/atomic"
	"time"

	"wta/internal/platform/logger"
	"wta/internal/platform/store"
	"wta/internal/services/api/diff/domain"
)

// EventsTable is the clickhouse table compare events land in
const EventsTable = "diff_compare_events"

// EventsSchema creates EventsTable, column order matches eventRow
const EventsSchema = `
CREATE TABLE IF NOT EXISTS diff_compare_events (
	owner_id   String,
	cmp_id     String,
	version    Int64,
	status     LowCardinality(String),
	spans      UInt32,
	left_size  UInt64,
	right_size UInt64,
	elapsed_us UInt64,
	cached     Bool,
	persisted  Bool,
	at         DateTime64(3, 'UTC')
) ENGINE = MergeTree
ORDER BY (owner_id, cmp_id, at)
`

// SinkOptions tunes batching
type SinkOptions struct {
	Batch      int           // rows per insert, default 500
	FlushEvery time.Duration // max delay before a partial batch is written, default 2s
	Buffer     int           // channel capacity, default 4 * Batch
}

// CHSink buffers compare events and writes them to clickhouse in batches
// Emit never blocks, events are dropped when the buffer is full
type CHSink struct {
	ch      store.Clickhouse
	in      chan domain.CompareEvent
	batch   int
	every   time.Duration
	log     *logger.Logger
	dropped atomic.Int64
	written atomic.Int64
}

var _ domain.EventSink = (*CHSink)(nil)

// NewCHSink builds a sink on ch, call Run to start flushing
func NewCHSink(ch store.Clickhouse, opt SinkOptions) *CHSink {
	if ch == nil {
		panic("repo.NewCHSink requires a non nil Clickhouse")
	}
	if opt.Batch <= 0 {
		opt.Batch = 500
	}
	if opt.FlushEvery <= 0 {
		opt.FlushEvery = 2 * time.Second
	}
	if opt.Buffer <= 0 {
		opt.Buffer = 4 * opt.Batch
	}
	return &CHSink{
		ch:    ch,
		in:    make(chan domain.CompareEvent, opt.Buffer),
		batch: opt.Batch,
		every: opt.FlushEvery,
		log:   logger.Named("diff-events"),
	}
}

// Migrate creates the events table
func (s *CHSink) Migrate(ctx context.Context) error {
	return s.ch.Exec(ctx, EventsSchema)
}

// Emit queues ev without blocking
func (s *CHSink) Emit(ev domain.CompareEvent) {
	select {
	case s.in <- ev:
	default:
		if n := s.dropped.Add(1); n == 1 || n%1000 == 0 {
			s.log.Warn().Int64("dropped", n).Msg("compare event buffer full")
		}
	}
}

// Dropped reports how many events were discarded
func (s *CHSink) Dropped() int64 { return s.dropped.Load() }

// Written reports how many events were inserted
func (s *CHSink) Written() int64 { return s.written.Load() }

// Run flushes until ctx ends, then drains what is already queued
func (s *CHSink) Run(ctx context.Context) error {
	t := time.NewTicker(s.every)
	defer t.Stop()

	buf := make([][]any, 0, s.batch)
	flush := func(fctx context.Context) {
		if len(buf) == 0 {
			return
		}
		if err := s.ch.Insert(fctx, EventsTable, buf); err != nil {
			s.log.Error().Err(err).Int("rows", len(buf)).Msg("compare event insert failed")
		} else {
			s.written.Add(int64(len(buf)))
		}
		buf = make([][]any, 0, s.batch)
	}

	for {
		select {
		case <-ctx.Done():
		drain:
			for {
				select {
				case ev := <-s.in:
					buf = append(buf, eventRow(ev))
				default:
					break drain
				}
			}
			fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			flush(fctx)
			cancel()
			return nil
		case ev := <-s.in:
			buf = append(buf, eventRow(ev))
			if len(buf) >= s.batch {
				flush(ctx)
			}
		case <-t.C:
			flush(ctx)
		}
	}
}

func eventRow(ev domain.CompareEvent) []any {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	return []any{
		ev.OwnerID,
		ev.ID,
		ev.Version,
		string(ev.Status),
		uint32(max(ev.Spans, 0)),
		uint64(max(ev.LeftSize, 0)),
		uint64(max(ev.RightSize, 0)),
		uint64(max(ev.Elapsed.Microseconds(), 0)),
		ev.Cached,
		ev.Persisted,
		at.UTC(),
	}
}
